package dbg

// DebugLogger is implemented twice: a real logger under the "debug" build tag
// and a no-op otherwise, so hot paths can report degenerate events (unmapped
// writes, unimplemented opcodes) without any cost in release builds.
type DebugLogger interface {
	Printf(format string, a ...interface{})
	Println(a ...interface{})
}

var debugLog DebugLogger

func Printf(format string, a ...interface{}) {
	debugLog.Printf(format, a...)
}

func Println(a ...interface{}) {
	debugLog.Println(a...)
}
