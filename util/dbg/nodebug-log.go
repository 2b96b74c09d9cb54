//go:build !debug
// +build !debug

package dbg

type noOpDebugLoggerImpl struct{}

func init() {
	debugLog = &noOpDebugLoggerImpl{}
}

func (n *noOpDebugLoggerImpl) Printf(format string, a ...interface{}) {}

func (n *noOpDebugLoggerImpl) Println(a ...interface{}) {}
