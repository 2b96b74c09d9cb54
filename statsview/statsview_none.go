//go:build !statsview
// +build !statsview

package statsview

import "io"

const Address = ""

// Launch does nothing unless the statsview build constraint is present.
func Launch(output io.Writer) {
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
