//go:build windows

package launcher

import "os"

// Console control events reach every process attached to the console; the
// parent swallows them and waits for the child to decide.
var interceptedSignals = []os.Signal{os.Interrupt}

func forwarded(os.Signal) bool { return false }
