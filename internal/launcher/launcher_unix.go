//go:build !windows

package launcher

import (
	"os"

	"golang.org/x/sys/unix"
)

// The terminal delivers SIGINT and SIGQUIT to the whole foreground process
// group, so the child already receives them; the parent only has to survive.
var interceptedSignals = []os.Signal{unix.SIGINT, unix.SIGQUIT, unix.SIGTERM, unix.SIGHUP}

func forwarded(sig os.Signal) bool {
	return sig == unix.SIGTERM || sig == unix.SIGHUP
}
