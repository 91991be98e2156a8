// Package lock serialises shim database rebuilds across processes with an
// exclusive advisory lock on a well-known file.
package lock

import (
	"errors"
	"log/slog"
	"os"
)

// ErrUnavailable is returned on platforms without advisory file locks.
// Callers proceed unlocked.
var ErrUnavailable = errors.New("file locking not available on this platform")

// Lock holds an exclusive lock on a file. The kernel drops the lock when the
// descriptor is closed, including on process crash, so an orphaned lock file
// is harmless.
type Lock struct {
	path string
	file *os.File
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release unlocks and closes the lock file. It is safe to call more than
// once and on a nil receiver.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	if err := unlock(l.file); err != nil {
		slog.Debug("lock release failed", "path", l.path, "err", err)
	}
	if err := l.file.Close(); err != nil {
		slog.Debug("lock file close failed", "path", l.path, "err", err)
	}
	l.file = nil
}
