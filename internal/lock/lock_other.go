//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package lock

import "os"

// Acquire always fails with ErrUnavailable on this platform.
func Acquire(path string) (*Lock, error) {
	return nil, ErrUnavailable
}

func unlock(*os.File) error { return nil }
