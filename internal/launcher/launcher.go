// Package launcher runs a resolved tool executable to completion in the
// foreground and reports its exit code.
package launcher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"

	"github.com/go-ports/asdfw/internal/models"
)

// UnknownExitCode is reported when the child's exit status cannot be determined.
const UnknownExitCode = -1

// Process describes a child to run.
type Process struct {
	Path string
	Args []string
	// Env is the complete child environment in NAME=value form.
	Env []string
}

// Launcher runs processes. The result is the child's exit code.
type Launcher interface {
	Run(p Process) (int, error)
}

// OS launches real processes. Nil streams default to the parent's stdio.
type OS struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Environ appends pairs to base. Later entries win in os/exec, so plugin
// values override inherited ones.
func Environ(base []string, pairs []models.EnvPair) []string {
	out := make([]string, 0, len(base)+len(pairs))
	out = append(out, base...)
	for _, p := range pairs {
		out = append(out, p.String())
	}
	return out
}

// Run starts p, relays signals as the platform requires and waits for it.
// A non-zero exit of the child is not an error.
func (l OS) Run(p Process) (int, error) {
	cmd := exec.Command(p.Path, p.Args...)
	cmd.Env = p.Env
	cmd.Stdin = pick(l.Stdin, os.Stdin)
	cmd.Stdout = pickW(l.Stdout, os.Stdout)
	cmd.Stderr = pickW(l.Stderr, os.Stderr)

	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, interceptedSignals...)
	defer signal.Stop(sigs)

	slog.Debug("launching", "path", p.Path, "args", p.Args)
	if err := cmd.Start(); err != nil {
		return UnknownExitCode, fmt.Errorf("starting %s: %w", p.Path, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigs:
				if forwarded(sig) {
					slog.Debug("forwarding signal", "signal", sig)
					_ = cmd.Process.Signal(sig)
				}
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		slog.Debug("child exited", "path", p.Path, "code", code)
		return code, nil
	}
	return UnknownExitCode, fmt.Errorf("waiting for %s: %w", p.Path, err)
}

func pick(r, def io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return def
}

func pickW(w, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}
