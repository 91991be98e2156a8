// Package shared holds the context passed to all CLI commands.
package shared

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-ports/asdfw/internal/config"
	"github.com/go-ports/asdfw/internal/logx"
	"github.com/go-ports/asdfw/internal/service"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// Home overrides the app directory.
	// When empty, resolution falls through to ASDFW_HOME env → persisted config → ~/.asdfw.
	Home string
	// Verbose lowers the file log threshold one step per -v.
	Verbose int

	logCloser io.Closer
}

// Runtime resolves the runtime paths and starts file logging.
func (c *Context) Runtime() (*config.Runtime, error) {
	rt, err := config.NewRuntime(c.Home)
	if err != nil {
		return nil, err
	}
	c.startLogging(rt)
	return rt, nil
}

// Service returns a Service over the resolved runtime.
func (c *Context) Service() (*service.Service, error) {
	rt, err := c.Runtime()
	if err != nil {
		return nil, err
	}
	return service.New(rt)
}

// Close flushes and releases the log file, if one was opened.
func (c *Context) Close() error {
	if c.logCloser == nil {
		return nil
	}
	logx.Discard()
	err := c.logCloser.Close()
	c.logCloser = nil
	return err
}

func (c *Context) startLogging(rt *config.Runtime) {
	if c.logCloser != nil {
		return
	}
	base, err := logx.ParseLevel(rt.Settings.LogLevel)
	if err != nil {
		base = slog.LevelWarn
	}
	closer, err := logx.Setup(logx.Options{
		Dir:   rt.LogsDir,
		Name:  "asdfw",
		Level: logx.VerbosityLevel(base, c.Verbose),
	})
	if err != nil {
		// Logging is best effort; commands still run without a log file.
		logx.Discard()
		return
	}
	c.logCloser = closer
	slog.Debug("runtime resolved", "app_dir", rt.AppDir, "source", rt.HomeSource, "cwd", rt.CurrentDir)
}

// ExitError carries a child process exit code to main, which exits with it
// without printing anything.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }
