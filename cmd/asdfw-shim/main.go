// Command asdfw-shim is the generic launcher behind native shims. Every shim
// is a copy of this binary; it takes its own file name as the command to
// resolve and runs the configured version of the owning tool.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-ports/asdfw/internal/config"
	"github.com/go-ports/asdfw/internal/logx"
	"github.com/go-ports/asdfw/internal/service"
)

// debugEnv enables debug logging to <logs>/<shim name>.log when set.
const debugEnv = "ASDFW_DEBUG_SHIM"

func main() {
	os.Exit(run(filepath.Base(os.Args[0]), os.Args[1:]))
}

func run(cmd string, args []string) int {
	rt, err := config.NewRuntime("")
	if err != nil {
		return fail(cmd, err)
	}

	closer := startLogging(rt, cmd)
	defer closer.Close()

	svc, err := service.New(rt)
	if err != nil {
		return fail(cmd, err)
	}
	code, err := svc.Exec(cmd, "", args)
	if err != nil {
		slog.Error("shim failed", "command", cmd, "err", err)
		return fail(cmd, err)
	}
	return code
}

func startLogging(rt *config.Runtime, cmd string) io.Closer {
	if os.Getenv(debugEnv) == "" {
		logx.Discard()
		return nopCloser{}
	}
	name := cmd[:len(cmd)-len(filepath.Ext(cmd))]
	closer, err := logx.Setup(logx.Options{Dir: rt.LogsDir, Name: name, Level: slog.LevelDebug})
	if err != nil {
		fmt.Fprintf(os.Stderr, "asdfw-shim: logging disabled: %v\n", err)
		logx.Discard()
		return nopCloser{}
	}
	slog.Debug("shim invoked", "command", cmd, "args", os.Args[1:], "cwd", rt.CurrentDir)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func fail(cmd string, err error) int {
	fmt.Fprintf(os.Stderr, "asdfw-shim: %s: %v\n", cmd, err)
	return 1
}
