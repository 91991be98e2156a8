package logx_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/asdfw/internal/logx"
)

func TestNew_WritesToFile(t *testing.T) {
	c := qt.New(t)

	dir := filepath.Join(t.TempDir(), "logs")
	logger, closer, err := logx.New(logx.Options{Dir: dir, Name: "kubectl.exe", Level: slog.LevelDebug})
	c.Assert(err, qt.IsNil)

	logger.Debug("resolved command", "tool", "kubectl")
	logger.Info("launching")
	c.Assert(closer.Close(), qt.IsNil)

	data, err := os.ReadFile(filepath.Join(dir, "kubectl.exe.log"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, "resolved command")
	c.Assert(string(data), qt.Contains, "tool=kubectl")
	c.Assert(string(data), qt.Contains, "launching")
}

func TestNew_RespectsLevel(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()
	logger, closer, err := logx.New(logx.Options{Dir: dir, Name: "asdfw", Level: slog.LevelWarn})
	c.Assert(err, qt.IsNil)
	logger.Info("hidden")
	logger.Warn("shown")
	c.Assert(closer.Close(), qt.IsNil)

	data, err := os.ReadFile(filepath.Join(dir, "asdfw.log"))
	c.Assert(err, qt.IsNil)
	c.Assert(strings.Contains(string(data), "hidden"), qt.IsFalse)
	c.Assert(string(data), qt.Contains, "shown")
}

func TestNew_Rotates(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()
	logger, closer, err := logx.New(logx.Options{Dir: dir, Name: "shim", Level: slog.LevelInfo, MaxSizeMB: 1, Keep: 2})
	c.Assert(err, qt.IsNil)

	// Each record is ~600 KB, so every record after the first rotates.
	big := strings.Repeat("x", 600_000)
	for _, msg := range []string{"first", "second", "third"} {
		logger.Info(msg, "payload", big)
	}
	c.Assert(closer.Close(), qt.IsNil)

	data, err := os.ReadFile(filepath.Join(dir, "shim.log"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, "third")
	c.Assert(strings.Contains(string(data), "second"), qt.IsFalse)

	backups, err := filepath.Glob(filepath.Join(dir, "shim-*.log"))
	c.Assert(err, qt.IsNil)
	c.Assert(len(backups) >= 1, qt.IsTrue, qt.Commentf("backups: %v", backups))
}

func TestNew_WritesAfterClose(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()
	logger, closer, err := logx.New(logx.Options{Dir: dir, Name: "asdfw", Level: slog.LevelInfo})
	c.Assert(err, qt.IsNil)
	logger.Info("before")
	c.Assert(closer.Close(), qt.IsNil)
	// A later record reopens the file instead of failing for good.
	logger.Info("after")
	c.Assert(closer.Close(), qt.IsNil)

	data, err := os.ReadFile(filepath.Join(dir, "asdfw.log"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, "before")
	c.Assert(string(data), qt.Contains, "after")
}

func TestParseLevel(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range cases {
		got, err := logx.ParseLevel(tc.in)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, tc.want)
	}

	_, err := logx.ParseLevel("loud")
	c.Assert(err, qt.ErrorMatches, `unknown log level "loud"`)
}

func TestVerbosityLevel(t *testing.T) {
	c := qt.New(t)
	c.Assert(logx.VerbosityLevel(slog.LevelWarn, 0), qt.Equals, slog.LevelWarn)
	c.Assert(logx.VerbosityLevel(slog.LevelWarn, 1), qt.Equals, slog.LevelInfo)
	c.Assert(logx.VerbosityLevel(slog.LevelWarn, 2), qt.Equals, slog.LevelDebug)
	c.Assert(logx.VerbosityLevel(slog.LevelWarn, 5), qt.Equals, slog.LevelDebug)
}
