// Package logx configures file logging for the asdfw binaries. Console
// streams are reserved for command output, so diagnostics only ever go to
// <logs dir>/<name>.log, which is rotated by size.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultMaxSizeMB is the size in megabytes at which the log file is
	// rotated.
	DefaultMaxSizeMB = 1
	// DefaultKeep is how many rotated files are kept.
	DefaultKeep = 6
)

// Options configures New and Setup.
type Options struct {
	Dir       string
	Name      string
	Level     slog.Level
	MaxSizeMB int
	Keep      int
}

// New returns a logger writing logfmt records to Dir/Name.log. The closer
// releases the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if opts.Name == "" {
		opts.Name = "asdfw"
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = DefaultMaxSizeMB
	}
	if opts.Keep <= 0 {
		opts.Keep = DefaultKeep
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}
	// Rotated files are named <name>-<timestamp>.log next to the live file.
	w := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, opts.Name+".log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.Keep,
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           log.Level(opts.Level),
		Prefix:          opts.Name,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	})
	return slog.New(handler), w, nil
}

// Setup installs a New logger as the slog default.
func Setup(opts Options) (io.Closer, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

// Discard routes the slog default to nowhere.
func Discard() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ParseLevel maps debug|info|warn|error to a slog level. Empty means warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
}

// VerbosityLevel lowers base by one step per -v flag, never below debug.
func VerbosityLevel(base slog.Level, verbose int) slog.Level {
	lvl := base - slog.Level(4*verbose)
	if lvl < slog.LevelDebug {
		return slog.LevelDebug
	}
	return lvl
}
