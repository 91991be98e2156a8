// Package execctx turns a shim command of a tool at a resolved version into a
// concrete executable path and environment.
package execctx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-ports/asdfw/internal/models"
	"github.com/go-ports/asdfw/internal/osenv"
	"github.com/go-ports/asdfw/internal/plugin"
)

var (
	// ErrVersionNotInstalled is returned when installs/<tool>/<version> is absent.
	ErrVersionNotInstalled = errors.New("version is not installed")
	// ErrCommandMissing is returned by callers when no bin dir of an installed
	// version contains the command.
	ErrCommandMissing = errors.New("command not found in installed version")
)

// Context is the per-invocation state needed to launch one command. It only
// exists for installed versions.
type Context struct {
	Command     string
	Plugin      *plugin.Plugin
	Version     string
	InstallRoot string
}

// New computes the install root of plugin's tool at version under
// installsDir and fails with ErrVersionNotInstalled when it is not a directory.
func New(cmd string, p *plugin.Plugin, version, installsDir string) (*Context, error) {
	root := filepath.Join(installsDir, p.Name, version)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s %s (%s): %w", p.Name, version, root, ErrVersionNotInstalled)
	}
	return &Context{Command: cmd, Plugin: p, Version: version, InstallRoot: root}, nil
}

// ExecutablePath returns the first existing install_root/bin_dir/command in
// declared bin_dirs order. ok is false when the command is absent.
func (c *Context) ExecutablePath() (path string, ok bool) {
	for _, dir := range c.Plugin.Config.BinDirs {
		candidate := filepath.Join(c.InstallRoot, dir, c.Command)
		slog.Debug("checking shim target", "path", candidate)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// Environment computes the plugin's variables in declared order. A set
// overriding variable in env wins over the configured value.
func (c *Context) Environment(env osenv.Lookup) []models.EnvPair {
	if env == nil {
		env = osenv.OS{}
	}
	out := make([]models.EnvPair, 0, len(c.Plugin.Config.EnvVars))
	for _, ev := range c.Plugin.Config.EnvVars {
		out = append(out, models.EnvPair{Name: ev.Name, Value: c.value(ev, env)})
	}
	return out
}

func (c *Context) value(ev plugin.EnvVar, env osenv.Lookup) string {
	if ev.OverridingName != "" {
		if v, ok := env.LookupEnv(ev.OverridingName); ok {
			return v
		}
	}
	if ev.Value.RelativeInstPath != nil {
		return filepath.Join(c.InstallRoot, filepath.FromSlash(*ev.Value.RelativeInstPath))
	}
	if ev.Value.Value != nil {
		return *ev.Value.Value
	}
	return ""
}
