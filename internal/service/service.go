// Package service implements the asdfw orchestrator that wires together the
// runtime configuration, the shim database, plugins, version resolution and
// the process launcher.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/go-ports/asdfw/internal/config"
	"github.com/go-ports/asdfw/internal/db"
	"github.com/go-ports/asdfw/internal/execctx"
	"github.com/go-ports/asdfw/internal/launcher"
	"github.com/go-ports/asdfw/internal/lock"
	"github.com/go-ports/asdfw/internal/models"
	"github.com/go-ports/asdfw/internal/osenv"
	"github.com/go-ports/asdfw/internal/plugin"
	"github.com/go-ports/asdfw/internal/redaction"
	"github.com/go-ports/asdfw/internal/shims"
	"github.com/go-ports/asdfw/internal/versions"
)

var (
	// ErrShimNotFound is returned when a command matches no shim, exactly or
	// by extension.
	ErrShimNotFound = errors.New("shim not found")
	// ErrToolNotConfigured is returned when a shim has no owning tool in the
	// database.
	ErrToolNotConfigured = errors.New("no tool owns this shim")
	// ErrVersionNotConfigured is returned when the version cascade finds nothing.
	ErrVersionNotConfigured = errors.New("no version configured")
)

// Service orchestrates all asdfw operations for one invocation.
type Service struct {
	Runtime *config.Runtime
	// Env is consulted for version and plugin overrides. Defaults to the
	// process environment.
	Env osenv.Lookup
	// Launcher runs resolved commands. Defaults to launcher.OS{}.
	Launcher launcher.Launcher

	store          *db.Store
	plugins        *plugin.Manager
	extensions     []models.Extension
	ignorePatterns []*regexp.Regexp
	mu             sync.Mutex
}

// New returns a Service over rt.
func New(rt *config.Runtime) (*Service, error) {
	exts, err := rt.Settings.ExtensionTable()
	if err != nil {
		return nil, fmt.Errorf("service.New: %w", err)
	}
	return &Service{
		Runtime:    rt,
		Env:        osenv.OS{},
		Launcher:   launcher.OS{},
		store:      db.New(rt.ShimsDB),
		plugins:    plugin.NewManager(rt.PluginsDir),
		extensions: exts,
	}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Service) versions() *versions.Resolver {
	return versions.New(s.Runtime.GlobalToolVersions, s.Runtime.CurrentDir, s.Env)
}

func (s *Service) shims() (*shims.Shims, error) {
	return shims.New(shims.Options{
		Store:       s.store,
		InstallsDir: s.Runtime.InstallsDir,
		ShimsDir:    s.Runtime.ShimsDir,
		ShimExe:     s.Runtime.ShimExe,
		Helper:      s.Runtime.Settings.Helper,
		Plugins:     s.plugins,
		Extensions:  s.extensions,
	})
}

// getIgnorePatterns returns extra redaction patterns, lazily loaded from
// <app_dir>/.redactignore.
func (s *Service) getIgnorePatterns() []*regexp.Regexp {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ignorePatterns != nil {
		return s.ignorePatterns
	}
	patterns, err := redaction.LoadIgnore(filepath.Join(s.Runtime.AppDir, redaction.IgnoreFileName))
	if err != nil {
		slog.Warn("failed to load redaction ignore file", "err", err)
	}
	if patterns == nil {
		patterns = make([]*regexp.Regexp, 0)
	}
	s.ignorePatterns = patterns
	return patterns
}

// installedTools lists the tool directories under installs/, sorted.
func (s *Service) installedTools() ([]string, error) {
	entries, err := os.ReadDir(s.Runtime.InstallsDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading installs directory: %w", err)
	}
	var tools []string
	for _, e := range entries {
		if e.IsDir() {
			tools = append(tools, e.Name())
		}
	}
	return tools, nil
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// Resolve maps an invoked command name to the executable and environment of
// the configured version of its owning tool.
func (s *Service) Resolve(cmd string) (*models.Resolution, error) {
	sh, err := s.shims()
	if err != nil {
		return nil, fmt.Errorf("resolving command %s: %w", cmd, err)
	}
	name, ok, err := sh.ResolveCommand(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolving command %s: %w", cmd, err)
	}
	if !ok {
		return nil, fmt.Errorf("resolving command %s: %w", cmd, ErrShimNotFound)
	}
	tool, ok, err := sh.FindTool(name)
	if err != nil {
		return nil, fmt.Errorf("resolving command %s: %w", cmd, err)
	}
	if !ok {
		return nil, fmt.Errorf("resolving command %s: %w", name, ErrToolNotConfigured)
	}
	slog.Debug("shim resolved", "command", cmd, "shim", name, "tool", tool)
	return s.ResolveWithTool(name, tool)
}

// ResolveWithTool resolves cmd as a command of tool, skipping the database.
func (s *Service) ResolveWithTool(cmd, tool string) (*models.Resolution, error) {
	p, err := s.plugins.Get(tool)
	if err != nil {
		return nil, fmt.Errorf("resolving command %s: %w", cmd, err)
	}
	version, ok, err := s.versions().Version(tool)
	if err != nil {
		return nil, fmt.Errorf("resolving version of %s: %w", tool, err)
	}
	if !ok {
		return nil, fmt.Errorf("resolving command %s: %s: %w", cmd, tool, ErrVersionNotConfigured)
	}
	ctx, err := execctx.New(cmd, p, version, s.Runtime.InstallsDir)
	if err != nil {
		return nil, fmt.Errorf("resolving command %s: %w", cmd, err)
	}
	path, ok := ctx.ExecutablePath()
	if !ok {
		return nil, fmt.Errorf("resolving command %s: %s %s: %w", cmd, tool, version, execctx.ErrCommandMissing)
	}
	env := ctx.Environment(s.Env)
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		for _, pair := range redaction.EnvPairs(env, s.getIgnorePatterns()) {
			slog.Debug("plugin environment", "tool", tool, "var", pair.String())
		}
	}
	return &models.Resolution{
		Command:     cmd,
		Tool:        tool,
		Version:     version,
		InstallRoot: ctx.InstallRoot,
		Path:        path,
		Env:         env,
	}, nil
}

// resolve dispatches on whether the caller pinned the tool.
func (s *Service) resolve(cmd, tool string) (*models.Resolution, error) {
	if tool != "" {
		return s.ResolveWithTool(cmd, tool)
	}
	return s.Resolve(cmd)
}

// Which returns the executable path cmd resolves to.
func (s *Service) Which(cmd string) (string, error) {
	return s.WhichWithTool(cmd, "")
}

// WhichWithTool is Which for a known owning tool. An empty tool falls back
// to the database lookup.
func (s *Service) WhichWithTool(cmd, tool string) (string, error) {
	res, err := s.resolve(cmd, tool)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// Exec resolves cmd and runs it with args, returning the child's exit code.
// tool may be empty.
func (s *Service) Exec(cmd, tool string, args []string) (int, error) {
	res, err := s.resolve(cmd, tool)
	if err != nil {
		return 1, err
	}
	slog.Info("executing", "command", cmd, "tool", res.Tool, "version", res.Version, "path", res.Path)
	return s.Launcher.Run(launcher.Process{
		Path: res.Path,
		Args: args,
		Env:  launcher.Environ(os.Environ(), res.Env),
	})
}

// Environment returns the plugin environment cmd would run with, secrets
// redacted.
func (s *Service) Environment(cmd, tool string) ([]models.EnvPair, error) {
	res, err := s.resolve(cmd, tool)
	if err != nil {
		return nil, err
	}
	return redaction.EnvPairs(res.Env, s.getIgnorePatterns()), nil
}

// ---------------------------------------------------------------------------
// Shims
// ---------------------------------------------------------------------------

// Reshim rebuilds the shim database from the installs tree and writes the
// shims directory, wiping it first when cleanup is set. Concurrent rebuilds
// are serialised with a file lock where the platform supports one. It
// returns the number of shims.
func (s *Service) Reshim(cleanup bool) (int, error) {
	lk, err := lock.Acquire(s.Runtime.LockFile)
	switch {
	case errors.Is(err, lock.ErrUnavailable):
		slog.Warn("reshim running without lock", "err", err)
	case err != nil:
		return 0, fmt.Errorf("reshim: %w", err)
	}
	defer lk.Release()

	sh, err := s.shims()
	if err != nil {
		return 0, fmt.Errorf("reshim: %w", err)
	}
	shimDB, err := sh.Generate()
	if err != nil {
		return 0, fmt.Errorf("reshim: generating shims database: %w", err)
	}
	if err := s.store.Save(shimDB); err != nil {
		return 0, fmt.Errorf("reshim: %w", err)
	}
	if err := sh.CreateShims(cleanup); err != nil {
		return 0, fmt.Errorf("reshim: %w", err)
	}
	slog.Info("reshim complete", "shims", len(shimDB), "cleanup", cleanup)
	return len(shimDB), nil
}

// ShimEntries returns the persisted shim database sorted by command.
func (s *Service) ShimEntries() ([]models.ShimRecord, error) {
	shimDB, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("listing shims: %w", err)
	}
	return shimDB.Sorted(), nil
}

// ---------------------------------------------------------------------------
// Versions
// ---------------------------------------------------------------------------

// Current returns the version selected for tool and where it came from.
// Version is empty when nothing configures the tool.
func (s *Service) Current(tool string) (models.ToolVersion, error) {
	v, src, ok, err := s.versions().Lookup(tool)
	if err != nil {
		return models.ToolVersion{}, fmt.Errorf("current version of %s: %w", tool, err)
	}
	if !ok {
		return models.ToolVersion{Tool: tool}, nil
	}
	return models.ToolVersion{Tool: tool, Version: v, Source: src}, nil
}

// CurrentAll returns Current for every installed tool in name order.
func (s *Service) CurrentAll() ([]models.ToolVersion, error) {
	tools, err := s.installedTools()
	if err != nil {
		return nil, err
	}
	out := make([]models.ToolVersion, 0, len(tools))
	for _, tool := range tools {
		tv, err := s.Current(tool)
		if err != nil {
			return nil, err
		}
		out = append(out, tv)
	}
	return out, nil
}

// SetLocal pins tool to version in the current directory's tool-versions file.
func (s *Service) SetLocal(tool, version string) error {
	return s.versions().SaveLocal(tool, version)
}

// SetGlobal pins tool to version in the global tool-versions file.
func (s *Service) SetGlobal(tool, version string) error {
	return s.versions().SaveGlobal(tool, version)
}

// ListInstalled returns the installed versions of tool, or of every tool
// when tool is empty.
func (s *Service) ListInstalled(tool string) ([]models.InstalledTool, error) {
	tools := []string{tool}
	if tool == "" {
		var err error
		if tools, err = s.installedTools(); err != nil {
			return nil, err
		}
	}
	out := make([]models.InstalledTool, 0, len(tools))
	for _, t := range tools {
		entries, err := os.ReadDir(filepath.Join(s.Runtime.InstallsDir, t))
		if errors.Is(err, os.ErrNotExist) {
			out = append(out, models.InstalledTool{Tool: t, Versions: []string{}})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("listing versions of %s: %w", t, err)
		}
		vs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() {
				vs = append(vs, e.Name())
			}
		}
		sort.Strings(vs)
		out = append(out, models.InstalledTool{Tool: t, Versions: vs})
	}
	return out, nil
}

// Where returns the install root of tool at version, or at its current
// version when version is empty.
func (s *Service) Where(tool, version string) (string, error) {
	if version == "" {
		v, ok, err := s.versions().Version(tool)
		if err != nil {
			return "", fmt.Errorf("where %s: %w", tool, err)
		}
		if !ok {
			return "", fmt.Errorf("where %s: %w", tool, ErrVersionNotConfigured)
		}
		version = v
	}
	p, err := s.plugins.Get(tool)
	if err != nil {
		return "", fmt.Errorf("where %s: %w", tool, err)
	}
	ctx, err := execctx.New("", p, version, s.Runtime.InstallsDir)
	if err != nil {
		return "", fmt.Errorf("where %s: %w", tool, err)
	}
	return ctx.InstallRoot, nil
}
