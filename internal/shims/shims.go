// Package shims builds the shim database from the installation tree and
// materialises the shim stubs it describes.
package shims

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ports/asdfw/internal/db"
	"github.com/go-ports/asdfw/internal/models"
	"github.com/go-ports/asdfw/internal/plugin"
)

var (
	// ErrInstallRootMissing is returned when the installs directory does not
	// exist or is not a directory.
	ErrInstallRootMissing = errors.New("tools install dir is not an existing directory")
	// ErrShimConflict matches every *ConflictError.
	ErrShimConflict = errors.New("shim conflict")
)

// ConflictError reports a command name produced by two different tools.
type ConflictError struct {
	Command string
	First   string
	Second  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%q appears in two tools: %s and %s", e.Command, e.First, e.Second)
}

// Is makes errors.Is(err, ErrShimConflict) match.
func (e *ConflictError) Is(target error) bool { return target == ErrShimConflict }

// Options configures a Shims instance.
type Options struct {
	Store       *db.Store
	InstallsDir string
	ShimsDir    string
	// ShimExe is the generic launcher copied for native shims.
	ShimExe string
	// Helper is the command script wrappers call to resolve their target.
	Helper     string
	Plugins    *plugin.Manager
	Extensions []models.Extension
}

// Shims scans installed tools and manages the shims directory.
type Shims struct {
	store       *db.Store
	installsDir string
	shimsDir    string
	shimExe     string
	helper      string
	plugins     *plugin.Manager
	extensions  []models.Extension
}

// New validates opts and returns a Shims. The installs directory must exist.
func New(opts Options) (*Shims, error) {
	info, err := os.Stat(opts.InstallsDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("shims.New %s: %w", opts.InstallsDir, ErrInstallRootMissing)
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = models.DefaultExtensions
	}
	helper := opts.Helper
	if helper == "" {
		helper = "asdfw"
	}
	return &Shims{
		store:       opts.Store,
		installsDir: opts.InstallsDir,
		shimsDir:    opts.ShimsDir,
		shimExe:     opts.ShimExe,
		helper:      helper,
		plugins:     opts.Plugins,
		extensions:  exts,
	}, nil
}

// ---------------------------------------------------------------------------
// Lookup
// ---------------------------------------------------------------------------

// ResolveCommand maps a raw command name to the name of an existing shim
// file. The exact name wins; otherwise each known extension is appended in
// table order. ok is false when no shim matches.
func (s *Shims) ResolveCommand(raw string) (name string, ok bool, err error) {
	entries, err := os.ReadDir(s.shimsDir)
	if err != nil {
		return "", false, fmt.Errorf("reading shims directory: %w", err)
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Name()] = true
	}
	if present[raw] {
		return raw, true, nil
	}
	for _, ext := range s.extensions {
		if present[raw+ext.Ext] {
			slog.Debug("resolved command by extension", "command", raw, "shim", raw+ext.Ext)
			return raw + ext.Ext, true, nil
		}
	}
	return "", false, nil
}

// FindTool returns the tool owning cmd in the persisted database.
func (s *Shims) FindTool(cmd string) (string, bool, error) {
	return s.store.FindTool(cmd)
}

// kindFor returns the shim kind required by name's extension.
func (s *Shims) kindFor(name string) (models.ShimKind, bool) {
	ext := filepath.Ext(name)
	if ext == "" {
		return 0, false
	}
	for _, e := range s.extensions {
		if strings.EqualFold(e.Ext, ext) {
			return e.Kind, true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Scanner
// ---------------------------------------------------------------------------

// Generate rebuilds the shim database from every installed tool version.
// The result is complete and independent of any previously saved database.
func (s *Shims) Generate() (models.ShimDB, error) {
	out := make(models.ShimDB)

	tools, err := os.ReadDir(s.installsDir)
	if err != nil {
		return nil, fmt.Errorf("scanning installs: %w", err)
	}
	for _, t := range tools {
		if !t.IsDir() {
			continue
		}
		tool := t.Name()
		if err := s.scanTool(tool, out); err != nil {
			return nil, err
		}
	}
	slog.Info("generated shim database", "shims", len(out))
	return out, nil
}

func (s *Shims) scanTool(tool string, out models.ShimDB) error {
	toolDir := filepath.Join(s.installsDir, tool)
	versions, err := os.ReadDir(toolDir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", tool, err)
	}

	var p *plugin.Plugin
	for _, v := range versions {
		if !isDir(filepath.Join(toolDir, v.Name())) {
			continue
		}
		if p == nil {
			if p, err = s.plugins.Get(tool); err != nil {
				return fmt.Errorf("loading plugin for %s: %w", tool, err)
			}
		}
		for _, binDir := range p.Config.BinDirs {
			dir := filepath.Join(toolDir, v.Name(), binDir)
			if err := s.scanBinDir(tool, dir, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Shims) scanBinDir(tool, dir string, out models.ShimDB) error {
	files, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("bin dir missing, skipping", "tool", tool, "dir", dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		kind, ok := s.kindFor(name)
		if !ok {
			continue
		}
		if prev, exists := out[name]; exists {
			if prev.Tool != tool {
				return &ConflictError{Command: name, First: prev.Tool, Second: tool}
			}
			continue
		}
		out[name] = models.ShimEntry{Tool: tool, Kind: kind}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ---------------------------------------------------------------------------
// Installer
// ---------------------------------------------------------------------------

// CreateShims writes a shim for every database entry. With cleanup the shims
// directory is wiped first; otherwise files not in the database are left in
// place.
func (s *Shims) CreateShims(cleanup bool) error {
	if cleanup {
		slog.Debug("resetting shims directory", "dir", s.shimsDir)
		if err := os.RemoveAll(s.shimsDir); err != nil {
			return fmt.Errorf("cleaning up shims directory: %w", err)
		}
	}
	if err := os.MkdirAll(s.shimsDir, 0o755); err != nil {
		return fmt.Errorf("creating shims directory: %w", err)
	}

	entries, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("creating shims: %w", err)
	}
	for _, r := range entries.Sorted() {
		target := filepath.Join(s.shimsDir, r.Command)
		slog.Debug("creating shim", "command", r.Command, "tool", r.Tool, "kind", r.Kind)
		switch r.Kind {
		case models.ScriptWrapper:
			content := ScriptContent(s.helper, r.Command, r.Tool)
			if err := os.WriteFile(target, []byte(content), 0o755); err != nil { // #nosec G306 -- shims must be executable
				return fmt.Errorf("creating shim for %q: %w", r.Command, err)
			}
		default:
			if err := copyFile(s.shimExe, target); err != nil {
				return fmt.Errorf("creating shim for %q: %w", r.Command, err)
			}
		}
	}
	return nil
}

// ScriptContent returns the command script written for a script-wrapper
// shim. It asks helper for the real target and fails with exit code 1 when
// nothing is printed.
func ScriptContent(helper, cmd, tool string) string {
	lines := []string{
		"@ECHO OFF",
		"",
		"SETLOCAL",
		"",
		fmt.Sprintf(`FOR /F "delims=" %%%%F IN ('CALL %s which --tool "%s" "%s"') DO (`, helper, tool, cmd),
		"    SET commandToRun=%%F",
		")",
		"",
		`if "%commandToRun%" == "" (`,
		"    exit 1",
		")",
		"",
		`"%commandToRun%" %*`,
		"",
	}
	return strings.Join(lines, "\r\n")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755) // #nosec G302 -- shims must be executable
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
