// Package config resolves the asdfw app directory, the runtime paths derived
// from it, and the per-app settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-ports/asdfw/internal/models"
	"github.com/go-ports/asdfw/internal/versions"
)

// HomeEnv overrides the app directory.
const HomeEnv = "ASDFW_HOME"

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// ExtensionConfig is one entry of the shimmable extension table.
type ExtensionConfig struct {
	Ext  string `yaml:"ext"`
	Kind string `yaml:"kind"` // "native" | "script"
}

// Settings is the per-app config.yaml.
type Settings struct {
	ShimExe    string            `yaml:"shim_exe"`
	Helper     string            `yaml:"helper"`
	Extensions []ExtensionConfig `yaml:"extensions"`
	LogLevel   string            `yaml:"log_level"`
}

// Default returns Settings populated with defaults.
func Default() *Settings {
	exts := make([]ExtensionConfig, 0, len(models.DefaultExtensions))
	for _, e := range models.DefaultExtensions {
		exts = append(exts, ExtensionConfig{Ext: e.Ext, Kind: e.Kind.String()})
	}
	return &Settings{
		Helper:     "asdfw",
		Extensions: exts,
		LogLevel:   "warn",
	}
}

// Load reads config.yaml from path.
// If the file does not exist it returns Default() with no error.
// Missing keys retain their default values.
func Load(path string) (*Settings, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var raw struct {
		ShimExe    *string           `yaml:"shim_exe"`
		Helper     *string           `yaml:"helper"`
		Extensions []ExtensionConfig `yaml:"extensions"`
		LogLevel   *string           `yaml:"log_level"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if raw.ShimExe != nil {
		cfg.ShimExe = strings.TrimSpace(*raw.ShimExe)
	}
	if raw.Helper != nil && strings.TrimSpace(*raw.Helper) != "" {
		cfg.Helper = strings.TrimSpace(*raw.Helper)
	}
	if len(raw.Extensions) > 0 {
		cfg.Extensions = raw.Extensions
	}
	if raw.LogLevel != nil && *raw.LogLevel != "" {
		cfg.LogLevel = *raw.LogLevel
	}
	if _, err := cfg.ExtensionTable(); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ExtensionTable converts Extensions into the table used by the scanner.
// Extensions are normalised to a leading dot.
func (s *Settings) ExtensionTable() ([]models.Extension, error) {
	out := make([]models.Extension, 0, len(s.Extensions))
	for i, e := range s.Extensions {
		ext := strings.TrimSpace(e.Ext)
		if ext == "" || ext == "." {
			return nil, fmt.Errorf("extensions[%d]: ext is required", i)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		kind, err := models.ParseShimKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("extensions[%d] (%s): %w", i, ext, err)
		}
		out = append(out, models.Extension{Ext: ext, Kind: kind})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Runtime paths
// ---------------------------------------------------------------------------

// Runtime is every path asdfw reads or writes, resolved once per invocation.
type Runtime struct {
	AppDir     string
	HomeSource string // "flag" | "env" | "config" | "default"
	HomeDir    string
	CurrentDir string

	ShimsDB            string
	InstallsDir        string
	ShimsDir           string
	PluginsDir         string
	LogsDir            string
	LockFile           string
	ShimExe            string
	GlobalToolVersions string
	SettingsPath       string

	Settings *Settings
}

// NewRuntime resolves the app directory (flagHome wins when non-empty),
// derives the runtime paths and loads the settings file.
func NewRuntime(flagHome string) (*Runtime, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving current directory: %w", err)
	}

	appDir, source := ResolveHome(flagHome)
	settingsPath := filepath.Join(appDir, "config.yaml")
	settings, err := Load(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	shimExe := filepath.Join(appDir, "bin", "asdfw-shim"+exeSuffix())
	if settings.ShimExe != "" {
		if shimExe, err = normalizePath(settings.ShimExe); err != nil {
			return nil, fmt.Errorf("resolving shim_exe: %w", err)
		}
	}

	return &Runtime{
		AppDir:             appDir,
		HomeSource:         source,
		HomeDir:            home,
		CurrentDir:         cwd,
		ShimsDB:            filepath.Join(appDir, "shims.db"),
		InstallsDir:        filepath.Join(appDir, "installs"),
		ShimsDir:           filepath.Join(appDir, "shims"),
		PluginsDir:         filepath.Join(appDir, "plugins"),
		LogsDir:            filepath.Join(appDir, "logs"),
		LockFile:           filepath.Join(appDir, "reshim.lock"),
		ShimExe:            shimExe,
		GlobalToolVersions: filepath.Join(home, versions.FileName),
		SettingsPath:       settingsPath,
		Settings:           settings,
	}, nil
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// ---------------------------------------------------------------------------
// App home resolution
// ---------------------------------------------------------------------------

// globalConfigPath returns the path to the global asdfw config file.
// This file stores only asdfw_home.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "asdfw", "config.yaml"), nil
}

// normalizePath expands ~ and makes the path absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// ResolveHome returns the app directory and the source of the resolution.
// Priority: flag → ASDFW_HOME env → persisted global config → ~/.asdfw.
func ResolveHome(flagHome string) (path, source string) {
	if flagHome != "" {
		if p, err := normalizePath(flagHome); err == nil {
			return p, "flag"
		}
	}
	if env := os.Getenv(HomeEnv); env != "" {
		if p, err := normalizePath(env); err == nil {
			return p, "env"
		}
	}
	if persisted, ok, _ := GetPersistedHome(); ok {
		return persisted, "config"
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".asdfw"), "default"
}

// GetPersistedHome reads asdfw_home from the global config.
// Returns ("", false, nil) if not set.
func GetPersistedHome() (string, bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", false, nil
	}

	val, _ := raw["asdfw_home"].(string)
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false, nil
	}

	p, err := normalizePath(val)
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

// SetPersistedHome normalizes path and persists it in the global config,
// preserving other keys. Returns the normalized path.
func SetPersistedHome(path string) (string, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}

	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", err
	}

	var raw map[string]any
	if data, err := os.ReadFile(cfgPath); err == nil {
		_ = yaml.Unmarshal(data, &raw)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	raw["asdfw_home"] = normalized

	out, err := yaml.Marshal(raw)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(cfgPath, out, 0o600); err != nil {
		return "", err
	}
	return normalized, nil
}

// ClearPersistedHome removes asdfw_home from the global config.
// Returns true if the key was present and removed.
// If the file becomes empty after removal it is deleted.
func ClearPersistedHome() (bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false, nil
	}

	if _, ok := raw["asdfw_home"]; !ok {
		return false, nil
	}
	delete(raw, "asdfw_home")

	if len(raw) == 0 {
		_ = os.Remove(cfgPath)
		return true, nil
	}

	out, err := yaml.Marshal(raw)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(cfgPath, out, 0o600)
}
