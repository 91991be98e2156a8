// Package plugin loads per-tool plugin configuration: where a tool's binaries
// live inside an installed version and which extra environment variables its
// executables need.
package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the plugin configuration file inside a plugin directory.
const FileName = "plugin.yaml"

// DefaultBinDir is used when a plugin declares no bin_dirs.
const DefaultBinDir = "bin"

// ErrConfigParse is returned when a plugin.yaml document is malformed.
var ErrConfigParse = errors.New("invalid plugin config")

// EnvValue is either a literal value or a path relative to the install root.
// Exactly one field must be set.
type EnvValue struct {
	Value            *string `yaml:"value"`
	RelativeInstPath *string `yaml:"relative_inst_path"`
}

// EnvVar declares an environment variable exported to the tool's executables.
type EnvVar struct {
	Name  string   `yaml:"name"`
	Value EnvValue `yaml:"value"`
	// OverridingName names a variable that, when set in the calling
	// process, supplies the value instead.
	OverridingName string `yaml:"overriding_name"`
}

// Config is a resolved plugin configuration. BinDirs is never empty.
type Config struct {
	BinDirs []string `yaml:"bin_dirs"`
	EnvVars []EnvVar `yaml:"env_vars"`
}

// Default returns the configuration of a tool without a plugin.yaml.
func Default() *Config {
	return &Config{BinDirs: []string{DefaultBinDir}, EnvVars: make([]EnvVar, 0)}
}

// Plugin is the configuration of one tool.
type Plugin struct {
	Name   string
	Dir    string
	Config *Config
}

// Load reads the plugin configuration of tool from dir. A missing file yields
// Default(); a malformed one fails with ErrConfigParse.
func Load(tool, dir string) (*Plugin, error) {
	p := &Plugin{Name: tool, Dir: dir}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		p.Config = Default()
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening plugin config for %q: %w", tool, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing plugin config for %q: %w: %w", tool, ErrConfigParse, err)
	}
	p.Config = cfg
	return p, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if len(cfg.BinDirs) == 0 {
		cfg.BinDirs = []string{DefaultBinDir}
	}
	for i, d := range cfg.BinDirs {
		if d == "" {
			return nil, fmt.Errorf("bin_dirs[%d] is empty", i)
		}
		cfg.BinDirs[i] = filepath.FromSlash(d)
	}
	if cfg.EnvVars == nil {
		cfg.EnvVars = make([]EnvVar, 0)
	}
	for i, ev := range cfg.EnvVars {
		if ev.Name == "" {
			return nil, fmt.Errorf("env_vars[%d]: name is required", i)
		}
		if (ev.Value.Value == nil) == (ev.Value.RelativeInstPath == nil) {
			return nil, fmt.Errorf("env_vars[%d] (%s): exactly one of value.value or value.relative_inst_path is required", i, ev.Name)
		}
	}
	return &cfg, nil
}

// Manager finds plugins under a plugins root directory (one subdirectory per tool).
type Manager struct {
	root string
}

// NewManager returns a Manager rooted at pluginsDir.
func NewManager(pluginsDir string) *Manager {
	return &Manager{root: pluginsDir}
}

// Get loads the plugin for tool. Configuration is read fresh on every call.
func (m *Manager) Get(tool string) (*Plugin, error) {
	return Load(tool, filepath.Join(m.root, tool))
}
