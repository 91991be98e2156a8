// Package versions resolves which version of a tool applies in a directory by
// cascading through an environment override, per-directory .tool-versions
// files (nearest wins) and the global .tool-versions file.
package versions

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/go-ports/asdfw/internal/models"
	"github.com/go-ports/asdfw/internal/osenv"
)

// FileName is the name of local and global tool-versions files.
const FileName = ".tool-versions"

// ErrInvalidVersionsLine matches every *LineError.
var ErrInvalidVersionsLine = errors.New("invalid tool versions line")

// ErrInvalidVersion is returned when saving a version that cannot be
// represented in a tool-versions file.
var ErrInvalidVersion = errors.New("invalid version")

// LineError reports a malformed line; it invalidates the whole file read.
type LineError struct {
	Line string
}

func (e *LineError) Error() string { return fmt.Sprintf("invalid tool versions line: %q", e.Line) }

// Is makes errors.Is(err, ErrInvalidVersionsLine) match.
func (e *LineError) Is(target error) bool { return target == ErrInvalidVersionsLine }

// Record maps tool names to versions as stored in one file.
type Record map[string]string

// EnvVarName returns the per-process override variable for tool.
func EnvVarName(tool string) string {
	return "ASDFW_" + strings.ToUpper(tool) + "_VERSION"
}

// Resolver performs version lookups and updates for one working directory.
type Resolver struct {
	GlobalPath string
	CurrentDir string
	Env        osenv.Lookup
}

// New returns a Resolver. A nil env reads the real process environment.
func New(globalPath, currentDir string, env osenv.Lookup) *Resolver {
	if env == nil {
		env = osenv.OS{}
	}
	return &Resolver{GlobalPath: globalPath, CurrentDir: currentDir, Env: env}
}

// Version returns the configured version of tool. ok is false when nothing in
// the cascade configures it; that is not an error at this layer.
func (r *Resolver) Version(tool string) (version string, ok bool, err error) {
	version, _, ok, err = r.Lookup(tool)
	return version, ok, err
}

// Lookup is Version that also reports where the version came from.
func (r *Resolver) Lookup(tool string) (string, models.VersionSource, bool, error) {
	name := EnvVarName(tool)
	if v, ok := r.Env.LookupEnv(name); ok && v != "" {
		slog.Debug("version from environment", "tool", tool, "var", name, "version", v)
		return v, models.VersionSource{Kind: "env", Path: name}, true, nil
	}

	if v, path, ok, err := r.fromDirectoryTree(tool); err != nil || ok {
		return v, models.VersionSource{Kind: "local", Path: path}, ok, err
	}

	v, ok, err := searchFile(r.GlobalPath, tool)
	if err != nil {
		return "", models.VersionSource{}, false, fmt.Errorf("parsing global tool versions file: %w", err)
	}
	if ok {
		return v, models.VersionSource{Kind: "global", Path: r.GlobalPath}, true, nil
	}
	return "", models.VersionSource{}, false, nil
}

// fromDirectoryTree walks from CurrentDir up to the filesystem root and
// returns the version from the nearest file that defines tool.
func (r *Resolver) fromDirectoryTree(tool string) (string, string, bool, error) {
	dir := r.CurrentDir
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			v, ok, err := searchFile(path, tool)
			if err != nil {
				return "", path, false, fmt.Errorf("parsing local tool versions file %s: %w", path, err)
			}
			if ok {
				slog.Debug("version from local file", "tool", tool, "file", path, "version", v)
				return v, path, true, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", false, nil
		}
		dir = parent
	}
}

// SaveLocal sets tool to version in CurrentDir's .tool-versions.
func (r *Resolver) SaveLocal(tool, version string) error {
	path := filepath.Join(r.CurrentDir, FileName)
	slog.Info("setting local version", "dir", r.CurrentDir, "tool", tool, "version", version)
	if err := setToolVersion(path, tool, version); err != nil {
		return fmt.Errorf("setting local version for %s: %s: %w", tool, version, err)
	}
	return nil
}

// SaveGlobal sets tool to version in the global tool-versions file.
func (r *Resolver) SaveGlobal(tool, version string) error {
	slog.Info("setting global version", "tool", tool, "version", version)
	if err := setToolVersion(r.GlobalPath, tool, version); err != nil {
		return fmt.Errorf("setting global version for %s: %s: %w", tool, version, err)
	}
	return nil
}

// ValidateVersion checks that version can be stored in a tool-versions line.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%w: empty", ErrInvalidVersion)
	}
	if strings.ContainsFunc(version, unicode.IsSpace) {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidVersion, version)
	}
	return nil
}

func validateTool(tool string) error {
	if tool == "" || strings.ContainsFunc(tool, unicode.IsSpace) {
		return fmt.Errorf("invalid tool name %q", tool)
	}
	return nil
}

func setToolVersion(path, tool, version string) error {
	if err := validateTool(tool); err != nil {
		return err
	}
	if err := ValidateVersion(version); err != nil {
		return err
	}
	rec, err := LoadFile(path)
	if err != nil {
		return err
	}
	if _, ok := rec[tool]; ok {
		slog.Debug("updating tool version", "tool", tool, "file", path)
	} else {
		slog.Debug("adding tool version", "tool", tool, "file", path)
	}
	rec[tool] = version
	return SaveFile(path, rec)
}

// LoadFile reads a whole tool-versions file. A missing file is an empty record.
func LoadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("tool versions file does not exist", "path", path)
		return make(Record), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tool versions from %s: %w", path, err)
	}
	rec := make(Record)
	err = eachLine(data, func(tool, version string) bool {
		rec[tool] = version
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("reading tool versions from %s: %w", path, err)
	}
	return rec, nil
}

// SaveFile rewrites path with rec, one CRLF-terminated "<tool> <version>"
// line per entry in tool order.
func SaveFile(path string, rec Record) error {
	tools := make([]string, 0, len(rec))
	for t := range rec {
		tools = append(tools, t)
	}
	sort.Strings(tools)

	var buf bytes.Buffer
	for _, t := range tools {
		buf.WriteString(t)
		buf.WriteByte(' ')
		buf.WriteString(rec[t])
		buf.WriteString("\r\n")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("saving tool versions to %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil { // #nosec G306 -- version pins are not secret
		return fmt.Errorf("saving tool versions to %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("saving tool versions to %s: %w", path, err)
	}
	return nil
}

// searchFile returns the version of tool in path. A missing file is not an
// error. Every line is validated, so one malformed line fails the read even
// when the tool appears earlier in the file.
func searchFile(path, tool string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var found string
	var ok bool
	err = eachLine(data, func(t, v string) bool {
		if t == tool && !ok {
			found, ok = v, true
		}
		return true
	})
	if err != nil {
		return "", false, err
	}
	return found, ok, nil
}

// eachLine parses data line by line and calls fn until it returns false.
func eachLine(data []byte, fn func(tool, version string) bool) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		tool, version, err := ParseLine(line)
		if err != nil {
			return err
		}
		if !fn(tool, version) {
			return nil
		}
	}
	return sc.Err()
}

// ParseLine splits a "<tool> <version>" line on its first space. Both halves
// must be non-empty and the version must not contain whitespace.
func ParseLine(line string) (tool, version string, err error) {
	tool, version, found := strings.Cut(line, " ")
	if !found || tool == "" || version == "" {
		return "", "", &LineError{Line: line}
	}
	if strings.ContainsFunc(version, unicode.IsSpace) {
		return "", "", &LineError{Line: line}
	}
	return tool, version, nil
}
