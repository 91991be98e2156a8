// Package models defines the core data types shared by the shim, version and
// execution layers.
package models

import (
	"fmt"
	"sort"
	"strings"
)

// ShimKind describes how a shim is materialised in the shims directory.
type ShimKind int

const (
	// NativeCopy shims are byte-for-byte copies of the generic launcher.
	NativeCopy ShimKind = iota
	// ScriptWrapper shims are generated command scripts that call a helper
	// process to resolve the real target (used for .cmd/.bat).
	ScriptWrapper
)

// String returns the persisted name of the kind.
func (k ShimKind) String() string {
	switch k {
	case NativeCopy:
		return "native"
	case ScriptWrapper:
		return "script"
	default:
		return fmt.Sprintf("ShimKind(%d)", int(k))
	}
}

// ParseShimKind is the inverse of ShimKind.String.
func ParseShimKind(s string) (ShimKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native":
		return NativeCopy, nil
	case "script":
		return ScriptWrapper, nil
	default:
		return 0, fmt.Errorf("unknown shim kind %q", s)
	}
}

// ShimEntry records which tool owns a shim command and how the shim is built.
type ShimEntry struct {
	Tool string
	Kind ShimKind
}

// ShimDB maps a shim command name (file name, including extension) to its entry.
type ShimDB map[string]ShimEntry

// ShimRecord is a ShimDB entry flattened for listing.
type ShimRecord struct {
	Command string
	Tool    string
	Kind    ShimKind
}

// Sorted returns the entries ordered by command name.
func (db ShimDB) Sorted() []ShimRecord {
	out := make([]ShimRecord, 0, len(db))
	for cmd, e := range db {
		out = append(out, ShimRecord{Command: cmd, Tool: e.Tool, Kind: e.Kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Command < out[j].Command })
	return out
}

// Extension maps a file extension (with leading dot) to the shim kind it needs.
type Extension struct {
	Ext  string
	Kind ShimKind
}

// DefaultExtensions is the shimmable extension table used when the settings
// file does not provide one. Order matters for extension-fallback lookups.
var DefaultExtensions = []Extension{
	{Ext: ".exe", Kind: NativeCopy},
	{Ext: ".cmd", Kind: ScriptWrapper},
	{Ext: ".bat", Kind: ScriptWrapper},
}

// EnvPair is one computed environment variable for a launched process.
type EnvPair struct {
	Name  string
	Value string
}

// String renders the pair in NAME=value form.
func (p EnvPair) String() string { return p.Name + "=" + p.Value }

// Resolution is the outcome of resolving a shim command to a launchable binary.
type Resolution struct {
	Command     string
	Tool        string
	Version     string
	InstallRoot string
	Path        string
	Env         []EnvPair
}

// VersionSource tells where a resolved version came from.
type VersionSource struct {
	Kind string // "env" | "local" | "global"
	Path string // file path for local/global, variable name for env
}

// String renders the source for display.
func (s VersionSource) String() string {
	if s.Path == "" {
		return s.Kind
	}
	return s.Kind + ":" + s.Path
}

// ToolVersion is a tool with its currently selected version.
type ToolVersion struct {
	Tool    string
	Version string // empty when not configured
	Source  VersionSource
}

// InstalledTool lists the installed versions of one tool.
type InstalledTool struct {
	Tool     string
	Versions []string // sorted
}
