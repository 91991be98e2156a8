// Package setup wires asdfw into the user's environment: the shims directory
// onto the shell PATH, and the asdfw MCP server into supported coding agents
// (Claude Code, Cursor, Codex, OpenCode).
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// serverName is the key asdfw registers under in agent MCP configs.
const serverName = "asdfw"

// Result is the return value from all Setup/Uninstall functions.
type Result struct {
	Status  string // "ok" | "error"
	Message string
}

func ok(msg string) Result          { return Result{Status: "ok", Message: msg} }
func okf(f string, a ...any) Result { return ok(fmt.Sprintf(f, a...)) }
func fail(err error) Result         { return Result{Status: "error", Message: err.Error()} }

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Status == "ok" }

func mcpEntry(helper string) map[string]any {
	return map[string]any{
		"command": helper,
		"args":    []any{"mcp"},
		"type":    "stdio",
	}
}

func opencodeEntry(helper string) map[string]any {
	return map[string]any{
		"type":    "local",
		"command": []any{helper, "mcp"},
	}
}

// ---------------------------------------------------------------------------
// Default path helpers
// ---------------------------------------------------------------------------

func homeDir(parts ...string) string {
	home, _ := os.UserHomeDir()
	return filepath.Join(append([]string{home}, parts...)...)
}

// DefaultClaudeHome returns the default ~/.claude directory.
func DefaultClaudeHome() string { return homeDir(".claude") }

// DefaultCursorHome returns the default ~/.cursor directory.
func DefaultCursorHome() string { return homeDir(".cursor") }

// DefaultCodexHome returns the default ~/.codex directory.
func DefaultCodexHome() string { return homeDir(".codex") }

// DefaultOpencodeHome returns the default ~/.config/opencode directory.
func DefaultOpencodeHome() string { return homeDir(".config", "opencode") }

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func readJSON(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(map[string]any)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]any)
	}
	return m
}

func writeJSON(path string, data map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644) // #nosec G306 -- agent config files (MCP server entries) do not contain secrets
}

// addJSONServer sets data[key][serverName] = entry unless already present.
func addJSONServer(path, key string, entry map[string]any) (bool, error) {
	data := readJSON(path)
	servers, _ := data[key].(map[string]any)
	if servers == nil {
		servers = make(map[string]any)
		data[key] = servers
	}
	if _, exists := servers[serverName]; exists {
		return false, nil
	}
	servers[serverName] = entry
	return true, writeJSON(path, data)
}

// removeJSONServer deletes data[key][serverName], dropping the emptied
// parent key and deleting the file when nothing else remains.
func removeJSONServer(path, key string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	data := readJSON(path)
	servers, _ := data[key].(map[string]any)
	if _, exists := servers[serverName]; !exists {
		return false, nil
	}
	delete(servers, serverName)
	if len(servers) == 0 {
		delete(data, key)
	}
	if len(data) == 0 {
		return true, os.Remove(path)
	}
	return true, writeJSON(path, data)
}

// ---------------------------------------------------------------------------
// TOML helpers (edits are text-based to keep the user's comments and layout;
// only the [mcp_servers.asdfw] table is written or removed)
// ---------------------------------------------------------------------------

const tomlHeader = "[mcp_servers." + serverName + "]"

// hasTOMLServer parses data and reports whether mcp_servers.asdfw is defined
// in any TOML form (table header, dotted key or inline table).
func hasTOMLServer(path string, data []byte) (bool, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	servers, _ := raw["mcp_servers"].(map[string]any)
	_, found := servers[serverName]
	return found, nil
}

func tomlSection(helper string) string {
	return fmt.Sprintf("\n%s\ncommand = %q\nargs = [\"mcp\"]\n", tomlHeader, helper)
}

func addTOMLServer(path, helper string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if found, err := hasTOMLServer(path, data); err != nil || found {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()
	_, err = f.WriteString(tomlSection(helper))
	return err == nil, err
}

func removeTOMLServer(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if found, err := hasTOMLServer(path, data); err != nil || !found {
		return false, err
	}
	content := string(data)
	// Drop the header and its key-value pairs up to the next table or EOF.
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == tomlHeader {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(trimmed, "[") {
			inSection = false
		}
		if !inSection {
			kept = append(kept, line)
		}
	}
	if len(kept) == len(lines) {
		// Defined inline or as a dotted key; not ours to rewrite.
		return false, nil
	}
	cleaned := strings.TrimRight(strings.Join(kept, "\n"), "\n")
	if strings.TrimSpace(cleaned) == "" {
		return true, os.Remove(path)
	}
	return true, os.WriteFile(path, []byte(cleaned+"\n"), 0o644) // #nosec G306 -- agent TOML config is not a sensitive credential file
}

// ---------------------------------------------------------------------------
// Agents
// ---------------------------------------------------------------------------

//revive:disable:flag-parameter
func claudeMCPPath(claudeHome string, project bool) string {
	if project {
		return filepath.Join(filepath.Dir(claudeHome), ".mcp.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude.json")
}

func installed(added bool, err error, where string) Result {
	switch {
	case err != nil:
		return fail(err)
	case added:
		return okf("Installed: mcpServers in %s", where)
	default:
		return ok("Already installed")
	}
}

func removed(gone bool, err error, where string) Result {
	switch {
	case err != nil:
		return fail(err)
	case gone:
		return okf("Removed: mcpServers from %s", where)
	default:
		return ok("Nothing to remove")
	}
}

// SetupClaudeCode registers `<helper> mcp` with Claude Code, in ~/.claude.json
// or, with project set, in the .mcp.json next to claudeHome.
func SetupClaudeCode(claudeHome, helper string, project bool) Result {
	if claudeHome == "" {
		claudeHome = DefaultClaudeHome()
	}
	path := claudeMCPPath(claudeHome, project)
	added, err := addJSONServer(path, "mcpServers", mcpEntry(helper))
	return installed(added, err, path)
}

// UninstallClaudeCode removes the asdfw entry from Claude Code.
func UninstallClaudeCode(claudeHome string, project bool) Result {
	if claudeHome == "" {
		claudeHome = DefaultClaudeHome()
	}
	path := claudeMCPPath(claudeHome, project)
	gone, err := removeJSONServer(path, "mcpServers")
	return removed(gone, err, path)
}

//revive:enable:flag-parameter

// SetupCursor registers `<helper> mcp` in <cursorHome>/mcp.json.
func SetupCursor(cursorHome, helper string) Result {
	if cursorHome == "" {
		cursorHome = DefaultCursorHome()
	}
	path := filepath.Join(cursorHome, "mcp.json")
	added, err := addJSONServer(path, "mcpServers", mcpEntry(helper))
	return installed(added, err, path)
}

// UninstallCursor removes the asdfw entry from Cursor.
func UninstallCursor(cursorHome string) Result {
	if cursorHome == "" {
		cursorHome = DefaultCursorHome()
	}
	path := filepath.Join(cursorHome, "mcp.json")
	gone, err := removeJSONServer(path, "mcpServers")
	return removed(gone, err, path)
}

// SetupCodex appends an [mcp_servers.asdfw] table to <codexHome>/config.toml.
func SetupCodex(codexHome, helper string) Result {
	if codexHome == "" {
		codexHome = DefaultCodexHome()
	}
	path := filepath.Join(codexHome, "config.toml")
	added, err := addTOMLServer(path, helper)
	return installed(added, err, path)
}

// UninstallCodex removes the [mcp_servers.asdfw] table.
func UninstallCodex(codexHome string) Result {
	if codexHome == "" {
		codexHome = DefaultCodexHome()
	}
	path := filepath.Join(codexHome, "config.toml")
	gone, err := removeTOMLServer(path)
	return removed(gone, err, path)
}

// SetupOpencode registers asdfw under the "mcp" key of opencode.json.
func SetupOpencode(opencodeHome, helper string) Result {
	if opencodeHome == "" {
		opencodeHome = DefaultOpencodeHome()
	}
	path := filepath.Join(opencodeHome, "opencode.json")
	added, err := addJSONServer(path, "mcp", opencodeEntry(helper))
	return installed(added, err, path)
}

// UninstallOpencode removes asdfw from opencode.json.
func UninstallOpencode(opencodeHome string) Result {
	if opencodeHome == "" {
		opencodeHome = DefaultOpencodeHome()
	}
	path := filepath.Join(opencodeHome, "opencode.json")
	gone, err := removeJSONServer(path, "mcp")
	return removed(gone, err, path)
}
