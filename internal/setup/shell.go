package setup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Shell PATH integration. The rc file gets one marked block that prepends the
// shims directory to PATH; everything outside the markers is left alone.

const (
	blockStart = "# >>> asdfw shims >>>"
	blockEnd   = "# <<< asdfw shims <<<"
)

// Supported shells.
const (
	ShellBash = "bash"
	ShellZsh  = "zsh"
	ShellFish = "fish"
)

// DetectShell returns the base name of $SHELL, or "" when unset.
func DetectShell() string {
	sh := os.Getenv("SHELL")
	if sh == "" {
		return ""
	}
	return filepath.Base(sh)
}

// NormalizeShell validates shell, falling back to DetectShell when empty.
func NormalizeShell(shell string) (string, error) {
	if shell == "" {
		shell = DetectShell()
	}
	switch s := strings.ToLower(strings.TrimSpace(shell)); s {
	case ShellBash, ShellZsh, ShellFish:
		return s, nil
	case "":
		return "", errors.New("cannot detect shell; pass --shell bash|zsh|fish")
	default:
		return "", fmt.Errorf("unsupported shell: %s", shell)
	}
}

// DefaultRCPath returns the rc file that login shells of kind shell read.
func DefaultRCPath(shell string) string {
	home, _ := os.UserHomeDir()
	switch shell {
	case ShellZsh:
		return filepath.Join(home, ".zshrc")
	case ShellFish:
		return filepath.Join(home, ".config", "fish", "conf.d", "asdfw.fish")
	default:
		return filepath.Join(home, ".bashrc")
	}
}

// PathBlock returns the marked block that puts shimsDir first on PATH.
func PathBlock(shell, shimsDir string) string {
	var line string
	if shell == ShellFish {
		line = "fish_add_path --prepend " + fishQuote(shimsDir)
	} else {
		line = "export PATH=" + shQuote(shimsDir) + `:"$PATH"`
	}
	return blockStart + "\n" + line + "\n" + blockEnd + "\n"
}

// shQuote single-quotes s for POSIX shells; nothing inside is expanded.
func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// fishQuote single-quotes s for fish, where only \\ and \' are escapes.
func fishQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// InstallShell writes the PATH block for shimsDir into rcPath (DefaultRCPath
// when empty). An existing block is replaced when it points elsewhere.
func InstallShell(shell, rcPath, shimsDir string) Result {
	name, err := NormalizeShell(shell)
	if err != nil {
		return fail(err)
	}
	if rcPath == "" {
		rcPath = DefaultRCPath(name)
	}
	block := PathBlock(name, shimsDir)

	data, err := os.ReadFile(rcPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fail(err)
	}
	content := string(data)
	if strings.Contains(content, block) {
		return ok("Already installed")
	}

	rest, _, err := stripBlock(content)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", rcPath, err))
	}
	if rest != "" && !strings.HasSuffix(rest, "\n") {
		rest += "\n"
	}
	if rest != "" {
		rest += "\n"
	}
	if err := os.MkdirAll(filepath.Dir(rcPath), 0o755); err != nil {
		return fail(err)
	}
	if err := os.WriteFile(rcPath, []byte(rest+block), 0o644); err != nil { // #nosec G306 -- shell rc files are world-readable by convention
		return fail(err)
	}
	return okf("Installed: shims PATH entry in %s (restart your shell)", rcPath)
}

// UninstallShell removes the PATH block from rcPath (DefaultRCPath when empty).
func UninstallShell(shell, rcPath string) Result {
	name, err := NormalizeShell(shell)
	if err != nil {
		return fail(err)
	}
	if rcPath == "" {
		rcPath = DefaultRCPath(name)
	}
	data, err := os.ReadFile(rcPath)
	if errors.Is(err, os.ErrNotExist) {
		return ok("Nothing to remove")
	}
	if err != nil {
		return fail(err)
	}
	rest, found, err := stripBlock(string(data))
	if err != nil {
		return fail(fmt.Errorf("%s: %w", rcPath, err))
	}
	if !found {
		return ok("Nothing to remove")
	}
	if strings.TrimSpace(rest) == "" && name == ShellFish {
		if err := os.Remove(rcPath); err != nil {
			return fail(err)
		}
		return okf("Removed: %s", rcPath)
	}
	if err := os.WriteFile(rcPath, []byte(rest), 0o644); err != nil { // #nosec G306 -- shell rc files are world-readable by convention
		return fail(err)
	}
	return okf("Removed: shims PATH entry from %s", rcPath)
}

// errUnterminatedBlock is returned when a start marker has no end marker.
// The rc file is then left untouched.
var errUnterminatedBlock = errors.New("asdfw shims block has no end marker " + blockEnd + "; fix the file by hand")

// stripBlock removes every marked block (and one blank line before it). A
// block only counts once its end marker is seen.
func stripBlock(content string) (string, bool, error) {
	lines := strings.SplitAfter(content, "\n")
	out := make([]string, 0, len(lines))
	found, inBlock := false, false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case !inBlock && trimmed == blockStart:
			inBlock = true
		case inBlock && trimmed == blockEnd:
			found, inBlock = true, false
			if n := len(out); n > 0 && strings.TrimSpace(out[n-1]) == "" {
				out = out[:n-1]
			}
		case !inBlock:
			out = append(out, line)
		}
	}
	if inBlock {
		return "", false, errUnterminatedBlock
	}
	return strings.Join(out, ""), found, nil
}
