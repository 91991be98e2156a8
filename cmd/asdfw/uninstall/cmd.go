// Package uninstallcmd implements the `asdfw uninstall` command group.
package uninstallcmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	setupcmd "github.com/go-ports/asdfw/cmd/asdfw/setup"
	"github.com/go-ports/asdfw/cmd/asdfw/shared"
	"github.com/go-ports/asdfw/internal/setup"
)

// Command implements `asdfw uninstall`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the uninstall command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the asdfw MCP server from a coding agent",
		RunE:  func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	c.cmd.AddCommand(
		newUninstallClaudeCode(),
		newUninstallAgent("cursor", "Cursor", ".cursor", setup.UninstallCursor),
		newUninstallAgent("codex", "Codex", ".codex", setup.UninstallCodex),
		newUninstallAgent("opencode", "OpenCode", filepath.Join(".config", "opencode"), setup.UninstallOpencode),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func newUninstallClaudeCode() *cobra.Command {
	var configDir string
	var project bool
	cmd := &cobra.Command{
		Use:   "claude-code",
		Short: "Remove asdfw from Claude Code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := setupcmd.ResolveConfigDir(".claude", configDir, project)
			return setupcmd.Report(cmd, setup.UninstallClaudeCode(target, project))
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to .claude directory")
	cmd.Flags().BoolVar(&project, "project", false, "Uninstall from current project instead of globally")
	return cmd
}

func newUninstallAgent(name, title, dotDir string, fn func(home string) setup.Result) *cobra.Command {
	var configDir string
	var project bool
	cmd := &cobra.Command{
		Use:   name,
		Short: "Remove asdfw from " + title,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setupcmd.Report(cmd, fn(setupcmd.ResolveConfigDir(dotDir, configDir, project)))
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to the "+title+" config directory")
	cmd.Flags().BoolVar(&project, "project", false, "Uninstall from current project instead of globally")
	return cmd
}
