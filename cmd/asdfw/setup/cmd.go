// Package setupcmd implements the `asdfw setup` command group.
package setupcmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
	"github.com/go-ports/asdfw/internal/setup"
)

// Command implements `asdfw setup`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the setup command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "setup",
		Short: "Register the asdfw MCP server with a coding agent",
		RunE:  func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	c.cmd.AddCommand(
		newSetupClaudeCode(ctx),
		newSetupAgent(ctx, "cursor", "Cursor", ".cursor", setup.SetupCursor),
		newSetupAgent(ctx, "codex", "Codex", ".codex", setup.SetupCodex),
		newSetupAgent(ctx, "opencode", "OpenCode", filepath.Join(".config", "opencode"), setup.SetupOpencode),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// helper returns the command agents should launch: the configured helper.
func helper(ctx *shared.Context) (string, error) {
	rt, err := ctx.Runtime()
	if err != nil {
		return "", err
	}
	return rt.Settings.Helper, nil
}

// Report prints a setup result, turning failures into errors.
func Report(cmd *cobra.Command, result setup.Result) error {
	if !result.OK() {
		return errors.New(result.Message)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	return nil
}

// ---------------------------------------------------------------------------
// setup claude-code
// ---------------------------------------------------------------------------

func newSetupClaudeCode(ctx *shared.Context) *cobra.Command {
	var configDir string
	var project bool
	cmd := &cobra.Command{
		Use:   "claude-code",
		Short: "Register the asdfw MCP server with Claude Code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := helper(ctx)
			if err != nil {
				return err
			}
			target := ResolveConfigDir(".claude", configDir, project)
			return Report(cmd, setup.SetupClaudeCode(target, h, project))
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to .claude directory")
	cmd.Flags().BoolVar(&project, "project", false, "Install in current project instead of globally")
	return cmd
}

// ---------------------------------------------------------------------------
// setup cursor | codex | opencode
// ---------------------------------------------------------------------------

func newSetupAgent(ctx *shared.Context, name, title, dotDir string, fn func(home, helper string) setup.Result) *cobra.Command {
	var configDir string
	var project bool
	cmd := &cobra.Command{
		Use:   name,
		Short: "Register the asdfw MCP server with " + title,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := helper(ctx)
			if err != nil {
				return err
			}
			return Report(cmd, fn(ResolveConfigDir(dotDir, configDir, project), h))
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to the "+title+" config directory")
	cmd.Flags().BoolVar(&project, "project", false, "Install in current project instead of globally")
	return cmd
}

// ---------------------------------------------------------------------------
// Helper
// ---------------------------------------------------------------------------

// ResolveConfigDir picks the agent config directory: the explicit flag, the
// project-local dotDir, or dotDir under the home directory.
//
//revive:disable:flag-parameter
func ResolveConfigDir(dotDir, configDir string, project bool) string {
	if configDir != "" {
		return configDir
	}
	if project {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, dotDir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dotDir)
}

//revive:enable:flag-parameter
