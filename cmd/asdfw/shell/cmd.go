// Package shellcmd implements the `asdfw shell` command group.
package shellcmd

import (
	"github.com/spf13/cobra"

	setupcmd "github.com/go-ports/asdfw/cmd/asdfw/setup"
	"github.com/go-ports/asdfw/cmd/asdfw/shared"
	"github.com/go-ports/asdfw/internal/setup"
)

// Command implements `asdfw shell`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the shell command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "shell",
		Short: "Add or remove the shims directory on your shell PATH",
		RunE:  func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	c.cmd.AddCommand(
		newInstall(ctx),
		newUninstall(),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// ---------------------------------------------------------------------------
// shell install
// ---------------------------------------------------------------------------

func newInstall(ctx *shared.Context) *cobra.Command {
	var shell, rc string
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Prepend the shims directory to PATH in your shell rc file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := ctx.Runtime()
			if err != nil {
				return err
			}
			return setupcmd.Report(cmd, setup.InstallShell(shell, rc, rt.ShimsDir))
		},
	}
	cmd.Flags().StringVar(&shell, "shell", "", "bash, zsh or fish (default: from $SHELL)")
	cmd.Flags().StringVar(&rc, "rc", "", "rc file to edit (default depends on the shell)")
	return cmd
}

// ---------------------------------------------------------------------------
// shell uninstall
// ---------------------------------------------------------------------------

func newUninstall() *cobra.Command {
	var shell, rc string
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the asdfw PATH block from your shell rc file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setupcmd.Report(cmd, setup.UninstallShell(shell, rc))
		},
	}
	cmd.Flags().StringVar(&shell, "shell", "", "bash, zsh or fish (default: from $SHELL)")
	cmd.Flags().StringVar(&rc, "rc", "", "rc file to edit (default depends on the shell)")
	return cmd
}
