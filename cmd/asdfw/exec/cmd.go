// Package execcmd implements the `asdfw exec` command.
package execcmd

import (
	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
	"github.com/go-ports/asdfw/internal/launcher"
)

// Command implements `asdfw exec`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	tool string
}

// New creates the exec command. Flags after the command name belong to the
// launched process.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "exec [--tool T] <command> [args...]",
		Short: "Run a command with the configured version of its tool",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.run,
	}
	c.cmd.Flags().StringVar(&c.tool, "tool", "", "Owning tool (skips the shim database lookup)")
	c.cmd.Flags().SetInterspersed(false)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	svc, err := c.ctx.Service()
	if err != nil {
		return err
	}
	svc.Launcher = launcher.OS{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
	code, err := svc.Exec(args[0], c.tool, args[1:])
	if err != nil {
		return err
	}
	if code != 0 {
		return &shared.ExitError{Code: code}
	}
	return nil
}
