// Package whichcmd implements the `asdfw which` command.
package whichcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
)

// Command implements `asdfw which`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	tool string
}

// New creates the which command. Script-wrapper shims call it with --tool
// and read the path from stdout.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "which <command>",
		Short: "Print the executable a command resolves to",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	c.cmd.Flags().StringVar(&c.tool, "tool", "", "Owning tool (skips the shim database lookup)")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	svc, err := c.ctx.Service()
	if err != nil {
		return err
	}
	path, err := svc.WhichWithTool(args[0], c.tool)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
