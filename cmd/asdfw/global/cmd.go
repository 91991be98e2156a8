// Package globalcmd implements the `asdfw global` command.
package globalcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
)

// Command implements `asdfw global`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the global command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "global <tool> <version>",
		Short: "Set the global default version of a tool",
		Args:  cobra.ExactArgs(2),
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	svc, err := c.ctx.Service()
	if err != nil {
		return err
	}
	if err := svc.SetGlobal(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Global %s set to %s in %s\n", args[0], args[1], svc.Runtime.GlobalToolVersions)
	return nil
}
