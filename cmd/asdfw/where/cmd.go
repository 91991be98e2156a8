// Package wherecmd implements the `asdfw where` command.
package wherecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
)

// Command implements `asdfw where`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the where command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "where <tool> [version]",
		Short: "Print the install directory of a tool version (default: current)",
		Args:  cobra.RangeArgs(1, 2),
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
	version := ""
	if len(args) == 2 {
		version = args[1]
	}
	dir, err := svc.Where(args[0], version)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}
