// Package reshimcmd implements the `asdfw reshim` command.
package reshimcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
)

// Command implements `asdfw reshim`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	cleanup bool
}

// New creates the reshim command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "reshim",
		Short: "Rebuild the shim database and the shims directory from installed tools",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVar(&c.cleanup, "cleanup", false, "Delete the whole shims directory before writing shims")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.Service()
	if err != nil {
		return err
	}
	n, err := svc.Reshim(c.cleanup)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reshimmed %d commands into %s\n", n, svc.Runtime.ShimsDir)
	return nil
}
