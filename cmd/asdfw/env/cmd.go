// Package envcmd implements the `asdfw env` command.
package envcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
)

// Command implements `asdfw env`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	tool string
}

// New creates the env command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "env <command>",
		Short: "Show the plugin environment a command runs with (secrets redacted)",
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
	pairs, err := svc.Environment(args[0], c.tool)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
