// Package listcmd implements the `asdfw list` command.
package listcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
)

// Command implements `asdfw list`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the list command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "list [tool]",
		Short: "List installed versions",
		Args:  cobra.MaximumNArgs(1),
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
	tool := ""
	if len(args) == 1 {
		tool = args[0]
	}
	installed, err := svc.ListInstalled(tool)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(installed) == 0 {
		fmt.Fprintln(out, "No tools installed.")
		return nil
	}
	for _, it := range installed {
		current, err := svc.Current(it.Tool)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, it.Tool)
		if len(it.Versions) == 0 {
			fmt.Fprintln(out, "  No versions installed")
			continue
		}
		for _, v := range it.Versions {
			marker := " "
			if v == current.Version {
				marker = "*"
			}
			fmt.Fprintf(out, " %s%s\n", marker, v)
		}
	}
	return nil
}
