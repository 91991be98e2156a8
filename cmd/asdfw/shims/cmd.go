// Package shimscmd implements the `asdfw shims` command.
package shimscmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
)

// Command implements `asdfw shims`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the shims command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "shims",
		Short: "List the shim database",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.Service()
	if err != nil {
		return err
	}
	entries, err := svc.ShimEntries()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No shims. Run `asdfw reshim` after installing a tool.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMMAND\tTOOL\tKIND")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Command, e.Tool, e.Kind)
	}
	return w.Flush()
}
