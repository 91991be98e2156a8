// Package currentcmd implements the `asdfw current` command.
package currentcmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
	"github.com/go-ports/asdfw/internal/models"
	"github.com/go-ports/asdfw/internal/versions"
)

// Command implements `asdfw current`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the current command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "current [tool]",
		Short: "Show the selected version of one or all installed tools",
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

	var tvs []models.ToolVersion
	if len(args) == 1 {
		tv, err := svc.Current(args[0])
		if err != nil {
			return err
		}
		tvs = []models.ToolVersion{tv}
	} else if tvs, err = svc.CurrentAll(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(tvs) == 0 {
		fmt.Fprintln(out, "No tools installed.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, tv := range tvs {
		if tv.Version == "" {
			fmt.Fprintf(w, "%s\t______\tnot set (add it to %s or set %s)\n", tv.Tool, versions.FileName, versions.EnvVarName(tv.Tool))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", tv.Tool, tv.Version, tv.Source)
	}
	return w.Flush()
}
