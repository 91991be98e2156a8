// Package localcmd implements the `asdfw local` command.
package localcmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
	"github.com/go-ports/asdfw/internal/versions"
)

// Command implements `asdfw local`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the local command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "local <tool> <version>",
		Short: "Pin a tool version for the current directory",
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
	if err := svc.SetLocal(args[0], args[1]); err != nil {
		return err
	}
	path := filepath.Join(svc.Runtime.CurrentDir, versions.FileName)
	fmt.Fprintf(cmd.OutOrStdout(), "Pinned %s %s in %s\n", args[0], args[1], path)
	return nil
}
