// Package rootcmd wires the root cobra.Command for the asdfw CLI binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	configcmd "github.com/go-ports/asdfw/cmd/asdfw/config"
	currentcmd "github.com/go-ports/asdfw/cmd/asdfw/current"
	envcmd "github.com/go-ports/asdfw/cmd/asdfw/env"
	execcmd "github.com/go-ports/asdfw/cmd/asdfw/exec"
	globalcmd "github.com/go-ports/asdfw/cmd/asdfw/global"
	listcmd "github.com/go-ports/asdfw/cmd/asdfw/list"
	localcmd "github.com/go-ports/asdfw/cmd/asdfw/local"
	mcpcmd "github.com/go-ports/asdfw/cmd/asdfw/mcp"
	reshimcmd "github.com/go-ports/asdfw/cmd/asdfw/reshim"
	setupcmd "github.com/go-ports/asdfw/cmd/asdfw/setup"
	"github.com/go-ports/asdfw/cmd/asdfw/shared"
	shellcmd "github.com/go-ports/asdfw/cmd/asdfw/shell"
	shimscmd "github.com/go-ports/asdfw/cmd/asdfw/shims"
	uninstallcmd "github.com/go-ports/asdfw/cmd/asdfw/uninstall"
	versioncmd "github.com/go-ports/asdfw/cmd/asdfw/version"
	wherecmd "github.com/go-ports/asdfw/cmd/asdfw/where"
	whichcmd "github.com/go-ports/asdfw/cmd/asdfw/which"
)

// New creates and returns the root cobra.Command for the asdfw CLI.
func New() *cobra.Command {
	return NewWithContext(&shared.Context{})
}

// NewWithContext is New over a caller-owned context. cobra skips post-run
// hooks when a command fails, so the caller must Close ctx after Execute.
func NewWithContext(ctx *shared.Context) *cobra.Command {
	root := &cobra.Command{
		Use:           "asdfw",
		Short:         "asdfw — per-directory tool versions through shims",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return ctx.Close()
		},
	}

	root.PersistentFlags().StringVar(
		&ctx.Home, "asdfw-home", "",
		"Override the asdfw directory (default: $ASDFW_HOME env → persisted config → ~/.asdfw)",
	)
	root.PersistentFlags().CountVarP(&ctx.Verbose, "verbose", "v", "More detailed file logging (repeatable)")

	root.AddCommand(
		reshimcmd.New(ctx).Cmd(),
		whichcmd.New(ctx).Cmd(),
		execcmd.New(ctx).Cmd(),
		currentcmd.New(ctx).Cmd(),
		localcmd.New(ctx).Cmd(),
		globalcmd.New(ctx).Cmd(),
		listcmd.New(ctx).Cmd(),
		wherecmd.New(ctx).Cmd(),
		envcmd.New(ctx).Cmd(),
		shimscmd.New(ctx).Cmd(),
		shellcmd.New(ctx).Cmd(),
		setupcmd.New(ctx).Cmd(),
		uninstallcmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
		versioncmd.New(ctx).Cmd(),
	)

	return root
}
