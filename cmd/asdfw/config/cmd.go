// Package configcmd implements the `asdfw config` command group.
package configcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/asdfw/cmd/asdfw/shared"
	"github.com/go-ports/asdfw/internal/config"
)

const configTemplate = `# asdfw configuration

# Generic launcher copied for native (.exe) shims.
# Default: <asdfw home>/bin/asdfw-shim[.exe]
# shim_exe: ~/.asdfw/bin/asdfw-shim.exe

# Command that script (.cmd/.bat) shims call to find their target.
helper: asdfw

# File log threshold: debug | info | warn | error
log_level: warn

# Shimmable extensions, in lookup order. native = copy of the launcher,
# script = generated wrapper that calls the helper.
extensions:
  - ext: .exe
    kind: native
  - ext: .cmd
    kind: script
  - ext: .bat
    kind: script
`

// Command implements `asdfw config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(
		newConfigInit(ctx),
		newSetHome(),
		newClearHome(),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	rt, err := c.ctx.Runtime()
	if err != nil {
		return err
	}
	exts := make([]map[string]any, 0, len(rt.Settings.Extensions))
	for _, e := range rt.Settings.Extensions {
		exts = append(exts, map[string]any{"ext": e.Ext, "kind": e.Kind})
	}
	data := map[string]any{
		"asdfw_home":        rt.AppDir,
		"asdfw_home_source": rt.HomeSource,
		"paths": map[string]any{
			"installs":             rt.InstallsDir,
			"shims":                rt.ShimsDir,
			"shims_db":             rt.ShimsDB,
			"plugins":              rt.PluginsDir,
			"logs":                 rt.LogsDir,
			"shim_exe":             rt.ShimExe,
			"global_tool_versions": rt.GlobalToolVersions,
		},
		"settings": map[string]any{
			"helper":     rt.Settings.Helper,
			"log_level":  rt.Settings.LogLevel,
			"extensions": exts,
		},
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

// ---------------------------------------------------------------------------
// config init
// ---------------------------------------------------------------------------

func newConfigInit(ctx *shared.Context) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the asdfw directories and a starter config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, _ := config.ResolveHome(ctx.Home)
			for _, dir := range []string{"installs", "shims", "plugins", "bin"} {
				if err := os.MkdirAll(filepath.Join(home, dir), 0o755); err != nil {
					return err
				}
			}
			cfgPath := filepath.Join(home, "config.yaml")
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfgPath); err == nil && !force {
				fmt.Fprintf(out, "Config already exists at %s\n", cfgPath)
				fmt.Fprintln(out, "Use --force to overwrite.")
				return nil
			}
			if err := os.WriteFile(cfgPath, []byte(configTemplate), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	return cmd
}

// ---------------------------------------------------------------------------
// config set-home
// ---------------------------------------------------------------------------

func newSetHome() *cobra.Command {
	return &cobra.Command{
		Use:   "set-home <path>",
		Short: "Persist the asdfw directory (used when ASDFW_HOME is unset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.SetPersistedHome(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Persisted asdfw home: %s\n", resolved)
			fmt.Fprintf(out, "Override anytime with %s.\n", config.HomeEnv)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config clear-home
// ---------------------------------------------------------------------------

func newClearHome() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-home",
		Short: "Remove the persisted asdfw directory from global config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed, err := config.ClearPersistedHome()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if changed {
				fmt.Fprintln(out, "Cleared persisted asdfw home setting.")
			} else {
				fmt.Fprintln(out, "No persisted asdfw home setting was found.")
			}
			return nil
		},
	}
}
