// Package e2e_test contains end-to-end tests that exercise the asdfw CLI and
// MCP server in-process against a temporary asdfw home.
package e2e_test

import (
	"os"
	"path/filepath"
	"runtime"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/asdfw/internal/config"
	"github.com/go-ports/asdfw/internal/plugin"
)

const nodePluginYAML = `bin_dirs:
  - bin
env_vars:
  - name: NODE_HOME
    value:
      relative_inst_path: lib
  - name: NPM_TOKEN
    value:
      value: npm_secret_value
`

// env is one isolated asdfw installation.
type env struct {
	home string // user home, holds the global .tool-versions
	app  string // asdfw home
}

func (e env) installs(parts ...string) string {
	return filepath.Join(append([]string{e.app, "installs"}, parts...)...)
}

func write(c *qt.C, path, content string, mode os.FileMode) {
	c.TB.Helper()
	c.Assert(os.MkdirAll(filepath.Dir(path), 0o755), qt.IsNil)
	c.Assert(os.WriteFile(path, []byte(content), mode), qt.IsNil)
}

// newEnv lays out:
//
//	nodejs 18.0.0, 20.1.0 → node.exe, npm.cmd (plugin with env vars)
//	python 3.12           → python.exe
//
// with "nodejs 20.1.0" in the global tool-versions file. HOME points at the
// fixture and ASDFW_HOME is cleared.
func newEnv(c *qt.C) env {
	c.TB.Helper()
	home := c.TB.TempDir()
	e := env{home: home, app: filepath.Join(home, ".asdfw")}
	c.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		c.Setenv("USERPROFILE", home)
	}
	c.Setenv(config.HomeEnv, "")

	for _, v := range []string{"18.0.0", "20.1.0"} {
		write(c, e.installs("nodejs", v, "bin", "node.exe"), "#!/bin/sh\necho node "+v+"\n", 0o755)
		write(c, e.installs("nodejs", v, "bin", "npm.cmd"), "@echo npm\r\n", 0o755)
	}
	write(c, e.installs("python", "3.12", "bin", "python.exe"), "", 0o755)
	write(c, filepath.Join(e.app, "plugins", "nodejs", plugin.FileName), nodePluginYAML, 0o600)

	shimExe := "asdfw-shim"
	if runtime.GOOS == "windows" {
		shimExe += ".exe"
	}
	write(c, filepath.Join(e.app, "bin", shimExe), "launcher", 0o755)
	write(c, filepath.Join(home, ".tool-versions"), "nodejs 20.1.0\r\n", 0o600)
	c.Assert(os.MkdirAll(filepath.Join(e.app, "shims"), 0o755), qt.IsNil)
	return e
}
