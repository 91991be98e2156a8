//go:build !windows

package launcher_test

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"golang.org/x/sys/unix"

	"github.com/go-ports/asdfw/internal/launcher"
	"github.com/go-ports/asdfw/internal/models"
)

func sh(script string) launcher.Process {
	return launcher.Process{Path: "/bin/sh", Args: []string{"-c", script}}
}

func TestRun_ExitCodes(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name   string
		script string
		want   int
	}{
		{"success", "exit 0", 0},
		{"failure", "exit 1", 1},
		{"arbitrary code", "exit 42", 42},
		{"killed by signal", "kill -9 $$", launcher.UnknownExitCode},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			var out bytes.Buffer
			l := launcher.OS{Stdout: &out, Stderr: &out}
			code, err := l.Run(sh(tc.script))
			c.Assert(err, qt.IsNil)
			c.Assert(code, qt.Equals, tc.want)
		})
	}
}

func TestRun_PassesArgsAndStreams(t *testing.T) {
	c := qt.New(t)

	var stdout, stderr bytes.Buffer
	l := launcher.OS{Stdin: bytes.NewBufferString("from stdin"), Stdout: &stdout, Stderr: &stderr}
	code, err := l.Run(launcher.Process{
		Path: "/bin/sh",
		Args: []string{"-c", `printf '%s|%s' "$0" "$1"; cat >&2`, "first", "second"},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, 0)
	c.Assert(stdout.String(), qt.Equals, "first|second")
	c.Assert(stderr.String(), qt.Equals, "from stdin")
}

func TestRun_PluginEnvironmentWins(t *testing.T) {
	c := qt.New(t)

	env := launcher.Environ(
		[]string{"PATH=" + os.Getenv("PATH"), "MYENV=inherited"},
		[]models.EnvPair{{Name: "MYENV", Value: "from plugin"}, {Name: "OTHER", Value: "x"}},
	)
	var out bytes.Buffer
	l := launcher.OS{Stdout: &out}
	code, err := l.Run(launcher.Process{Path: "/bin/sh", Args: []string{"-c", `printf '%s,%s' "$MYENV" "$OTHER"`}, Env: env})
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, 0)
	c.Assert(out.String(), qt.Equals, "from plugin,x")
}

func TestRun_MissingExecutable(t *testing.T) {
	c := qt.New(t)

	code, err := launcher.OS{}.Run(launcher.Process{Path: filepath.Join(t.TempDir(), "nope")})
	c.Assert(err, qt.ErrorMatches, `starting .*nope: .*`)
	c.Assert(code, qt.Equals, launcher.UnknownExitCode)
}

// ---------------------------------------------------------------------------
// Signals
// ---------------------------------------------------------------------------

type runResult struct {
	code int
	err  error
}

// startReady runs script in the background and returns once the child has
// printed its first line, so its traps are installed and Run is relaying
// signals.
func startReady(c *qt.C, script string) <-chan runResult {
	c.TB.Helper()
	r, w, err := os.Pipe()
	c.Assert(err, qt.IsNil)
	c.TB.Cleanup(func() { _ = r.Close() })

	done := make(chan runResult, 1)
	go func() {
		code, err := launcher.OS{Stdout: w}.Run(sh(script))
		_ = w.Close()
		done <- runResult{code: code, err: err}
	}()

	line, err := bufio.NewReader(r).ReadString('\n')
	c.Assert(err, qt.IsNil)
	c.Assert(line, qt.Equals, "ready\n")
	return done
}

func wait(c *qt.C, done <-chan runResult) runResult {
	c.TB.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(10 * time.Second):
		c.Fatal("child did not exit")
		return runResult{}
	}
}

const trapScript = `trap 'exit 42' TERM
trap 'exit 43' HUP
trap 'exit 44' INT
echo ready
i=0
while [ $i -lt 20 ]; do sleep 0.05; i=$((i+1)); done
exit 7`

func TestRun_ForwardsTerminationSignals(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name string
		sig  unix.Signal
		want int
	}{
		{"SIGTERM", unix.SIGTERM, 42},
		{"SIGHUP", unix.SIGHUP, 43},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			done := startReady(c, trapScript)
			c.Assert(unix.Kill(os.Getpid(), tc.sig), qt.IsNil)

			res := wait(c, done)
			c.Assert(res.err, qt.IsNil)
			c.Assert(res.code, qt.Equals, tc.want)
		})
	}
}

func TestRun_ParentSurvivesInterrupt(t *testing.T) {
	c := qt.New(t)

	// Only this process gets SIGINT; a terminal would deliver it to the child
	// too. The child is not signalled, finishes its loop and exits 7.
	done := startReady(c, trapScript)
	c.Assert(unix.Kill(os.Getpid(), unix.SIGINT), qt.IsNil)

	res := wait(c, done)
	c.Assert(res.err, qt.IsNil)
	c.Assert(res.code, qt.Equals, 7)
}
