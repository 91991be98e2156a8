package versions_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/asdfw/internal/osenv"
	"github.com/go-ports/asdfw/internal/versions"
)

const (
	fixtureGlobal      = "tool1 v1.2\r\ntool2 v2.1.3\r\ntool3 v12\r\n"
	fixtureLocal       = "tool1 v1.3\r\ntool3 v10\r\n"
	fixtureLocalSubdir = "tool1 v1.4\r\n"
)

type fixture struct {
	global string
	root   string
	subdir string
}

// newFixture lays out a global file plus a local file in root and another in
// root/subdir.
func newFixture(c *qt.C) fixture {
	c.TB.Helper()
	tmp := c.TB.TempDir()
	global := filepath.Join(tmp, "home", versions.FileName)
	root := filepath.Join(tmp, "work")
	subdir := filepath.Join(root, "subdir")
	c.Assert(os.MkdirAll(filepath.Dir(global), 0o755), qt.IsNil)
	c.Assert(os.MkdirAll(subdir, 0o755), qt.IsNil)
	c.Assert(os.WriteFile(global, []byte(fixtureGlobal), 0o600), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(root, versions.FileName), []byte(fixtureLocal), 0o600), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(subdir, versions.FileName), []byte(fixtureLocalSubdir), 0o600), qt.IsNil)
	return fixture{global: global, root: root, subdir: subdir}
}

// ---------------------------------------------------------------------------
// ParseLine
// ---------------------------------------------------------------------------

func TestParseLine_HappyPath(t *testing.T) {
	c := qt.New(t)
	tool, ver, err := versions.ParseLine("my-tool v1.2.3")
	c.Assert(err, qt.IsNil)
	c.Assert(tool, qt.Equals, "my-tool")
	c.Assert(ver, qt.Equals, "v1.2.3")
}

func TestParseLine_FailurePath(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name string
		line string
	}{
		{"missing version", "my-tool "},
		{"missing tool", " v1.2"},
		{"no separator", "my-tool"},
		{"more than one space", "my-tool v1 1.2"},
		{"two spaces separator", "my-tool  v11.2"},
		{"tab inside version", "my-tool v1\t2"},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			_, _, err := versions.ParseLine(tc.line)
			c.Assert(err, qt.ErrorIs, versions.ErrInvalidVersionsLine)
		})
	}
}

// ---------------------------------------------------------------------------
// Version cascade
// ---------------------------------------------------------------------------

func TestVersion_Cascade(t *testing.T) {
	c := qt.New(t)

	tmp := t.TempDir()
	global := filepath.Join(tmp, versions.FileName)
	cwd := filepath.Join(tmp, "project")
	c.Assert(os.MkdirAll(cwd, 0o755), qt.IsNil)
	c.Assert(os.WriteFile(global, []byte("mytool v1.2\r\n"), 0o600), qt.IsNil)
	local := filepath.Join(cwd, versions.FileName)
	c.Assert(os.WriteFile(local, []byte("mytool v1.3\r\n"), 0o600), qt.IsNil)

	env := osenv.Map{"ASDFW_MYTOOL_VERSION": "v9.9"}
	r := versions.New(global, cwd, env)

	v, ok, err := r.Version("mytool")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "v9.9")

	delete(env, "ASDFW_MYTOOL_VERSION")
	v, ok, err = r.Version("mytool")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "v1.3")

	c.Assert(os.Remove(local), qt.IsNil)
	v, ok, err = r.Version("mytool")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "v1.2")
}

func TestVersion_HappyPath(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name       string
		tool       string
		fromSubdir bool
		want       string
		wantSource string
	}{
		{"local file wins over global", "tool1", false, "v1.3", "local"},
		{"nearest local file wins", "tool1", true, "v1.4", "local"},
		{"walks to parent when nearest lacks tool", "tool3", true, "v10", "local"},
		{"falls back to global", "tool2", true, "v2.1.3", "global"},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			f := newFixture(c)
			cwd := f.root
			if tc.fromSubdir {
				cwd = f.subdir
			}
			r := versions.New(f.global, cwd, osenv.Map{})
			v, src, ok, err := r.Lookup(tc.tool)
			c.Assert(err, qt.IsNil)
			c.Assert(ok, qt.IsTrue)
			c.Assert(v, qt.Equals, tc.want)
			c.Assert(src.Kind, qt.Equals, tc.wantSource)
		})
	}
}

func TestVersion_NearestAncestorWins(t *testing.T) {
	c := qt.New(t)

	tmp := t.TempDir()
	grandparent := filepath.Join(tmp, "a")
	parent := filepath.Join(grandparent, "b")
	cwd := filepath.Join(parent, "c")
	c.Assert(os.MkdirAll(cwd, 0o755), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(grandparent, versions.FileName), []byte("tool3 v99\r\n"), 0o600), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(parent, versions.FileName), []byte("tool3 v10\r\n"), 0o600), qt.IsNil)

	r := versions.New(filepath.Join(tmp, "missing-global"), cwd, osenv.Map{})
	v, src, ok, err := r.Lookup("tool3")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "v10")
	c.Assert(src.Path, qt.Equals, filepath.Join(parent, versions.FileName))
}

func TestVersion_NotConfigured(t *testing.T) {
	c := qt.New(t)

	c.Run("unknown tool", func(c *qt.C) {
		f := newFixture(c)
		r := versions.New(f.global, f.subdir, osenv.Map{})
		_, ok, err := r.Version("nope")
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsFalse)
	})

	c.Run("no files at all", func(c *qt.C) {
		tmp := t.TempDir()
		r := versions.New(filepath.Join(tmp, "nothing"), tmp, osenv.Map{})
		_, ok, err := r.Version("tool1")
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsFalse)
	})

	c.Run("empty env override is ignored", func(c *qt.C) {
		f := newFixture(c)
		r := versions.New(f.global, f.root, osenv.Map{"ASDFW_TOOL1_VERSION": ""})
		v, ok, err := r.Version("tool1")
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
		c.Assert(v, qt.Equals, "v1.3")
	})
}

func TestVersion_FailurePath(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name    string
		content string
	}{
		{"two spaces separator", "tool1  v1.2\r\n"},
		{"embedded space in version", "tool1 v1 2\r\n"},
		{"corrupt line after the match", "tool1 v1.2\r\nbroken\r\n"},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			tmp := t.TempDir()
			global := filepath.Join(tmp, versions.FileName)
			c.Assert(os.WriteFile(global, []byte(tc.content), 0o600), qt.IsNil)
			r := versions.New(global, filepath.Join(tmp, "does-not-matter"), osenv.Map{})
			_, _, err := r.Version("tool1")
			c.Assert(err, qt.ErrorIs, versions.ErrInvalidVersionsLine)
		})
	}
}

func TestEnvVarName(t *testing.T) {
	c := qt.New(t)
	c.Assert(versions.EnvVarName("mytool"), qt.Equals, "ASDFW_MYTOOL_VERSION")
	c.Assert(versions.EnvVarName("kubectl"), qt.Equals, "ASDFW_KUBECTL_VERSION")
}

// ---------------------------------------------------------------------------
// SaveLocal / SaveGlobal
// ---------------------------------------------------------------------------

func TestSaveGlobal_PreservesOtherEntries(t *testing.T) {
	c := qt.New(t)

	f := newFixture(c)
	r := versions.New(f.global, f.root, osenv.Map{})
	c.Assert(r.SaveGlobal("tool1", "v1.4"), qt.IsNil)

	rec, err := versions.LoadFile(f.global)
	c.Assert(err, qt.IsNil)
	c.Assert(rec, qt.DeepEquals, versions.Record{"tool1": "v1.4", "tool2": "v2.1.3", "tool3": "v12"})

	data, err := os.ReadFile(f.global)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "tool1 v1.4\r\ntool2 v2.1.3\r\ntool3 v12\r\n")
}

func TestSaveLocal_HappyPath(t *testing.T) {
	c := qt.New(t)

	c.Run("adds a tool to an existing local file", func(c *qt.C) {
		f := newFixture(c)
		r := versions.New(f.global, f.root, osenv.Map{})
		c.Assert(r.SaveLocal("tool2", "v2.2.0"), qt.IsNil)

		v, ok, err := r.Version("tool2")
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
		c.Assert(v, qt.Equals, "v2.2.0")

		v, _, err = r.Version("tool3")
		c.Assert(err, qt.IsNil)
		c.Assert(v, qt.Equals, "v10")
	})

	c.Run("creates a missing local file", func(c *qt.C) {
		tmp := t.TempDir()
		r := versions.New(filepath.Join(tmp, "global"), tmp, osenv.Map{})
		c.Assert(r.SaveLocal("tool9", "1.0"), qt.IsNil)

		rec, err := versions.LoadFile(filepath.Join(tmp, versions.FileName))
		c.Assert(err, qt.IsNil)
		c.Assert(rec, qt.DeepEquals, versions.Record{"tool9": "1.0"})
	})
}

func TestSave_FailurePath(t *testing.T) {
	c := qt.New(t)

	f := newFixture(c)
	r := versions.New(f.global, f.root, osenv.Map{})

	c.Run("version with whitespace", func(c *qt.C) {
		err := r.SaveGlobal("tool1", "v1 2")
		c.Assert(err, qt.ErrorIs, versions.ErrInvalidVersion)
	})

	c.Run("empty version", func(c *qt.C) {
		err := r.SaveLocal("tool1", "")
		c.Assert(err, qt.ErrorIs, versions.ErrInvalidVersion)
	})

	c.Run("corrupt target file is not overwritten", func(c *qt.C) {
		path := filepath.Join(t.TempDir(), versions.FileName)
		c.Assert(os.WriteFile(path, []byte("garbage\r\n"), 0o600), qt.IsNil)
		r := versions.New(path, f.root, osenv.Map{})
		err := r.SaveGlobal("tool1", "v1")
		c.Assert(err, qt.ErrorIs, versions.ErrInvalidVersionsLine)

		data, err := os.ReadFile(path)
		c.Assert(err, qt.IsNil)
		c.Assert(string(data), qt.Equals, "garbage\r\n")
	})
}
