package buildinfo_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/asdfw/internal/buildinfo"
)

func TestString(t *testing.T) {
	c := qt.New(t)
	c.Assert(buildinfo.String(), qt.Equals, "asdfw dev (commit unknown, branch unknown, built unknown)")

	buildinfo.Version = "1.2.3"
	c.Cleanup(func() { buildinfo.Version = "dev" })
	c.Assert(buildinfo.String(), qt.Contains, "asdfw 1.2.3 ")
}
