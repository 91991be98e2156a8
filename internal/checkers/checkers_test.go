package checkers_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/asdfw/internal/checkers"
)

func TestJSONPathEquals(t *testing.T) {
	c := qt.New(t)
	doc := `{"tool":"nodejs","count":2,"entries":[{"command":"node"}]}`

	c.Assert(doc, checkers.JSONPathEquals("$.tool"), "nodejs")
	c.Assert([]byte(doc), checkers.JSONPathEquals("$.count"), float64(2))
	c.Assert(doc, checkers.JSONPathEquals("$.entries[0].command"), "node")
	c.Assert(doc, qt.Not(checkers.JSONPathEquals("$.tool")), "python")
}

func TestJSONPathEquals_FailurePath(t *testing.T) {
	c := qt.New(t)
	checker := checkers.JSONPathEquals("$.tool")
	note := func(string, any) {}

	c.Assert(checker.Check(42, []any{"x"}, note), qt.ErrorMatches, `.*got must be a string or \[\]byte.*`)
	c.Assert(checker.Check("not json", []any{"x"}, note), qt.ErrorMatches, `invalid JSON: .*`)
	c.Assert(checker.Check(`{"other":1}`, []any{"x"}, note), qt.ErrorMatches, `evaluating \$\.tool: .*`)
}
