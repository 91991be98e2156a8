package e2e_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/go-ports/asdfw/internal/checkers"
	"github.com/go-ports/asdfw/internal/config"
	internalmcp "github.com/go-ports/asdfw/internal/mcp"
	"github.com/go-ports/asdfw/internal/service"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newMCPClient creates an in-process MCP client backed by a service over e,
// reshimmed once. The client is started and initialized before it is
// returned; cleanup is registered on c automatically.
func newMCPClient(c *qt.C, e env) *mcpclient.Client {
	c.TB.Helper()

	rt, err := config.NewRuntime(e.app)
	c.Assert(err, qt.IsNil)
	svc, err := service.New(rt)
	c.Assert(err, qt.IsNil)
	_, err = svc.Reshim(false)
	c.Assert(err, qt.IsNil)

	cl, err := mcpclient.NewInProcessClient(internalmcp.NewServer(svc))
	c.Assert(err, qt.IsNil)
	c.TB.Cleanup(func() { _ = cl.Close() })

	c.Assert(cl.Start(context.Background()), qt.IsNil)

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "e2e-test", Version: "0.0.1"}
	_, err = cl.Initialize(context.Background(), initReq)
	c.Assert(err, qt.IsNil)

	return cl
}

// callTool invokes the named MCP tool and returns the text of the first
// content item along with the tool-level error flag.
func callTool(c *qt.C, cl *mcpclient.Client, name string, args map[string]any) (string, bool) {
	c.TB.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := cl.CallTool(context.Background(), req)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Content, qt.HasLen, 1)

	tc, ok := mcp.AsTextContent(result.Content[0])
	c.Assert(ok, qt.IsTrue)

	return tc.Text, result.IsError
}

// ---------------------------------------------------------------------------
// ListTools
// ---------------------------------------------------------------------------

func TestMCPListTools_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, newEnv(c))

	result, err := cl.ListTools(context.Background(), mcp.ListToolsRequest{})
	c.Assert(err, qt.IsNil)
	c.Assert(result.Tools, qt.HasLen, 3)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	c.Assert(names, qt.ContentEquals, []string{"asdfw_which", "asdfw_current", "asdfw_shims"})
}

// ---------------------------------------------------------------------------
// asdfw_which
// ---------------------------------------------------------------------------

func TestMCPWhich_HappyPath(t *testing.T) {
	c := qt.New(t)
	e := newEnv(c)
	cl := newMCPClient(c, e)

	text, isErr := callTool(c, cl, "asdfw_which", map[string]any{"command": "node"})
	c.Assert(isErr, qt.IsFalse, qt.Commentf("result: %s", text))
	c.Assert(text, checkers.JSONPathEquals("$.tool"), "nodejs")
	c.Assert(text, checkers.JSONPathEquals("$.version"), "20.1.0")
	c.Assert(text, checkers.JSONPathEquals("$.path"), e.installs("nodejs", "20.1.0", "bin", "node.exe"))
	c.Assert(text, checkers.JSONPathEquals("$.install_root"), e.installs("nodejs", "20.1.0"))

	text, isErr = callTool(c, cl, "asdfw_which", map[string]any{"command": "npm.cmd", "tool": "nodejs"})
	c.Assert(isErr, qt.IsFalse, qt.Commentf("result: %s", text))
	c.Assert(text, checkers.JSONPathEquals("$.path"), e.installs("nodejs", "20.1.0", "bin", "npm.cmd"))
}

func TestMCPWhich_FailurePath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, newEnv(c))

	text, isErr := callTool(c, cl, "asdfw_which", map[string]any{})
	c.Assert(isErr, qt.IsTrue)
	c.Assert(text, qt.Equals, "command is required")

	text, isErr = callTool(c, cl, "asdfw_which", map[string]any{"command": "ruby"})
	c.Assert(isErr, qt.IsTrue)
	c.Assert(text, qt.Contains, service.ErrShimNotFound.Error())

	text, isErr = callTool(c, cl, "asdfw_which", map[string]any{"command": "python"})
	c.Assert(isErr, qt.IsTrue)
	c.Assert(text, qt.Contains, service.ErrVersionNotConfigured.Error())
}

// ---------------------------------------------------------------------------
// asdfw_current
// ---------------------------------------------------------------------------

func TestMCPCurrent_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, newEnv(c))

	text, isErr := callTool(c, cl, "asdfw_current", map[string]any{})
	c.Assert(isErr, qt.IsFalse, qt.Commentf("result: %s", text))
	c.Assert(text, checkers.JSONPathEquals("$.total"), float64(2))
	c.Assert(text, checkers.JSONPathEquals("$.tools[0].tool"), "nodejs")
	c.Assert(text, checkers.JSONPathEquals("$.tools[0].version"), "20.1.0")
	c.Assert(text, checkers.JSONPathEquals("$.tools[1].tool"), "python")
	c.Assert(text, checkers.JSONPathEquals("$.tools[1].version"), "")
	c.Assert(text, checkers.JSONPathEquals("$.tools[1].source"), "")
}

func TestMCPCurrent_EnvOverride(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, newEnv(c))
	c.Setenv("ASDFW_PYTHON_VERSION", "3.12")

	text, isErr := callTool(c, cl, "asdfw_current", map[string]any{"tool": "python"})
	c.Assert(isErr, qt.IsFalse, qt.Commentf("result: %s", text))
	c.Assert(text, checkers.JSONPathEquals("$.total"), float64(1))
	c.Assert(text, checkers.JSONPathEquals("$.tools[0].version"), "3.12")
	c.Assert(text, checkers.JSONPathEquals("$.tools[0].source"), "env:ASDFW_PYTHON_VERSION")
}

// ---------------------------------------------------------------------------
// asdfw_shims
// ---------------------------------------------------------------------------

func TestMCPShims_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, newEnv(c))

	text, isErr := callTool(c, cl, "asdfw_shims", map[string]any{})
	c.Assert(isErr, qt.IsFalse, qt.Commentf("result: %s", text))
	c.Assert(text, checkers.JSONPathEquals("$.total"), float64(3))

	text, _ = callTool(c, cl, "asdfw_shims", map[string]any{"tool": "nodejs"})
	c.Assert(text, checkers.JSONPathEquals("$.total"), float64(2))
	c.Assert(text, checkers.JSONPathEquals("$.shims[0].command"), "node.exe")
	c.Assert(text, checkers.JSONPathEquals("$.shims[0].kind"), "native")
	c.Assert(text, checkers.JSONPathEquals("$.shims[1].command"), "npm.cmd")
	c.Assert(text, checkers.JSONPathEquals("$.shims[1].kind"), "script")
}
