// Package mcp provides the stdio MCP server exposing read-only asdfw
// resolution tools for coding agents.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/asdfw/internal/buildinfo"
	"github.com/go-ports/asdfw/internal/models"
	"github.com/go-ports/asdfw/internal/service"
)

const whichDescription = `Resolve a command name (as typed on the shell, e.g. "node" or "node.exe") to the executable asdfw would run from the current directory. Returns the owning tool, the selected version and the absolute path. Use this instead of guessing which tool version is active.`

const currentDescription = `Report the version selected for a tool, or for every installed tool when "tool" is omitted, together with where the selection came from (env, local:<file>, global). An empty version means nothing pins the tool.`

const shimsDescription = `List the shims asdfw has generated: each command name with its owning tool and shim kind (native or script). Optionally filter to one tool.`

// NewServer creates and registers all asdfw tools on a new MCP server.
// It is separate from Serve so that tests and other callers can obtain a
// fully configured server without committing to the stdio transport.
func NewServer(svc *service.Service) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("asdfw", buildinfo.Version)
	registerTools(s, svc)
	return s
}

// Serve runs the stdio MCP server over svc, blocking until stdin closes.
func Serve(_ context.Context, svc *service.Service) error {
	return mcpserver.ServeStdio(NewServer(svc))
}

func registerTools(s *mcpserver.MCPServer, svc *service.Service) {
	s.AddTool(mcp.NewTool("asdfw_which",
		mcp.WithDescription(whichDescription),
		mcp.WithString("command",
			mcp.Description("Command name, with or without extension."),
			mcp.Required(),
		),
		mcp.WithString("tool",
			mcp.Description("Owning tool. Skips the shim database lookup when given."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleWhich(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("asdfw_current",
		mcp.WithDescription(currentDescription),
		mcp.WithString("tool",
			mcp.Description("Tool name. All installed tools if omitted."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCurrent(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("asdfw_shims",
		mcp.WithDescription(shimsDescription),
		mcp.WithString("tool",
			mcp.Description("Only list shims owned by this tool."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleShims(ctx, svc, req)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handleWhich(_ context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cmd := req.GetString("command", "")
	if cmd == "" {
		return mcp.NewToolResultError("command is required"), nil
	}
	tool := req.GetString("tool", "")

	var (
		res *models.Resolution
		err error
	)
	if tool != "" {
		res, err = svc.ResolveWithTool(cmd, tool)
	} else {
		res, err = svc.Resolve(cmd)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"command":      res.Command,
		"tool":         res.Tool,
		"version":      res.Version,
		"path":         res.Path,
		"install_root": res.InstallRoot,
	})
}

func handleCurrent(_ context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var tvs []models.ToolVersion
	if tool := req.GetString("tool", ""); tool != "" {
		tv, err := svc.Current(tool)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tvs = []models.ToolVersion{tv}
	} else {
		var err error
		if tvs, err = svc.CurrentAll(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	tools := make([]map[string]any, 0, len(tvs))
	for _, tv := range tvs {
		tools = append(tools, toolVersionMap(tv))
	}
	return jsonResult(map[string]any{
		"total": len(tools),
		"tools": tools,
	})
}

func handleShims(_ context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := svc.ShimEntries()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	records = filterShims(records, req.GetString("tool", ""))

	shims := make([]map[string]any, 0, len(records))
	for _, r := range records {
		shims = append(shims, map[string]any{
			"command": r.Command,
			"tool":    r.Tool,
			"kind":    r.Kind.String(),
		})
	}
	return jsonResult(map[string]any{
		"total": len(shims),
		"shims": shims,
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func toolVersionMap(tv models.ToolVersion) map[string]any {
	source := ""
	if tv.Version != "" {
		source = tv.Source.String()
	}
	return map[string]any{
		"tool":    tv.Tool,
		"version": tv.Version,
		"source":  source,
	}
}

func filterShims(records []models.ShimRecord, tool string) []models.ShimRecord {
	if tool == "" {
		return records
	}
	out := make([]models.ShimRecord, 0, len(records))
	for _, r := range records {
		if r.Tool == tool {
			out = append(out, r)
		}
	}
	return out
}
