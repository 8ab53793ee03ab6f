package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/i2y/foxbridge/internal/domain"
)

// Tool names registered on the MCP server.
const (
	ToolProjectInfo      = "apifox_project_info"
	ToolSelectCategories = "apifox_select_categories"
	ToolListInterfaces   = "apifox_list_interfaces"
)

// ToolDefaults supplies argument values a tool call may omit.
type ToolDefaults struct {
	Token      string
	Categories []int64
}

// ServeToolsUseCase exposes the engine operations as MCP tools.
type ServeToolsUseCase struct {
	sync     *SyncProjectUseCase
	server   MCPServerAdapter
	defaults ToolDefaults
	logger   *slog.Logger
}

// NewServeToolsUseCase creates a new ServeToolsUseCase.
func NewServeToolsUseCase(sync *SyncProjectUseCase, server MCPServerAdapter, defaults ToolDefaults, logger *slog.Logger) *ServeToolsUseCase {
	return &ServeToolsUseCase{
		sync:     sync,
		server:   server,
		defaults: defaults,
		logger:   logger.With("usecase", "ServeTools"),
	}
}

// Execute registers every tool with the MCP server.
func (uc *ServeToolsUseCase) Execute() {
	tokenOpt := mcp.WithString("token", mcp.Description("Apifox share id; falls back to the configured token"))

	uc.server.AddTool(mcp.NewTool(ToolProjectInfo,
		mcp.WithDescription("Load an Apifox shared project and return its YApi project info with top-level categories"),
		tokenOpt,
	), uc.handleProjectInfo)

	uc.server.AddTool(mcp.NewTool(ToolSelectCategories,
		mcp.WithDescription("Return the folder ids selected by a list of ids, in tree order; an empty list selects every folder"),
		tokenOpt,
		mcp.WithArray("ids", mcp.Description("Folder ids to keep"), mcp.Items(map[string]any{"type": "integer"})),
	), uc.handleSelectCategories)

	uc.server.AddTool(mcp.NewTool(ToolListInterfaces,
		mcp.WithDescription("Synthesize the YApi interface records of one category"),
		tokenOpt,
		mcp.WithNumber("category_id", mcp.Required(), mcp.Description("Folder id of the category")),
	), uc.handleListInterfaces)

	uc.logger.Info("Registered MCP tools", slog.Int("count", 3))
}

func (uc *ServeToolsUseCase) handleProjectInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	session, err := uc.sync.Session(ctx, uc.token(args))
	if err != nil {
		return uc.toolError(ToolProjectInfo, err), nil
	}
	return uc.toolJSON(ToolProjectInfo, session.ProjectInfo())
}

func (uc *ServeToolsUseCase) handleSelectCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ids, present, err := int64List(args, "ids")
	if err != nil {
		return uc.toolError(ToolSelectCategories, err), nil
	}
	if !present {
		ids = uc.defaults.Categories
	}
	session, err := uc.sync.Session(ctx, uc.token(args))
	if err != nil {
		return uc.toolError(ToolSelectCategories, err), nil
	}
	selected := uc.sync.Engine().SelectCategories(session, domain.CategoryConfig{IDs: ids})
	return uc.toolJSON(ToolSelectCategories, selected)
}

func (uc *ServeToolsUseCase) handleListInterfaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := int64Arg(args, "category_id")
	if err != nil {
		return uc.toolError(ToolListInterfaces, err), nil
	}
	session, err := uc.sync.Session(ctx, uc.token(args))
	if err != nil {
		return uc.toolError(ToolListInterfaces, err), nil
	}
	list, err := uc.sync.Engine().ListInterfaces(ctx, session, domain.SyntheticalConfig{ID: id})
	if err != nil {
		return uc.toolError(ToolListInterfaces, err), nil
	}
	return uc.toolJSON(ToolListInterfaces, list)
}

func (uc *ServeToolsUseCase) token(args map[string]any) string {
	if s, ok := args["token"].(string); ok && s != "" {
		return s
	}
	return uc.defaults.Token
}

func (uc *ServeToolsUseCase) toolJSON(tool string, v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		uc.logger.Error("Failed to encode tool result", slog.String("tool", tool), slog.Any("error", err))
		return nil, fmt.Errorf("failed to encode %s result: %w", tool, err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (uc *ServeToolsUseCase) toolError(tool string, err error) *mcp.CallToolResult {
	uc.logger.Warn("Tool call failed", slog.String("tool", tool), slog.Any("error", err))
	return mcp.NewToolResultError(err.Error())
}

// int64Arg reads a whole number argument; JSON numbers arrive as float64.
func int64Arg(args map[string]any, name string) (int64, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("argument %q is required", name)
	}
	return toInt64(name, v)
}

func int64List(args map[string]any, name string) ([]int64, bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, false, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, true, fmt.Errorf("argument %q must be an array", name)
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		n, err := toInt64(name, item)
		if err != nil {
			return nil, true, err
		}
		out = append(out, n)
	}
	return out, true, nil
}

func toInt64(name string, v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("argument %q must be a whole number", name)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("argument %q must be a number, got %T", name, v)
	}
}
