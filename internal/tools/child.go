package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvbaena/cradle/internal/store"
)

// ChildTools handles the child profile tools.
type ChildTools struct {
	store *store.Store
}

// NewChildTools creates a ChildTools handler.
func NewChildTools(s *store.Store) *ChildTools {
	return &ChildTools{store: s}
}

// Definitions returns the child tool schemas.
func (t *ChildTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("create-child",
			mcp.WithDescription("Create a child profile."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Child's name")),
			mcp.WithString("birthDate", mcp.Required(), mcp.Description("Birth date, RFC 3339 or YYYY-MM-DD")),
			mcp.WithString("gender", mcp.Description("Optional gender")),
		),
		mcp.NewTool("get-children",
			mcp.WithDescription("List all child profiles."),
		),
		mcp.NewTool("get-child",
			mcp.WithDescription("Fetch a single child profile by id."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
		),
	}
}

// Handle dispatches a child tool call by name.
func (t *ChildTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "create-child":
		return t.create(ctx, req)
	case "get-children":
		return t.list(ctx, req)
	case "get-child":
		return t.get(ctx, req)
	default:
		return unknownTool("child", req.Params.Name), nil
	}
}

type childCreateResult struct {
	Success bool         `json:"success"`
	ChildID string       `json:"childId"`
	Child   *store.Child `json:"child"`
}

func (t *ChildTools) create(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	birthStr := req.GetString("birthDate", "")
	birthDate, err := parseBirthDate(birthStr)
	if err != nil {
		return mcp.NewToolResultError("'birthDate' must be RFC 3339 or YYYY-MM-DD"), nil
	}

	child, err := t.store.CreateChild(ctx, name, birthDate, req.GetString("gender", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create child: %v", err)), nil
	}

	return jsonResult(childCreateResult{Success: true, ChildID: child.ID, Child: child}), nil
}

func parseBirthDate(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", s)
}

type childListResult struct {
	Children []store.Child `json:"children"`
}

func (t *ChildTools) list(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	children, err := t.store.ListChildren(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list children: %v", err)), nil
	}
	if children == nil {
		children = []store.Child{}
	}
	return jsonResult(childListResult{Children: children}), nil
}

func (t *ChildTools) get(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}

	child, err := t.store.GetChild(ctx, childID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load child: %v", err)), nil
	}
	if child == nil {
		return mcp.NewToolResultError("Child not found."), nil
	}
	return jsonResult(child), nil
}
