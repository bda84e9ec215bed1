// Package tools implements the MCP tool handlers for every tracking
// domain.
//
// Each domain is one handler struct with the store injected via its
// constructor. Definitions() returns the domain's tool schemas and a
// single Handle dispatches on the requested tool name, so an
// unrecognized name inside a domain fails with an "Unknown <domain>
// tool" error.
//
// Successful results are JSON envelopes serialized into the text
// content of the MCP result. Validation and precondition failures are
// returned with mcp.NewToolResultError and a nil Go error.
package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvbaena/cradle/internal/query"
)

// now is a package-level var to allow test injection of the clock.
var now = time.Now

// floatPtrArg extracts an optional numeric argument (JSON numbers are
// float64), returning nil when the key is missing or not a number.
func floatPtrArg(req mcp.CallToolRequest, key string) *float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// timeArg parses an optional RFC 3339 timestamp argument, falling back
// to def when the key is missing or unparseable.
func timeArg(req mcp.CallToolRequest, key string, def time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, req.GetString(key, "")); err == nil {
		return t
	}
	return def
}

// optTimeArg parses an optional RFC 3339 timestamp argument, returning
// nil when absent or unparseable.
func optTimeArg(req mcp.CallToolRequest, key string) *time.Time {
	if t, err := time.Parse(time.RFC3339, req.GetString(key, "")); err == nil {
		return &t
	}
	return nil
}

// jsonResult serializes a response envelope into a text tool result.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// rangeStrings serializes a resolved range for summary responses.
func rangeStrings(r query.DateRange) query.RangeStrings {
	return query.RangeStrings{
		Start: r.Start.UTC().Format(time.RFC3339),
		End:   r.End.UTC().Format(time.RFC3339),
	}
}

// unknownTool is the default branch of every domain dispatch.
func unknownTool(domain, name string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Unknown %s tool: %s", domain, name))
}

// ─── Shared query request shape ──────────────────────────────────────────────

// queryArgs is the destructured common request of every
// query-*-records tool.
type queryArgs struct {
	ChildID        string
	Range          query.DateRange
	Limit          int
	Offset         int
	Ascending      bool
	IncludeSummary bool
}

// parseQueryArgs destructures the shared query parameters. The only
// hard requirement is childId; everything else is defaulted or
// clamped, never rejected.
func parseQueryArgs(req mcp.CallToolRequest) (queryArgs, *mcp.CallToolResult) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return queryArgs{}, mcp.NewToolResultError("'childId' is required")
	}
	return queryArgs{
		ChildID:        childID,
		Range:          query.ParseDateRange(req.GetString("startDate", ""), req.GetString("endDate", ""), now()),
		Limit:          query.SanitizeLimit(floatPtrArg(req, "limit")),
		Offset:         query.SanitizeOffset(floatPtrArg(req, "offset")),
		Ascending:      query.SanitizeOrder(req.GetString("orderBy", "")) == "asc",
		IncludeSummary: boolArg(req, "includeSummary", false),
	}, nil
}

// withQueryParams returns the tool options shared by every
// query-*-records tool.
func withQueryParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("childId",
			mcp.Required(),
			mcp.Description("Child identifier"),
		),
		mcp.WithString("startDate",
			mcp.Description("Range start, RFC 3339 (default: 7 days before endDate)"),
		),
		mcp.WithString("endDate",
			mcp.Description("Range end, RFC 3339 (default: now)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Page size, 1-500 (default 100)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Page offset (default 0)"),
		),
		mcp.WithString("orderBy",
			mcp.Description("Sort order: asc or desc (default desc)"),
		),
		mcp.WithBoolean("includeSummary",
			mcp.Description("Include aggregates computed over the returned page"),
		),
	}
}

// queryTool builds a query-*-records tool definition: description
// first, the shared query parameters, then any domain extras.
func queryTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(description)}
	opts = append(opts, withQueryParams()...)
	opts = append(opts, extra...)
	return mcp.NewTool(name, opts...)
}
