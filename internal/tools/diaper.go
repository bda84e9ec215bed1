package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvbaena/cradle/internal/query"
	"github.com/jvbaena/cradle/internal/store"
)

// DiaperTools handles the diaper tracking tools.
type DiaperTools struct {
	store *store.Store
}

// NewDiaperTools creates a DiaperTools handler.
func NewDiaperTools(s *store.Store) *DiaperTools {
	return &DiaperTools{store: s}
}

// Definitions returns the diaper tool schemas.
func (t *DiaperTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("log-diaper",
			mcp.WithDescription("Record a diaper change."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("type", mcp.Required(), mcp.Description("Change type: WET, DIRTY, BOTH or DRY")),
			mcp.WithString("time", mcp.Description("Change time, RFC 3339 (default: now)")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("get-diaper-summary",
			mcp.WithDescription("Summarize a child's diaper changes over a period."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("period", mcp.Description("today, week or month (default today)")),
		),
		queryTool("query-diaper-records",
			"Query diaper records with date range, pagination and optional page-scoped summary.",
			mcp.WithString("type", mcp.Description("Filter by change type: WET, DIRTY, BOTH or DRY")),
		),
	}
}

// Handle dispatches a diaper tool call by name.
func (t *DiaperTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "log-diaper":
		return t.log(ctx, req)
	case "get-diaper-summary":
		return t.summary(ctx, req)
	case "query-diaper-records":
		return t.query(ctx, req)
	default:
		return unknownTool("diaper", req.Params.Name), nil
	}
}

type diaperLogResult struct {
	Success  bool   `json:"success"`
	DiaperID string `json:"diaperId"`
	Type     string `json:"type"`
	Time     string `json:"time"`
}

type diaperRecordView struct {
	ID    string  `json:"id"`
	Time  string  `json:"time"`
	Type  string  `json:"type"`
	Notes *string `json:"notes,omitempty"`
}

func diaperView(r store.DiaperRecord) diaperRecordView {
	return diaperRecordView{
		ID:    r.ID,
		Time:  r.ChangedAt.UTC().Format(time.RFC3339),
		Type:  r.Type,
		Notes: r.Notes,
	}
}

func validDiaperType(s string) bool {
	switch s {
	case store.DiaperWet, store.DiaperDirty, store.DiaperBoth, store.DiaperDry:
		return true
	}
	return false
}

func (t *DiaperTools) log(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	diaperType := req.GetString("type", "")
	if !validDiaperType(diaperType) {
		return mcp.NewToolResultError("'type' must be WET, DIRTY, BOTH or DRY"), nil
	}

	rec, err := t.store.CreateDiaper(ctx, childID, diaperType, timeArg(req, "time", now()), req.GetString("notes", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log diaper: %v", err)), nil
	}

	return jsonResult(diaperLogResult{
		Success:  true,
		DiaperID: rec.ID,
		Type:     rec.Type,
		Time:     rec.ChangedAt.UTC().Format(time.RFC3339),
	}), nil
}

type diaperSummary struct {
	TotalChanges int `json:"totalChanges"`
	WetCount     int `json:"wetCount"`
	DirtyCount   int `json:"dirtyCount"`
	DryCount     int `json:"dryCount"`
}

// summarizeDiapers tallies one set of diaper records. BOTH counts
// toward both the wet and dirty tallies.
func summarizeDiapers(records []store.DiaperRecord) diaperSummary {
	s := diaperSummary{TotalChanges: len(records)}
	for _, r := range records {
		switch r.Type {
		case store.DiaperWet:
			s.WetCount++
		case store.DiaperDirty:
			s.DirtyCount++
		case store.DiaperBoth:
			s.WetCount++
			s.DirtyCount++
		case store.DiaperDry:
			s.DryCount++
		}
	}
	return s
}

type diaperPeriodSummary struct {
	ChildID   string             `json:"childId"`
	Period    string             `json:"period"`
	DateRange query.RangeStrings `json:"dateRange"`
	diaperSummary
	RecentRecords []diaperRecordView `json:"recentRecords"`
}

func (t *DiaperTools) summary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	period := req.GetString("period", "today")
	rng := query.ResolvePeriod(period, now())

	records, err := t.store.ListDiapers(ctx, store.RecordFilter{
		ChildID: childID, Since: rng.Start, Until: rng.End,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load diaper records: %v", err)), nil
	}

	out := diaperPeriodSummary{
		ChildID:       childID,
		Period:        period,
		DateRange:     rangeStrings(rng),
		diaperSummary: summarizeDiapers(records),
		RecentRecords: []diaperRecordView{},
	}
	for i, r := range records {
		if i == 5 {
			break
		}
		out.RecentRecords = append(out.RecentRecords, diaperView(r))
	}
	return jsonResult(out), nil
}

func (t *DiaperTools) query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseQueryArgs(req)
	if errResult != nil {
		return errResult, nil
	}

	filter := store.RecordFilter{
		ChildID:   args.ChildID,
		Since:     args.Range.Start,
		Until:     args.Range.End,
		Limit:     args.Limit,
		Offset:    args.Offset,
		Ascending: args.Ascending,
		Type:      req.GetString("type", ""),
	}

	records, err := t.store.ListDiapers(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query diaper records: %v", err)), nil
	}
	total, err := t.store.CountDiapers(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count diaper records: %v", err)), nil
	}

	views := make([]diaperRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, diaperView(r))
	}

	resp := query.NewResponse(views, total, args.Limit, args.Offset, args.Range)
	if args.IncludeSummary {
		// Page-scoped: totals reflect the returned page, not the full range.
		resp.Summary = summarizeDiapers(records)
	}
	return jsonResult(resp), nil
}
