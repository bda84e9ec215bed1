package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvbaena/cradle/internal/query"
	"github.com/jvbaena/cradle/internal/store"
	"github.com/jvbaena/cradle/internal/timer"
	"github.com/jvbaena/cradle/internal/units"
)

// PumpingTools handles the pumping tracking tools.
type PumpingTools struct {
	store *store.Store
}

// NewPumpingTools creates a PumpingTools handler.
func NewPumpingTools(s *store.Store) *PumpingTools {
	return &PumpingTools{store: s}
}

// Definitions returns the pumping tool schemas.
func (t *PumpingTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("start-pumping",
			mcp.WithDescription("Start a pumping timer. Fails if a pumping session is already active."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("side", mcp.Description("Pumping side: LEFT, RIGHT or BOTH")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("end-pumping",
			mcp.WithDescription("End an active pumping session, recording the amount expressed."),
			mcp.WithString("pumpingId", mcp.Required(), mcp.Description("Pumping record identifier")),
			mcp.WithNumber("amountMl", mcp.Description("Amount expressed in millilitres")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("log-pumping",
			mcp.WithDescription("Record a pumping session retroactively."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("startTime", mcp.Required(), mcp.Description("Session start, RFC 3339")),
			mcp.WithString("endTime", mcp.Description("Session end, RFC 3339")),
			mcp.WithString("side", mcp.Description("Pumping side: LEFT, RIGHT or BOTH")),
			mcp.WithNumber("amountMl", mcp.Description("Amount expressed in millilitres")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("get-pumping-summary",
			mcp.WithDescription("Summarize a child's pumping sessions over a period, with the most recent records."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("period", mcp.Description("today, week or month (default today)")),
		),
		queryTool("query-pumping-records",
			"Query pumping records with date range, pagination and optional page-scoped summary."),
	}
}

// Handle dispatches a pumping tool call by name.
func (t *PumpingTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "start-pumping":
		return t.start(ctx, req)
	case "end-pumping":
		return t.end(ctx, req)
	case "log-pumping":
		return t.log(ctx, req)
	case "get-pumping-summary":
		return t.summary(ctx, req)
	case "query-pumping-records":
		return t.query(ctx, req)
	default:
		return unknownTool("pumping", req.Params.Name), nil
	}
}

type pumpingStartResult struct {
	timer.StartResult
	PumpingID string  `json:"pumpingId"`
	Side      *string `json:"side,omitempty"`
}

type pumpingEndResult struct {
	timer.EndResult
	PumpingID string   `json:"pumpingId"`
	AmountML  *float64 `json:"amountMl,omitempty"`
}

type pumpingLogResult struct {
	timer.LogResult
	PumpingID string `json:"pumpingId"`
}

type pumpingRecordView struct {
	timer.RecordView
	Side     *string  `json:"side,omitempty"`
	AmountML *float64 `json:"amountMl,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

func pumpingView(r store.PumpingRecord, base timer.RecordView) pumpingRecordView {
	return pumpingRecordView{RecordView: base, Side: r.Side, AmountML: r.AmountML, Notes: r.Notes}
}

func (t *PumpingTools) start(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}

	active, err := t.store.ActivePumping(ctx, childID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to check active pumping: %v", err)), nil
	}
	if active != nil {
		return mcp.NewToolResultError("There is already an active pumping session for this child. End it before starting a new one."), nil
	}

	rec, err := t.store.CreatePumping(ctx, store.CreatePumpingParams{
		ChildID:   childID,
		Side:      req.GetString("side", ""),
		StartedAt: now(),
		Notes:     req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start pumping: %v", err)), nil
	}

	return jsonResult(pumpingStartResult{
		StartResult: timer.NewStartResult("Pumping timer started", rec.StartedAt),
		PumpingID:   rec.ID,
		Side:        rec.Side,
	}), nil
}

func (t *PumpingTools) end(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("pumpingId", "")
	if id == "" {
		return mcp.NewToolResultError("'pumpingId' is required"), nil
	}

	rec, err := t.store.EndPumping(ctx, id, now(), floatPtrArg(req, "amountMl"), req.GetString("notes", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to end pumping: %v", err)), nil
	}
	if rec == nil {
		return mcp.NewToolResultError("No active pumping session found with that id."), nil
	}

	return jsonResult(pumpingEndResult{
		EndResult: timer.NewEndResult(rec.StartedAt, *rec.EndedAt),
		PumpingID: rec.ID,
		AmountML:  rec.AmountML,
	}), nil
}

func (t *PumpingTools) log(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	start := optTimeArg(req, "startTime")
	if start == nil {
		return mcp.NewToolResultError("'startTime' is required (RFC 3339)"), nil
	}

	rec, err := t.store.CreatePumping(ctx, store.CreatePumpingParams{
		ChildID:   childID,
		Side:      req.GetString("side", ""),
		AmountML:  floatPtrArg(req, "amountMl"),
		StartedAt: *start,
		EndedAt:   optTimeArg(req, "endTime"),
		Notes:     req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log pumping: %v", err)), nil
	}

	return jsonResult(pumpingLogResult{
		LogResult: timer.NewLogResult(rec.StartedAt, rec.EndedAt),
		PumpingID: rec.ID,
	}), nil
}

type pumpingSummary struct {
	TotalSessions int     `json:"totalSessions"`
	TotalMinutes  int     `json:"totalMinutes"`
	TotalAmountML float64 `json:"totalAmountMl"`
	LeftCount     int     `json:"leftCount"`
	RightCount    int     `json:"rightCount"`
}

func summarizePumpings(records []store.PumpingRecord) pumpingSummary {
	s := pumpingSummary{TotalSessions: len(records)}
	for _, r := range records {
		if r.AmountML != nil {
			s.TotalAmountML += *r.AmountML
		}
		if r.Side == nil {
			continue
		}
		switch *r.Side {
		case "LEFT":
			s.LeftCount++
		case "RIGHT":
			s.RightCount++
		case "BOTH":
			s.LeftCount++
			s.RightCount++
		}
	}
	s.TotalMinutes = timer.TotalMinutes(records)
	return s
}

type pumpingPeriodSummary struct {
	ChildID   string             `json:"childId"`
	Period    string             `json:"period"`
	DateRange query.RangeStrings `json:"dateRange"`
	pumpingSummary
	TotalAmount   string              `json:"totalAmount"`
	RecentRecords []pumpingRecordView `json:"recentRecords"`
}

func (t *PumpingTools) summary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	period := req.GetString("period", "today")
	rng := query.ResolvePeriod(period, now())

	records, err := t.store.ListPumpings(ctx, store.RecordFilter{
		ChildID: childID, Since: rng.Start, Until: rng.End,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load pumping records: %v", err)), nil
	}

	out := pumpingPeriodSummary{
		ChildID:        childID,
		Period:         period,
		DateRange:      rangeStrings(rng),
		pumpingSummary: summarizePumpings(records),
	}
	out.TotalAmount = units.FormatVolume(out.TotalAmountML)
	out.RecentRecords = timer.MapRecent(records, 5, pumpingView)
	if out.RecentRecords == nil {
		out.RecentRecords = []pumpingRecordView{}
	}
	return jsonResult(out), nil
}

func (t *PumpingTools) query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
	}

	records, err := t.store.ListPumpings(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query pumping records: %v", err)), nil
	}
	total, err := t.store.CountPumpings(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count pumping records: %v", err)), nil
	}

	views := make([]pumpingRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, pumpingView(r, timer.View(r.Span())))
	}

	resp := query.NewResponse(views, total, args.Limit, args.Offset, args.Range)
	if args.IncludeSummary {
		resp.Summary = summarizePumpings(records)
	}
	return jsonResult(resp), nil
}
