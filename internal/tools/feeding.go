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

// FeedingTools handles the feeding tracking tools. Breastfeeds are
// timed intervals; bottle and solids feeds are logged as single
// events.
type FeedingTools struct {
	store *store.Store
}

// NewFeedingTools creates a FeedingTools handler.
func NewFeedingTools(s *store.Store) *FeedingTools {
	return &FeedingTools{store: s}
}

// Definitions returns the feeding tool schemas.
func (t *FeedingTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("start-breastfeeding",
			mcp.WithDescription("Start a breastfeeding timer. Fails if a breastfeed is already active."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("side", mcp.Description("Nursing side: LEFT or RIGHT")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("end-breastfeeding",
			mcp.WithDescription("End an active breastfeed and compute its duration."),
			mcp.WithString("feedingId", mcp.Required(), mcp.Description("Feeding record identifier")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("log-feeding",
			mcp.WithDescription("Record a feeding retroactively: BREAST (side, optional end time), BOTTLE (amountMl) or SOLIDS (foods)."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("type", mcp.Required(), mcp.Description("Feeding type: BREAST, BOTTLE or SOLIDS")),
			mcp.WithString("startTime", mcp.Required(), mcp.Description("Feed time, RFC 3339")),
			mcp.WithString("endTime", mcp.Description("Feed end, RFC 3339 (BREAST only)")),
			mcp.WithString("side", mcp.Description("Nursing side: LEFT or RIGHT (BREAST)")),
			mcp.WithNumber("amountMl", mcp.Description("Volume in millilitres (BOTTLE)")),
			mcp.WithString("foods", mcp.Description("Comma-separated foods offered (SOLIDS)")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("get-feeding-summary",
			mcp.WithDescription("Summarize a child's feedings over a period, with the most recent records."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("period", mcp.Description("today, week or month (default today)")),
		),
		queryTool("query-feeding-records",
			"Query feeding records with date range, pagination and optional page-scoped summary.",
			mcp.WithString("type", mcp.Description("Filter by feeding type: BREAST, BOTTLE or SOLIDS")),
		),
	}
}

// Handle dispatches a feeding tool call by name.
func (t *FeedingTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "start-breastfeeding":
		return t.start(ctx, req)
	case "end-breastfeeding":
		return t.end(ctx, req)
	case "log-feeding":
		return t.log(ctx, req)
	case "get-feeding-summary":
		return t.summary(ctx, req)
	case "query-feeding-records":
		return t.query(ctx, req)
	default:
		return unknownTool("feeding", req.Params.Name), nil
	}
}

type feedingStartResult struct {
	timer.StartResult
	FeedingID string  `json:"feedingId"`
	Side      *string `json:"side,omitempty"`
}

type feedingEndResult struct {
	timer.EndResult
	FeedingID string `json:"feedingId"`
}

type feedingLogResult struct {
	timer.LogResult
	FeedingID string `json:"feedingId"`
	Type      string `json:"type"`
}

type feedingRecordView struct {
	timer.RecordView
	Type     string   `json:"type"`
	Side     *string  `json:"side,omitempty"`
	AmountML *float64 `json:"amountMl,omitempty"`
	Foods    *string  `json:"foods,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

func feedingView(r store.FeedingRecord, base timer.RecordView) feedingRecordView {
	return feedingRecordView{
		RecordView: base,
		Type:       r.Type,
		Side:       r.Side,
		AmountML:   r.AmountML,
		Foods:      r.Foods,
		Notes:      r.Notes,
	}
}

func (t *FeedingTools) start(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}

	active, err := t.store.ActiveBreastfeeding(ctx, childID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to check active breastfeeding: %v", err)), nil
	}
	if active != nil {
		return mcp.NewToolResultError("There is already an active breastfeeding session for this child. End it before starting a new one."), nil
	}

	rec, err := t.store.CreateFeeding(ctx, store.CreateFeedingParams{
		ChildID:   childID,
		Type:      store.FeedBreast,
		Side:      req.GetString("side", ""),
		StartedAt: now(),
		Notes:     req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start breastfeeding: %v", err)), nil
	}

	return jsonResult(feedingStartResult{
		StartResult: timer.NewStartResult("Breastfeeding timer started", rec.StartedAt),
		FeedingID:   rec.ID,
		Side:        rec.Side,
	}), nil
}

func (t *FeedingTools) end(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("feedingId", "")
	if id == "" {
		return mcp.NewToolResultError("'feedingId' is required"), nil
	}

	rec, err := t.store.EndFeeding(ctx, id, now(), req.GetString("notes", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to end breastfeeding: %v", err)), nil
	}
	if rec == nil {
		return mcp.NewToolResultError("No active breastfeeding session found with that id."), nil
	}

	return jsonResult(feedingEndResult{
		EndResult: timer.NewEndResult(rec.StartedAt, *rec.EndedAt),
		FeedingID: rec.ID,
	}), nil
}

func (t *FeedingTools) log(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	start := optTimeArg(req, "startTime")
	if start == nil {
		return mcp.NewToolResultError("'startTime' is required (RFC 3339)"), nil
	}

	p := store.CreateFeedingParams{
		ChildID:   childID,
		Type:      req.GetString("type", ""),
		Side:      req.GetString("side", ""),
		AmountML:  floatPtrArg(req, "amountMl"),
		Foods:     req.GetString("foods", ""),
		StartedAt: *start,
		Notes:     req.GetString("notes", ""),
	}

	switch p.Type {
	case store.FeedBreast:
		if p.Side == "" {
			return mcp.NewToolResultError("'side' is required for breast feedings"), nil
		}
		p.EndedAt = optTimeArg(req, "endTime")
	case store.FeedBottle:
		if p.AmountML == nil {
			return mcp.NewToolResultError("'amountMl' is required for bottle feedings"), nil
		}
	case store.FeedSolids:
		if p.Foods == "" {
			return mcp.NewToolResultError("'foods' is required for solids feedings"), nil
		}
	default:
		return mcp.NewToolResultError("'type' must be BREAST, BOTTLE or SOLIDS"), nil
	}

	rec, err := t.store.CreateFeeding(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log feeding: %v", err)), nil
	}

	return jsonResult(feedingLogResult{
		LogResult: timer.NewLogResult(rec.StartedAt, rec.EndedAt),
		FeedingID: rec.ID,
		Type:      rec.Type,
	}), nil
}

type feedingSummary struct {
	TotalFeedings int     `json:"totalFeedings"`
	BreastCount   int     `json:"breastCount"`
	BottleCount   int     `json:"bottleCount"`
	SolidsCount   int     `json:"solidsCount"`
	BreastMinutes int     `json:"breastMinutes"`
	BreastTime    string  `json:"breastTime"`
	BottleTotalML float64 `json:"bottleTotalMl"`
}

// summarizeFeedings aggregates one set of feeding records. Breast time
// accrues only for completed feeds; bottle volume always accrues, since
// bottle records have no end time concept.
func summarizeFeedings(records []store.FeedingRecord) feedingSummary {
	s := feedingSummary{TotalFeedings: len(records)}
	var breast []store.FeedingRecord
	for _, r := range records {
		switch r.Type {
		case store.FeedBreast:
			s.BreastCount++
			breast = append(breast, r)
		case store.FeedBottle:
			s.BottleCount++
			if r.AmountML != nil {
				s.BottleTotalML += *r.AmountML
			}
		case store.FeedSolids:
			s.SolidsCount++
		}
	}
	s.BreastMinutes = timer.TotalMinutes(breast)
	s.BreastTime = units.FormatMinutes(s.BreastMinutes)
	return s
}

type feedingPeriodSummary struct {
	ChildID   string             `json:"childId"`
	Period    string             `json:"period"`
	DateRange query.RangeStrings `json:"dateRange"`
	feedingSummary
	BottleTotal   string              `json:"bottleTotal"`
	RecentRecords []feedingRecordView `json:"recentRecords"`
}

func (t *FeedingTools) summary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	period := req.GetString("period", "today")
	rng := query.ResolvePeriod(period, now())

	records, err := t.store.ListFeedings(ctx, store.RecordFilter{
		ChildID: childID, Since: rng.Start, Until: rng.End,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load feeding records: %v", err)), nil
	}

	out := feedingPeriodSummary{
		ChildID:        childID,
		Period:         period,
		DateRange:      rangeStrings(rng),
		feedingSummary: summarizeFeedings(records),
	}
	out.BottleTotal = units.FormatVolume(out.BottleTotalML)
	out.RecentRecords = timer.MapRecent(records, 5, feedingView)
	if out.RecentRecords == nil {
		out.RecentRecords = []feedingRecordView{}
	}
	return jsonResult(out), nil
}

func (t *FeedingTools) query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	records, err := t.store.ListFeedings(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query feeding records: %v", err)), nil
	}
	total, err := t.store.CountFeedings(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count feeding records: %v", err)), nil
	}

	views := make([]feedingRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, feedingView(r, timer.View(r.Span())))
	}

	resp := query.NewResponse(views, total, args.Limit, args.Offset, args.Range)
	if args.IncludeSummary {
		resp.Summary = summarizeFeedings(records)
	}
	return jsonResult(resp), nil
}
