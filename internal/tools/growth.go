package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvbaena/cradle/internal/query"
	"github.com/jvbaena/cradle/internal/store"
	"github.com/jvbaena/cradle/internal/units"
)

// GrowthTools handles the growth measurement tools.
type GrowthTools struct {
	store *store.Store
}

// NewGrowthTools creates a GrowthTools handler.
func NewGrowthTools(s *store.Store) *GrowthTools {
	return &GrowthTools{store: s}
}

// Definitions returns the growth tool schemas.
func (t *GrowthTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("log-growth",
			mcp.WithDescription("Record a growth measurement. At least one of weight, height or head circumference is required."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithNumber("weightKg", mcp.Description("Weight in kilograms")),
			mcp.WithNumber("heightCm", mcp.Description("Height in centimetres")),
			mcp.WithNumber("headCircumferenceCm", mcp.Description("Head circumference in centimetres")),
			mcp.WithString("time", mcp.Description("Measurement time, RFC 3339 (default: now)")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("get-growth-history",
			mcp.WithDescription("List a child's growth measurements, newest first."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithNumber("limit", mcp.Description("Maximum records to return (default 10)")),
		),
		queryTool("query-growth-records",
			"Query growth records with date range, pagination and optional page-scoped summary."),
	}
}

// Handle dispatches a growth tool call by name.
func (t *GrowthTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "log-growth":
		return t.log(ctx, req)
	case "get-growth-history":
		return t.history(ctx, req)
	case "query-growth-records":
		return t.query(ctx, req)
	default:
		return unknownTool("growth", req.Params.Name), nil
	}
}

type growthRecordView struct {
	ID       string   `json:"id"`
	Time     string   `json:"time"`
	WeightKG *float64 `json:"weightKg,omitempty"`
	HeightCM *float64 `json:"heightCm,omitempty"`
	HeadCM   *float64 `json:"headCircumferenceCm,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

func growthView(r store.GrowthRecord) growthRecordView {
	return growthRecordView{
		ID:       r.ID,
		Time:     r.MeasuredAt.UTC().Format(time.RFC3339),
		WeightKG: r.WeightKG,
		HeightCM: r.HeightCM,
		HeadCM:   r.HeadCM,
		Notes:    r.Notes,
	}
}

type growthDelta struct {
	WeightChangeKG *float64 `json:"weightChangeKg,omitempty"`
	WeightChange   *string  `json:"weightChange,omitempty"`
	HeightChangeCM *float64 `json:"heightChangeCm,omitempty"`
	HeightChange   *string  `json:"heightChange,omitempty"`
}

// deltaBetween computes weight/height changes from an older record to
// a newer one. A change is reported only when both records carry the
// measurement.
func deltaBetween(older, newer *store.GrowthRecord) growthDelta {
	var d growthDelta
	if older == nil || newer == nil {
		return d
	}
	if older.WeightKG != nil && newer.WeightKG != nil {
		w := *newer.WeightKG - *older.WeightKG
		ws := units.FormatWeight(w)
		d.WeightChangeKG = &w
		d.WeightChange = &ws
	}
	if older.HeightCM != nil && newer.HeightCM != nil {
		h := *newer.HeightCM - *older.HeightCM
		hs := units.FormatLength(h)
		d.HeightChangeCM = &h
		d.HeightChange = &hs
	}
	return d
}

type growthLogResult struct {
	Success  bool   `json:"success"`
	GrowthID string `json:"growthId"`
	growthRecordView
	SincePrevious *growthDelta `json:"sincePrevious,omitempty"`
}

func (t *GrowthTools) log(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}

	p := store.CreateGrowthParams{
		ChildID:    childID,
		MeasuredAt: timeArg(req, "time", now()),
		WeightKG:   floatPtrArg(req, "weightKg"),
		HeightCM:   floatPtrArg(req, "heightCm"),
		HeadCM:     floatPtrArg(req, "headCircumferenceCm"),
		Notes:      req.GetString("notes", ""),
	}
	if p.WeightKG == nil && p.HeightCM == nil && p.HeadCM == nil {
		return mcp.NewToolResultError("At least one measurement (weightKg, heightCm or headCircumferenceCm) is required"), nil
	}

	// Compare against the immediately preceding measurement by date.
	prev, err := t.store.PreviousGrowth(ctx, childID, p.MeasuredAt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load previous growth record: %v", err)), nil
	}

	rec, err := t.store.CreateGrowth(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log growth: %v", err)), nil
	}

	out := growthLogResult{
		Success:          true,
		GrowthID:         rec.ID,
		growthRecordView: growthView(*rec),
	}
	if prev != nil {
		d := deltaBetween(prev, rec)
		out.SincePrevious = &d
	}
	return jsonResult(out), nil
}

type growthHistoryResult struct {
	ChildID string             `json:"childId"`
	Records []growthRecordView `json:"records"`
}

func (t *GrowthTools) history(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	limit := 10
	if raw := floatPtrArg(req, "limit"); raw != nil && int(*raw) > 0 {
		limit = int(*raw)
	}

	records, err := t.store.ListGrowth(ctx, store.RecordFilter{ChildID: childID, Limit: limit})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load growth history: %v", err)), nil
	}

	out := growthHistoryResult{ChildID: childID, Records: []growthRecordView{}}
	for _, r := range records {
		out.Records = append(out.Records, growthView(r))
	}
	return jsonResult(out), nil
}

type growthSummary struct {
	TotalRecords int    `json:"totalRecords"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
	growthDelta
}

// summarizeGrowth reports the change between the earliest and latest
// records of the set it is given.
func summarizeGrowth(records []store.GrowthRecord) growthSummary {
	s := growthSummary{TotalRecords: len(records)}
	if len(records) < 2 {
		return s
	}
	earliest, latest := &records[0], &records[0]
	for i := range records {
		r := &records[i]
		if r.MeasuredAt.Before(earliest.MeasuredAt) {
			earliest = r
		}
		if r.MeasuredAt.After(latest.MeasuredAt) {
			latest = r
		}
	}
	s.From = earliest.MeasuredAt.UTC().Format(time.RFC3339)
	s.To = latest.MeasuredAt.UTC().Format(time.RFC3339)
	s.growthDelta = deltaBetween(earliest, latest)
	return s
}

func (t *GrowthTools) query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	records, err := t.store.ListGrowth(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query growth records: %v", err)), nil
	}
	total, err := t.store.CountGrowth(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count growth records: %v", err)), nil
	}

	views := make([]growthRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, growthView(r))
	}

	resp := query.NewResponse(views, total, args.Limit, args.Offset, args.Range)
	if args.IncludeSummary {
		resp.Summary = summarizeGrowth(records)
	}
	return jsonResult(resp), nil
}
