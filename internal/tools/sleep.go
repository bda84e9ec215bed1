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

// SleepTools handles the sleep tracking tools.
type SleepTools struct {
	store *store.Store
}

// NewSleepTools creates a SleepTools handler.
func NewSleepTools(s *store.Store) *SleepTools {
	return &SleepTools{store: s}
}

// Definitions returns the sleep tool schemas.
func (t *SleepTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("start-sleep",
			mcp.WithDescription("Start a sleep timer for a child. Fails if a sleep session is already active."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("type", mcp.Description("Sleep type: NAP or NIGHT (default NAP)")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("end-sleep",
			mcp.WithDescription("End an active sleep session and compute its duration."),
			mcp.WithString("sleepId", mcp.Required(), mcp.Description("Sleep record identifier")),
			mcp.WithString("quality", mcp.Description("Sleep quality: GOOD, FAIR or POOR")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("log-sleep",
			mcp.WithDescription("Record a sleep retroactively. Omit endTime to leave it ongoing."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("startTime", mcp.Required(), mcp.Description("Sleep start, RFC 3339")),
			mcp.WithString("endTime", mcp.Description("Sleep end, RFC 3339")),
			mcp.WithString("type", mcp.Description("Sleep type: NAP or NIGHT (default NAP)")),
			mcp.WithString("quality", mcp.Description("Sleep quality: GOOD, FAIR or POOR")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("get-sleep-summary",
			mcp.WithDescription("Summarize a child's sleep over a period, with the most recent records."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("period", mcp.Description("today, week or month (default today)")),
		),
		queryTool("query-sleep-records",
			"Query sleep records with date range, pagination and optional page-scoped summary.",
			mcp.WithString("type", mcp.Description("Filter by sleep type: NAP or NIGHT")),
		),
	}
}

// Handle dispatches a sleep tool call by name.
func (t *SleepTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "start-sleep":
		return t.start(ctx, req)
	case "end-sleep":
		return t.end(ctx, req)
	case "log-sleep":
		return t.log(ctx, req)
	case "get-sleep-summary":
		return t.summary(ctx, req)
	case "query-sleep-records":
		return t.query(ctx, req)
	default:
		return unknownTool("sleep", req.Params.Name), nil
	}
}

type sleepStartResult struct {
	timer.StartResult
	SleepID string `json:"sleepId"`
}

type sleepEndResult struct {
	timer.EndResult
	SleepID string `json:"sleepId"`
}

type sleepLogResult struct {
	timer.LogResult
	SleepID string `json:"sleepId"`
}

type sleepRecordView struct {
	timer.RecordView
	Type    string  `json:"type"`
	Quality *string `json:"quality,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

func sleepView(r store.SleepRecord, base timer.RecordView) sleepRecordView {
	return sleepRecordView{RecordView: base, Type: r.Type, Quality: r.Quality, Notes: r.Notes}
}

func (t *SleepTools) start(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}

	active, err := t.store.ActiveSleep(ctx, childID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to check active sleep: %v", err)), nil
	}
	if active != nil {
		return mcp.NewToolResultError("There is already an active sleep session for this child. End it before starting a new one."), nil
	}

	rec, err := t.store.CreateSleep(ctx, store.CreateSleepParams{
		ChildID:   childID,
		Type:      req.GetString("type", store.SleepNap),
		StartedAt: now(),
		Notes:     req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start sleep: %v", err)), nil
	}

	return jsonResult(sleepStartResult{
		StartResult: timer.NewStartResult("Sleep timer started", rec.StartedAt),
		SleepID:     rec.ID,
	}), nil
}

func (t *SleepTools) end(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("sleepId", "")
	if id == "" {
		return mcp.NewToolResultError("'sleepId' is required"), nil
	}

	rec, err := t.store.EndSleep(ctx, id, now(), req.GetString("quality", ""), req.GetString("notes", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to end sleep: %v", err)), nil
	}
	if rec == nil {
		return mcp.NewToolResultError("No active sleep session found with that id."), nil
	}

	return jsonResult(sleepEndResult{
		EndResult: timer.NewEndResult(rec.StartedAt, *rec.EndedAt),
		SleepID:   rec.ID,
	}), nil
}

func (t *SleepTools) log(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	start := optTimeArg(req, "startTime")
	if start == nil {
		return mcp.NewToolResultError("'startTime' is required (RFC 3339)"), nil
	}

	rec, err := t.store.CreateSleep(ctx, store.CreateSleepParams{
		ChildID:   childID,
		Type:      req.GetString("type", store.SleepNap),
		Quality:   req.GetString("quality", ""),
		StartedAt: *start,
		EndedAt:   optTimeArg(req, "endTime"),
		Notes:     req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log sleep: %v", err)), nil
	}

	return jsonResult(sleepLogResult{
		LogResult: timer.NewLogResult(rec.StartedAt, rec.EndedAt),
		SleepID:   rec.ID,
	}), nil
}

type sleepSummary struct {
	TotalSleeps   int    `json:"totalSleeps"`
	TotalMinutes  int    `json:"totalMinutes"`
	TotalDuration string `json:"totalDuration"`
	NapCount      int    `json:"napCount"`
	NightCount    int    `json:"nightCount"`
}

func summarizeSleep(records []store.SleepRecord) sleepSummary {
	s := sleepSummary{TotalSleeps: len(records)}
	for _, r := range records {
		switch r.Type {
		case store.SleepNight:
			s.NightCount++
		default:
			s.NapCount++
		}
	}
	s.TotalMinutes = timer.TotalMinutes(records)
	s.TotalDuration = units.FormatMinutes(s.TotalMinutes)
	return s
}

type sleepPeriodSummary struct {
	ChildID   string             `json:"childId"`
	Period    string             `json:"period"`
	DateRange query.RangeStrings `json:"dateRange"`
	sleepSummary
	AverageSleepMinutes int               `json:"averageSleepMinutes"`
	RecentRecords       []sleepRecordView `json:"recentRecords"`
}

func (t *SleepTools) summary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	period := req.GetString("period", "today")
	rng := query.ResolvePeriod(period, now())

	records, err := t.store.ListSleep(ctx, store.RecordFilter{
		ChildID: childID, Since: rng.Start, Until: rng.End,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load sleep records: %v", err)), nil
	}

	out := sleepPeriodSummary{
		ChildID:      childID,
		Period:       period,
		DateRange:    rangeStrings(rng),
		sleepSummary: summarizeSleep(records),
	}
	if completed := timer.CompletedOnly(records); len(completed) > 0 {
		out.AverageSleepMinutes = timer.TotalMinutes(completed) / len(completed)
	}
	out.RecentRecords = timer.MapRecent(records, 5, sleepView)
	if out.RecentRecords == nil {
		out.RecentRecords = []sleepRecordView{}
	}
	return jsonResult(out), nil
}

func (t *SleepTools) query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	records, err := t.store.ListSleep(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query sleep records: %v", err)), nil
	}
	total, err := t.store.CountSleep(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count sleep records: %v", err)), nil
	}

	views := make([]sleepRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, sleepView(r, timer.View(r.Span())))
	}

	resp := query.NewResponse(views, total, args.Limit, args.Offset, args.Range)
	if args.IncludeSummary {
		// Page-scoped: aggregates cover the returned page only.
		resp.Summary = summarizeSleep(records)
	}
	return jsonResult(resp), nil
}
