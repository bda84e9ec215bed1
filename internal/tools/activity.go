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

// ActivityTools handles the timed-activity tracking tools (tummy time,
// bath, play...). Each activity type has its own timer, so a bath can
// run while tummy time is also being timed.
type ActivityTools struct {
	store *store.Store
}

// NewActivityTools creates an ActivityTools handler.
func NewActivityTools(s *store.Store) *ActivityTools {
	return &ActivityTools{store: s}
}

// Definitions returns the activity tool schemas.
func (t *ActivityTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("start-activity",
			mcp.WithDescription("Start an activity timer. Fails if the same activity type is already running for the child."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("activityType", mcp.Required(), mcp.Description("Activity type, e.g. TUMMY_TIME, BATH, PLAY, WALK")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("end-activity",
			mcp.WithDescription("End an active activity and compute its duration."),
			mcp.WithString("activityId", mcp.Required(), mcp.Description("Activity record identifier")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("log-activity",
			mcp.WithDescription("Record an activity retroactively. Omit endTime to leave it ongoing."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("activityType", mcp.Required(), mcp.Description("Activity type")),
			mcp.WithString("startTime", mcp.Required(), mcp.Description("Activity start, RFC 3339")),
			mcp.WithString("endTime", mcp.Description("Activity end, RFC 3339")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("get-activity-summary",
			mcp.WithDescription("Summarize a child's activities over a period, with the most recent records."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("period", mcp.Description("today, week or month (default today)")),
		),
		queryTool("query-activity-records",
			"Query activity records with date range, pagination and optional page-scoped summary.",
			mcp.WithString("activityType", mcp.Description("Filter by activity type")),
		),
	}
}

// Handle dispatches an activity tool call by name.
func (t *ActivityTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "start-activity":
		return t.start(ctx, req)
	case "end-activity":
		return t.end(ctx, req)
	case "log-activity":
		return t.log(ctx, req)
	case "get-activity-summary":
		return t.summary(ctx, req)
	case "query-activity-records":
		return t.query(ctx, req)
	default:
		return unknownTool("activity", req.Params.Name), nil
	}
}

type activityStartResult struct {
	timer.StartResult
	ActivityID   string `json:"activityId"`
	ActivityType string `json:"activityType"`
}

type activityEndResult struct {
	timer.EndResult
	ActivityID string `json:"activityId"`
}

type activityLogResult struct {
	timer.LogResult
	ActivityID string `json:"activityId"`
}

type activityRecordView struct {
	timer.RecordView
	Type  string  `json:"type"`
	Notes *string `json:"notes,omitempty"`
}

func activityView(r store.ActivityRecord, base timer.RecordView) activityRecordView {
	return activityRecordView{RecordView: base, Type: r.Type, Notes: r.Notes}
}

func (t *ActivityTools) start(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	activityType := req.GetString("activityType", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	if activityType == "" {
		return mcp.NewToolResultError("'activityType' is required"), nil
	}

	active, err := t.store.ActiveActivity(ctx, childID, activityType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to check active activity: %v", err)), nil
	}
	if active != nil {
		return mcp.NewToolResultError(fmt.Sprintf("There is already an active %s session for this child. End it before starting a new one.", activityType)), nil
	}

	rec, err := t.store.CreateActivity(ctx, store.CreateActivityParams{
		ChildID:   childID,
		Type:      activityType,
		StartedAt: now(),
		Notes:     req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start activity: %v", err)), nil
	}

	return jsonResult(activityStartResult{
		StartResult:  timer.NewStartResult(fmt.Sprintf("%s timer started", activityType), rec.StartedAt),
		ActivityID:   rec.ID,
		ActivityType: rec.Type,
	}), nil
}

func (t *ActivityTools) end(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("activityId", "")
	if id == "" {
		return mcp.NewToolResultError("'activityId' is required"), nil
	}

	rec, err := t.store.EndActivity(ctx, id, now(), req.GetString("notes", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to end activity: %v", err)), nil
	}
	if rec == nil {
		return mcp.NewToolResultError("No active activity found with that id."), nil
	}

	return jsonResult(activityEndResult{
		EndResult:  timer.NewEndResult(rec.StartedAt, *rec.EndedAt),
		ActivityID: rec.ID,
	}), nil
}

func (t *ActivityTools) log(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	activityType := req.GetString("activityType", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	if activityType == "" {
		return mcp.NewToolResultError("'activityType' is required"), nil
	}
	start := optTimeArg(req, "startTime")
	if start == nil {
		return mcp.NewToolResultError("'startTime' is required (RFC 3339)"), nil
	}

	rec, err := t.store.CreateActivity(ctx, store.CreateActivityParams{
		ChildID:   childID,
		Type:      activityType,
		StartedAt: *start,
		EndedAt:   optTimeArg(req, "endTime"),
		Notes:     req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log activity: %v", err)), nil
	}

	return jsonResult(activityLogResult{
		LogResult:  timer.NewLogResult(rec.StartedAt, rec.EndedAt),
		ActivityID: rec.ID,
	}), nil
}

type activitySummary struct {
	TotalActivities int            `json:"totalActivities"`
	TotalMinutes    int            `json:"totalMinutes"`
	TotalDuration   string         `json:"totalDuration"`
	MinutesByType   map[string]int `json:"minutesByType"`
}

func summarizeActivities(records []store.ActivityRecord) activitySummary {
	s := activitySummary{
		TotalActivities: len(records),
		MinutesByType:   map[string]int{},
	}
	for _, r := range records {
		if r.EndedAt == nil {
			continue
		}
		s.MinutesByType[r.Type] += timer.Minutes(r.StartedAt, *r.EndedAt)
	}
	s.TotalMinutes = timer.TotalMinutes(records)
	s.TotalDuration = units.FormatMinutes(s.TotalMinutes)
	return s
}

type activityPeriodSummary struct {
	ChildID   string             `json:"childId"`
	Period    string             `json:"period"`
	DateRange query.RangeStrings `json:"dateRange"`
	activitySummary
	RecentRecords []activityRecordView `json:"recentRecords"`
}

func (t *ActivityTools) summary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	period := req.GetString("period", "today")
	rng := query.ResolvePeriod(period, now())

	records, err := t.store.ListActivities(ctx, store.RecordFilter{
		ChildID: childID, Since: rng.Start, Until: rng.End,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load activity records: %v", err)), nil
	}

	out := activityPeriodSummary{
		ChildID:         childID,
		Period:          period,
		DateRange:       rangeStrings(rng),
		activitySummary: summarizeActivities(records),
	}
	out.RecentRecords = timer.MapRecent(records, 5, activityView)
	if out.RecentRecords == nil {
		out.RecentRecords = []activityRecordView{}
	}
	return jsonResult(out), nil
}

func (t *ActivityTools) query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
		Type:      req.GetString("activityType", ""),
	}

	records, err := t.store.ListActivities(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query activity records: %v", err)), nil
	}
	total, err := t.store.CountActivities(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count activity records: %v", err)), nil
	}

	views := make([]activityRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, activityView(r, timer.View(r.Span())))
	}

	resp := query.NewResponse(views, total, args.Limit, args.Offset, args.Range)
	if args.IncludeSummary {
		resp.Summary = summarizeActivities(records)
	}
	return jsonResult(resp), nil
}
