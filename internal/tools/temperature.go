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

// Fever classification thresholds in Celsius. Applied identically on
// log, get-latest and query paths.
const (
	FeverThresholdC = 38.0
	LowThresholdC   = 36.0
)

// ClassifyTemperature maps a Celsius reading to "fever", "low" or
// "normal". Both boundaries are inclusive on the normal side's edges:
// 38.0 is fever, 36.0 is normal.
func ClassifyTemperature(celsius float64) string {
	switch {
	case celsius >= FeverThresholdC:
		return "fever"
	case celsius < LowThresholdC:
		return "low"
	default:
		return "normal"
	}
}

// TemperatureTools handles the temperature tracking tools.
type TemperatureTools struct {
	store *store.Store
}

// NewTemperatureTools creates a TemperatureTools handler.
func NewTemperatureTools(s *store.Store) *TemperatureTools {
	return &TemperatureTools{store: s}
}

// Definitions returns the temperature tool schemas.
func (t *TemperatureTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("log-temperature",
			mcp.WithDescription("Record a temperature reading in Celsius."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithNumber("temperatureC", mcp.Required(), mcp.Description("Reading in Celsius")),
			mcp.WithString("time", mcp.Description("Reading time, RFC 3339 (default: now)")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		mcp.NewTool("get-latest-temperature",
			mcp.WithDescription("Get a child's most recent temperature reading with its classification."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
		),
		queryTool("query-temperature-records",
			"Query temperature records with date range, pagination and optional page-scoped summary."),
	}
}

// Handle dispatches a temperature tool call by name.
func (t *TemperatureTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "log-temperature":
		return t.log(ctx, req)
	case "get-latest-temperature":
		return t.latest(ctx, req)
	case "query-temperature-records":
		return t.query(ctx, req)
	default:
		return unknownTool("temperature", req.Params.Name), nil
	}
}

type temperatureRecordView struct {
	ID           string  `json:"id"`
	Time         string  `json:"time"`
	TemperatureC float64 `json:"temperatureC"`
	Temperature  string  `json:"temperature"`
	Status       string  `json:"status"`
	Notes        *string `json:"notes,omitempty"`
}

func temperatureView(r store.TemperatureRecord) temperatureRecordView {
	return temperatureRecordView{
		ID:           r.ID,
		Time:         r.MeasuredAt.UTC().Format(time.RFC3339),
		TemperatureC: r.TempC,
		Temperature:  units.FormatTemperature(r.TempC),
		Status:       ClassifyTemperature(r.TempC),
		Notes:        r.Notes,
	}
}

type temperatureLogResult struct {
	Success       bool   `json:"success"`
	TemperatureID string `json:"temperatureId"`
	temperatureRecordView
}

func (t *TemperatureTools) log(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}
	tempC := floatPtrArg(req, "temperatureC")
	if tempC == nil {
		return mcp.NewToolResultError("'temperatureC' is required"), nil
	}

	rec, err := t.store.CreateTemperature(ctx, childID, timeArg(req, "time", now()), *tempC, req.GetString("notes", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log temperature: %v", err)), nil
	}

	return jsonResult(temperatureLogResult{
		Success:               true,
		TemperatureID:         rec.ID,
		temperatureRecordView: temperatureView(*rec),
	}), nil
}

func (t *TemperatureTools) latest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}

	rec, err := t.store.LatestTemperature(ctx, childID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load latest temperature: %v", err)), nil
	}
	if rec == nil {
		return mcp.NewToolResultError("No temperature readings recorded for this child."), nil
	}

	return jsonResult(temperatureView(*rec)), nil
}

type temperatureSummary struct {
	TotalReadings int     `json:"totalReadings"`
	MinC          float64 `json:"minC"`
	MaxC          float64 `json:"maxC"`
	AverageC      float64 `json:"averageC"`
	FeverCount    int     `json:"feverCount"`
	LowCount      int     `json:"lowCount"`
	NormalCount   int     `json:"normalCount"`
}

func summarizeTemperatures(records []store.TemperatureRecord) temperatureSummary {
	s := temperatureSummary{TotalReadings: len(records)}
	if len(records) == 0 {
		return s
	}
	s.MinC = records[0].TempC
	s.MaxC = records[0].TempC
	sum := 0.0
	for _, r := range records {
		if r.TempC < s.MinC {
			s.MinC = r.TempC
		}
		if r.TempC > s.MaxC {
			s.MaxC = r.TempC
		}
		sum += r.TempC
		switch ClassifyTemperature(r.TempC) {
		case "fever":
			s.FeverCount++
		case "low":
			s.LowCount++
		default:
			s.NormalCount++
		}
	}
	s.AverageC = sum / float64(len(records))
	return s
}

func (t *TemperatureTools) query(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	records, err := t.store.ListTemperatures(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query temperature records: %v", err)), nil
	}
	total, err := t.store.CountTemperatures(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count temperature records: %v", err)), nil
	}

	views := make([]temperatureRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, temperatureView(r))
	}

	resp := query.NewResponse(views, total, args.Limit, args.Offset, args.Range)
	if args.IncludeSummary {
		resp.Summary = summarizeTemperatures(records)
	}
	return jsonResult(resp), nil
}
