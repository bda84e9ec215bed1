package tools

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvbaena/cradle/internal/store"
	"github.com/jvbaena/cradle/internal/timer"
	"github.com/jvbaena/cradle/internal/units"
)

// timelineCap bounds the merged daily timeline.
const timelineCap = 30

// SummaryTools handles the cross-domain daily summary tool.
type SummaryTools struct {
	store *store.Store
}

// NewSummaryTools creates a SummaryTools handler.
func NewSummaryTools(s *store.Store) *SummaryTools {
	return &SummaryTools{store: s}
}

// Definitions returns the summary tool schemas.
func (t *SummaryTools) Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("get-daily-summary",
			mcp.WithDescription("Summarize one child's day across sleep, feeding, diapers, pumping, growth, temperature and medicine, with a merged timeline of the day's events."),
			mcp.WithString("childId", mcp.Required(), mcp.Description("Child identifier")),
			mcp.WithString("date", mcp.Description("Day to summarize, YYYY-MM-DD (default: today)")),
		),
	}
}

// Handle dispatches a summary tool call by name.
func (t *SummaryTools) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.Params.Name {
	case "get-daily-summary":
		return t.daily(ctx, req)
	default:
		return unknownTool("summary", req.Params.Name), nil
	}
}

type timelineEntry struct {
	Time        string `json:"time"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

type dailySummary struct {
	ChildID     string          `json:"childId"`
	Date        string          `json:"date"`
	Sleep       sleepSummary    `json:"sleep"`
	Feeding     feedingSummary  `json:"feeding"`
	Diapers     diaperSummary   `json:"diapers"`
	Pumping     pumpingSummary  `json:"pumping"`
	Growth      *growthDelta    `json:"growth,omitempty"`
	Temperature *tempDayOutline `json:"temperature,omitempty"`
	Medicine    medicineSummary `json:"medicine"`
	Timeline    []timelineEntry `json:"timeline"`
}

type tempDayOutline struct {
	Readings   int     `json:"readings"`
	LatestC    float64 `json:"latestC"`
	Latest     string  `json:"latest"`
	Status     string  `json:"status"`
	FeverCount int     `json:"feverCount"`
}

func (t *SummaryTools) daily(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID := req.GetString("childId", "")
	if childID == "" {
		return mcp.NewToolResultError("'childId' is required"), nil
	}

	day, err := resolveDay(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("'date' must be YYYY-MM-DD"), nil
	}
	since, until := day, day.AddDate(0, 0, 1)
	filter := store.RecordFilter{ChildID: childID, Since: since, Until: until, Ascending: true}

	out := dailySummary{ChildID: childID, Date: day.Format("2006-01-02")}
	var entries []timelineEntry

	sleeps, err := t.store.ListSleep(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load sleep records: %v", err)), nil
	}
	out.Sleep = summarizeSleep(sleeps)
	for _, r := range sleeps {
		dur, _ := timer.DurationInfo(r.StartedAt, r.EndedAt)
		entries = append(entries, timelineEntry{
			Time:        clockTime(r.StartedAt),
			Domain:      "sleep",
			Description: fmt.Sprintf("%s sleep, %s", r.Type, dur),
		})
	}

	feedings, err := t.store.ListFeedings(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load feeding records: %v", err)), nil
	}
	out.Feeding = summarizeFeedings(feedings)
	for _, r := range feedings {
		entries = append(entries, timelineEntry{
			Time:        clockTime(r.StartedAt),
			Domain:      "feeding",
			Description: describeFeeding(r),
		})
	}

	diapers, err := t.store.ListDiapers(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load diaper records: %v", err)), nil
	}
	out.Diapers = summarizeDiapers(diapers)
	for _, r := range diapers {
		entries = append(entries, timelineEntry{
			Time:        clockTime(r.ChangedAt),
			Domain:      "diaper",
			Description: fmt.Sprintf("%s diaper change", r.Type),
		})
	}

	pumpings, err := t.store.ListPumpings(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load pumping records: %v", err)), nil
	}
	out.Pumping = summarizePumpings(pumpings)
	for _, r := range pumpings {
		desc := "pumping session"
		if r.AmountML != nil {
			desc = fmt.Sprintf("pumping session, %s", units.FormatVolume(*r.AmountML))
		}
		entries = append(entries, timelineEntry{
			Time:        clockTime(r.StartedAt),
			Domain:      "pumping",
			Description: desc,
		})
	}

	growths, err := t.store.ListGrowth(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load growth records: %v", err)), nil
	}
	if len(growths) > 0 {
		first, last := growths[0], growths[len(growths)-1]
		delta := deltaBetween(&first, &last)
		out.Growth = &delta
		for _, r := range growths {
			entries = append(entries, timelineEntry{
				Time:        clockTime(r.MeasuredAt),
				Domain:      "growth",
				Description: describeGrowth(r),
			})
		}
	}

	temps, err := t.store.ListTemperatures(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load temperature records: %v", err)), nil
	}
	if len(temps) > 0 {
		latest := temps[len(temps)-1]
		outline := &tempDayOutline{
			Readings: len(temps),
			LatestC:  latest.TempC,
			Latest:   units.FormatTemperature(latest.TempC),
			Status:   ClassifyTemperature(latest.TempC),
		}
		for _, r := range temps {
			if ClassifyTemperature(r.TempC) == "fever" {
				outline.FeverCount++
			}
			entries = append(entries, timelineEntry{
				Time:        clockTime(r.MeasuredAt),
				Domain:      "temperature",
				Description: fmt.Sprintf("%s (%s)", units.FormatTemperature(r.TempC), ClassifyTemperature(r.TempC)),
			})
		}
		out.Temperature = outline
	}

	doses, err := t.store.ListMedicineRecords(ctx, store.MedicineRecordFilter{
		ChildID: childID, Since: since, Until: until, Ascending: true,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load medicine records: %v", err)), nil
	}
	out.Medicine = summarizeMedicineRecords(doses)
	for _, r := range doses {
		desc := fmt.Sprintf("%s given", r.MedicineName)
		if r.Skipped {
			desc = fmt.Sprintf("%s skipped", r.MedicineName)
		}
		entries = append(entries, timelineEntry{
			Time:        clockTime(r.GivenAt),
			Domain:      "medicine",
			Description: desc,
		})
	}

	out.Timeline = sortTimeline(entries)
	return jsonResult(out), nil
}

func resolveDay(s string) (time.Time, error) {
	if s == "" {
		y, m, d := now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
	}
	day, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}

func clockTime(t time.Time) string {
	return t.Local().Format("15:04")
}

// sortTimeline orders entries newest first by their clock time and caps
// the result. Comparing re-parsed HH:MM values ignores the calendar
// date, which is fine here because every entry comes from one day.
func sortTimeline(entries []timelineEntry) []timelineEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, _ := time.Parse("15:04", entries[i].Time)
		tj, _ := time.Parse("15:04", entries[j].Time)
		return ti.After(tj)
	})
	if len(entries) > timelineCap {
		entries = entries[:timelineCap]
	}
	if entries == nil {
		entries = []timelineEntry{}
	}
	return entries
}

func describeFeeding(r store.FeedingRecord) string {
	switch r.Type {
	case store.FeedBreast:
		side := ""
		if r.Side != nil {
			side = " (" + *r.Side + ")"
		}
		dur, _ := timer.DurationInfo(r.StartedAt, r.EndedAt)
		return fmt.Sprintf("breastfeeding%s, %s", side, dur)
	case store.FeedBottle:
		if r.AmountML != nil {
			return fmt.Sprintf("bottle, %s", units.FormatVolume(*r.AmountML))
		}
		return "bottle"
	case store.FeedSolids:
		if r.Foods != nil {
			return fmt.Sprintf("solids: %s", *r.Foods)
		}
		return "solids"
	default:
		return r.Type + " feeding"
	}
}

func describeGrowth(r store.GrowthRecord) string {
	desc := "measurement"
	switch {
	case r.WeightKG != nil:
		desc = units.FormatWeight(*r.WeightKG)
	case r.HeightCM != nil:
		desc = units.FormatLength(*r.HeightCM)
	}
	return "growth " + desc
}
