package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvbaena/cradle/internal/store"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestChild(t *testing.T, s *store.Store) string {
	t.Helper()
	c, err := s.CreateChild(context.Background(), "Emma",
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("failed to create child: %v", err)
	}
	return c.ID
}

// setClock pins the handlers' clock for the test's duration.
func setClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

// makeReq builds a mcp.CallToolRequest for the named tool.
func makeReq(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// decode unmarshals a successful tool result's JSON payload.
func decode(t *testing.T, r *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	if r.IsError {
		t.Fatalf("unexpected error result: %s", resultText(r))
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("failed to decode result %q: %v", resultText(r), err)
	}
	return out
}

func wantError(t *testing.T, r *mcp.CallToolResult, substr string) {
	t.Helper()
	if !r.IsError {
		t.Fatalf("expected error result, got: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), substr) {
		t.Errorf("error = %q, want it to contain %q", resultText(r), substr)
	}
}

// ─── Sleep flow ──────────────────────────────────────────────────────────────

func TestSleepStartEndFlow(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewSleepTools(s)
	ctx := context.Background()

	start := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	setClock(t, start)

	res, err := tools.Handle(ctx, makeReq("start-sleep", map[string]interface{}{"childId": child}))
	if err != nil {
		t.Fatalf("start-sleep: %v", err)
	}
	started := decode(t, res)
	sleepID, _ := started["sleepId"].(string)
	if sleepID == "" {
		t.Fatalf("start-sleep result = %v", started)
	}
	if started["success"] != true {
		t.Errorf("success = %v", started["success"])
	}

	// A second start for the same child is rejected.
	res, err = tools.Handle(ctx, makeReq("start-sleep", map[string]interface{}{"childId": child}))
	if err != nil {
		t.Fatalf("second start-sleep: %v", err)
	}
	wantError(t, res, "already an active sleep session")

	// End 90 minutes later.
	setClock(t, start.Add(90*time.Minute))
	res, err = tools.Handle(ctx, makeReq("end-sleep", map[string]interface{}{
		"sleepId": sleepID, "quality": "GOOD",
	}))
	if err != nil {
		t.Fatalf("end-sleep: %v", err)
	}
	ended := decode(t, res)
	if ended["duration"] != "1h 30m" {
		t.Errorf("duration = %v, want 1h 30m", ended["duration"])
	}
	if ended["durationMinutes"] != float64(90) {
		t.Errorf("durationMinutes = %v, want 90", ended["durationMinutes"])
	}

	// Ending a completed session fails.
	res, err = tools.Handle(ctx, makeReq("end-sleep", map[string]interface{}{"sleepId": sleepID}))
	if err != nil {
		t.Fatalf("end-sleep again: %v", err)
	}
	wantError(t, res, "No active sleep session")
}

func TestLogSleepOngoingHasNullDuration(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewSleepTools(s)

	res, err := tools.Handle(context.Background(), makeReq("log-sleep", map[string]interface{}{
		"childId":   child,
		"startTime": "2026-03-10T13:00:00Z",
	}))
	if err != nil {
		t.Fatalf("log-sleep: %v", err)
	}
	logged := decode(t, res)
	if v, present := logged["endTime"]; !present || v != nil {
		t.Errorf("endTime = %v, want explicit null", v)
	}
	if v, present := logged["duration"]; !present || v != nil {
		t.Errorf("duration = %v, want explicit null", v)
	}
}

func TestUnknownToolName(t *testing.T) {
	s := newTestStore(t)
	tools := NewSleepTools(s)

	res, err := tools.Handle(context.Background(), makeReq("paint-the-nursery", nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	wantError(t, res, "Unknown sleep tool: paint-the-nursery")
}

// ─── Query pagination and page-scoped summaries ──────────────────────────────

func TestDiaperQueryPagination(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewDiaperTools(s)
	ctx := context.Background()

	clock := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	setClock(t, clock)

	for i := 0; i < 12; i++ {
		_, err := s.CreateDiaper(ctx, child, store.DiaperWet, clock.Add(-time.Duration(i)*time.Hour), "")
		if err != nil {
			t.Fatalf("CreateDiaper: %v", err)
		}
	}

	res, err := tools.Handle(ctx, makeReq("query-diaper-records", map[string]interface{}{
		"childId":        child,
		"limit":          float64(5),
		"includeSummary": true,
	}))
	if err != nil {
		t.Fatalf("query-diaper-records: %v", err)
	}
	out := decode(t, res)

	pagination := out["pagination"].(map[string]interface{})
	if pagination["total"] != float64(12) {
		t.Errorf("total = %v, want 12", pagination["total"])
	}
	if pagination["hasMore"] != true {
		t.Errorf("hasMore = %v, want true", pagination["hasMore"])
	}
	if pagination["nextOffset"] != float64(5) {
		t.Errorf("nextOffset = %v, want 5", pagination["nextOffset"])
	}

	records := out["records"].([]interface{})
	if len(records) != 5 {
		t.Fatalf("page size = %d, want 5", len(records))
	}

	// The summary covers the returned page, not the whole range.
	summary := out["summary"].(map[string]interface{})
	if summary["totalChanges"] != float64(5) {
		t.Errorf("summary totalChanges = %v, want 5", summary["totalChanges"])
	}

	// Final page: no further results, null nextOffset.
	res, err = tools.Handle(ctx, makeReq("query-diaper-records", map[string]interface{}{
		"childId": child,
		"limit":   float64(5),
		"offset":  float64(10),
	}))
	if err != nil {
		t.Fatalf("final page: %v", err)
	}
	out = decode(t, res)
	pagination = out["pagination"].(map[string]interface{})
	if pagination["hasMore"] != false {
		t.Errorf("final hasMore = %v, want false", pagination["hasMore"])
	}
	if pagination["nextOffset"] != nil {
		t.Errorf("final nextOffset = %v, want null", pagination["nextOffset"])
	}
	if _, present := out["summary"]; present {
		t.Error("summary should be absent when not requested")
	}
}

func TestDiaperSummaryBothCountsTwice(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewDiaperTools(s)
	ctx := context.Background()

	clock := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	setClock(t, clock)

	for _, typ := range []string{store.DiaperWet, store.DiaperDirty, store.DiaperBoth, store.DiaperDry} {
		if _, err := s.CreateDiaper(ctx, child, typ, clock.Add(-time.Hour), ""); err != nil {
			t.Fatalf("CreateDiaper: %v", err)
		}
	}

	res, err := tools.Handle(ctx, makeReq("query-diaper-records", map[string]interface{}{
		"childId":        child,
		"includeSummary": true,
	}))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	summary := decode(t, res)["summary"].(map[string]interface{})
	if summary["totalChanges"] != float64(4) {
		t.Errorf("totalChanges = %v, want 4", summary["totalChanges"])
	}
	if summary["wetCount"] != float64(2) {
		t.Errorf("wetCount = %v, want 2 (BOTH counts as wet)", summary["wetCount"])
	}
	if summary["dirtyCount"] != float64(2) {
		t.Errorf("dirtyCount = %v, want 2 (BOTH counts as dirty)", summary["dirtyCount"])
	}
	if summary["dryCount"] != float64(1) {
		t.Errorf("dryCount = %v, want 1", summary["dryCount"])
	}
}

// ─── Feeding validation ──────────────────────────────────────────────────────

func TestLogFeedingValidation(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewFeedingTools(s)
	ctx := context.Background()

	base := map[string]interface{}{
		"childId":   child,
		"startTime": "2026-03-10T09:00:00Z",
	}
	with := func(extra map[string]interface{}) map[string]interface{} {
		args := map[string]interface{}{}
		for k, v := range base {
			args[k] = v
		}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	res, err := tools.Handle(ctx, makeReq("log-feeding", with(map[string]interface{}{"type": "BREAST"})))
	if err != nil {
		t.Fatalf("log-feeding: %v", err)
	}
	wantError(t, res, "'side' is required")

	res, err = tools.Handle(ctx, makeReq("log-feeding", with(map[string]interface{}{"type": "BOTTLE"})))
	if err != nil {
		t.Fatalf("log-feeding: %v", err)
	}
	wantError(t, res, "'amountMl' is required")

	res, err = tools.Handle(ctx, makeReq("log-feeding", with(map[string]interface{}{"type": "SOLIDS"})))
	if err != nil {
		t.Fatalf("log-feeding: %v", err)
	}
	wantError(t, res, "'foods' is required")

	res, err = tools.Handle(ctx, makeReq("log-feeding", with(map[string]interface{}{"type": "SNACK"})))
	if err != nil {
		t.Fatalf("log-feeding: %v", err)
	}
	wantError(t, res, "'type' must be BREAST, BOTTLE or SOLIDS")

	res, err = tools.Handle(ctx, makeReq("log-feeding", with(map[string]interface{}{
		"type": "BOTTLE", "amountMl": float64(120),
	})))
	if err != nil {
		t.Fatalf("log-feeding: %v", err)
	}
	logged := decode(t, res)
	if logged["feedingId"] == "" || logged["success"] != true {
		t.Errorf("bottle log = %v", logged)
	}
}

func TestFeedingSummaryAccrual(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewFeedingTools(s)
	ctx := context.Background()

	clock := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	setClock(t, clock)

	amount := 120.0
	end := clock.Add(-time.Hour)

	// Completed breastfeeding: 20 minutes.
	if _, err := s.CreateFeeding(ctx, store.CreateFeedingParams{
		ChildID: child, Type: store.FeedBreast, Side: "LEFT",
		StartedAt: end.Add(-20 * time.Minute), EndedAt: &end,
	}); err != nil {
		t.Fatalf("breast: %v", err)
	}
	// Ongoing breastfeeding: contributes no minutes.
	if _, err := s.CreateFeeding(ctx, store.CreateFeedingParams{
		ChildID: child, Type: store.FeedBreast, Side: "RIGHT", StartedAt: clock.Add(-5 * time.Minute),
	}); err != nil {
		t.Fatalf("ongoing breast: %v", err)
	}
	// Bottle: volume accrues despite having no end time.
	if _, err := s.CreateFeeding(ctx, store.CreateFeedingParams{
		ChildID: child, Type: store.FeedBottle, AmountML: &amount, StartedAt: clock.Add(-2 * time.Hour),
	}); err != nil {
		t.Fatalf("bottle: %v", err)
	}

	res, err := tools.Handle(ctx, makeReq("query-feeding-records", map[string]interface{}{
		"childId":        child,
		"includeSummary": true,
	}))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	summary := decode(t, res)["summary"].(map[string]interface{})
	if summary["totalFeedings"] != float64(3) {
		t.Errorf("totalFeedings = %v, want 3", summary["totalFeedings"])
	}
	if summary["breastMinutes"] != float64(20) {
		t.Errorf("breastMinutes = %v, want 20 (ongoing session excluded)", summary["breastMinutes"])
	}
	if summary["bottleTotalMl"] != float64(120) {
		t.Errorf("bottleTotalMl = %v, want 120", summary["bottleTotalMl"])
	}
}

// ─── Temperature classification ──────────────────────────────────────────────

func TestClassifyTemperature(t *testing.T) {
	cases := []struct {
		celsius float64
		want    string
	}{
		{37.9, "normal"},
		{38.0, "fever"},
		{39.5, "fever"},
		{36.0, "normal"},
		{35.9, "low"},
		{34.0, "low"},
	}
	for _, c := range cases {
		if got := ClassifyTemperature(c.celsius); got != c.want {
			t.Errorf("ClassifyTemperature(%v) = %q, want %q", c.celsius, got, c.want)
		}
	}
}

func TestTemperatureLogAndLatest(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewTemperatureTools(s)
	ctx := context.Background()

	res, err := tools.Handle(ctx, makeReq("get-latest-temperature", map[string]interface{}{"childId": child}))
	if err != nil {
		t.Fatalf("get-latest-temperature: %v", err)
	}
	wantError(t, res, "No temperature readings")

	res, err = tools.Handle(ctx, makeReq("log-temperature", map[string]interface{}{
		"childId":      child,
		"temperatureC": float64(38.2),
	}))
	if err != nil {
		t.Fatalf("log-temperature: %v", err)
	}
	logged := decode(t, res)
	if logged["status"] != "fever" {
		t.Errorf("status = %v, want fever", logged["status"])
	}
	if logged["temperature"] != "38.2°C" {
		t.Errorf("temperature = %v, want 38.2°C", logged["temperature"])
	}

	res, err = tools.Handle(ctx, makeReq("get-latest-temperature", map[string]interface{}{"childId": child}))
	if err != nil {
		t.Fatalf("get-latest-temperature: %v", err)
	}
	latest := decode(t, res)
	if latest["status"] != "fever" || latest["temperatureC"] != float64(38.2) {
		t.Errorf("latest = %v", latest)
	}
}

// ─── Medicine ────────────────────────────────────────────────────────────────

func TestMedicineFlow(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewMedicineTools(s)
	ctx := context.Background()

	clock := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	setClock(t, clock)

	res, err := tools.Handle(ctx, makeReq("create-medicine", map[string]interface{}{
		"childId": child,
		"name":    "Paracetamol",
		"dosage":  "2.5ml",
	}))
	if err != nil {
		t.Fatalf("create-medicine: %v", err)
	}
	created := decode(t, res)
	medID, _ := created["medicineId"].(string)
	if medID == "" {
		t.Fatalf("create-medicine result = %v", created)
	}

	// Logging against an unknown medicine fails.
	res, err = tools.Handle(ctx, makeReq("log-medicine", map[string]interface{}{"medicineId": "nope"}))
	if err != nil {
		t.Fatalf("log-medicine: %v", err)
	}
	wantError(t, res, "Medicine not found")

	// The medicine's standard dosage is the default.
	res, err = tools.Handle(ctx, makeReq("log-medicine", map[string]interface{}{"medicineId": medID}))
	if err != nil {
		t.Fatalf("log-medicine: %v", err)
	}
	dose := decode(t, res)
	if dose["dosageGiven"] != "2.5ml" {
		t.Errorf("dosageGiven = %v, want 2.5ml", dose["dosageGiven"])
	}
	if dose["medicineName"] != "Paracetamol" {
		t.Errorf("medicineName = %v", dose["medicineName"])
	}

	res, err = tools.Handle(ctx, makeReq("log-medicine", map[string]interface{}{
		"medicineId": medID,
		"skipped":    true,
	}))
	if err != nil {
		t.Fatalf("log-medicine skipped: %v", err)
	}
	decode(t, res)

	// Skipped doses are included by default.
	res, err = tools.Handle(ctx, makeReq("query-medicine-records", map[string]interface{}{
		"childId":        child,
		"includeSummary": true,
	}))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	out := decode(t, res)
	if len(out["records"].([]interface{})) != 2 {
		t.Errorf("default records = %d, want 2", len(out["records"].([]interface{})))
	}
	summary := out["summary"].(map[string]interface{})
	if summary["givenCount"] != float64(1) || summary["skippedCount"] != float64(1) {
		t.Errorf("summary = %v", summary)
	}

	// includeSkipped=false filters them out.
	res, err = tools.Handle(ctx, makeReq("query-medicine-records", map[string]interface{}{
		"childId":        child,
		"includeSkipped": false,
	}))
	if err != nil {
		t.Fatalf("query without skipped: %v", err)
	}
	out = decode(t, res)
	records := out["records"].([]interface{})
	if len(records) != 1 {
		t.Fatalf("filtered records = %d, want 1", len(records))
	}
	if records[0].(map[string]interface{})["skipped"] != false {
		t.Errorf("filtered record = %v", records[0])
	}
}

// ─── Growth ──────────────────────────────────────────────────────────────────

func TestGrowthDeltaAgainstPreviousRecord(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewGrowthTools(s)
	ctx := context.Background()

	res, err := tools.Handle(ctx, makeReq("log-growth", map[string]interface{}{"childId": child}))
	if err != nil {
		t.Fatalf("log-growth: %v", err)
	}
	wantError(t, res, "At least one measurement")

	res, err = tools.Handle(ctx, makeReq("log-growth", map[string]interface{}{
		"childId":  child,
		"time":     "2026-02-01T10:00:00Z",
		"weightKg": float64(4.0),
		"heightCm": float64(54.0),
	}))
	if err != nil {
		t.Fatalf("first log-growth: %v", err)
	}
	first := decode(t, res)
	if _, present := first["sincePrevious"]; present {
		t.Error("first record should have no sincePrevious delta")
	}

	res, err = tools.Handle(ctx, makeReq("log-growth", map[string]interface{}{
		"childId":  child,
		"time":     "2026-02-15T10:00:00Z",
		"weightKg": float64(4.5),
	}))
	if err != nil {
		t.Fatalf("second log-growth: %v", err)
	}
	second := decode(t, res)
	delta, ok := second["sincePrevious"].(map[string]interface{})
	if !ok {
		t.Fatalf("sincePrevious missing: %v", second)
	}
	if delta["weightChangeKg"] != float64(0.5) {
		t.Errorf("weightChangeKg = %v, want 0.5", delta["weightChangeKg"])
	}
	// Height was not measured this time, so no height delta.
	if _, present := delta["heightChangeCm"]; present {
		t.Errorf("unexpected height delta: %v", delta)
	}
}

// ─── Daily summary ───────────────────────────────────────────────────────────

func TestDailySummaryTimeline(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewSummaryTools(s)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

	end := day.Add(8 * time.Hour)
	if _, err := s.CreateSleep(ctx, store.CreateSleepParams{
		ChildID: child, Type: store.SleepNight, StartedAt: day.Add(1 * time.Hour), EndedAt: &end,
	}); err != nil {
		t.Fatalf("sleep: %v", err)
	}
	amount := 90.0
	if _, err := s.CreateFeeding(ctx, store.CreateFeedingParams{
		ChildID: child, Type: store.FeedBottle, AmountML: &amount, StartedAt: day.Add(9 * time.Hour),
	}); err != nil {
		t.Fatalf("feeding: %v", err)
	}
	if _, err := s.CreateDiaper(ctx, child, store.DiaperWet, day.Add(10*time.Hour), ""); err != nil {
		t.Fatalf("diaper: %v", err)
	}
	if _, err := s.CreateTemperature(ctx, child, day.Add(11*time.Hour), 38.4, ""); err != nil {
		t.Fatalf("temperature: %v", err)
	}

	res, err := tools.Handle(ctx, makeReq("get-daily-summary", map[string]interface{}{
		"childId": child,
		"date":    day.Format("2006-01-02"),
	}))
	if err != nil {
		t.Fatalf("get-daily-summary: %v", err)
	}
	out := decode(t, res)

	timeline := out["timeline"].([]interface{})
	if len(timeline) != 4 {
		t.Fatalf("timeline length = %d, want 4: %v", len(timeline), timeline)
	}

	// Newest first; HH:MM strings compare correctly within one day.
	var prev string
	for i, e := range timeline {
		entry := e.(map[string]interface{})
		at := entry["time"].(string)
		if i > 0 && at > prev {
			t.Errorf("timeline out of order at %d: %s after %s", i, at, prev)
		}
		prev = at
	}
	first := timeline[0].(map[string]interface{})
	if first["domain"] != "temperature" {
		t.Errorf("newest entry domain = %v, want temperature", first["domain"])
	}

	temp := out["temperature"].(map[string]interface{})
	if temp["status"] != "fever" || temp["feverCount"] != float64(1) {
		t.Errorf("temperature outline = %v", temp)
	}
	sleep := out["sleep"].(map[string]interface{})
	if sleep["totalMinutes"] != float64(420) {
		t.Errorf("sleep totalMinutes = %v, want 420", sleep["totalMinutes"])
	}
	feeding := out["feeding"].(map[string]interface{})
	if feeding["bottleTotalMl"] != float64(90) {
		t.Errorf("bottleTotalMl = %v, want 90", feeding["bottleTotalMl"])
	}
}

func TestDailySummaryTimelineCap(t *testing.T) {
	s := newTestStore(t)
	child := newTestChild(t, s)
	tools := NewSummaryTools(s)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	for i := 0; i < 35; i++ {
		at := day.Add(time.Duration(i*20) * time.Minute)
		if _, err := s.CreateDiaper(ctx, child, store.DiaperWet, at, fmt.Sprintf("change %d", i)); err != nil {
			t.Fatalf("CreateDiaper: %v", err)
		}
	}

	res, err := tools.Handle(ctx, makeReq("get-daily-summary", map[string]interface{}{
		"childId": child,
		"date":    day.Format("2006-01-02"),
	}))
	if err != nil {
		t.Fatalf("get-daily-summary: %v", err)
	}
	out := decode(t, res)

	timeline := out["timeline"].([]interface{})
	if len(timeline) != 30 {
		t.Errorf("timeline length = %d, want capped at 30", len(timeline))
	}
	// The aggregates still cover everything.
	diapers := out["diapers"].(map[string]interface{})
	if diapers["totalChanges"] != float64(35) {
		t.Errorf("totalChanges = %v, want 35", diapers["totalChanges"])
	}
}

// ─── Children ────────────────────────────────────────────────────────────────

func TestChildTools(t *testing.T) {
	s := newTestStore(t)
	tools := NewChildTools(s)
	ctx := context.Background()

	res, err := tools.Handle(ctx, makeReq("create-child", map[string]interface{}{
		"name":      "Emma",
		"birthDate": "2026-01-15",
	}))
	if err != nil {
		t.Fatalf("create-child: %v", err)
	}
	created := decode(t, res)
	childID, _ := created["childId"].(string)
	if childID == "" {
		t.Fatalf("create-child result = %v", created)
	}

	res, err = tools.Handle(ctx, makeReq("create-child", map[string]interface{}{
		"name":      "Noah",
		"birthDate": "not a date",
	}))
	if err != nil {
		t.Fatalf("create-child bad date: %v", err)
	}
	wantError(t, res, "'birthDate' must be")

	res, err = tools.Handle(ctx, makeReq("get-children", nil))
	if err != nil {
		t.Fatalf("get-children: %v", err)
	}
	listed := decode(t, res)
	if len(listed["children"].([]interface{})) != 1 {
		t.Errorf("children = %v", listed["children"])
	}

	res, err = tools.Handle(ctx, makeReq("get-child", map[string]interface{}{"childId": "nope"}))
	if err != nil {
		t.Fatalf("get-child: %v", err)
	}
	wantError(t, res, "Child not found")
}
