package store

import (
	"context"
	"testing"
	"time"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestChild(t *testing.T, s *Store) *Child {
	t.Helper()
	c, err := s.CreateChild(context.Background(), "Emma",
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), "female")
	if err != nil {
		t.Fatalf("failed to create child: %v", err)
	}
	return c
}

func ptr[T any](v T) *T { return &v }

// ─── Children ────────────────────────────────────────────────────────────────

func TestChildRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := newTestChild(t, s)
	if c.ID == "" || c.Name != "Emma" {
		t.Fatalf("created child = %+v", c)
	}
	if c.Gender == nil || *c.Gender != "female" {
		t.Errorf("gender = %v", c.Gender)
	}

	got, err := s.GetChild(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetChild: %v", err)
	}
	if got == nil || got.ID != c.ID {
		t.Errorf("GetChild = %+v", got)
	}

	children, err := s.ListChildren(ctx)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children) != 1 {
		t.Errorf("ListChildren returned %d, want 1", len(children))
	}
}

func TestGetChildUnknown(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetChild(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetChild: %v", err)
	}
	if got != nil {
		t.Errorf("unknown child = %+v, want nil", got)
	}
}

// ─── Sleep lifecycle ─────────────────────────────────────────────────────────

func TestSleepLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	child := newTestChild(t, s)
	start := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

	rec, err := s.CreateSleep(ctx, CreateSleepParams{ChildID: child.ID, StartedAt: start})
	if err != nil {
		t.Fatalf("CreateSleep: %v", err)
	}
	if rec.Type != SleepNap {
		t.Errorf("default type = %q, want %q", rec.Type, SleepNap)
	}
	if rec.EndedAt != nil {
		t.Errorf("new sleep should be ongoing")
	}

	active, err := s.ActiveSleep(ctx, child.ID)
	if err != nil {
		t.Fatalf("ActiveSleep: %v", err)
	}
	if active == nil || active.ID != rec.ID {
		t.Fatalf("ActiveSleep = %+v", active)
	}

	ended, err := s.EndSleep(ctx, rec.ID, start.Add(90*time.Minute), "good", "")
	if err != nil {
		t.Fatalf("EndSleep: %v", err)
	}
	if ended == nil || ended.EndedAt == nil {
		t.Fatalf("EndSleep = %+v", ended)
	}
	if ended.Quality == nil || *ended.Quality != "good" {
		t.Errorf("quality = %v", ended.Quality)
	}

	// Ending again is a no-op on the completed row.
	again, err := s.EndSleep(ctx, rec.ID, start.Add(3*time.Hour), "", "")
	if err != nil {
		t.Fatalf("EndSleep again: %v", err)
	}
	if again != nil {
		t.Errorf("ending a completed sleep = %+v, want nil", again)
	}

	active, err = s.ActiveSleep(ctx, child.ID)
	if err != nil {
		t.Fatalf("ActiveSleep: %v", err)
	}
	if active != nil {
		t.Errorf("active after end = %+v, want nil", active)
	}
}

func TestSecondActiveSleepRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	child := newTestChild(t, s)
	start := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

	if _, err := s.CreateSleep(ctx, CreateSleepParams{ChildID: child.ID, StartedAt: start}); err != nil {
		t.Fatalf("first CreateSleep: %v", err)
	}

	// The partial unique index on (child_id) WHERE ended_at IS NULL
	// rejects a second ongoing sleep even without the handler's
	// pre-check.
	_, err := s.CreateSleep(ctx, CreateSleepParams{ChildID: child.ID, StartedAt: start.Add(time.Minute)})
	if err == nil {
		t.Fatal("second active sleep should fail")
	}

	// A completed sleep for the same child is fine; only ongoing rows
	// are covered by the uniqueness constraint.
	end := start.Add(-3 * time.Hour)
	if _, err := s.CreateSleep(ctx, CreateSleepParams{
		ChildID: child.ID, StartedAt: start.Add(-5 * time.Hour), EndedAt: &end,
	}); err != nil {
		t.Fatalf("completed sleep insert: %v", err)
	}
}

func TestEndSleepUnknownID(t *testing.T) {
	s := newTestStore(t)
	got, err := s.EndSleep(context.Background(), "missing", time.Now(), "", "")
	if err != nil {
		t.Fatalf("EndSleep: %v", err)
	}
	if got != nil {
		t.Errorf("EndSleep(missing) = %+v, want nil", got)
	}
}

// ─── Filtering and pagination ────────────────────────────────────────────────

func TestDiaperFilterPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	child := newTestChild(t, s)
	base := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		_, err := s.CreateDiaper(ctx, child.ID, DiaperWet, base.Add(time.Duration(i)*time.Hour), "")
		if err != nil {
			t.Fatalf("CreateDiaper %d: %v", i, err)
		}
	}

	f := RecordFilter{ChildID: child.ID, Limit: 5}
	records, err := s.ListDiapers(ctx, f)
	if err != nil {
		t.Fatalf("ListDiapers: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("page size = %d, want 5", len(records))
	}
	// Default order is newest first.
	if !records[0].ChangedAt.Equal(base.Add(11 * time.Hour)) {
		t.Errorf("first record at %v, want newest", records[0].ChangedAt)
	}

	total, err := s.CountDiapers(ctx, f)
	if err != nil {
		t.Fatalf("CountDiapers: %v", err)
	}
	if total != 12 {
		t.Errorf("total = %d, want 12", total)
	}

	// Offset walks the pages.
	f.Offset = 10
	records, err = s.ListDiapers(ctx, f)
	if err != nil {
		t.Fatalf("ListDiapers offset: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("final page size = %d, want 2", len(records))
	}

	// The time window restricts the set.
	windowed := RecordFilter{ChildID: child.ID, Since: base.Add(3 * time.Hour), Until: base.Add(6 * time.Hour)}
	n, err := s.CountDiapers(ctx, windowed)
	if err != nil {
		t.Fatalf("CountDiapers windowed: %v", err)
	}
	if n != 4 {
		t.Errorf("windowed count = %d, want 4", n)
	}
}

func TestFilterByType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	child := newTestChild(t, s)
	base := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

	types := []string{DiaperWet, DiaperDirty, DiaperBoth, DiaperWet}
	for i, typ := range types {
		if _, err := s.CreateDiaper(ctx, child.ID, typ, base.Add(time.Duration(i)*time.Hour), ""); err != nil {
			t.Fatalf("CreateDiaper: %v", err)
		}
	}

	n, err := s.CountDiapers(ctx, RecordFilter{ChildID: child.ID, Type: DiaperWet})
	if err != nil {
		t.Fatalf("CountDiapers: %v", err)
	}
	if n != 2 {
		t.Errorf("wet count = %d, want 2", n)
	}
}

// ─── Medicine join ───────────────────────────────────────────────────────────

func TestMedicineRecordsJoin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	child := newTestChild(t, s)
	other := newTestChild(t, s)
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	med, err := s.CreateMedicine(ctx, child.ID, "Paracetamol", "2.5ml", "every 6 hours")
	if err != nil {
		t.Fatalf("CreateMedicine: %v", err)
	}
	otherMed, err := s.CreateMedicine(ctx, other.ID, "Vitamin D", "1 drop", "daily")
	if err != nil {
		t.Fatalf("CreateMedicine: %v", err)
	}

	if _, err := s.CreateMedicineRecord(ctx, med.ID, base, "2.5ml", false, ""); err != nil {
		t.Fatalf("CreateMedicineRecord: %v", err)
	}
	if _, err := s.CreateMedicineRecord(ctx, med.ID, base.Add(6*time.Hour), "", true, "asleep"); err != nil {
		t.Fatalf("CreateMedicineRecord: %v", err)
	}
	if _, err := s.CreateMedicineRecord(ctx, otherMed.ID, base, "1 drop", false, ""); err != nil {
		t.Fatalf("CreateMedicineRecord: %v", err)
	}

	// The join scopes records to the child, not the medicine.
	records, err := s.ListMedicineRecords(ctx, MedicineRecordFilter{ChildID: child.ID})
	if err != nil {
		t.Fatalf("ListMedicineRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.MedicineName != "Paracetamol" || r.ChildID != child.ID {
			t.Errorf("joined fields = %+v", r)
		}
	}

	// Skipped doses can be excluded.
	records, err = s.ListMedicineRecords(ctx, MedicineRecordFilter{ChildID: child.ID, ExcludeSkipped: true})
	if err != nil {
		t.Fatalf("ListMedicineRecords: %v", err)
	}
	if len(records) != 1 || records[0].Skipped {
		t.Errorf("excludeSkipped records = %+v", records)
	}

	n, err := s.CountMedicineRecords(ctx, MedicineRecordFilter{ChildID: child.ID, ExcludeSkipped: true})
	if err != nil {
		t.Fatalf("CountMedicineRecords: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

// ─── Growth ──────────────────────────────────────────────────────────────────

func TestPreviousGrowth(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	child := newTestChild(t, s)
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	for i, kg := range []float64{4.0, 4.5, 5.1} {
		_, err := s.CreateGrowth(ctx, CreateGrowthParams{
			ChildID:    child.ID,
			MeasuredAt: base.AddDate(0, 0, i*14),
			WeightKG:   ptr(kg),
		})
		if err != nil {
			t.Fatalf("CreateGrowth: %v", err)
		}
	}

	prev, err := s.PreviousGrowth(ctx, child.ID, base.AddDate(0, 0, 28))
	if err != nil {
		t.Fatalf("PreviousGrowth: %v", err)
	}
	if prev == nil || prev.WeightKG == nil || *prev.WeightKG != 4.5 {
		t.Errorf("previous = %+v, want the 4.5kg record", prev)
	}

	// Nothing before the earliest record.
	prev, err = s.PreviousGrowth(ctx, child.ID, base)
	if err != nil {
		t.Fatalf("PreviousGrowth: %v", err)
	}
	if prev != nil {
		t.Errorf("previous before first = %+v, want nil", prev)
	}
}

// ─── Feeding constraints ─────────────────────────────────────────────────────

func TestActiveBreastfeedingOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	child := newTestChild(t, s)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// Bottle feedings have no end time but never count as active.
	if _, err := s.CreateFeeding(ctx, CreateFeedingParams{
		ChildID: child.ID, Type: FeedBottle, AmountML: ptr(120.0), StartedAt: base,
	}); err != nil {
		t.Fatalf("bottle: %v", err)
	}

	active, err := s.ActiveBreastfeeding(ctx, child.ID)
	if err != nil {
		t.Fatalf("ActiveBreastfeeding: %v", err)
	}
	if active != nil {
		t.Errorf("bottle counted as active breastfeeding: %+v", active)
	}

	rec, err := s.CreateFeeding(ctx, CreateFeedingParams{
		ChildID: child.ID, Type: FeedBreast, Side: "LEFT", StartedAt: base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("breast: %v", err)
	}

	active, err = s.ActiveBreastfeeding(ctx, child.ID)
	if err != nil {
		t.Fatalf("ActiveBreastfeeding: %v", err)
	}
	if active == nil || active.ID != rec.ID {
		t.Fatalf("ActiveBreastfeeding = %+v", active)
	}

	if _, err := s.CreateFeeding(ctx, CreateFeedingParams{
		ChildID: child.ID, Type: FeedBreast, Side: "RIGHT", StartedAt: base.Add(2 * time.Hour),
	}); err == nil {
		t.Fatal("second active breastfeeding should fail")
	}
}

// ─── Activity per-type guard ─────────────────────────────────────────────────

func TestActivityActivePerType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	child := newTestChild(t, s)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := s.CreateActivity(ctx, CreateActivityParams{
		ChildID: child.ID, Type: "TUMMY_TIME", StartedAt: base,
	}); err != nil {
		t.Fatalf("tummy time: %v", err)
	}

	// A different activity type can run concurrently.
	if _, err := s.CreateActivity(ctx, CreateActivityParams{
		ChildID: child.ID, Type: "WALK", StartedAt: base,
	}); err != nil {
		t.Fatalf("concurrent walk: %v", err)
	}

	// The same type cannot.
	if _, err := s.CreateActivity(ctx, CreateActivityParams{
		ChildID: child.ID, Type: "WALK", StartedAt: base.Add(time.Minute),
	}); err == nil {
		t.Fatal("second active walk should fail")
	}

	active, err := s.ActiveActivity(ctx, child.ID, "WALK")
	if err != nil {
		t.Fatalf("ActiveActivity: %v", err)
	}
	if active == nil || active.Type != "WALK" {
		t.Fatalf("ActiveActivity = %+v", active)
	}
}

// ─── Timestamp storage ───────────────────────────────────────────────────────

func TestTimestampsStoredUTC(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	child := newTestChild(t, s)

	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, 3, 10, 14, 30, 0, 123456789, loc)

	rec, err := s.CreateDiaper(ctx, child.ID, DiaperWet, local, "")
	if err != nil {
		t.Fatalf("CreateDiaper: %v", err)
	}
	want := local.UTC().Truncate(time.Second)
	if !rec.ChangedAt.Equal(want) {
		t.Errorf("stored time = %v, want %v", rec.ChangedAt, want)
	}
	if rec.ChangedAt.Location() != time.UTC {
		t.Errorf("stored location = %v, want UTC", rec.ChangedAt.Location())
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	child, err := s1.CreateChild(context.Background(), "Emma", time.Now(), "")
	if err != nil {
		t.Fatalf("CreateChild: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Re-opening runs migrations again and keeps the data.
	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer func() { _ = s2.Close() }()

	got, err := s2.GetChild(context.Background(), child.ID)
	if err != nil {
		t.Fatalf("GetChild: %v", err)
	}
	if got == nil {
		t.Fatal("child lost across reopen")
	}
}
