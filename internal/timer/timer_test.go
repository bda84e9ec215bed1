package timer

import (
	"testing"
	"time"
)

type span struct{ s Span }

func (x span) Span() Span { return x.s }

func interval(start time.Time, minutes int) span {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return span{Span{ID: "x", Start: start, End: &end}}
}

func ongoing(start time.Time) span {
	return span{Span{ID: "x", Start: start}}
}

func TestDurationInfo(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	s, m := DurationInfo(start, nil)
	if s != Ongoing || m != nil {
		t.Errorf("ongoing: got (%q, %v)", s, m)
	}

	cases := []struct {
		minutes int
		want    string
	}{
		{90, "1h 30m"},
		{60, "1h"},
		{15, "15m"},
		{0, "0m"},
	}
	for _, c := range cases {
		end := start.Add(time.Duration(c.minutes) * time.Minute)
		s, m := DurationInfo(start, &end)
		if s != c.want {
			t.Errorf("DurationInfo(%d min) = %q, want %q", c.minutes, s, c.want)
		}
		if m == nil || *m != c.minutes {
			t.Errorf("DurationInfo(%d min) minutes = %v", c.minutes, m)
		}
	}
}

func TestTotalMinutesSkipsOngoing(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	records := []span{
		interval(start, 30),
		ongoing(start.Add(time.Hour)),
		interval(start.Add(2*time.Hour), 45),
	}
	if got := TotalMinutes(records); got != 75 {
		t.Errorf("TotalMinutes = %d, want 75", got)
	}
}

func TestCompletedOnly(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	records := []span{ongoing(start), interval(start, 10), ongoing(start), interval(start, 20)}
	got := CompletedOnly(records)
	if len(got) != 2 {
		t.Fatalf("CompletedOnly returned %d records, want 2", len(got))
	}
}

func TestViewOmitsEndTimeWhileOngoing(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	v := View(Span{ID: "a", Start: start})
	if v.EndTime != "" {
		t.Errorf("endTime = %q, want empty while ongoing", v.EndTime)
	}
	if v.Duration != Ongoing {
		t.Errorf("duration = %q, want %q", v.Duration, Ongoing)
	}

	end := start.Add(45 * time.Minute)
	v = View(Span{ID: "a", Start: start, End: &end})
	if v.EndTime == "" || v.Duration != "45m" {
		t.Errorf("completed view = %+v", v)
	}
}

func TestMapRecentLimits(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	records := []span{interval(start, 1), interval(start, 2), interval(start, 3)}

	got := MapRecent(records, 2, func(r span, v RecordView) string { return v.Duration })
	if len(got) != 2 {
		t.Fatalf("MapRecent returned %d, want 2", len(got))
	}
	if got[0] != "1m" || got[1] != "2m" {
		t.Errorf("MapRecent = %v", got)
	}

	// Limit larger than input maps everything.
	got = MapRecent(records, 10, func(r span, v RecordView) string { return v.Duration })
	if len(got) != 3 {
		t.Errorf("MapRecent over-limit returned %d, want 3", len(got))
	}
}

func TestResultEnvelopes(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	er := NewEndResult(start, end)
	if !er.Success || er.Duration != "1h 30m" || er.DurationMinutes != 90 {
		t.Errorf("EndResult = %+v", er)
	}

	lr := NewLogResult(start, nil)
	if lr.EndTime != nil || lr.Duration != nil {
		t.Errorf("ongoing LogResult should have null endTime and duration: %+v", lr)
	}

	lr = NewLogResult(start, &end)
	if lr.EndTime == nil || lr.Duration == nil || *lr.Duration != "1h 30m" {
		t.Errorf("completed LogResult = %+v", lr)
	}
}
