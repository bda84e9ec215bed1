// Package timer implements the shared start/stop/log lifecycle helpers
// for interval records: events with a start time and an optional end
// time (sleep, breastfeeding, pumping, activities).
//
// An interval whose end time is nil is "ongoing". Durations are whole
// minutes, floored.
package timer

import (
	"time"

	"github.com/jvbaena/cradle/internal/units"
)

// Span is the timing view of an interval record. Store record types
// expose one via their Span method.
type Span struct {
	ID    string
	Start time.Time
	End   *time.Time
}

// Interval is satisfied by any record that can report its span.
type Interval interface {
	Span() Span
}

// Ongoing is the duration string reported for an interval with no end
// time.
const Ongoing = "ongoing"

// Minutes returns the whole-minute difference between two times,
// floored.
func Minutes(start, end time.Time) int {
	return int(end.Sub(start).Minutes())
}

// DurationInfo renders an interval's duration. Ongoing intervals yield
// ("ongoing", nil); completed ones yield the formatted string and the
// minute count.
func DurationInfo(start time.Time, end *time.Time) (string, *int) {
	if end == nil {
		return Ongoing, nil
	}
	m := Minutes(start, *end)
	return units.FormatMinutes(m), &m
}

// TotalMinutes sums the minute durations of completed records. Ongoing
// records contribute zero; they are not removed from the input.
func TotalMinutes[T Interval](records []T) int {
	total := 0
	for _, r := range records {
		s := r.Span()
		if s.End == nil {
			continue
		}
		total += Minutes(s.Start, *s.End)
	}
	return total
}

// CompletedOnly filters to records with an end time, preserving order.
func CompletedOnly[T Interval](records []T) []T {
	var out []T
	for _, r := range records {
		if r.Span().End != nil {
			out = append(out, r)
		}
	}
	return out
}

// RecordView is the base serialized shape of an interval record.
// EndTime is omitted entirely, not serialized as null, while the
// record is ongoing.
type RecordView struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime,omitempty"`
	Duration  string `json:"duration"`
}

// View builds the base serialized shape for one span.
func View(s Span) RecordView {
	v := RecordView{
		ID:        s.ID,
		StartTime: s.Start.UTC().Format(time.RFC3339),
	}
	v.Duration, _ = DurationInfo(s.Start, s.End)
	if s.End != nil {
		v.EndTime = s.End.UTC().Format(time.RFC3339)
	}
	return v
}

// MapRecent maps the first limit records, in the slice's existing
// order, through a per-domain view function that merges the base
// RecordView with domain fields. Callers are expected to have sorted
// already, typically newest first.
func MapRecent[T Interval, M any](records []T, limit int, view func(T, RecordView) M) []M {
	if limit < len(records) {
		records = records[:limit]
	}
	out := make([]M, 0, len(records))
	for _, r := range records {
		out = append(out, view(r, View(r.Span())))
	}
	return out
}

// ─── Result envelopes ────────────────────────────────────────────────────────
//
// Per-domain tool results embed one of these and add their own id
// field (sleepId, feedingId, ...). The shapes are deliberately
// asymmetric: ending a timer reports duration and durationMinutes,
// logging after the fact reports only a nullable duration string.

// StartResult is the envelope for starting a timer.
type StartResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	StartTime string `json:"startTime"`
}

// NewStartResult builds a StartResult.
func NewStartResult(message string, start time.Time) StartResult {
	return StartResult{
		Success:   true,
		Message:   message,
		StartTime: start.UTC().Format(time.RFC3339),
	}
}

// EndResult is the envelope for completing a timer.
type EndResult struct {
	Success         bool   `json:"success"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Duration        string `json:"duration"`
	DurationMinutes int    `json:"durationMinutes"`
}

// NewEndResult builds an EndResult for a completed interval.
func NewEndResult(start, end time.Time) EndResult {
	m := Minutes(start, end)
	return EndResult{
		Success:         true,
		StartTime:       start.UTC().Format(time.RFC3339),
		EndTime:         end.UTC().Format(time.RFC3339),
		Duration:        units.FormatMinutes(m),
		DurationMinutes: m,
	}
}

// LogResult is the envelope for recording an interval after the fact.
// EndTime and Duration are null when the logged record is left
// ongoing.
type LogResult struct {
	Success   bool    `json:"success"`
	StartTime string  `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Duration  *string `json:"duration"`
}

// NewLogResult builds a LogResult.
func NewLogResult(start time.Time, end *time.Time) LogResult {
	r := LogResult{
		Success:   true,
		StartTime: start.UTC().Format(time.RFC3339),
	}
	if end != nil {
		e := end.UTC().Format(time.RFC3339)
		r.EndTime = &e
		d, _ := DurationInfo(start, end)
		r.Duration = &d
	}
	return r
}
