// Package query implements the shared request/response shape used by
// every record-querying tool: date-range defaulting, pagination
// clamping, and the uniform paginated response envelope.
//
// Nothing in this package returns an error. Malformed pagination or
// date input is coerced to a usable value rather than failing the
// request.
package query

import (
	"math"
	"time"
)

// Defaults and bounds for pagination input.
const (
	DefaultLimit = 100
	MaxLimit     = 500

	// DefaultWindow is the date range applied when the caller supplies
	// no start date: seven days back from the end of the range.
	DefaultWindow = 7 * 24 * time.Hour
)

// DateRange is a resolved [start, end] query window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange resolves optional RFC 3339 start/end strings against
// the given clock. A missing or unparseable end defaults to now; a
// missing or unparseable start defaults to end minus seven days.
func ParseDateRange(startStr, endStr string, now time.Time) DateRange {
	end := now
	if t, err := time.Parse(time.RFC3339, endStr); err == nil {
		end = t
	}
	start := end.Add(-DefaultWindow)
	if t, err := time.Parse(time.RFC3339, startStr); err == nil {
		start = t
	}
	return DateRange{Start: start, End: end}
}

// ResolvePeriod maps a named period to a concrete range ending now.
// "today" starts at local midnight; "week" and "month" reach back 7
// and 30 days. Unrecognized periods resolve to "today".
func ResolvePeriod(period string, now time.Time) DateRange {
	switch period {
	case "week":
		return DateRange{Start: now.Add(-7 * 24 * time.Hour), End: now}
	case "month":
		return DateRange{Start: now.Add(-30 * 24 * time.Hour), End: now}
	default:
		y, m, d := now.Date()
		return DateRange{Start: time.Date(y, m, d, 0, 0, 0, 0, now.Location()), End: now}
	}
}

// SanitizeLimit coerces an optional limit argument to [1, MaxLimit].
// nil means "not supplied" and yields DefaultLimit. Fractional input
// is floored, out-of-range input is clamped; neither is an error.
func SanitizeLimit(raw *float64) int {
	if raw == nil {
		return DefaultLimit
	}
	n := int(math.Floor(*raw))
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// SanitizeOffset coerces an optional offset argument to [0, ∞).
func SanitizeOffset(raw *float64) int {
	if raw == nil {
		return 0
	}
	n := int(math.Floor(*raw))
	if n < 0 {
		return 0
	}
	return n
}

// SanitizeOrder normalizes an orderBy argument to "asc" or "desc",
// defaulting to "desc" (newest first).
func SanitizeOrder(raw string) string {
	if raw == "asc" {
		return "asc"
	}
	return "desc"
}

// Pagination is the metadata block of every query response.
type Pagination struct {
	Total      int  `json:"total"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"hasMore"`
	NextOffset *int `json:"nextOffset"`
}

// BuildPagination computes page metadata. hasMore holds exactly when
// offset+limit < total, so the boundary page (offset+limit == total)
// reports no further results and a null nextOffset.
func BuildPagination(total, limit, offset int) Pagination {
	p := Pagination{Total: total, Limit: limit, Offset: offset}
	if offset+limit < total {
		p.HasMore = true
		next := offset + limit
		p.NextOffset = &next
	}
	return p
}

// RangeStrings is the serialized form of a DateRange.
type RangeStrings struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Response is the uniform envelope returned by every query-*-records
// tool. Summary is omitted from the serialized form when the caller
// did not request one: absent, not null.
type Response[T any] struct {
	Pagination Pagination   `json:"pagination"`
	DateRange  RangeStrings `json:"dateRange"`
	Records    []T          `json:"records"`
	Summary    any          `json:"summary,omitempty"`
}

// NewResponse assembles a Response for one page of records. Records is
// never nil so an empty page serializes as [].
func NewResponse[T any](records []T, total, limit, offset int, r DateRange) Response[T] {
	if records == nil {
		records = []T{}
	}
	return Response[T]{
		Pagination: BuildPagination(total, limit, offset),
		DateRange: RangeStrings{
			Start: r.Start.UTC().Format(time.RFC3339),
			End:   r.End.UTC().Format(time.RFC3339),
		},
		Records: records,
	}
}
