package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GrowthRecord is a growth measurement. At least one of the three
// measurements is present; the tool layer enforces that before
// creating a row.
type GrowthRecord struct {
	ID         string    `json:"id"`
	ChildID    string    `json:"childId"`
	MeasuredAt time.Time `json:"measuredAt"`
	WeightKG   *float64  `json:"weightKg,omitempty"`
	HeightCM   *float64  `json:"heightCm,omitempty"`
	HeadCM     *float64  `json:"headCircumferenceCm,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateGrowthParams holds the input for creating a growth record.
type CreateGrowthParams struct {
	ChildID    string
	MeasuredAt time.Time
	WeightKG   *float64
	HeightCM   *float64
	HeadCM     *float64
	Notes      string
}

// CreateGrowth inserts a growth record and returns it.
func (s *Store) CreateGrowth(ctx context.Context, p CreateGrowthParams) (*GrowthRecord, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO growth_records (id, child_id, measured_at, weight_kg, height_cm, head_cm, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.ChildID, fmtTime(p.MeasuredAt), p.WeightKG, p.HeightCM, p.HeadCM,
		nullableString(p.Notes), fmtTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("store: create growth: %w", err)
	}
	return s.GetGrowth(ctx, id)
}

// GetGrowth returns a growth record by id, or nil if none exists.
func (s *Store) GetGrowth(ctx context.Context, id string) (*GrowthRecord, error) {
	row := s.db.QueryRowContext(ctx, selectGrowth+` WHERE id = ?`, id)
	r, err := scanGrowth(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get growth: %w", err)
	}
	return r, nil
}

// PreviousGrowth returns the child's most recent growth record
// measured strictly before the given time, or nil when there is none.
// Used to compute deltas against the immediately preceding entry.
func (s *Store) PreviousGrowth(ctx context.Context, childID string, before time.Time) (*GrowthRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectGrowth+` WHERE child_id = ? AND measured_at < ? ORDER BY measured_at DESC LIMIT 1`,
		childID, fmtTime(before),
	)
	r, err := scanGrowth(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: previous growth: %w", err)
	}
	return r, nil
}

// ListGrowth returns growth records matching the filter, ordered by
// measurement time.
func (s *Store) ListGrowth(ctx context.Context, f RecordFilter) ([]GrowthRecord, error) {
	clause, args := whereClause(f, "measured_at", "")
	q := selectGrowth + clause + " ORDER BY measured_at " + f.order() + f.limitClause()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list growth: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []GrowthRecord
	for rows.Next() {
		r, err := scanGrowth(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list growth: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// CountGrowth returns the number of growth records matching the
// filter, ignoring pagination.
func (s *Store) CountGrowth(ctx context.Context, f RecordFilter) (int, error) {
	clause, args := whereClause(f, "measured_at", "")
	return count(ctx, s.db, `SELECT COUNT(*) FROM growth_records`+clause, args...)
}

const selectGrowth = `SELECT id, child_id, measured_at, weight_kg, height_cm, head_cm, notes, created_at FROM growth_records`

func scanGrowth(row rowScanner) (*GrowthRecord, error) {
	var r GrowthRecord
	var notes *string
	var measured, created string
	if err := row.Scan(&r.ID, &r.ChildID, &measured, &r.WeightKG, &r.HeightCM, &r.HeadCM, &notes, &created); err != nil {
		return nil, err
	}
	r.MeasuredAt = parseTime(measured)
	r.Notes = strPtr(notes)
	r.CreatedAt = parseTime(created)
	return &r, nil
}
