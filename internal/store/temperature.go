package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TemperatureRecord is a single temperature reading in Celsius.
type TemperatureRecord struct {
	ID         string    `json:"id"`
	ChildID    string    `json:"childId"`
	MeasuredAt time.Time `json:"measuredAt"`
	TempC      float64   `json:"temperatureC"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateTemperature inserts a temperature record and returns it.
func (s *Store) CreateTemperature(ctx context.Context, childID string, measuredAt time.Time, tempC float64, notes string) (*TemperatureRecord, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO temperature_records (id, child_id, measured_at, temp_c, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, childID, fmtTime(measuredAt), tempC, nullableString(notes), fmtTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("store: create temperature: %w", err)
	}
	return s.GetTemperature(ctx, id)
}

// GetTemperature returns a temperature record by id, or nil if none
// exists.
func (s *Store) GetTemperature(ctx context.Context, id string) (*TemperatureRecord, error) {
	row := s.db.QueryRowContext(ctx, selectTemperature+` WHERE id = ?`, id)
	r, err := scanTemperature(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get temperature: %w", err)
	}
	return r, nil
}

// LatestTemperature returns the child's most recent reading, or nil
// when none has been recorded.
func (s *Store) LatestTemperature(ctx context.Context, childID string) (*TemperatureRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectTemperature+` WHERE child_id = ? ORDER BY measured_at DESC LIMIT 1`, childID,
	)
	r, err := scanTemperature(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: latest temperature: %w", err)
	}
	return r, nil
}

// ListTemperatures returns temperature records matching the filter,
// ordered by measurement time.
func (s *Store) ListTemperatures(ctx context.Context, f RecordFilter) ([]TemperatureRecord, error) {
	clause, args := whereClause(f, "measured_at", "")
	q := selectTemperature + clause + " ORDER BY measured_at " + f.order() + f.limitClause()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list temperatures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []TemperatureRecord
	for rows.Next() {
		r, err := scanTemperature(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list temperatures: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// CountTemperatures returns the number of temperature records matching
// the filter, ignoring pagination.
func (s *Store) CountTemperatures(ctx context.Context, f RecordFilter) (int, error) {
	clause, args := whereClause(f, "measured_at", "")
	return count(ctx, s.db, `SELECT COUNT(*) FROM temperature_records`+clause, args...)
}

const selectTemperature = `SELECT id, child_id, measured_at, temp_c, notes, created_at FROM temperature_records`

func scanTemperature(row rowScanner) (*TemperatureRecord, error) {
	var r TemperatureRecord
	var notes *string
	var measured, created string
	if err := row.Scan(&r.ID, &r.ChildID, &measured, &r.TempC, &notes, &created); err != nil {
		return nil, err
	}
	r.MeasuredAt = parseTime(measured)
	r.Notes = strPtr(notes)
	r.CreatedAt = parseTime(created)
	return &r, nil
}
