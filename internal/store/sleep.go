package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jvbaena/cradle/internal/timer"
)

// Sleep sub-types.
const (
	SleepNap   = "NAP"
	SleepNight = "NIGHT"
)

// SleepRecord is a nap or night sleep. EndedAt is nil while the sleep
// is ongoing.
type SleepRecord struct {
	ID        string     `json:"id"`
	ChildID   string     `json:"childId"`
	Type      string     `json:"type"`
	Quality   *string    `json:"quality,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Span reports the record's timing view.
func (r SleepRecord) Span() timer.Span {
	return timer.Span{ID: r.ID, Start: r.StartedAt, End: r.EndedAt}
}

// CreateSleepParams holds the input for creating a sleep record.
// EndedAt nil creates an ongoing (active) sleep.
type CreateSleepParams struct {
	ChildID   string
	Type      string
	Quality   string
	StartedAt time.Time
	EndedAt   *time.Time
	Notes     string
}

// CreateSleep inserts a sleep record and returns it.
func (s *Store) CreateSleep(ctx context.Context, p CreateSleepParams) (*SleepRecord, error) {
	id := newID()
	now := fmtTime(time.Now())
	typ := p.Type
	if typ == "" {
		typ = SleepNap
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sleep_records (id, child_id, sleep_type, quality, started_at, ended_at, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.ChildID, typ, nullableString(p.Quality),
		fmtTime(p.StartedAt), nullableTime(p.EndedAt), nullableString(p.Notes), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("store: create sleep: %w", err)
	}
	return s.GetSleep(ctx, id)
}

// GetSleep returns a sleep record by id, or nil if none exists.
func (s *Store) GetSleep(ctx context.Context, id string) (*SleepRecord, error) {
	row := s.db.QueryRowContext(ctx, selectSleep+` WHERE id = ?`, id)
	r, err := scanSleep(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get sleep: %w", err)
	}
	return r, nil
}

// ActiveSleep returns the child's ongoing sleep record, or nil when
// none is active.
func (s *Store) ActiveSleep(ctx context.Context, childID string) (*SleepRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectSleep+` WHERE child_id = ? AND ended_at IS NULL`, childID,
	)
	r, err := scanSleep(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: active sleep: %w", err)
	}
	return r, nil
}

// EndSleep completes an active sleep record, setting the end time and
// any trailing fields. Only an ongoing record is updated; if the id is
// unknown or the record was already completed, EndSleep returns nil
// without touching the row.
func (s *Store) EndSleep(ctx context.Context, id string, endedAt time.Time, quality, notes string) (*SleepRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sleep_records
		 SET ended_at = ?,
		     quality = COALESCE(?, quality),
		     notes = COALESCE(?, notes),
		     updated_at = ?
		 WHERE id = ? AND ended_at IS NULL`,
		fmtTime(endedAt), nullableString(quality), nullableString(notes), fmtTime(time.Now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("store: end sleep: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetSleep(ctx, id)
}

// ListSleep returns sleep records matching the filter, ordered by
// start time.
func (s *Store) ListSleep(ctx context.Context, f RecordFilter) ([]SleepRecord, error) {
	clause, args := whereClause(f, "started_at", "sleep_type")
	q := selectSleep + clause + " ORDER BY started_at " + f.order() + f.limitClause()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list sleep: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []SleepRecord
	for rows.Next() {
		r, err := scanSleep(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list sleep: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// CountSleep returns the number of sleep records matching the filter,
// ignoring pagination.
func (s *Store) CountSleep(ctx context.Context, f RecordFilter) (int, error) {
	clause, args := whereClause(f, "started_at", "sleep_type")
	return count(ctx, s.db, `SELECT COUNT(*) FROM sleep_records`+clause, args...)
}

const selectSleep = `SELECT id, child_id, sleep_type, quality, started_at, ended_at, notes, created_at, updated_at FROM sleep_records`

func scanSleep(row rowScanner) (*SleepRecord, error) {
	var r SleepRecord
	var quality, ended, notes *string
	var started, created, updated string
	if err := row.Scan(&r.ID, &r.ChildID, &r.Type, &quality, &started, &ended, &notes, &created, &updated); err != nil {
		return nil, err
	}
	r.Quality = strPtr(quality)
	r.StartedAt = parseTime(started)
	r.EndedAt = scanTimePtr(ended)
	r.Notes = strPtr(notes)
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return &r, nil
}
