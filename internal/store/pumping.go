package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jvbaena/cradle/internal/timer"
)

// PumpingRecord is a breast-pumping session. EndedAt is nil while the
// session is ongoing; AmountML is usually recorded when it ends.
type PumpingRecord struct {
	ID        string     `json:"id"`
	ChildID   string     `json:"childId"`
	Side      *string    `json:"side,omitempty"`
	AmountML  *float64   `json:"amountMl,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Span reports the record's timing view.
func (r PumpingRecord) Span() timer.Span {
	return timer.Span{ID: r.ID, Start: r.StartedAt, End: r.EndedAt}
}

// CreatePumpingParams holds the input for creating a pumping record.
type CreatePumpingParams struct {
	ChildID   string
	Side      string
	AmountML  *float64
	StartedAt time.Time
	EndedAt   *time.Time
	Notes     string
}

// CreatePumping inserts a pumping record and returns it.
func (s *Store) CreatePumping(ctx context.Context, p CreatePumpingParams) (*PumpingRecord, error) {
	id := newID()
	now := fmtTime(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pumping_records (id, child_id, side, amount_ml, started_at, ended_at, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.ChildID, nullableString(p.Side), p.AmountML,
		fmtTime(p.StartedAt), nullableTime(p.EndedAt), nullableString(p.Notes), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("store: create pumping: %w", err)
	}
	return s.GetPumping(ctx, id)
}

// GetPumping returns a pumping record by id, or nil if none exists.
func (s *Store) GetPumping(ctx context.Context, id string) (*PumpingRecord, error) {
	row := s.db.QueryRowContext(ctx, selectPumping+` WHERE id = ?`, id)
	r, err := scanPumping(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get pumping: %w", err)
	}
	return r, nil
}

// ActivePumping returns the child's ongoing pumping session, or nil
// when none is active.
func (s *Store) ActivePumping(ctx context.Context, childID string) (*PumpingRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectPumping+` WHERE child_id = ? AND ended_at IS NULL`, childID,
	)
	r, err := scanPumping(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: active pumping: %w", err)
	}
	return r, nil
}

// EndPumping completes an active pumping session, recording the amount
// expressed. Only an ongoing record is updated; an unknown id or an
// already-completed record yields nil.
func (s *Store) EndPumping(ctx context.Context, id string, endedAt time.Time, amountML *float64, notes string) (*PumpingRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pumping_records
		 SET ended_at = ?,
		     amount_ml = COALESCE(?, amount_ml),
		     notes = COALESCE(?, notes),
		     updated_at = ?
		 WHERE id = ? AND ended_at IS NULL`,
		fmtTime(endedAt), amountML, nullableString(notes), fmtTime(time.Now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("store: end pumping: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetPumping(ctx, id)
}

// ListPumpings returns pumping records matching the filter, ordered by
// start time.
func (s *Store) ListPumpings(ctx context.Context, f RecordFilter) ([]PumpingRecord, error) {
	clause, args := whereClause(f, "started_at", "")
	q := selectPumping + clause + " ORDER BY started_at " + f.order() + f.limitClause()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list pumpings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []PumpingRecord
	for rows.Next() {
		r, err := scanPumping(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list pumpings: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// CountPumpings returns the number of pumping records matching the
// filter, ignoring pagination.
func (s *Store) CountPumpings(ctx context.Context, f RecordFilter) (int, error) {
	clause, args := whereClause(f, "started_at", "")
	return count(ctx, s.db, `SELECT COUNT(*) FROM pumping_records`+clause, args...)
}

const selectPumping = `SELECT id, child_id, side, amount_ml, started_at, ended_at, notes, created_at, updated_at FROM pumping_records`

func scanPumping(row rowScanner) (*PumpingRecord, error) {
	var r PumpingRecord
	var side, ended, notes *string
	var amount *float64
	var started, created, updated string
	if err := row.Scan(&r.ID, &r.ChildID, &side, &amount, &started, &ended, &notes, &created, &updated); err != nil {
		return nil, err
	}
	r.Side = strPtr(side)
	r.AmountML = amount
	r.StartedAt = parseTime(started)
	r.EndedAt = scanTimePtr(ended)
	r.Notes = strPtr(notes)
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return &r, nil
}
