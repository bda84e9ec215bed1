package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jvbaena/cradle/internal/timer"
)

// Feeding sub-types.
const (
	FeedBreast = "BREAST"
	FeedBottle = "BOTTLE"
	FeedSolids = "SOLIDS"
)

// FeedingRecord is one feed. BREAST feeds are intervals (EndedAt nil
// while nursing); BOTTLE and SOLIDS feeds are single-timestamp records
// that never gain an end time.
type FeedingRecord struct {
	ID        string     `json:"id"`
	ChildID   string     `json:"childId"`
	Type      string     `json:"type"`
	Side      *string    `json:"side,omitempty"`
	AmountML  *float64   `json:"amountMl,omitempty"`
	Foods     *string    `json:"foods,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Span reports the record's timing view.
func (r FeedingRecord) Span() timer.Span {
	return timer.Span{ID: r.ID, Start: r.StartedAt, End: r.EndedAt}
}

// CreateFeedingParams holds the input for creating a feeding record.
type CreateFeedingParams struct {
	ChildID   string
	Type      string
	Side      string
	AmountML  *float64
	Foods     string
	StartedAt time.Time
	EndedAt   *time.Time
	Notes     string
}

// CreateFeeding inserts a feeding record and returns it.
func (s *Store) CreateFeeding(ctx context.Context, p CreateFeedingParams) (*FeedingRecord, error) {
	id := newID()
	now := fmtTime(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feeding_records (id, child_id, feed_type, side, amount_ml, foods, started_at, ended_at, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.ChildID, p.Type, nullableString(p.Side), p.AmountML, nullableString(p.Foods),
		fmtTime(p.StartedAt), nullableTime(p.EndedAt), nullableString(p.Notes), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("store: create feeding: %w", err)
	}
	return s.GetFeeding(ctx, id)
}

// GetFeeding returns a feeding record by id, or nil if none exists.
func (s *Store) GetFeeding(ctx context.Context, id string) (*FeedingRecord, error) {
	row := s.db.QueryRowContext(ctx, selectFeeding+` WHERE id = ?`, id)
	r, err := scanFeeding(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get feeding: %w", err)
	}
	return r, nil
}

// ActiveBreastfeeding returns the child's ongoing breastfeed, or nil
// when none is active.
func (s *Store) ActiveBreastfeeding(ctx context.Context, childID string) (*FeedingRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectFeeding+` WHERE child_id = ? AND feed_type = ? AND ended_at IS NULL`,
		childID, FeedBreast,
	)
	r, err := scanFeeding(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: active breastfeeding: %w", err)
	}
	return r, nil
}

// EndFeeding completes an active breastfeed. Only an ongoing record is
// updated; an unknown id or an already-completed record yields nil.
func (s *Store) EndFeeding(ctx context.Context, id string, endedAt time.Time, notes string) (*FeedingRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE feeding_records
		 SET ended_at = ?,
		     notes = COALESCE(?, notes),
		     updated_at = ?
		 WHERE id = ? AND ended_at IS NULL`,
		fmtTime(endedAt), nullableString(notes), fmtTime(time.Now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("store: end feeding: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetFeeding(ctx, id)
}

// ListFeedings returns feeding records matching the filter, ordered by
// start time.
func (s *Store) ListFeedings(ctx context.Context, f RecordFilter) ([]FeedingRecord, error) {
	clause, args := whereClause(f, "started_at", "feed_type")
	q := selectFeeding + clause + " ORDER BY started_at " + f.order() + f.limitClause()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list feedings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []FeedingRecord
	for rows.Next() {
		r, err := scanFeeding(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list feedings: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// CountFeedings returns the number of feeding records matching the
// filter, ignoring pagination.
func (s *Store) CountFeedings(ctx context.Context, f RecordFilter) (int, error) {
	clause, args := whereClause(f, "started_at", "feed_type")
	return count(ctx, s.db, `SELECT COUNT(*) FROM feeding_records`+clause, args...)
}

const selectFeeding = `SELECT id, child_id, feed_type, side, amount_ml, foods, started_at, ended_at, notes, created_at, updated_at FROM feeding_records`

func scanFeeding(row rowScanner) (*FeedingRecord, error) {
	var r FeedingRecord
	var side, foods, ended, notes *string
	var amount *float64
	var started, created, updated string
	if err := row.Scan(&r.ID, &r.ChildID, &r.Type, &side, &amount, &foods, &started, &ended, &notes, &created, &updated); err != nil {
		return nil, err
	}
	r.Side = strPtr(side)
	r.AmountML = amount
	r.Foods = strPtr(foods)
	r.StartedAt = parseTime(started)
	r.EndedAt = scanTimePtr(ended)
	r.Notes = strPtr(notes)
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return &r, nil
}
