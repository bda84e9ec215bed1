package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jvbaena/cradle/internal/timer"
)

// ActivityRecord is a timed activity (tummy time, bath, play, walk...).
// EndedAt is nil while the activity is ongoing.
type ActivityRecord struct {
	ID        string     `json:"id"`
	ChildID   string     `json:"childId"`
	Type      string     `json:"type"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Span reports the record's timing view.
func (r ActivityRecord) Span() timer.Span {
	return timer.Span{ID: r.ID, Start: r.StartedAt, End: r.EndedAt}
}

// CreateActivityParams holds the input for creating an activity record.
type CreateActivityParams struct {
	ChildID   string
	Type      string
	StartedAt time.Time
	EndedAt   *time.Time
	Notes     string
}

// CreateActivity inserts an activity record and returns it.
func (s *Store) CreateActivity(ctx context.Context, p CreateActivityParams) (*ActivityRecord, error) {
	id := newID()
	now := fmtTime(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_records (id, child_id, activity_type, started_at, ended_at, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.ChildID, p.Type, fmtTime(p.StartedAt), nullableTime(p.EndedAt), nullableString(p.Notes), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("store: create activity: %w", err)
	}
	return s.GetActivity(ctx, id)
}

// GetActivity returns an activity record by id, or nil if none exists.
func (s *Store) GetActivity(ctx context.Context, id string) (*ActivityRecord, error) {
	row := s.db.QueryRowContext(ctx, selectActivity+` WHERE id = ?`, id)
	r, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get activity: %w", err)
	}
	return r, nil
}

// ActiveActivity returns the child's ongoing activity of the given
// type, or nil when none is active.
func (s *Store) ActiveActivity(ctx context.Context, childID, activityType string) (*ActivityRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectActivity+` WHERE child_id = ? AND activity_type = ? AND ended_at IS NULL`,
		childID, activityType,
	)
	r, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: active activity: %w", err)
	}
	return r, nil
}

// EndActivity completes an active activity. Only an ongoing record is
// updated; an unknown id or an already-completed record yields nil.
func (s *Store) EndActivity(ctx context.Context, id string, endedAt time.Time, notes string) (*ActivityRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE activity_records
		 SET ended_at = ?,
		     notes = COALESCE(?, notes),
		     updated_at = ?
		 WHERE id = ? AND ended_at IS NULL`,
		fmtTime(endedAt), nullableString(notes), fmtTime(time.Now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("store: end activity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetActivity(ctx, id)
}

// ListActivities returns activity records matching the filter, ordered
// by start time.
func (s *Store) ListActivities(ctx context.Context, f RecordFilter) ([]ActivityRecord, error) {
	clause, args := whereClause(f, "started_at", "activity_type")
	q := selectActivity + clause + " ORDER BY started_at " + f.order() + f.limitClause()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []ActivityRecord
	for rows.Next() {
		r, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list activities: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// CountActivities returns the number of activity records matching the
// filter, ignoring pagination.
func (s *Store) CountActivities(ctx context.Context, f RecordFilter) (int, error) {
	clause, args := whereClause(f, "started_at", "activity_type")
	return count(ctx, s.db, `SELECT COUNT(*) FROM activity_records`+clause, args...)
}

const selectActivity = `SELECT id, child_id, activity_type, started_at, ended_at, notes, created_at, updated_at FROM activity_records`

func scanActivity(row rowScanner) (*ActivityRecord, error) {
	var r ActivityRecord
	var ended, notes *string
	var started, created, updated string
	if err := row.Scan(&r.ID, &r.ChildID, &r.Type, &started, &ended, &notes, &created, &updated); err != nil {
		return nil, err
	}
	r.StartedAt = parseTime(started)
	r.EndedAt = scanTimePtr(ended)
	r.Notes = strPtr(notes)
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return &r, nil
}
