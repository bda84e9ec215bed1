package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Diaper change classifications.
const (
	DiaperWet   = "WET"
	DiaperDirty = "DIRTY"
	DiaperBoth  = "BOTH"
	DiaperDry   = "DRY"
)

// DiaperRecord is a single diaper change.
type DiaperRecord struct {
	ID        string    `json:"id"`
	ChildID   string    `json:"childId"`
	Type      string    `json:"type"`
	ChangedAt time.Time `json:"changedAt"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateDiaper inserts a diaper record and returns it.
func (s *Store) CreateDiaper(ctx context.Context, childID, diaperType string, changedAt time.Time, notes string) (*DiaperRecord, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO diaper_records (id, child_id, diaper_type, changed_at, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, childID, diaperType, fmtTime(changedAt), nullableString(notes), fmtTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("store: create diaper: %w", err)
	}
	return s.GetDiaper(ctx, id)
}

// GetDiaper returns a diaper record by id, or nil if none exists.
func (s *Store) GetDiaper(ctx context.Context, id string) (*DiaperRecord, error) {
	row := s.db.QueryRowContext(ctx, selectDiaper+` WHERE id = ?`, id)
	r, err := scanDiaper(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get diaper: %w", err)
	}
	return r, nil
}

// ListDiapers returns diaper records matching the filter, ordered by
// change time.
func (s *Store) ListDiapers(ctx context.Context, f RecordFilter) ([]DiaperRecord, error) {
	clause, args := whereClause(f, "changed_at", "diaper_type")
	q := selectDiaper + clause + " ORDER BY changed_at " + f.order() + f.limitClause()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list diapers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []DiaperRecord
	for rows.Next() {
		r, err := scanDiaper(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list diapers: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// CountDiapers returns the number of diaper records matching the
// filter, ignoring pagination.
func (s *Store) CountDiapers(ctx context.Context, f RecordFilter) (int, error) {
	clause, args := whereClause(f, "changed_at", "diaper_type")
	return count(ctx, s.db, `SELECT COUNT(*) FROM diaper_records`+clause, args...)
}

const selectDiaper = `SELECT id, child_id, diaper_type, changed_at, notes, created_at FROM diaper_records`

func scanDiaper(row rowScanner) (*DiaperRecord, error) {
	var r DiaperRecord
	var notes *string
	var changed, created string
	if err := row.Scan(&r.ID, &r.ChildID, &r.Type, &changed, &notes, &created); err != nil {
		return nil, err
	}
	r.ChangedAt = parseTime(changed)
	r.Notes = strPtr(notes)
	r.CreatedAt = parseTime(created)
	return &r, nil
}
