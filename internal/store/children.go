package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Child is a tracked child. Identity fields are created once and never
// mutated by the tool layer.
type Child struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birthDate"`
	Gender    *string   `json:"gender,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateChild inserts a new child and returns it.
func (s *Store) CreateChild(ctx context.Context, name string, birthDate time.Time, gender string) (*Child, error) {
	id := newID()
	now := fmtTime(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO children (id, name, birth_date, gender, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, fmtTime(birthDate), nullableString(gender), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("store: create child: %w", err)
	}
	return s.GetChild(ctx, id)
}

// GetChild returns a child by id, or nil if none exists.
func (s *Store) GetChild(ctx context.Context, id string) (*Child, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, birth_date, gender, created_at, updated_at
		 FROM children WHERE id = ?`, id,
	)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get child: %w", err)
	}
	return c, nil
}

// ListChildren returns all children ordered by creation time.
func (s *Store) ListChildren(ctx context.Context) ([]Child, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, birth_date, gender, created_at, updated_at
		 FROM children ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list children: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var children []Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list children: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row rowScanner) (*Child, error) {
	var c Child
	var birth, created, updated string
	var gender *string
	if err := row.Scan(&c.ID, &c.Name, &birth, &gender, &created, &updated); err != nil {
		return nil, err
	}
	c.BirthDate = parseTime(birth)
	c.Gender = strPtr(gender)
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}
