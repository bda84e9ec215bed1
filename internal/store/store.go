// Package store is the SQLite persistence layer for tracking records.
//
// Every record row is owned by exactly one child, directly or (for
// medicine doses) through its medicine. Timestamps are stored as
// RFC 3339 UTC text at second precision so lexicographic comparison in
// SQL matches chronological order.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is the tracking database, backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open creates the data directory if needed, opens the SQLite database
// with WAL mode, and runs migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cradle.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS children (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			birth_date TEXT NOT NULL,
			gender     TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sleep_records (
			id         TEXT PRIMARY KEY,
			child_id   TEXT NOT NULL,
			sleep_type TEXT NOT NULL DEFAULT 'NAP',
			quality    TEXT,
			started_at TEXT NOT NULL,
			ended_at   TEXT,
			notes      TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES children(id)
		);

		CREATE INDEX IF NOT EXISTS idx_sleep_child_start ON sleep_records(child_id, started_at DESC);

		CREATE TABLE IF NOT EXISTS feeding_records (
			id         TEXT PRIMARY KEY,
			child_id   TEXT NOT NULL,
			feed_type  TEXT NOT NULL,
			side       TEXT,
			amount_ml  REAL,
			foods      TEXT,
			started_at TEXT NOT NULL,
			ended_at   TEXT,
			notes      TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES children(id)
		);

		CREATE INDEX IF NOT EXISTS idx_feeding_child_start ON feeding_records(child_id, started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_feeding_type ON feeding_records(feed_type);

		CREATE TABLE IF NOT EXISTS pumping_records (
			id         TEXT PRIMARY KEY,
			child_id   TEXT NOT NULL,
			side       TEXT,
			amount_ml  REAL,
			started_at TEXT NOT NULL,
			ended_at   TEXT,
			notes      TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES children(id)
		);

		CREATE INDEX IF NOT EXISTS idx_pumping_child_start ON pumping_records(child_id, started_at DESC);

		CREATE TABLE IF NOT EXISTS activity_records (
			id            TEXT PRIMARY KEY,
			child_id      TEXT NOT NULL,
			activity_type TEXT NOT NULL,
			started_at    TEXT NOT NULL,
			ended_at      TEXT,
			notes         TEXT,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES children(id)
		);

		CREATE INDEX IF NOT EXISTS idx_activity_child_start ON activity_records(child_id, started_at DESC);

		CREATE TABLE IF NOT EXISTS diaper_records (
			id          TEXT PRIMARY KEY,
			child_id    TEXT NOT NULL,
			diaper_type TEXT NOT NULL,
			changed_at  TEXT NOT NULL,
			notes       TEXT,
			created_at  TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES children(id)
		);

		CREATE INDEX IF NOT EXISTS idx_diaper_child_time ON diaper_records(child_id, changed_at DESC);

		CREATE TABLE IF NOT EXISTS growth_records (
			id          TEXT PRIMARY KEY,
			child_id    TEXT NOT NULL,
			measured_at TEXT NOT NULL,
			weight_kg   REAL,
			height_cm   REAL,
			head_cm     REAL,
			notes       TEXT,
			created_at  TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES children(id)
		);

		CREATE INDEX IF NOT EXISTS idx_growth_child_time ON growth_records(child_id, measured_at DESC);

		CREATE TABLE IF NOT EXISTS temperature_records (
			id          TEXT PRIMARY KEY,
			child_id    TEXT NOT NULL,
			measured_at TEXT NOT NULL,
			temp_c      REAL NOT NULL,
			notes       TEXT,
			created_at  TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES children(id)
		);

		CREATE INDEX IF NOT EXISTS idx_temp_child_time ON temperature_records(child_id, measured_at DESC);

		CREATE TABLE IF NOT EXISTS medicines (
			id         TEXT PRIMARY KEY,
			child_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			dosage     TEXT,
			frequency  TEXT,
			active     INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (child_id) REFERENCES children(id)
		);

		CREATE INDEX IF NOT EXISTS idx_medicines_child ON medicines(child_id);

		CREATE TABLE IF NOT EXISTS medicine_records (
			id           TEXT PRIMARY KEY,
			medicine_id  TEXT NOT NULL,
			given_at     TEXT NOT NULL,
			dosage_given TEXT,
			skipped      INTEGER NOT NULL DEFAULT 0,
			notes        TEXT,
			created_at   TEXT NOT NULL,
			FOREIGN KEY (medicine_id) REFERENCES medicines(id)
		);

		CREATE INDEX IF NOT EXISTS idx_medrec_medicine_time ON medicine_records(medicine_id, given_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Active-timer uniqueness. At most one ongoing sleep, one ongoing
	// breastfeed and one ongoing pumping session per child, and one
	// ongoing activity per (child, activity type). Enforced here so
	// two concurrent starts cannot both slip past the handler's
	// pre-check.
	_, err := s.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_sleep_active
			ON sleep_records(child_id) WHERE ended_at IS NULL;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_feeding_active
			ON feeding_records(child_id) WHERE ended_at IS NULL AND feed_type = 'BREAST';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_pumping_active
			ON pumping_records(child_id) WHERE ended_at IS NULL;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_activity_active
			ON activity_records(child_id, activity_type) WHERE ended_at IS NULL;
	`)
	return err
}

// ─── Shared helpers ──────────────────────────────────────────────────────────

// RecordFilter selects records for one child within a time window.
// Limit == 0 means no limit. Type filters the domain sub-type column
// where one exists (feed_type, activity_type, diaper_type).
type RecordFilter struct {
	ChildID   string
	Since     time.Time
	Until     time.Time
	Limit     int
	Offset    int
	Ascending bool
	Type      string
}

func (f RecordFilter) order() string {
	if f.Ascending {
		return "ASC"
	}
	return "DESC"
}

// limitClause renders LIMIT/OFFSET. SQLite needs a LIMIT before
// OFFSET; -1 means unbounded.
func (f RecordFilter) limitClause() string {
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, f.Offset)
}

func newID() string {
	return uuid.NewString()
}

func fmtTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// nullableTime converts an optional time for storage.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

// nullableString converts "" to NULL for storage.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scanTimePtr converts a nullable stored timestamp back to *time.Time.
func scanTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := parseTime(*s)
	return &t
}

// strPtr converts a sql NULL-able string to *string, mapping NULL and
// "" to nil.
func strPtr(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func count(ctx context.Context, db *sql.DB, query string, args ...any) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}
