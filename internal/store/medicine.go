package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Medicine is a prescribed or over-the-counter medicine for one child.
type Medicine struct {
	ID        string    `json:"id"`
	ChildID   string    `json:"childId"`
	Name      string    `json:"name"`
	Dosage    *string   `json:"dosage,omitempty"`
	Frequency *string   `json:"frequency,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MedicineRecord is one dose event. Its child is reached through the
// medicine; MedicineName and ChildID are populated from the join on
// reads.
type MedicineRecord struct {
	ID           string    `json:"id"`
	MedicineID   string    `json:"medicineId"`
	MedicineName string    `json:"medicineName"`
	ChildID      string    `json:"childId"`
	GivenAt      time.Time `json:"time"`
	DosageGiven  *string   `json:"dosageGiven,omitempty"`
	Skipped      bool      `json:"skipped"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MedicineRecordFilter selects dose events for one child through the
// medicine join. Skipped doses are included unless ExcludeSkipped is
// set.
type MedicineRecordFilter struct {
	ChildID        string
	Since          time.Time
	Until          time.Time
	Limit          int
	Offset         int
	Ascending      bool
	ExcludeSkipped bool
}

// CreateMedicine inserts a medicine and returns it.
func (s *Store) CreateMedicine(ctx context.Context, childID, name, dosage, frequency string) (*Medicine, error) {
	id := newID()
	now := fmtTime(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medicines (id, child_id, name, dosage, frequency, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		id, childID, name, nullableString(dosage), nullableString(frequency), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("store: create medicine: %w", err)
	}
	return s.GetMedicine(ctx, id)
}

// GetMedicine returns a medicine by id, or nil if none exists.
func (s *Store) GetMedicine(ctx context.Context, id string) (*Medicine, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, child_id, name, dosage, frequency, active, created_at, updated_at
		 FROM medicines WHERE id = ?`, id,
	)
	m, err := scanMedicine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get medicine: %w", err)
	}
	return m, nil
}

// ListMedicines returns a child's medicines, optionally only active
// ones, newest first.
func (s *Store) ListMedicines(ctx context.Context, childID string, activeOnly bool) ([]Medicine, error) {
	q := `SELECT id, child_id, name, dosage, frequency, active, created_at, updated_at
	      FROM medicines WHERE child_id = ?`
	if activeOnly {
		q += ` AND active = 1`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, childID)
	if err != nil {
		return nil, fmt.Errorf("store: list medicines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var medicines []Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list medicines: %w", err)
		}
		medicines = append(medicines, *m)
	}
	return medicines, rows.Err()
}

// CreateMedicineRecord inserts a dose event and returns it.
func (s *Store) CreateMedicineRecord(ctx context.Context, medicineID string, givenAt time.Time, dosageGiven string, skipped bool, notes string) (*MedicineRecord, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medicine_records (id, medicine_id, given_at, dosage_given, skipped, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, medicineID, fmtTime(givenAt), nullableString(dosageGiven), skipped, nullableString(notes), fmtTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("store: create medicine record: %w", err)
	}

	row := s.db.QueryRowContext(ctx, selectMedicineRecord+` WHERE r.id = ?`, id)
	r, err := scanMedicineRecord(row)
	if err != nil {
		return nil, fmt.Errorf("store: create medicine record: %w", err)
	}
	return r, nil
}

// ListMedicineRecords returns a child's dose events through the
// medicine join, ordered by dose time.
func (s *Store) ListMedicineRecords(ctx context.Context, f MedicineRecordFilter) ([]MedicineRecord, error) {
	clause, args := medicineRecordWhere(f)
	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	q := selectMedicineRecord + clause +
		fmt.Sprintf(" ORDER BY r.given_at %s LIMIT %d OFFSET %d", order, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list medicine records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []MedicineRecord
	for rows.Next() {
		r, err := scanMedicineRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list medicine records: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// CountMedicineRecords returns the number of dose events matching the
// filter, ignoring pagination.
func (s *Store) CountMedicineRecords(ctx context.Context, f MedicineRecordFilter) (int, error) {
	clause, args := medicineRecordWhere(f)
	return count(ctx, s.db,
		`SELECT COUNT(*) FROM medicine_records r JOIN medicines m ON m.id = r.medicine_id`+clause,
		args...,
	)
}

func medicineRecordWhere(f MedicineRecordFilter) (string, []any) {
	clause := " WHERE m.child_id = ?"
	args := []any{f.ChildID}

	if !f.Since.IsZero() {
		clause += " AND r.given_at >= ?"
		args = append(args, fmtTime(f.Since))
	}
	if !f.Until.IsZero() {
		clause += " AND r.given_at <= ?"
		args = append(args, fmtTime(f.Until))
	}
	if f.ExcludeSkipped {
		clause += " AND r.skipped = 0"
	}
	return clause, args
}

const selectMedicineRecord = `
	SELECT r.id, r.medicine_id, m.name, m.child_id, r.given_at, r.dosage_given, r.skipped, r.notes, r.created_at
	FROM medicine_records r
	JOIN medicines m ON m.id = r.medicine_id`

func scanMedicine(row rowScanner) (*Medicine, error) {
	var m Medicine
	var dosage, frequency *string
	var created, updated string
	if err := row.Scan(&m.ID, &m.ChildID, &m.Name, &dosage, &frequency, &m.Active, &created, &updated); err != nil {
		return nil, err
	}
	m.Dosage = strPtr(dosage)
	m.Frequency = strPtr(frequency)
	m.CreatedAt = parseTime(created)
	m.UpdatedAt = parseTime(updated)
	return &m, nil
}

func scanMedicineRecord(row rowScanner) (*MedicineRecord, error) {
	var r MedicineRecord
	var dosage, notes *string
	var given, created string
	if err := row.Scan(&r.ID, &r.MedicineID, &r.MedicineName, &r.ChildID, &given, &dosage, &r.Skipped, &notes, &created); err != nil {
		return nil, err
	}
	r.GivenAt = parseTime(given)
	r.DosageGiven = strPtr(dosage)
	r.Notes = strPtr(notes)
	r.CreatedAt = parseTime(created)
	return &r, nil
}
