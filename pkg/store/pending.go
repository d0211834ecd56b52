package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Pending is one unit of work: a company to fetch or resolve from a source.
type Pending struct {
	UUID        string
	ParentUUID  string
	Name        string
	CountryCode string
	FoundedOn   string
	Source      Source
	Status      Status
	Attempts    int
	LastError   *string
	CreatedAt   int64
	UpdatedAt   int64
}

// Enqueue inserts p with status pending. Rows that already exist are left
// untouched, so completed work is not redone on re-ingestion.
func (s *Store) Enqueue(p Pending) error {
	if _, err := ParseSource(string(p.Source)); err != nil {
		return fmt.Errorf("enqueue %s: %w", p.UUID, err)
	}
	now := time.Now().Unix()
	_, err := s.db.Exec(`INSERT OR IGNORE INTO pending
		(uuid, uuid_parent, name, country_code, founded_on, source, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UUID, p.ParentUUID, p.Name, p.CountryCode, p.FoundedOn, p.Source, StatusPending, now, now)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", p.UUID, err)
	}
	return nil
}

// Filter selects pending rows. Empty fields match everything. Without a
// Status only pending rows are returned unless Force is set.
type Filter struct {
	Source      Source
	Status      Status
	UUIDs       []string
	ParentUUIDs []string
	Force       bool
	Limit       int
}

const pendingColumns = `uuid, uuid_parent, name, country_code, founded_on, source, status,
	attempts, last_error, created_at, updated_at`

// ListPending returns the rows matching f ordered by name.
func (s *Store) ListPending(f Filter) ([]Pending, error) {
	var where []string
	var args []any
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, f.Source)
	}
	switch {
	case f.Status != "":
		where = append(where, "status = ?")
		args = append(args, f.Status)
	case !f.Force:
		where = append(where, "status = ?")
		args = append(args, StatusPending)
	}
	if len(f.UUIDs) > 0 {
		where = append(where, "uuid IN ("+placeholders(len(f.UUIDs))+")")
		for _, u := range f.UUIDs {
			args = append(args, u)
		}
	}
	if len(f.ParentUUIDs) > 0 {
		where = append(where, "uuid_parent IN ("+placeholders(len(f.ParentUUIDs))+")")
		for _, u := range f.ParentUUIDs {
			args = append(args, u)
		}
	}

	q := "SELECT " + pendingColumns + " FROM pending"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY name, uuid"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var out []Pending
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// NextPending returns the first pending row of source by name, or ErrNotFound.
func (s *Store) NextPending(source Source) (*Pending, error) {
	row := s.db.QueryRow("SELECT "+pendingColumns+` FROM pending
		WHERE source = ? AND status = ? ORDER BY name, uuid LIMIT 1`, source, StatusPending)
	p, err := scanPending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Complete marks a row completed and clears its last error.
func (s *Store) Complete(uuid string, source Source) error {
	return s.setStatus(uuid, source, StatusCompleted, nil)
}

// Fail records a failed attempt. The row stays pending.
func (s *Store) Fail(uuid string, source Source, msg string) error {
	return s.setStatus(uuid, source, StatusPending, &msg)
}

func (s *Store) setStatus(uuid string, source Source, st Status, msg *string) error {
	q := `UPDATE pending SET status = ?, last_error = ?, updated_at = ? WHERE uuid = ? AND source = ?`
	if msg != nil {
		q = `UPDATE pending SET status = ?, last_error = ?, updated_at = ?, attempts = attempts + 1
			WHERE uuid = ? AND source = ?`
	}
	res, err := s.db.Exec(q, st, msg, time.Now().Unix(), uuid, source)
	if err != nil {
		return fmt.Errorf("set status %s/%s: %w", source, uuid, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pending %s/%s: %w", source, uuid, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPending(r scanner) (Pending, error) {
	var p Pending
	var src, st string
	err := r.Scan(&p.UUID, &p.ParentUUID, &p.Name, &p.CountryCode, &p.FoundedOn, &src, &st,
		&p.Attempts, &p.LastError, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scan pending: %w", err)
	}
	p.Source, p.Status = Source(src), Status(st)
	return p, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
