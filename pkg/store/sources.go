package store

import (
	"fmt"
	"time"
)

// Describer is implemented by ingestion adapters so their defaults can be
// seeded into the sources table.
type Describer interface {
	ID() string
	Source() Source
	Description() string
	DefaultURL() string
	License() string
}

// SourceRow is a row of the sources table.
type SourceRow struct {
	AdapterID   string
	Source      Source
	Description string
	SourceURL   string
	License     string
	LastCheck   *int64
	LastStatus  *int
	LastError   *string
	UpdatedAt   int64
}

// Seed inserts default rows for each adapter. Existing rows are left
// untouched so that manual URL overrides survive restarts.
func (s *Store) Seed(adapters []Describer) error {
	const q = `INSERT OR IGNORE INTO sources
		(adapter_id, source, description, source_url, license, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	for _, a := range adapters {
		if _, err := s.db.Exec(q, a.ID(), a.Source(), a.Description(), a.DefaultURL(), a.License(), now); err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return nil
}

// GetURL returns the current source URL of an adapter.
func (s *Store) GetURL(adapterID string) (string, error) {
	var url string
	err := s.db.QueryRow(`SELECT source_url FROM sources WHERE adapter_id = ?`, adapterID).Scan(&url)
	if err != nil {
		return "", fmt.Errorf("get url for %s: %w", adapterID, err)
	}
	return url, nil
}

// SetURL updates the source URL of an adapter.
func (s *Store) SetURL(adapterID, url string) error {
	res, err := s.db.Exec(
		`UPDATE sources SET source_url = ?, updated_at = ? WHERE adapter_id = ?`,
		url, time.Now().Unix(), adapterID,
	)
	if err != nil {
		return fmt.Errorf("set url for %s: %w", adapterID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("adapter %s: %w", adapterID, ErrNotFound)
	}
	return nil
}

// UpdateCheck persists the result of an availability check.
func (s *Store) UpdateCheck(adapterID string, status int, checkErr string) error {
	var errPtr *string
	if checkErr != "" {
		errPtr = &checkErr
	}
	_, err := s.db.Exec(
		`UPDATE sources SET last_check = ?, last_status = ?, last_error = ? WHERE adapter_id = ?`,
		time.Now().Unix(), status, errPtr, adapterID,
	)
	if err != nil {
		return fmt.Errorf("update check for %s: %w", adapterID, err)
	}
	return nil
}

// ListSources returns all sources ordered by adapter id.
func (s *Store) ListSources() ([]SourceRow, error) {
	rows, err := s.db.Query(`SELECT adapter_id, source, description, source_url, license,
		last_check, last_status, last_error, updated_at
		FROM sources ORDER BY adapter_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []SourceRow
	for rows.Next() {
		var src SourceRow
		var kind string
		if err := rows.Scan(&src.AdapterID, &kind, &src.Description, &src.SourceURL,
			&src.License, &src.LastCheck, &src.LastStatus, &src.LastError, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.Source = Source(kind)
		out = append(out, src)
	}
	return out, rows.Err()
}
