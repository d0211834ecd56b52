// CLAUDE:SUMMARY SQLite persistence: pending work queue, raw per-source payloads, resolved companies, source registry.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Status is the processing state of a pending row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParseStatus maps a status name to a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Source identifies where a record came from.
type Source string

const (
	SourceCrunchbase     Source = "crunchbase"
	SourceCompaniesHouse Source = "companieshouse"
	SourceLinkedIn       Source = "linkedin"
)

// Sources lists every known source.
var Sources = []Source{SourceCrunchbase, SourceCompaniesHouse, SourceLinkedIn}

// ParseSource maps a source name to a Source.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case SourceCrunchbase, SourceCompaniesHouse, SourceLinkedIn:
		return src, nil
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// Store is the SQLite database shared by ingestion and resolution.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS pending (
	uuid         TEXT NOT NULL,
	uuid_parent  TEXT NOT NULL DEFAULT '',
	name         TEXT NOT NULL,
	country_code TEXT NOT NULL DEFAULT '',
	founded_on   TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL,
	status       TEXT NOT NULL,
	attempts     INTEGER NOT NULL DEFAULT 0,
	last_error   TEXT,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL,
	PRIMARY KEY (uuid, source)
);
CREATE TABLE IF NOT EXISTS data (
	uuid        TEXT NOT NULL,
	uuid_parent TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL,
	source      TEXT NOT NULL,
	payload     TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL,
	PRIMARY KEY (uuid, source)
);
CREATE TABLE IF NOT EXISTS resolved (
	uuid       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	entities   INTEGER NOT NULL,
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS sources (
	adapter_id  TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	description TEXT NOT NULL,
	source_url  TEXT NOT NULL,
	license     TEXT NOT NULL DEFAULT '',
	last_check  INTEGER,
	last_status INTEGER,
	last_error  TEXT,
	updated_at  INTEGER NOT NULL
);`

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
