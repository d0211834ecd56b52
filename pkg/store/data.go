package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Record is a raw payload fetched from one source for one company or person.
type Record struct {
	UUID       string
	ParentUUID string
	Name       string
	Source     Source
	Payload    json.RawMessage
	UpdatedAt  int64
}

// Save upserts rec.
func (s *Store) Save(rec Record) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(`INSERT INTO data (uuid, uuid_parent, name, source, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (uuid, source) DO UPDATE SET
			uuid_parent = excluded.uuid_parent, name = excluded.name,
			payload = excluded.payload, updated_at = excluded.updated_at`,
		rec.UUID, rec.ParentUUID, rec.Name, rec.Source, string(rec.Payload), now, now)
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", rec.Source, rec.UUID, err)
	}
	return nil
}

// SaveJSON marshals v and saves it as the payload of (uuid, source).
func (s *Store) SaveJSON(source Source, uuid, parentUUID, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", source, uuid, err)
	}
	return s.Save(Record{UUID: uuid, ParentUUID: parentUUID, Name: name, Source: source, Payload: payload})
}

// Load returns the record (uuid, source), or ErrNotFound.
func (s *Store) Load(uuid string, source Source) (*Record, error) {
	var rec Record
	var src, payload string
	err := s.db.QueryRow(`SELECT uuid, uuid_parent, name, source, payload, updated_at
		FROM data WHERE uuid = ? AND source = ?`, uuid, source).
		Scan(&rec.UUID, &rec.ParentUUID, &rec.Name, &src, &payload, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("data %s/%s: %w", source, uuid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", source, uuid, err)
	}
	rec.Source = Source(src)
	rec.Payload = json.RawMessage(payload)
	return &rec, nil
}

// LoadJSON loads (uuid, source) and unmarshals its payload into v.
func (s *Store) LoadJSON(uuid string, source Source, v any) error {
	rec, err := s.Load(uuid, source)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(rec.Payload, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", source, uuid, err)
	}
	return nil
}

// SaveCompany stores the resolved view of a company.
func (s *Store) SaveCompany(uuid, name string, entities int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal company %s: %w", uuid, err)
	}
	_, err = s.db.Exec(`INSERT INTO resolved (uuid, name, entities, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (uuid) DO UPDATE SET
			name = excluded.name, entities = excluded.entities,
			payload = excluded.payload, updated_at = excluded.updated_at`,
		uuid, name, entities, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save company %s: %w", uuid, err)
	}
	return nil
}

// LoadCompany unmarshals the resolved view of a company into v.
func (s *Store) LoadCompany(uuid string, v any) error {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM resolved WHERE uuid = ?`, uuid).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("company %s: %w", uuid, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load company %s: %w", uuid, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decode company %s: %w", uuid, err)
	}
	return nil
}

// CompanySummary is one row of ListCompanies.
type CompanySummary struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Entities  int    `json:"entities"`
	UpdatedAt int64  `json:"updated_at"`
}

// ListCompanies returns every resolved company ordered by name.
func (s *Store) ListCompanies() ([]CompanySummary, error) {
	rows, err := s.db.Query(`SELECT uuid, name, entities, updated_at FROM resolved ORDER BY name, uuid`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []CompanySummary
	for rows.Next() {
		var c CompanySummary
		if err := rows.Scan(&c.UUID, &c.Name, &c.Entities, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
