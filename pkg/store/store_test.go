package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeAdapter struct {
	id, desc, url, license string
	source                 Source
}

func (f *fakeAdapter) ID() string          { return f.id }
func (f *fakeAdapter) Source() Source      { return f.source }
func (f *fakeAdapter) Description() string { return f.desc }
func (f *fakeAdapter) DefaultURL() string  { return f.url }
func (f *fakeAdapter) License() string     { return f.license }

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
	rows, err := s.ListPending(Filter{})
	if err != nil {
		t.Fatalf("ListPending on empty db: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected 0 rows, got %d", len(rows))
	}
}

func TestParseEnums(t *testing.T) {
	if s, err := ParseSource("CompaniesHouse"); err != nil || s != SourceCompaniesHouse {
		t.Errorf("ParseSource = %q, %v", s, err)
	}
	if _, err := ParseSource("twitter"); err == nil {
		t.Error("expected error for unknown source")
	}
	if st, err := ParseStatus("completed"); err != nil || st != StatusCompleted {
		t.Errorf("ParseStatus = %q, %v", st, err)
	}
	if _, err := ParseStatus("running"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestPendingLifecycle(t *testing.T) {
	s := tempStore(t)

	for _, p := range []Pending{
		{UUID: "u2", Name: "Zeta Ltd", Source: SourceCompaniesHouse},
		{UUID: "u1", Name: "Acme Ltd", Source: SourceCompaniesHouse},
		{UUID: "u1", Name: "Acme Ltd", Source: SourceLinkedIn},
	} {
		if err := s.Enqueue(p); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	next, err := s.NextPending(SourceCompaniesHouse)
	if err != nil {
		t.Fatalf("NextPending: %v", err)
	}
	if next.UUID != "u1" || next.Status != StatusPending {
		t.Fatalf("next = %+v", next)
	}

	if err := s.Fail("u1", SourceCompaniesHouse, "timeout"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	rows, _ := s.ListPending(Filter{Source: SourceCompaniesHouse, UUIDs: []string{"u1"}})
	if len(rows) != 1 || rows[0].Attempts != 1 || rows[0].LastError == nil || *rows[0].LastError != "timeout" {
		t.Fatalf("after Fail: %+v", rows)
	}

	if err := s.Complete("u1", SourceCompaniesHouse); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	next, err = s.NextPending(SourceCompaniesHouse)
	if err != nil || next.UUID != "u2" {
		t.Fatalf("NextPending after complete = %+v, %v", next, err)
	}

	// Re-enqueueing does not reset completed work.
	if err := s.Enqueue(Pending{UUID: "u1", Name: "Acme Ltd", Source: SourceCompaniesHouse}); err != nil {
		t.Fatal(err)
	}
	rows, _ = s.ListPending(Filter{Source: SourceCompaniesHouse})
	if len(rows) != 1 || rows[0].UUID != "u2" {
		t.Fatalf("pending = %+v", rows)
	}
	rows, _ = s.ListPending(Filter{Source: SourceCompaniesHouse, Force: true})
	if len(rows) != 2 {
		t.Fatalf("forced = %+v", rows)
	}
	rows, _ = s.ListPending(Filter{Source: SourceCompaniesHouse, Status: StatusCompleted})
	if len(rows) != 1 || rows[0].UUID != "u1" {
		t.Fatalf("completed = %+v", rows)
	}

	if err := s.Complete("u2", SourceCompaniesHouse); err != nil {
		t.Fatal(err)
	}
	if _, err := s.NextPending(SourceCompaniesHouse); !errors.Is(err, ErrNotFound) {
		t.Fatalf("NextPending on drained queue: %v", err)
	}
}

func TestEnqueue_UnknownSource(t *testing.T) {
	s := tempStore(t)
	if err := s.Enqueue(Pending{UUID: "x", Name: "X", Source: "twitter"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestComplete_NotFound(t *testing.T) {
	s := tempStore(t)
	if err := s.Complete("missing", SourceCrunchbase); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListPending_ParentFilter(t *testing.T) {
	s := tempStore(t)
	s.Enqueue(Pending{UUID: "p1", ParentUUID: "c1", Name: "Jane Doe", Source: SourceLinkedIn})
	s.Enqueue(Pending{UUID: "p2", ParentUUID: "c2", Name: "John Roe", Source: SourceLinkedIn})

	rows, err := s.ListPending(Filter{ParentUUIDs: []string{"c2"}, Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].UUID != "p2" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestDataRoundTrip(t *testing.T) {
	s := tempStore(t)
	type payload struct {
		Founders []string `json:"founders"`
	}
	if err := s.SaveJSON(SourceCrunchbase, "c1", "", "Acme", payload{Founders: []string{"Jane Doe"}}); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	if err := s.SaveJSON(SourceCrunchbase, "c1", "", "Acme", payload{Founders: []string{"John Roe"}}); err != nil {
		t.Fatalf("SaveJSON overwrite: %v", err)
	}

	var got payload
	if err := s.LoadJSON("c1", SourceCrunchbase, &got); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if len(got.Founders) != 1 || got.Founders[0] != "John Roe" {
		t.Errorf("payload = %+v", got)
	}

	if _, err := s.Load("c1", SourceLinkedIn); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load other source: %v", err)
	}
}

func TestResolvedCompanies(t *testing.T) {
	s := tempStore(t)
	if err := s.SaveCompany("c2", "Zeta Ltd", 3, map[string]int{"n": 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveCompany("c1", "Acme Ltd", 1, map[string]int{"n": 1}); err != nil {
		t.Fatal(err)
	}

	var got map[string]int
	if err := s.LoadCompany("c2", &got); err != nil || got["n"] != 3 {
		t.Fatalf("LoadCompany = %v, %v", got, err)
	}
	if err := s.LoadCompany("nope", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadCompany missing: %v", err)
	}

	list, err := s.ListCompanies()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "Acme Ltd" || list[1].Entities != 3 {
		t.Errorf("ListCompanies = %+v", list)
	}
}

func TestSeedAndGetURL(t *testing.T) {
	s := tempStore(t)

	adapters := []Describer{
		&fakeAdapter{"a1", "desc1", "https://example.com/a1", "CC0", SourceCrunchbase},
		&fakeAdapter{"a2", "desc2", "https://example.com/a2", "OGL v3", SourceCompaniesHouse},
	}
	if err := s.Seed(adapters); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	url, err := s.GetURL("a1")
	if err != nil {
		t.Fatalf("GetURL: %v", err)
	}
	if url != "https://example.com/a1" {
		t.Fatalf("expected https://example.com/a1, got %s", url)
	}

	// Seeding again must not overwrite.
	if err := s.Seed([]Describer{&fakeAdapter{"a1", "desc1", "https://changed.com/a1", "CC0", SourceCrunchbase}}); err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if url, _ = s.GetURL("a1"); url != "https://example.com/a1" {
		t.Fatalf("re-seed should not overwrite, got %s", url)
	}
}

func TestSetURL(t *testing.T) {
	s := tempStore(t)
	s.Seed([]Describer{&fakeAdapter{"a1", "d", "https://example.com/original", "CC0", SourceLinkedIn}})

	if err := s.SetURL("a1", "https://example.com/updated"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}
	if url, _ := s.GetURL("a1"); url != "https://example.com/updated" {
		t.Fatalf("expected updated URL, got %s", url)
	}
	if err := s.SetURL("nonexistent", "https://example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetURL missing adapter: %v", err)
	}
}

func TestUpdateCheck(t *testing.T) {
	s := tempStore(t)
	s.Seed([]Describer{&fakeAdapter{"a1", "d", "https://example.com/a1", "CC0", SourceCrunchbase}})

	if err := s.UpdateCheck("a1", 200, ""); err != nil {
		t.Fatalf("UpdateCheck: %v", err)
	}
	sources, err := s.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	src := sources[0]
	if src.LastStatus == nil || *src.LastStatus != 200 || src.LastError != nil || src.Source != SourceCrunchbase {
		t.Fatalf("after 200: %+v", src)
	}

	if err := s.UpdateCheck("a1", 404, "not found"); err != nil {
		t.Fatal(err)
	}
	sources, _ = s.ListSources()
	if src = sources[0]; src.LastError == nil || *src.LastError != "not found" {
		t.Fatalf("expected last_error='not found', got %v", src.LastError)
	}
}
