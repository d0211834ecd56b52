package ingest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/companygraph/pkg/store"
)

type fakeAdapter struct {
	id, desc, url, license string
}

func (f *fakeAdapter) ID() string           { return f.id }
func (f *fakeAdapter) Source() store.Source { return store.SourceCompaniesHouse }
func (f *fakeAdapter) Description() string  { return f.desc }
func (f *fakeAdapter) DefaultURL() string   { return f.url }
func (f *fakeAdapter) License() string      { return f.license }

func tempStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func statuses(t *testing.T, st *store.Store) map[string]int {
	t.Helper()
	sources, err := st.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	out := make(map[string]int)
	for _, src := range sources {
		if src.LastStatus != nil {
			out[src.AdapterID] = *src.LastStatus
		}
	}
	return out
}

func TestCheckAll_Mixed(t *testing.T) {
	srv200 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv200.Close()

	srv404 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv404.Close()

	// 301 counts as reachable and is not followed.
	srv301 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://example.com/new")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer srv301.Close()

	st := tempStore(t)
	err := st.Seed([]store.Describer{
		&fakeAdapter{"ok-source", "OK source", srv200.URL, "CC0"},
		&fakeAdapter{"notfound-source", "404 source", srv404.URL, "CC0"},
		&fakeAdapter{"redirect-source", "redirect", srv301.URL, "CC0"},
	})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	rep := NewChecker(Env{Store: st, Logger: testLogger()}, time.Hour).CheckAll(context.Background())
	if rep.OK != 2 || rep.Failed != 1 {
		t.Errorf("report = %+v, want 2 ok and 1 failed", rep)
	}

	got := statuses(t, st)
	want := map[string]int{"ok-source": 200, "notfound-source": 404, "redirect-source": 301}
	for id, code := range want {
		if got[id] != code {
			t.Errorf("%s: expected %d, got %d", id, code, got[id])
		}
	}
}

func TestCheckAll_NetworkError(t *testing.T) {
	st := tempStore(t)
	if err := st.Seed([]store.Describer{&fakeAdapter{"dead-source", "dead", "http://127.0.0.1:1", "CC0"}}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	NewChecker(Env{Store: st, Logger: testLogger()}, time.Hour).CheckAll(context.Background())

	sources, _ := st.ListSources()
	src := sources[0]
	if src.LastStatus == nil || *src.LastStatus != 0 {
		t.Errorf("expected status 0 for network error, got %v", src.LastStatus)
	}
	if src.LastError == nil || *src.LastError == "" {
		t.Error("expected non-empty last_error for network error")
	}
}

func TestCheckAll_LocalFiles(t *testing.T) {
	present := filepath.Join(t.TempDir(), "profiles.jsonl")
	if err := os.WriteFile(present, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	st := tempStore(t)
	err := st.Seed([]store.Describer{
		&fakeAdapter{"present", "present", "file://" + present, ""},
		&fakeAdapter{"missing", "missing", filepath.Join(t.TempDir(), "nope.jsonl"), ""},
	})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	NewChecker(Env{Store: st, Logger: testLogger()}, time.Hour).CheckAll(context.Background())

	got := statuses(t, st)
	if got["present"] != 200 || got["missing"] != 404 {
		t.Errorf("statuses = %v", got)
	}
}

func TestCheckAll_EmptyDB(t *testing.T) {
	st := tempStore(t)
	if rep := NewChecker(Env{Store: st}, time.Hour).CheckAll(context.Background()); rep != (CheckReport{}) {
		t.Errorf("report = %+v on an empty store", rep)
	}
}
