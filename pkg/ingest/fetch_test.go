package ingest

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFetcher_Remote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("uuid,name\n"))
	}))
	defer ts.Close()

	src, err := (&Fetcher{}).Open(context.Background(), ts.URL+"/orgs.csv", ".csv")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := os.ReadFile(src.Path)
	if err != nil || string(data) != "uuid,name\n" {
		t.Errorf("downloaded %q, %v", data, err)
	}
	if err := src.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src.Path); !os.IsNotExist(err) {
		t.Errorf("download not removed: %v", err)
	}
}

func TestFetcher_Retry(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		wantErr  bool
	}{
		{"first try", 0, false},
		{"third try", 2, false},
		{"exhausted", 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				if calls <= tt.failures {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				w.Write([]byte("ok"))
			}))
			defer ts.Close()

			f := &Fetcher{Attempts: 3, Backoff: time.Millisecond}
			src, err := f.Open(context.Background(), ts.URL+"/dump.jsonl", ".jsonl")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				src.Close()
			}
			if want := min(tt.failures+1, 3); calls != want {
				t.Errorf("calls = %d, want %d", calls, want)
			}
		})
	}
}

func TestFetcher_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgs.csv")
	if err := os.WriteFile(path, []byte("uuid,name\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, loc := range []string{path, "file://" + path} {
		src, err := (&Fetcher{}).Open(context.Background(), loc, ".csv")
		if err != nil {
			t.Fatalf("Open %s: %v", loc, err)
		}
		if src.Path != path {
			t.Errorf("Open %s = %s", loc, src.Path)
		}
		src.Close()
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("local input removed: %v", err)
		}
	}
}

func TestFetcher_Zip(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "dump.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, e := range []struct{ name, body string }{
		{"README.txt", "readme"},
		{"data/companies.jsonl", "{}\n"},
	} {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(e.body))
	}
	zw.Close()
	f.Close()

	src, err := (&Fetcher{}).Open(context.Background(), zipPath, ".jsonl")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if filepath.Base(src.Path) != "companies.jsonl" {
		t.Errorf("extracted %s", src.Path)
	}
	src.Close()
	if _, err := os.Stat(src.Path); !os.IsNotExist(err) {
		t.Errorf("extracted entry not removed: %v", err)
	}

	if _, err := (&Fetcher{}).Open(context.Background(), zipPath, ".csv"); err == nil {
		t.Error("expected error when the archive has no matching entry")
	}
}

func TestFetcher_Status(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	defer ts.Close()

	f := &Fetcher{}
	if got, err := f.Status(context.Background(), ts.URL); got != http.StatusTeapot || err != nil {
		t.Errorf("remote status = %d, %v", got, err)
	}
	if got, err := f.Status(context.Background(), filepath.Join(t.TempDir(), "nope")); got != http.StatusNotFound || err == nil {
		t.Errorf("missing file status = %d, %v", got, err)
	}
}
