package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/companygraph/pkg/dedup"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":8420" || cfg.Workers != 4 || cfg.CheckInterval != 24*time.Hour {
		t.Errorf("defaults = %+v", cfg)
	}
	opts, err := cfg.pipelineOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.OfficerDOB != dedup.DOBEqual || opts.Lexicon != nil {
		t.Errorf("options = %+v", opts)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	lexicon := filepath.Join(dir, "lexicon.yaml")
	if err := os.WriteFile(lexicon, []byte("organization_words: [\"COLLECTIVE\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	body := `addr: ":9000"
db: graph.db
workers: 0
check_interval: 1h
lexicon: ` + lexicon + `
tls:
  enabled: true
dedup:
  ignore_organization: true
  officer_dob: weak_name
  threshold: 85
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.DB != "graph.db" || !cfg.TLS.Enabled || cfg.CheckInterval != time.Hour {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Workers != 1 {
		t.Errorf("workers = %d, want clamped to 1", cfg.Workers)
	}

	opts, err := cfg.pipelineOptions()
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}
	if !opts.IgnoreOrganization || opts.OfficerDOB != dedup.DOBWeakName || opts.Threshold != 85 {
		t.Errorf("options = %+v", opts)
	}
	if opts.Lexicon == nil || !opts.Lexicon.IsOrganization("Artists Collective") {
		t.Error("lexicon override not loaded")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("addr: [unclosed"), 0o644)
	if _, err := loadConfig(path); err == nil {
		t.Error("expected parse error")
	}

	cfg := defaultConfig()
	cfg.Dedup.OfficerDOB = "sometimes"
	if _, err := cfg.pipelineOptions(); err == nil {
		t.Error("expected error for unknown dob rule")
	}
}
