package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/companygraph/pkg/dedup"
	"github.com/hazyhaar/companygraph/pkg/names"
	"github.com/hazyhaar/companygraph/pkg/resolve"
)

var version = "dev"

type config struct {
	Addr          string        `yaml:"addr"`
	DB            string        `yaml:"db"`
	LogLevel      string        `yaml:"log_level"`
	Lexicon       string        `yaml:"lexicon"`
	Workers       int           `yaml:"workers"`
	CheckInterval time.Duration `yaml:"check_interval"`
	TLS           tlsConfig     `yaml:"tls"`
	MCPAddr       string        `yaml:"mcp_addr"`
	Dedup         dedupConfig   `yaml:"dedup"`
}

type tlsConfig struct {
	Enabled bool   `yaml:"enabled"` // chassis: HTTPS + HTTP/3 + MCP over QUIC on Addr
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
}

type dedupConfig struct {
	IgnoreOrganization bool   `yaml:"ignore_organization"`
	OfficerDOB         string `yaml:"officer_dob"` // off, equal, weak_name
	Threshold          int    `yaml:"threshold"`
	WeakThreshold      int    `yaml:"weak_threshold"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "resolve":
		cmdResolve(os.Args[2:])
	case "sources":
		cmdSources(os.Args[2:])
	case "queue":
		cmdQueue(os.Args[2:])
	case "call":
		cmdCall(os.Args[2:])
	case "version":
		fmt.Println("companygraph", version)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: companygraph <command> [flags]

Commands:
  serve     Start the HTTP API (and MCP over QUIC)
  resolve   Resolve the registry companies waiting in the store
  sources   List, seed, check and ingest data sources
  queue     Inspect the pending work queue
  call      Call an MCP tool on a running server over QUIC
  version   Print the version
`)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func defaultConfig() config {
	return config{
		Addr:          ":8420",
		DB:            "companygraph.db",
		LogLevel:      "info",
		Workers:       4,
		CheckInterval: 24 * time.Hour,
		Dedup:         dedupConfig{OfficerDOB: "equal"},
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// mustSetup loads the config and builds the logger, exiting on error.
func mustSetup(path string) (config, *slog.Logger) {
	cfg, err := loadConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		logger.Info("no config file, using defaults", "path", path)
	}
	return cfg, logger
}

// pipelineOptions turns the dedup section into pipeline options, loading
// the lexicon override if one is configured.
func (c config) pipelineOptions() (resolve.Options, error) {
	dob, err := dedup.ParseDOBRule(c.Dedup.OfficerDOB)
	if err != nil {
		return resolve.Options{}, err
	}
	opts := resolve.Options{
		IgnoreOrganization: c.Dedup.IgnoreOrganization,
		OfficerDOB:         dob,
		Threshold:          c.Dedup.Threshold,
		WeakThreshold:      c.Dedup.WeakThreshold,
	}
	if c.Lexicon != "" {
		lex, err := names.LoadLexicon(c.Lexicon)
		if err != nil {
			return opts, fmt.Errorf("lexicon: %w", err)
		}
		opts.Lexicon = lex
	}
	return opts, nil
}
