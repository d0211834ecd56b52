package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hazyhaar/companygraph/pkg/resolve"
	"github.com/hazyhaar/companygraph/pkg/store"
)

func cmdResolve(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	uuids := fs.String("uuid", "", "comma-separated company UUIDs (default: all pending)")
	force := fs.Bool("force", false, "resolve completed companies again")
	limit := fs.Int("limit", 0, "maximum number of companies (0 = no limit)")
	workers := fs.Int("workers", 0, "concurrent companies (default from config)")
	fs.Parse(args)

	cfg, logger := mustSetup(*cfgPath)
	if *workers > 0 {
		cfg.Workers = *workers
	}

	opts, err := cfg.pipelineOptions()
	if err != nil {
		logger.Error("invalid dedup options", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DB)
	if err != nil {
		logger.Error("open store", "path", cfg.DB, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	f := store.Filter{Force: *force, Limit: *limit}
	if *uuids != "" {
		f.UUIDs = strings.Split(*uuids, ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := &resolve.Runner{
		Store:    st,
		Pipeline: resolve.NewPipeline(opts, logger),
		Logger:   logger,
		Workers:  cfg.Workers,
	}
	sum, err := r.Run(ctx, f)
	if err != nil {
		errColor.Fprintf(os.Stderr, "resolve: %v\n", err)
		os.Exit(1)
	}

	c := okColor
	if sum.Failed > 0 {
		c = warnColor
	}
	c.Printf("resolved %d, failed %d, %d persons queued for profile lookup\n", sum.Resolved, sum.Failed, sum.Queued)
}
