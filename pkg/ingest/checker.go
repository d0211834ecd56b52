package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/companygraph/pkg/store"
)

// checkParallelism bounds concurrent reachability checks.
const checkParallelism = 4

// CheckReport counts the outcome of one round of source checks.
type CheckReport struct {
	OK     int
	Failed int
}

// Checker records, for every registered source, whether its export
// location answers. Redirects count as reachable and are not followed.
type Checker struct {
	env      Env
	interval time.Duration
}

// NewChecker returns a Checker that repeats every interval once started.
func NewChecker(env Env, interval time.Duration) *Checker {
	return &Checker{env: env, interval: interval}
}

// Start checks now, then every interval until ctx is done.
func (c *Checker) Start(ctx context.Context) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		c.CheckAll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// CheckAll checks every source and stores each status in the sources table.
func (c *Checker) CheckAll(ctx context.Context) CheckReport {
	logger := c.env.logger()
	rows, err := c.env.Store.ListSources()
	if err != nil {
		logger.Error("source check: list sources", "error", err)
		return CheckReport{}
	}

	var (
		mu  sync.Mutex
		rep CheckReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkParallelism)
	for _, row := range rows {
		g.Go(func() error {
			ok := c.check(gctx, row, logger)
			mu.Lock()
			if ok {
				rep.OK++
			} else {
				rep.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	if len(rows) > 0 {
		logger.Info("source check complete", "total", len(rows), "ok", rep.OK, "failed", rep.Failed)
	}
	return rep
}

func (c *Checker) check(ctx context.Context, row store.SourceRow, logger *slog.Logger) bool {
	status, err := c.env.fetcher().Status(ctx, row.SourceURL)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if err := c.env.Store.UpdateCheck(row.AdapterID, status, msg); err != nil {
		logger.Error("source check: update", "adapter", row.AdapterID, "error", err)
	}
	if status >= 200 && status < 400 {
		return true
	}
	logger.Warn("source unreachable", "adapter", row.AdapterID, "url", row.SourceURL, "status", status, "error", msg)
	return false
}
