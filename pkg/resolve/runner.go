package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/companygraph/pkg/link"
	"github.com/hazyhaar/companygraph/pkg/store"
)

// Summary counts the outcome of a Runner pass.
type Summary struct {
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
	Queued   int `json:"queued"` // persons queued for profile lookup
}

// Runner resolves the registry companies waiting in the store.
type Runner struct {
	Store    *store.Store
	Pipeline *Pipeline
	Logger   *slog.Logger
	Workers  int
}

// Run loads the pending registry records matching f, resolves them in one
// batch and writes each result back: resolved companies are saved and
// completed, failures are recorded on the pending row. Every resolved
// person is queued for a profile lookup, named by its search query.
func (r *Runner) Run(ctx context.Context, f store.Filter) (Summary, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	f.Source = store.SourceCompaniesHouse

	rows, err := r.Store.ListPending(f)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	var inputs []Input
	var ids []string
	for _, p := range rows {
		var in Input
		if err := r.Store.LoadJSON(p.UUID, store.SourceCompaniesHouse, &in); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				sum.Failed++
				if err := r.Store.Fail(p.UUID, store.SourceCompaniesHouse, "no registry data"); err != nil {
					return sum, err
				}
				continue
			}
			return sum, err
		}
		inputs = append(inputs, in)
		ids = append(ids, p.UUID)
	}
	logger.Info("resolving companies", "count", len(inputs), "workers", r.Workers)

	outcomes, err := r.Pipeline.Batch(ctx, inputs, r.Workers)
	if err != nil {
		return sum, fmt.Errorf("batch: %w", err)
	}

	for i, o := range outcomes {
		id := ids[i]
		if o.Err != nil {
			sum.Failed++
			if err := r.Store.Fail(id, store.SourceCompaniesHouse, o.Err.Error()); err != nil {
				return sum, err
			}
			continue
		}
		c := o.Result.Company
		if err := r.Store.SaveCompany(id, c.Name, len(o.Result.Entities), o.Result); err != nil {
			return sum, err
		}
		if err := r.Store.Complete(id, store.SourceCompaniesHouse); err != nil {
			return sum, err
		}
		sum.Resolved++

		for _, e := range o.Result.Entities {
			if e.IsOrganization || e.IdentityID == "" {
				continue
			}
			if err := r.Store.Enqueue(store.Pending{
				UUID:       e.IdentityID,
				ParentUUID: id,
				Name:       link.SearchQuery(e.Name, c.Name),
				Source:     store.SourceLinkedIn,
			}); err != nil {
				return sum, err
			}
			sum.Queued++
		}
	}
	logger.Info("resolution complete", "resolved", sum.Resolved, "failed", sum.Failed, "queued", sum.Queued)
	return sum, nil
}
