package resolve

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome pairs a batch input's result with its error. Exactly one is set.
type Outcome struct {
	Result *Result
	Err    error
}

// Batch resolves inputs concurrently with at most workers companies in
// flight. Companies are independent: a failing company is reported in its
// Outcome and does not stop the others. Only context cancellation aborts the
// batch. Outcomes are returned in input order.
func (p *Pipeline) Batch(ctx context.Context, inputs []Input, workers int) ([]Outcome, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]Outcome, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.Resolve(inputs[i])
			if err != nil {
				p.logger.Error("company failed", "company", inputs[i].Company.Name, "error", err)
			}
			out[i] = Outcome{Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
