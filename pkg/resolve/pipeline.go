// CLAUDE:SUMMARY Per-company resolution pipeline: extract filings, cluster each stream, union, assign identities, reconcile.
package resolve

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/companygraph/pkg/dedup"
	"github.com/hazyhaar/companygraph/pkg/filing"
	"github.com/hazyhaar/companygraph/pkg/names"
	"github.com/hazyhaar/companygraph/pkg/reconcile"
)

// Options configures a Pipeline. Zero values select the defaults: officers
// use the equal-DOB rule, shareholders and founders ignore dates of birth.
type Options struct {
	IgnoreOrganization bool
	OfficerDOB         dedup.DOBRule
	Threshold          int
	WeakThreshold      int
	Lexicon            *names.Lexicon
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{OfficerDOB: dedup.DOBEqual}
}

// Input is everything known about one company before resolution: the
// registry record (officers, and any shareholder lists already parsed) and
// the filings still to extract.
type Input struct {
	Company   reconcile.Company `json:"company"`
	Documents []filing.Document `json:"documents,omitempty"`
}

// FilingFailure records a filing that could not be extracted.
type FilingFailure struct {
	Kind         filing.Kind `json:"kind"`
	ReceivedDate string      `json:"received_date"`
	Code         int         `json:"code,omitempty"`
	Error        string      `json:"error"`
}

// Result is the resolved view of one company.
type Result struct {
	Company  *reconcile.Company `json:"company"`
	Entities []dedup.Entity     `json:"entities"`
	Failures []FilingFailure    `json:"failures,omitempty"`
}

// Pipeline resolves companies. It is safe for concurrent use.
type Pipeline struct {
	opts     Options
	extract  filing.Extractor
	holders  *dedup.Engine
	officers *dedup.Engine
	logger   *slog.Logger
}

// NewPipeline returns a Pipeline. A nil logger discards output.
func NewPipeline(opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	base := dedup.Options{
		IgnoreOrganization: opts.IgnoreOrganization,
		Threshold:          opts.Threshold,
		WeakThreshold:      opts.WeakThreshold,
		Lexicon:            opts.Lexicon,
	}
	off := base
	off.DOB = opts.OfficerDOB
	return &Pipeline{
		opts:     opts,
		extract:  filing.Extractor{Lexicon: opts.Lexicon},
		holders:  dedup.New(base),
		officers: dedup.New(off),
		logger:   logger,
	}
}

// Resolve extracts the company's filings, clusters its role records and
// rewrites the company with canonical names and identities. A filing that
// fails to parse is reported in Result.Failures and skipped; a
// reconciliation defect fails the whole company.
func (p *Pipeline) Resolve(in Input) (*Result, error) {
	c := in.Company
	c.Shareholdings = append([]reconcile.Shareholding(nil), c.Shareholdings...)
	res := &Result{}

	for _, doc := range in.Documents {
		f, err := p.extract.Extract(doc)
		if err != nil {
			fail := FilingFailure{Kind: doc.Kind, ReceivedDate: doc.ReceivedDate, Error: err.Error()}
			var ce *filing.CodedError
			if errors.As(err, &ce) {
				fail.Code = ce.Code
			}
			res.Failures = append(res.Failures, fail)
			p.logger.Warn("filing skipped", "company", c.Name, "kind", doc.Kind, "received", doc.ReceivedDate, "error", err)
			continue
		}
		c.AddFiling(doc, f)
	}

	// The union merges across streams with the officer DOB rule, so an
	// officer's date of birth still separates namesakes after clustering.
	sh, off, fo := c.Streams()
	entities := p.officers.Union(
		p.holders.Cluster(sh),
		p.officers.Cluster(off),
		p.holders.Cluster(fo),
	)
	dedup.AssignIdentities(entities, c.UUID)

	out, err := reconcile.Rewrite(entities, &c, reconcile.Options{
		IgnoreOrganization: p.opts.IgnoreOrganization,
		Lexicon:            p.opts.Lexicon,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", c.Name, err)
	}
	res.Company = out
	res.Entities = entities
	p.logger.Debug("company resolved", "company", c.Name, "entities", len(entities), "failures", len(res.Failures))
	return res, nil
}
