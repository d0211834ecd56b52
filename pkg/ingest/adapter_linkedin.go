// CLAUDE:SUMMARY Ingest adapter for profile search results: picks the matching profile per resolved person and records it.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hazyhaar/companygraph/pkg/link"
	"github.com/hazyhaar/companygraph/pkg/store"
)

func init() {
	Register(&linkedinAdapter{})
}

type linkedinAdapter struct{}

func (a *linkedinAdapter) ID() string           { return "linkedin-profiles" }
func (a *linkedinAdapter) Source() store.Source { return store.SourceLinkedIn }
func (a *linkedinAdapter) Description() string {
	return "LinkedIn profile search results for resolved persons"
}
func (a *linkedinAdapter) DefaultURL() string { return "file://profiles.jsonl" }
func (a *linkedinAdapter) License() string    { return "proprietary" }

// ProfileSearch is one search run for a resolved person: the person's
// identity, the company it belongs to and the profiles returned.
type ProfileSearch struct {
	UUID       string         `json:"uuid"`
	ParentUUID string         `json:"uuid_parent"`
	Person     string         `json:"person"`
	Company    string         `json:"company"`
	Results    []link.Profile `json:"results"`
}

// ProfileMatch is the stored outcome for one person.
type ProfileMatch struct {
	link.Match
	Company string `json:"company"`
}

func (a *linkedinAdapter) Ingest(ctx context.Context, sourceURL string, env Env) (int, error) {
	src, err := env.fetcher().Open(ctx, sourceURL, ".jsonl")
	if err != nil {
		return 0, err
	}
	defer src.Close()

	st, logger := env.Store, env.logger()
	searches, err := readSearches(src.Path)
	if err != nil {
		return 0, err
	}

	// Group by company so duplicate profiles are resolved within one company.
	var order []string
	byCompany := make(map[string][]ProfileSearch)
	for _, s := range searches {
		if _, ok := byCompany[s.ParentUUID]; !ok {
			order = append(order, s.ParentUUID)
		}
		byCompany[s.ParentUUID] = append(byCompany[s.ParentUUID], s)
	}

	n := 0
	for _, parent := range order {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		var matches []link.Match
		ids := make(map[string]ProfileSearch)
		for _, s := range byCompany[parent] {
			p, err := link.SelectProfile(s.Person, s.Company, s.Results)
			if err != nil {
				markFailed(st, s.UUID, err, logger)
				continue
			}
			matches = append(matches, link.Match{UUID: s.UUID, Person: s.Person, Profile: *p})
			ids[s.UUID] = s
		}

		kept := make(map[string]bool)
		for _, m := range link.Dedupe(matches) {
			s := ids[m.UUID]
			kept[m.UUID] = true
			if err := st.SaveJSON(store.SourceLinkedIn, s.UUID, parent, s.Person, ProfileMatch{Match: m, Company: s.Company}); err != nil {
				return n, err
			}
			if err := st.Complete(s.UUID, store.SourceLinkedIn); err != nil && !errors.Is(err, store.ErrNotFound) {
				return n, err
			}
			n++
		}
		for _, m := range matches {
			if !kept[m.UUID] {
				markFailed(st, m.UUID, link.ErrProfileNameNotMatched, logger)
			}
		}
	}
	return n, nil
}

func markFailed(st *store.Store, id string, cause error, logger *slog.Logger) {
	if err := st.Fail(id, store.SourceLinkedIn, cause.Error()); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("linkedin: record failure", "uuid", id, "error", err)
	}
	logger.Debug("linkedin: no profile", "uuid", id, "reason", cause)
}

func readSearches(path string) ([]ProfileSearch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []ProfileSearch
	dec := json.NewDecoder(f)
	for {
		var s ProfileSearch
		if err := dec.Decode(&s); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("decode search %d: %w", len(out)+1, err)
		}
		if s.UUID == "" {
			continue
		}
		out = append(out, s)
	}
}
