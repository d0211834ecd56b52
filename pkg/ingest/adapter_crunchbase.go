// CLAUDE:SUMMARY Ingest adapter for the Crunchbase organizations CSV export: stores organizations and queues them for registry lookup.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hazyhaar/companygraph/pkg/link"
	"github.com/hazyhaar/companygraph/pkg/store"
)

func init() {
	Register(&crunchbaseAdapter{})
}

type crunchbaseAdapter struct{}

func (a *crunchbaseAdapter) ID() string           { return "crunchbase-organizations" }
func (a *crunchbaseAdapter) Source() store.Source { return store.SourceCrunchbase }
func (a *crunchbaseAdapter) Description() string {
	return "Crunchbase organizations (bulk CSV export)"
}
func (a *crunchbaseAdapter) DefaultURL() string {
	return "https://api.crunchbase.com/odm/v4/odm.tar.gz"
}
func (a *crunchbaseAdapter) License() string { return "Crunchbase ODM" }

// Organization is one row of the organizations export.
type Organization struct {
	link.Organization
	LegalName      string   `json:"legal_name,omitempty"`
	CountryCode    string   `json:"country_code,omitempty"`
	CategoryGroups []string `json:"category_groups,omitempty"`
}

func (a *crunchbaseAdapter) Ingest(ctx context.Context, sourceURL string, env Env) (int, error) {
	src, err := env.fetcher().Open(ctx, sourceURL, ".csv")
	if err != nil {
		return 0, err
	}
	defer src.Close()

	st, logger := env.Store, env.logger()
	orgs, err := parseOrganizations(src.Path)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}

	n := 0
	for _, org := range orgs {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		if org.UUID == "" || org.Name == "" {
			logger.Warn("crunchbase: row without uuid or name skipped", "name", org.Name)
			continue
		}
		if err := st.SaveJSON(store.SourceCrunchbase, org.UUID, "", org.Name, org); err != nil {
			return n, err
		}
		// Queued until a registry record is linked to it.
		if err := st.Enqueue(store.Pending{
			UUID:        org.UUID,
			Name:        org.Name,
			CountryCode: org.CountryCode,
			FoundedOn:   org.FoundedOn,
			Source:      store.SourceCrunchbase,
		}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// parseOrganizations reads the organizations CSV. Columns are located by
// header name; founders and category groups are comma-separated lists.
func parseOrganizations(path string) ([]Organization, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"uuid", "name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var orgs []Organization
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		org := Organization{
			Organization: link.Organization{
				UUID:      get(rec, "uuid"),
				Name:      get(rec, "name"),
				FoundedOn: get(rec, "founded_on"),
				Founders:  splitList(get(rec, "founders")),
			},
			LegalName:      get(rec, "legal_name"),
			CountryCode:    get(rec, "country_code"),
			CategoryGroups: splitList(get(rec, "category_groups_list")),
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
