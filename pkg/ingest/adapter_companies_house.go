// CLAUDE:SUMMARY Ingest adapter for Companies House company dumps (JSON lines): officers, filings, optional PDF text, link to Crunchbase.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/companygraph/pkg/dedup"
	"github.com/hazyhaar/companygraph/pkg/filing"
	"github.com/hazyhaar/companygraph/pkg/link"
	"github.com/hazyhaar/companygraph/pkg/reconcile"
	"github.com/hazyhaar/companygraph/pkg/resolve"
	"github.com/hazyhaar/companygraph/pkg/store"
)

func init() {
	Register(&companiesHouseAdapter{})
}

type companiesHouseAdapter struct{}

func (a *companiesHouseAdapter) ID() string           { return "companies-house-uk" }
func (a *companiesHouseAdapter) Source() store.Source { return store.SourceCompaniesHouse }
func (a *companiesHouseAdapter) Description() string {
	return "Companies House UK (profiles, officers, filing history)"
}
func (a *companiesHouseAdapter) DefaultURL() string {
	return "https://download.companieshouse.gov.uk/en_output.html"
}
func (a *companiesHouseAdapter) License() string { return "OGL v3" }

// chRecord is one line of the dump: the company profile, its officers and
// its shareholder filings, as fetched from the registry API.
type chRecord struct {
	CrunchbaseUUID      string       `json:"crunchbase_uuid"`
	CompanyNumber       string       `json:"company_number"`
	CompanyName         string       `json:"company_name"`
	PreviousCompanyName string       `json:"previous_company_name"`
	DateOfCreation      string       `json:"date_of_creation"`
	DateOfCessation     string       `json:"date_of_cessation"`
	Officers            []chOfficer  `json:"officers"`
	Filings             []chDocument `json:"filings"`
}

type chOfficer struct {
	Name        string  `json:"name"`
	OfficerRole string  `json:"officer_role"`
	DateOfBirth chBirth `json:"date_of_birth"`
	AppointedOn string  `json:"appointed_on"`
	ResignedOn  string  `json:"resigned_on"`
}

// chBirth is an officer's partial date of birth, held as the first day of
// the month in ISO form. The API gives {"month": 4, "year": 1980}; scraped
// officer pages give "April 1980". Text that does not parse is dropped.
type chBirth string

func (b *chBirth) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if iso, err := filing.ParseBirthMonth(text); err == nil {
			*b = chBirth(iso)
		}
		return nil
	}
	var v struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("date of birth: %w", err)
	}
	if v.Year > 0 {
		*b = chBirth(fmt.Sprintf("%04d-%02d-01", v.Year, max(v.Month, 1)))
	}
	return nil
}

// chDocument is a filing with either OCR pages or a path to its PDF,
// relative to the dump file.
type chDocument struct {
	Kind         string     `json:"kind"`
	ReceivedDate string     `json:"received_date"`
	FilingDate   string     `json:"filing_date"`
	Pages        [][]string `json:"pages"`
	PDF          string     `json:"pdf"`
}

func (a *companiesHouseAdapter) Ingest(ctx context.Context, sourceURL string, env Env) (int, error) {
	src, err := env.fetcher().Open(ctx, sourceURL, ".jsonl")
	if err != nil {
		return 0, err
	}
	defer src.Close()

	f, err := os.Open(src.Path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	st, logger := env.Store, env.logger()
	linker := link.Linker{Lexicon: env.Lexicon}
	dir := filepath.Dir(src.Path)
	dec := json.NewDecoder(f)
	n := 0
	for {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		var rec chRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return n, fmt.Errorf("decode record %d: %w", n+1, err)
		}
		if rec.CompanyNumber == "" {
			logger.Warn("companieshouse: record without company number skipped", "name", rec.CompanyName)
			continue
		}

		in, err := toInput(rec, dir, logger)
		if err != nil {
			logger.Warn("companieshouse: record skipped", "number", rec.CompanyNumber, "error", err)
			continue
		}

		parent, ok := linkCrunchbase(st, linker, rec, logger)
		if rec.CrunchbaseUUID != "" && !ok {
			continue
		}
		if parent != "" {
			in.Company.UUID = parent
		}

		if err := st.SaveJSON(store.SourceCompaniesHouse, in.Company.UUID, parent, in.Company.Name, in); err != nil {
			return n, err
		}
		if err := st.Enqueue(store.Pending{
			UUID:       in.Company.UUID,
			ParentUUID: parent,
			Name:       in.Company.Name,
			FoundedOn:  in.Company.IncorporatedOn,
			Source:     store.SourceCompaniesHouse,
		}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// CompanyUUID is the identifier given to a registry company that is not
// linked to a Crunchbase organization.
func CompanyUUID(number string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("companieshouse:"+strings.ToUpper(number))).String()
}

func toInput(rec chRecord, dir string, logger *slog.Logger) (resolve.Input, error) {
	c := reconcile.Company{
		UUID:           CompanyUUID(rec.CompanyNumber),
		Name:           rec.CompanyName,
		Number:         rec.CompanyNumber,
		IncorporatedOn: isoDate(rec.DateOfCreation),
		DissolvedOn:    isoDate(rec.DateOfCessation),
	}

	for _, o := range rec.Officers {
		role, err := dedup.ParseOccupation(o.OfficerRole)
		if err != nil {
			// Registry roles outside the model (llp-member, judicial-factor...).
			logger.Debug("companieshouse: officer role ignored", "number", rec.CompanyNumber, "role", o.OfficerRole)
			continue
		}
		c.Officers = append(c.Officers, reconcile.Officer{
			Name:        o.Name,
			Role:        role,
			DateOfBirth: string(o.DateOfBirth),
			AppointedOn: isoDate(o.AppointedOn),
			ResignedOn:  isoDate(o.ResignedOn),
		})
	}

	in := resolve.Input{Company: c}
	for _, d := range rec.Filings {
		kind, err := filing.ParseKind(d.Kind)
		if err != nil {
			logger.Debug("companieshouse: filing ignored", "number", rec.CompanyNumber, "kind", d.Kind)
			continue
		}
		doc := filing.Document{
			Kind:         kind,
			ReceivedDate: isoDate(d.ReceivedDate),
			FilingDate:   isoDate(d.FilingDate),
			Pages:        d.Pages,
		}
		if len(doc.Pages) == 0 && d.PDF != "" {
			p := d.PDF
			if !filepath.IsAbs(p) {
				p = filepath.Join(dir, p)
			}
			pages, err := filing.ReadPDFFile(p)
			if err != nil {
				return in, fmt.Errorf("read %s: %w", d.PDF, err)
			}
			doc.Pages = pages
		}
		in.Documents = append(in.Documents, doc)
	}
	return in, nil
}

// linkCrunchbase checks that the registry record describes the Crunchbase
// organization it was fetched for. It returns the organization UUID and
// whether the link holds. Records without an organization pass unlinked.
func linkCrunchbase(st *store.Store, linker link.Linker, rec chRecord, logger *slog.Logger) (string, bool) {
	if rec.CrunchbaseUUID == "" {
		return "", true
	}
	var org link.Organization
	if err := st.LoadJSON(rec.CrunchbaseUUID, store.SourceCrunchbase, &org); err != nil {
		logger.Warn("companieshouse: organization not ingested", "crunchbase_uuid", rec.CrunchbaseUUID, "error", err)
		return "", false
	}

	cand := link.Candidate{
		Number:       rec.CompanyNumber,
		Name:         rec.CompanyName,
		PreviousName: rec.PreviousCompanyName,
		CreatedOn:    isoDate(rec.DateOfCreation),
	}
	for _, o := range rec.Officers {
		cand.Officers = append(cand.Officers, o.Name)
	}

	d := linker.Company(org, []link.Candidate{cand}, 1)
	if d.Candidate == nil {
		if err := st.Fail(org.UUID, store.SourceCrunchbase, filing.ErrCompanyNotFound.Error()); err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Error("companieshouse: record failure", "crunchbase_uuid", org.UUID, "error", err)
		}
		logger.Info("companieshouse: registry record does not match organization",
			"crunchbase_uuid", org.UUID, "organization", org.Name, "company", rec.CompanyName, "score", d.NameScore)
		return "", false
	}
	if err := st.Complete(org.UUID, store.SourceCrunchbase); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("companieshouse: complete organization", "crunchbase_uuid", org.UUID, "error", err)
	}
	logger.Debug("companieshouse: linked", "crunchbase_uuid", org.UUID, "number", rec.CompanyNumber, "method", d.Method)
	return org.UUID, true
}

// isoDate accepts ISO dates and the registry's "2 January 2006" form. Other
// values are dropped.
func isoDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return s
	}
	if d, err := filing.ParseDate(s); err == nil {
		return d
	}
	return ""
}
