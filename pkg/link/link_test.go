package link

import (
	"errors"
	"testing"

	"github.com/hazyhaar/companygraph/pkg/names"
)

func TestCompany(t *testing.T) {
	tests := []struct {
		name       string
		org        Organization
		candidates []Candidate
		max        int
		want       Method
		wantNumber string
	}{
		{
			name: "founders",
			org:  Organization{Name: "Acme", FoundedOn: "2019-03-01", Founders: []string{"Jane Doe"}},
			candidates: []Candidate{
				{Number: "1", Name: "ACME WIDGETS LIMITED", Officers: []string{"ROE, John"}},
				{Number: "2", Name: "ACME LTD", Officers: []string{"DOE, Jane Mary"}},
			},
			want: ByFounders, wantNumber: "2",
		},
		{
			name:       "name and date",
			org:        Organization{Name: "Acme Limited", FoundedOn: "2019-03-01"},
			candidates: []Candidate{{Number: "3", Name: "ACME LTD", CreatedOn: "2019-06-01"}},
			want:       ByNameDate, wantNumber: "3",
		},
		{
			name:       "exact name",
			org:        Organization{Name: "Acme Limited"},
			candidates: []Candidate{{Number: "4", Name: "ACME LTD", CreatedOn: "2010-01-01"}},
			want:       ByExactName, wantNumber: "4",
		},
		{
			name:       "no match",
			org:        Organization{Name: "Acme", FoundedOn: "2019-03-01"},
			candidates: []Candidate{{Number: "5", Name: "GLOBEX CORPORATION", CreatedOn: "2019-03-01"}},
		},
		{
			name: "beyond max results",
			org:  Organization{Name: "Acme Limited"},
			candidates: []Candidate{
				{Number: "6", Name: "GLOBEX CORPORATION"},
				{Number: "7", Name: "ACME LTD"},
			},
			max: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Company(tt.org, tt.candidates, tt.max)
			if d.Method != tt.want {
				t.Fatalf("Method = %q, want %q", d.Method, tt.want)
			}
			if tt.wantNumber == "" && d.Candidate != nil {
				t.Fatalf("unexpected candidate %+v", d.Candidate)
			}
			if tt.wantNumber != "" && (d.Candidate == nil || d.Candidate.Number != tt.wantNumber) {
				t.Errorf("Candidate = %+v, want number %s", d.Candidate, tt.wantNumber)
			}
		})
	}
}

func TestNameScore(t *testing.T) {
	if got := NameScore("Acme Limited", "ACME LTD"); got != 1 {
		t.Errorf("NameScore = %v, want 1", got)
	}
	if got := NameScore("Acme", "Globex"); got >= WeakNameScore {
		t.Errorf("NameScore(Acme, Globex) = %v", got)
	}
}

func TestSelectProfile(t *testing.T) {
	good := Profile{Name: "John Smith", URL: "https://example.com/in/jsmith",
		Experience: []Experience{{Organization: "Acme Widgets"}}}

	p, err := SelectProfile("SMITH, John", "Acme Widgets Ltd", []Profile{{Name: "Johnny Appleseed"}, good})
	if err != nil {
		t.Fatalf("SelectProfile: %v", err)
	}
	if p.URL != good.URL {
		t.Errorf("selected %+v", p)
	}

	tests := []struct {
		name       string
		candidates []Profile
		want       error
	}{
		{"none", nil, ErrProfileNotFound},
		{"name", []Profile{{Name: "Jane Roe"}}, ErrProfileNameNotMatched},
		{"organization", []Profile{{Name: "John Smith", Experience: []Experience{{Organization: "Globex"}}}}, ErrOrganizationNotMatched},
	}
	for _, tt := range tests {
		if _, err := SelectProfile("SMITH, John", "Acme Widgets Ltd", tt.candidates); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestSearchQuery(t *testing.T) {
	if got := SearchQuery("SMITH, John Robert", "Acme Widgets Ltd"); got != "John SMITH Acme Widgets" {
		t.Errorf("SearchQuery = %q", got)
	}
}

func TestDedupe(t *testing.T) {
	in := []Match{
		{Person: "John Smith", Profile: Profile{Name: "John Smith", URL: "a"}},
		{Person: "Johnny Smithers", Profile: Profile{Name: "John Smith", URL: "b"}},
		{Person: "Jane Doe", Profile: Profile{Name: "Jane Doe", URL: "c"}},
	}
	out := Dedupe(in)
	if len(out) != 2 || out[0].Profile.URL != "a" || out[1].Profile.URL != "c" {
		t.Errorf("Dedupe = %+v", out)
	}
}

func TestLinker_Lexicon(t *testing.T) {
	org := Organization{Name: "Northern Artists Collective", Founders: []string{"Northern Artists Collective"}}
	cands := []Candidate{{Number: "8", Name: "NORTHERN ARTISTS COLLECTIVE", Officers: []string{"NORTHERN ARTISTS COLLECTIVE"}}}

	// Read as a person, the corporate officer becomes "Northern Collective".
	if d := Company(org, cands, 0); d.Candidate != nil {
		t.Fatalf("default lexicon linked %+v", d)
	}

	lex := names.NewLexicon(names.Titles, []string{"COLLECTIVE"})
	d := Linker{Lexicon: lex}.Company(org, cands, 0)
	if d.Method != ByFounders || d.Candidate == nil || d.Candidate.Number != "8" {
		t.Errorf("Decision = %+v, want founders link", d)
	}
}
