package link

import (
	"strings"

	"github.com/hazyhaar/companygraph/pkg/filing"
	"github.com/hazyhaar/companygraph/pkg/names"
)

// Profile matching thresholds on the 0-100 token-sort scale.
const (
	ProfileThreshold      = 80
	OrganizationThreshold = 80
	// OrganizationPrefix is the minimum length of the organization prefix
	// compared against a profile's experience entries.
	OrganizationPrefix = 5
)

var (
	ErrProfileNotFound        = &filing.CodedError{Code: 300, Message: "Profile not found"}
	ErrOrganizationNotMatched = &filing.CodedError{Code: 310, Message: "Profile and organization not matched. Name was matched"}
	ErrProfileNameNotMatched  = &filing.CodedError{Code: 320, Message: "Registry and profile name not matched"}
)

// Experience is one position listed on a profile.
type Experience struct {
	Organization string `json:"organization"`
	Title        string `json:"title,omitempty"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
}

// Profile is one professional-network search result.
type Profile struct {
	Name       string       `json:"name"`
	URL        string       `json:"url"`
	Headline   string       `json:"headline,omitempty"`
	Experience []Experience `json:"experience,omitempty"`
}

// SearchQuery is the query used to look a person up: their profile name and
// the shortest leading part of the company name that is still specific.
func SearchQuery(person, company string) string {
	return strings.TrimSpace(names.ProfileName(names.AlignedName(person)) + " " + names.MinCase(company, OrganizationPrefix))
}

// SelectProfile picks the search result that denotes person at company. The
// candidate whose name scores best against person is chosen; it must match
// at ProfileThreshold and list company among its experience entries.
func SelectProfile(person, company string, candidates []Profile) (*Profile, error) {
	if len(candidates) == 0 {
		return nil, ErrProfileNotFound
	}

	want := names.Fold(names.AlignedName(person))
	best, bestScore := -1, -1
	for i, c := range candidates {
		if s := names.TokenSortRatio(names.Fold(names.AlignedName(c.Name)), want); s > bestScore {
			best, bestScore = i, s
		}
	}
	p := &candidates[best]
	if !names.MatchAligned(p.Name, person, ProfileThreshold) {
		return nil, ErrProfileNameNotMatched
	}
	if !OrganizationMatch(p.Experience, company) {
		return nil, ErrOrganizationNotMatched
	}
	return p, nil
}

// OrganizationMatch reports whether any experience entry names company,
// comparing only the leading words of each name.
func OrganizationMatch(exp []Experience, company string) bool {
	want := strings.ToLower(names.MinCase(company, OrganizationPrefix))
	for _, e := range exp {
		got := strings.ToLower(names.MinCase(e.Organization, OrganizationPrefix))
		if names.TokenSortRatio(got, want) >= OrganizationThreshold {
			return true
		}
	}
	return false
}

// Match is a profile accepted for a registry person. UUID identifies the
// person; two people may share a name.
type Match struct {
	UUID    string  `json:"uuid,omitempty"`
	Person  string  `json:"person"`
	Profile Profile `json:"profile"`
}

// Dedupe keeps, among matches sharing a profile name, the one whose registry
// person name is closest to the profile name. Order is otherwise preserved.
func Dedupe(matches []Match) []Match {
	keep := make(map[string]int)
	score := make(map[string]int)
	for i, m := range matches {
		s := names.TokenSortRatio(m.Profile.Name, m.Person)
		if prev, ok := score[m.Profile.Name]; !ok || s >= prev {
			keep[m.Profile.Name], score[m.Profile.Name] = i, s
		}
	}
	out := make([]Match, 0, len(keep))
	for i, m := range matches {
		if keep[m.Profile.Name] == i {
			out = append(out, m)
		}
	}
	return out
}
