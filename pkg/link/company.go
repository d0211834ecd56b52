// Package link decides whether records from different sources describe the
// same company or person: a bulk-dataset organization against registry
// search results, and a person against profile search results.
package link

import (
	"strings"
	"time"

	"github.com/hazyhaar/companygraph/pkg/names"
)

// Thresholds for company linking.
const (
	FounderScore      = 0.85
	StrongNameScore   = 0.75
	WeakNameScore     = 0.5
	FoundedWithinDays = 365
)

// Method names how a candidate was accepted.
type Method string

const (
	ByFounders  Method = "founders"
	ByNameDate  Method = "name_and_date"
	ByExactName Method = "exact_name"
)

// Organization is a company as described by the bulk dataset.
type Organization struct {
	UUID      string   `json:"uuid"`
	Name      string   `json:"name"`
	FoundedOn string   `json:"founded_on,omitempty"`
	Founders  []string `json:"founders,omitempty"`
}

// Candidate is one registry search result.
type Candidate struct {
	Number       string   `json:"number"`
	Name         string   `json:"name"`
	PreviousName string   `json:"previous_name,omitempty"`
	CreatedOn    string   `json:"created_on,omitempty"`
	Officers     []string `json:"officers,omitempty"`
}

// Decision is the outcome of linking one organization.
type Decision struct {
	Candidate *Candidate `json:"candidate,omitempty"`
	Method    Method     `json:"method,omitempty"`
	NameScore float64    `json:"name_score"`
}

// Linker links records with a configurable names lexicon. The zero value
// uses names.Default.
type Linker struct {
	Lexicon *names.Lexicon
}

func (l Linker) lexicon() *names.Lexicon {
	if l.Lexicon == nil {
		return names.Default()
	}
	return l.Lexicon
}

// Company links org using the default lexicon.
func Company(org Organization, candidates []Candidate, maxResults int) Decision {
	return Linker{}.Company(org, candidates, maxResults)
}

// Company returns the first candidate that can be linked to org, trying at
// most maxResults candidates (all if <= 0). A candidate is accepted when
//   - org lists founders, the names are weakly similar and the officers
//     score at least FounderScore against the founders;
//   - otherwise, the names are strongly similar and both were founded within
//     FoundedWithinDays of each other;
//   - otherwise, the names are equal modulo "ltd"/"limited".
func (l Linker) Company(org Organization, candidates []Candidate, maxResults int) Decision {
	for i := range candidates {
		if maxResults > 0 && i >= maxResults {
			break
		}
		c := &candidates[i]
		score := NameScore(org.Name, c.Name)
		if c.PreviousName != "" {
			score = max(score, NameScore(org.Name, c.PreviousName))
		}

		switch {
		case len(org.Founders) > 0 && score >= WeakNameScore:
			if names.MatchingScore(lowerAll(l.officerNames(c.Officers)), lowerAll(org.Founders)) >= FounderScore {
				return Decision{Candidate: c, Method: ByFounders, NameScore: score}
			}
		case score >= StrongNameScore && foundedClose(org.FoundedOn, c.CreatedOn):
			return Decision{Candidate: c, Method: ByNameDate, NameScore: score}
		case exactName(org.Name, c.Name):
			return Decision{Candidate: c, Method: ByExactName, NameScore: score}
		}
	}
	return Decision{}
}

// NameScore is the best similarity of a registry name against the dataset
// name and its "ltd"/"limited" variants, in [0, 1].
func NameScore(dataset, registry string) float64 {
	r := strings.ToLower(strings.TrimSpace(registry))
	d := strings.ToLower(strings.TrimSpace(dataset))
	best := 0
	for _, v := range []string{
		d, d + " ltd", d + " limited",
		strings.ReplaceAll(d, "limited", "ltd"),
		strings.ReplaceAll(d, "ltd", "limited"),
	} {
		best = max(best, names.Ratio(r, v))
	}
	return float64(best) / 100
}

func exactName(dataset, registry string) bool {
	r := strings.ToLower(strings.TrimSpace(registry))
	d := strings.ToLower(strings.TrimSpace(dataset))
	return r == d || r == strings.ReplaceAll(d, "limited", "ltd") || r == strings.ReplaceAll(d, "ltd", "limited")
}

// foundedClose reports whether two ISO dates lie within FoundedWithinDays.
// A missing registry date counts as a match.
func foundedClose(dataset, registry string) bool {
	d, err := time.Parse(time.DateOnly, dataset)
	if err != nil {
		return false
	}
	r, err := time.Parse(time.DateOnly, registry)
	if err != nil {
		return true
	}
	diff := d.Sub(r)
	if diff < 0 {
		diff = -diff
	}
	return diff <= FoundedWithinDays*24*time.Hour
}

// officerNames turns registry officer names ("SMITH, John Robert") into
// searchable profile names ("John Smith"). Organizations are kept as is.
func (l Linker) officerNames(officers []string) []string {
	lex := l.lexicon()
	out := make([]string, 0, len(officers))
	for _, o := range officers {
		if lex.IsOrganization(o) {
			out = append(out, o)
			continue
		}
		out = append(out, names.TitleCase(names.ProfileName(names.AlignedName(o))))
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
