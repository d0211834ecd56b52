// CLAUDE:SUMMARY Role records (one observed shareholder/officer/founder) and merged entities produced by clustering.
package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Occupation is the role a person or organization plays in a company.
type Occupation string

const (
	Shareholder Occupation = "Shareholder"
	Director    Occupation = "Director"
	Secretary   Occupation = "Secretary"
	Founder     Occupation = "Founder"
)

// ErrUnknownOccupation is returned for roles outside the closed set.
var ErrUnknownOccupation = errors.New("unknown occupation")

// ParseOccupation maps a free-text role ("director", "corporate-secretary",
// "Shareholder") to an Occupation.
func ParseOccupation(s string) (Occupation, error) {
	l := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(l, "director"):
		return Director, nil
	case strings.Contains(l, "secretary"):
		return Secretary, nil
	case l == "shareholder":
		return Shareholder, nil
	case l == "founder":
		return Founder, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOccupation, s)
}

// Occupations is a role list. In JSON it accepts either a single string or
// an array of strings.
type Occupations []Occupation

// UnmarshalJSON accepts "Director" as well as ["Director", "Shareholder"].
func (o *Occupations) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*o = nil
			return nil
		}
		occ, err := ParseOccupation(one)
		if err != nil {
			return err
		}
		*o = Occupations{occ}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("occupation: want string or array: %w", err)
	}
	out := make(Occupations, 0, len(many))
	for _, s := range many {
		occ, err := ParseOccupation(s)
		if err != nil {
			return err
		}
		out = append(out, occ)
	}
	*o = out
	return nil
}

// Has reports whether occ is in the list.
func (o Occupations) Has(occ Occupation) bool {
	for _, x := range o {
		if x == occ {
			return true
		}
	}
	return false
}

// RoleRecord is one observation of a person or organization holding a role
// in one company filing.
type RoleRecord struct {
	Name        string      `json:"name"`
	Occupation  Occupations `json:"occupation"`
	DateOfBirth string      `json:"date_of_birth,omitempty"`
	Shares      *int        `json:"shares,omitempty"`
	ShareType   string      `json:"share_type,omitempty"`
}

// Entity is the merge of every role record judged to denote the same
// real-world person or organization.
type Entity struct {
	Name           string      `json:"name"`
	ProfileName    string      `json:"profile_name"`
	Occupation     Occupations `json:"occupation"`
	DateOfBirth    string      `json:"date_of_birth,omitempty"`
	Alias          []string    `json:"alias"`
	IsOrganization bool        `json:"is_organization"`
	IdentityID     string      `json:"identity_id,omitempty"`
}

// HasAlias reports whether raw is one of the names the entity was merged from.
func (e *Entity) HasAlias(raw string) bool {
	for _, a := range e.Alias {
		if a == raw {
			return true
		}
	}
	return false
}
