// Package reconcile joins merged entities back onto the raw registry records
// of one company, replacing printed names with canonical names and
// identities.
package reconcile

import (
	"github.com/hazyhaar/companygraph/pkg/dedup"
	"github.com/hazyhaar/companygraph/pkg/filing"
)

// Officer is one officer appointment listed by the registry.
type Officer struct {
	Name           string           `json:"name"`
	Role           dedup.Occupation `json:"role"`
	DateOfBirth    string           `json:"date_of_birth,omitempty"`
	AppointedOn    string           `json:"appointed_on,omitempty"`
	ResignedOn     string           `json:"resigned_on,omitempty"`
	IsOrganization bool             `json:"is_organization"`
	NameOriginal   string           `json:"name_original,omitempty"`
	IdentityID     string           `json:"identity_id,omitempty"`
}

// Shareholding is the shareholder list of one filing.
type Shareholding struct {
	Kind         filing.Kind          `json:"kind"`
	ReceivedDate string               `json:"received_date"`
	FilingDate   string               `json:"filing_date"`
	Items        []filing.Shareholder `json:"items"`
}

// Total returns the number of shares across all items.
func (s Shareholding) Total() int {
	n := 0
	for _, it := range s.Items {
		n += it.Shares
	}
	return n
}

// Incorporation holds the subscribers of the incorporation document.
type Incorporation struct {
	ReceivedDate string                      `json:"received_date,omitempty"`
	Items        []filing.InitialShareholder `json:"items"`
}

// Company is the registry view of one company: its officers, every parsed
// shareholder list and its founding subscribers.
type Company struct {
	UUID           string         `json:"uuid"`
	Name           string         `json:"name"`
	Number         string         `json:"number"`
	IncorporatedOn string         `json:"incorporated_on,omitempty"`
	DissolvedOn    string         `json:"dissolved_on,omitempty"`
	Officers       []Officer      `json:"officers"`
	Shareholdings  []Shareholding `json:"shareholdings"`
	Incorporation  Incorporation  `json:"incorporation"`
}

// Streams returns the role records of c grouped by stream, ready for
// clustering: shareholders from every filing, officers, and founders.
func (c *Company) Streams() (shareholders, officers, founders []dedup.RoleRecord) {
	for _, sh := range c.Shareholdings {
		for _, it := range sh.Items {
			shares := it.Shares
			shareholders = append(shareholders, dedup.RoleRecord{
				Name:       it.Name,
				Occupation: dedup.Occupations{dedup.Shareholder},
				Shares:     &shares,
				ShareType:  it.ShareType,
			})
		}
	}
	for _, o := range c.Officers {
		officers = append(officers, dedup.RoleRecord{
			Name:        o.Name,
			Occupation:  dedup.Occupations{o.Role},
			DateOfBirth: o.DateOfBirth,
		})
	}
	for _, f := range c.Incorporation.Items {
		founders = append(founders, dedup.RoleRecord{
			Name:       f.Name,
			Occupation: dedup.Occupations{dedup.Founder},
			Shares:     f.Shares,
			ShareType:  f.ShareType,
		})
	}
	return shareholders, officers, founders
}

// AddFiling appends the shareholders of an extracted filing. Incorporation
// documents also become the company's founder list.
func (c *Company) AddFiling(doc filing.Document, f filing.Filing) {
	switch v := f.(type) {
	case *filing.ConfirmationStatement:
		c.Shareholdings = append(c.Shareholdings, Shareholding{
			Kind: doc.Kind, ReceivedDate: doc.ReceivedDate, FilingDate: doc.FilingDate, Items: v.Shareholders,
		})
	case *filing.AnnualReturn:
		c.Shareholdings = append(c.Shareholdings, Shareholding{
			Kind: doc.Kind, ReceivedDate: doc.ReceivedDate, FilingDate: doc.FilingDate, Items: v.Shareholders,
		})
	case *filing.Incorporation:
		c.Incorporation = Incorporation{ReceivedDate: doc.ReceivedDate, Items: v.Shareholders}
		items := make([]filing.Shareholder, 0, len(v.Shareholders))
		for _, s := range v.Shareholders {
			if s.Shares == nil {
				continue
			}
			items = append(items, filing.Shareholder{
				Name: s.Name, ShareType: s.ShareType, Shares: *s.Shares, IsOrganization: s.IsOrganization,
			})
		}
		c.Shareholdings = append(c.Shareholdings, Shareholding{
			Kind: doc.Kind, ReceivedDate: doc.ReceivedDate, FilingDate: doc.ReceivedDate, Items: items,
		})
	}
}
