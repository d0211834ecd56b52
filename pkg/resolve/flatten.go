package resolve

import (
	"fmt"
	"sort"

	"github.com/hazyhaar/companygraph/pkg/dedup"
)

// Row is one long-format fact about a company or one of its people.
type Row struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	ParentUUID string `json:"parent_uuid,omitempty"`
	ParentName string `json:"parent_name,omitempty"`
	GroupID    string `json:"group_id,omitempty"`
	FromDate   string `json:"from_date,omitempty"`
	ToDate     string `json:"to_date,omitempty"`
	Variable   string `json:"variable"`
	Value      any    `json:"value"`
}

const registrySource = "companieshouse"

// Flatten turns a resolved company into long-format rows. Each shareholder
// list is valid from its filing date until the next list's filing date.
func Flatten(r *Result) ([]Row, error) {
	c := r.Company
	row := func(uuid, name string, child bool, group, from, to, variable string, value any) Row {
		out := Row{UUID: uuid, Name: name, Source: registrySource, GroupID: group,
			FromDate: from, ToDate: to, Variable: variable, Value: value}
		if child {
			out.ParentUUID, out.ParentName = c.UUID, c.Name
		}
		return out
	}

	var rows []Row
	rows = append(rows, row(c.UUID, c.Name, false, "", c.IncorporatedOn, c.DissolvedOn, "is_incorporated", true))
	if c.DissolvedOn != "" {
		rows = append(rows, row(c.UUID, c.Name, false, "", c.IncorporatedOn, c.DissolvedOn, "is_dissolved", true))
	}

	holdings := append(r.Company.Shareholdings[:0:0], c.Shareholdings...)
	sort.SliceStable(holdings, func(i, j int) bool { return holdings[i].FilingDate < holdings[j].FilingDate })

	seen := map[string]bool{}
	for hi, sh := range holdings {
		from := sh.FilingDate
		to := ""
		if hi+1 < len(holdings) {
			to = holdings[hi+1].FilingDate
		}
		total := sh.Total()
		rows = append(rows, row(c.UUID, c.Name, false, "", from, to, "total_shares", total))
		for _, it := range sh.Items {
			if !seen[it.IdentityID] {
				seen[it.IdentityID] = true
				rows = append(rows, row(it.IdentityID, it.Name, true, "", c.Incorporation.ReceivedDate, "", "is_organization", it.IsOrganization))
			}
			var fraction float64
			if total > 0 {
				fraction = float64(it.Shares) / float64(total)
			}
			rows = append(rows,
				row(it.IdentityID, it.Name, true, it.IdentityID, from, to, "shareholding", fraction),
				row(it.IdentityID, it.Name, true, it.IdentityID, from, to, "share_type", it.ShareType),
				row(it.IdentityID, it.Name, true, it.IdentityID, from, to, "share_number", it.Shares),
			)
		}
	}

	for _, o := range c.Officers {
		var variable string
		switch o.Role {
		case dedup.Director:
			variable = "is_director"
		case dedup.Secretary:
			variable = "is_secretary"
		default:
			return nil, fmt.Errorf("flatten %s: officer %q: %w: %q", c.Name, o.Name, dedup.ErrUnknownOccupation, o.Role)
		}
		rows = append(rows, row(o.IdentityID, o.Name, true, "", o.AppointedOn, o.ResignedOn, variable, true))
	}

	for _, f := range c.Incorporation.Items {
		rows = append(rows, row(f.IdentityID, f.Name, true, "", c.Incorporation.ReceivedDate, "", "is_founder", true))
	}
	return rows, nil
}
