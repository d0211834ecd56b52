// CLAUDE:SUMMARY Alias-set rewrite of raw shareholder/officer/founder records with exactly-once consumption check.
package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hazyhaar/companygraph/pkg/dedup"
	"github.com/hazyhaar/companygraph/pkg/filing"
	"github.com/hazyhaar/companygraph/pkg/names"
)

// ConsumptionError reports raw records that no entity claimed (orphans) or
// that more than one entity claimed (doubles). Either indicates a defect in
// the upstream resolution.
type ConsumptionError struct {
	Orphans []string
	Doubles []string
}

func (e *ConsumptionError) Error() string {
	var parts []string
	if len(e.Orphans) > 0 {
		parts = append(parts, fmt.Sprintf("%d orphan(s): %s", len(e.Orphans), strings.Join(e.Orphans, "; ")))
	}
	if len(e.Doubles) > 0 {
		parts = append(parts, fmt.Sprintf("%d double(s): %s", len(e.Doubles), strings.Join(e.Doubles, "; ")))
	}
	return "reconcile: " + strings.Join(parts, ", ")
}

// Options mirrors the clustering options that decide which raw records were
// offered to the dedup engine.
type Options struct {
	// IgnoreOrganization exempts organization records from the consumption
	// check, since the engine never saw them.
	IgnoreOrganization bool
	Lexicon            *names.Lexicon
}

// Rewrite returns a copy of c where every raw record whose name is an alias
// of an entity holding the record's occupation carries the entity's
// canonical name, identity and organization flag. The original name is kept
// in NameOriginal. Collections are sorted by name.
//
// Every record with a non-empty name must be claimed exactly once; otherwise
// a *ConsumptionError is returned.
func Rewrite(entities []dedup.Entity, c *Company, opts Options) (*Company, error) {
	out := clone(c)
	counts := map[string]int{}

	for _, ent := range entities {
		alias := make(map[string]bool, len(ent.Alias))
		for _, a := range ent.Alias {
			alias[a] = true
		}
		for _, occ := range ent.Occupation {
			switch occ {
			case dedup.Shareholder:
				for si := range out.Shareholdings {
					items := out.Shareholdings[si].Items
					for i := range items {
						orig := c.Shareholdings[si].Items[i].Name
						if !alias[orig] {
							continue
						}
						items[i].NameOriginal = orig
						items[i].Name = ent.Name
						items[i].IdentityID = ent.IdentityID
						items[i].IsOrganization = ent.IsOrganization
						counts[fmt.Sprintf("shareholding %d item %d (%s)", si, i, orig)]++
					}
				}
			case dedup.Director, dedup.Secretary:
				for i := range out.Officers {
					orig := c.Officers[i].Name
					if c.Officers[i].Role != occ || !alias[orig] {
						continue
					}
					o := &out.Officers[i]
					o.NameOriginal = orig
					o.Name = ent.Name
					o.IdentityID = ent.IdentityID
					o.IsOrganization = ent.IsOrganization
					counts[fmt.Sprintf("officer %d (%s)", i, orig)]++
				}
			case dedup.Founder:
				items := out.Incorporation.Items
				for i := range items {
					orig := c.Incorporation.Items[i].Name
					if !alias[orig] {
						continue
					}
					items[i].NameOriginal = orig
					items[i].Name = ent.Name
					items[i].IdentityID = ent.IdentityID
					items[i].IsOrganization = ent.IsOrganization
					counts[fmt.Sprintf("founder %d (%s)", i, orig)]++
				}
			default:
				return nil, fmt.Errorf("reconcile %s: %w: %q", ent.Name, dedup.ErrUnknownOccupation, occ)
			}
		}
	}

	lex := opts.Lexicon
	if lex == nil {
		lex = names.Default()
	}
	cerr := &ConsumptionError{}
	check := func(key, name string) {
		if strings.TrimSpace(name) == "" || (opts.IgnoreOrganization && lex.IsOrganization(name)) {
			return
		}
		switch n := counts[key]; {
		case n == 0:
			cerr.Orphans = append(cerr.Orphans, key)
		case n > 1:
			cerr.Doubles = append(cerr.Doubles, key)
		}
	}
	for si, sh := range c.Shareholdings {
		for i, it := range sh.Items {
			check(fmt.Sprintf("shareholding %d item %d (%s)", si, i, it.Name), it.Name)
		}
	}
	for i, o := range c.Officers {
		check(fmt.Sprintf("officer %d (%s)", i, o.Name), o.Name)
	}
	for i, f := range c.Incorporation.Items {
		check(fmt.Sprintf("founder %d (%s)", i, f.Name), f.Name)
	}
	if len(cerr.Orphans) > 0 || len(cerr.Doubles) > 0 {
		return nil, cerr
	}

	for si := range out.Shareholdings {
		items := out.Shareholdings[si].Items
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	}
	sort.SliceStable(out.Officers, func(i, j int) bool { return out.Officers[i].Name < out.Officers[j].Name })
	founders := out.Incorporation.Items
	sort.SliceStable(founders, func(i, j int) bool { return founders[i].Name < founders[j].Name })
	return out, nil
}

func clone(c *Company) *Company {
	out := *c
	out.Officers = append([]Officer(nil), c.Officers...)
	out.Shareholdings = make([]Shareholding, len(c.Shareholdings))
	for i, sh := range c.Shareholdings {
		sh.Items = append([]filing.Shareholder(nil), sh.Items...)
		out.Shareholdings[i] = sh
	}
	out.Incorporation.Items = append([]filing.InitialShareholder(nil), c.Incorporation.Items...)
	return &out
}
