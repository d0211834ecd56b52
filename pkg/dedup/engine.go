// CLAUDE:SUMMARY Clustering engine: transitive duplicate closure repeated to a fixpoint, longest-name merge, byte-wise sort.
package dedup

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/companygraph/pkg/identity"
	"github.com/hazyhaar/companygraph/pkg/names"
)

// DOBRule controls whether equal dates of birth make two records duplicates.
type DOBRule int

const (
	// DOBOff ignores dates of birth.
	DOBOff DOBRule = iota
	// DOBEqual treats two records with equal, non-empty dates of birth as
	// duplicates regardless of their names.
	DOBEqual
	// DOBWeakName requires equal dates of birth and a name match at the weak threshold.
	DOBWeakName
)

// ParseDOBRule parses "off", "equal" or "weak_name".
func ParseDOBRule(s string) (DOBRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return DOBOff, nil
	case "equal":
		return DOBEqual, nil
	case "weak_name":
		return DOBWeakName, nil
	}
	return DOBOff, fmt.Errorf("unknown dob rule %q", s)
}

func (r DOBRule) String() string {
	switch r {
	case DOBEqual:
		return "equal"
	case DOBWeakName:
		return "weak_name"
	default:
		return "off"
	}
}

// Options configures a clustering pass.
type Options struct {
	IgnoreOrganization bool
	DOB                DOBRule
	Threshold          int // name match threshold, 0 = names.DefaultThreshold
	WeakThreshold      int // threshold for DOBWeakName, 0 = names.WeakThreshold
	Lexicon            *names.Lexicon
}

// Engine clusters role records of one company.
type Engine struct {
	opts    Options
	lex     *names.Lexicon
	matcher *names.Matcher
	weak    *names.Matcher
}

// New returns an Engine for opts.
func New(opts Options) *Engine {
	lex := opts.Lexicon
	if lex == nil {
		lex = names.Default()
	}
	weak := opts.WeakThreshold
	if weak <= 0 {
		weak = names.WeakThreshold
	}
	return &Engine{
		opts:    opts,
		lex:     lex,
		matcher: names.NewMatcher(opts.Threshold),
		weak:    names.NewMatcher(weak),
	}
}

// Cluster partitions records into entities with the given options.
func Cluster(records []RoleRecord, opts Options) []Entity {
	return New(opts).Cluster(records)
}

// member is a clustering input: a raw record or an already merged entity.
type member struct {
	name        string
	occupations Occupations
	dob         string
	aliases     []string
}

// Cluster merges duplicate records. Records with an empty name are dropped,
// and so are organization names when IgnoreOrganization is set. The result
// is sorted by canonical name.
func (e *Engine) Cluster(records []RoleRecord) []Entity {
	ms := make([]member, 0, len(records))
	for _, r := range records {
		ms = append(ms, member{
			name:        r.Name,
			occupations: r.Occupation,
			dob:         r.DateOfBirth,
			aliases:     []string{r.Name},
		})
	}
	return e.cluster(ms)
}

// Union clusters entities from several streams (shareholders, officers,
// founders) into one list, so a person seen as Director and Shareholder
// ends up as a single entity holding both occupations. Entities merged from
// a common raw name always end up together, so every raw name is the alias
// of exactly one entity.
func (e *Engine) Union(streams ...[]Entity) []Entity {
	var ms []member
	for _, s := range streams {
		ms = append(ms, members(s)...)
	}
	return e.cluster(ms)
}

// cluster groups ms by the transitive closure of the duplicate relation and
// merges each group. The pass repeats over the merged entities until no two
// of them are duplicates, so clustering its own output is a no-op.
func (e *Engine) cluster(ms []member) []Entity {
	remaining := make([]member, 0, len(ms))
	for _, m := range ms {
		if strings.TrimSpace(m.name) == "" {
			continue
		}
		if e.opts.IgnoreOrganization && e.lex.IsOrganization(m.name) {
			continue
		}
		remaining = append(remaining, m)
	}

	out := e.pass(remaining)
	for {
		next := e.pass(members(out))
		if len(next) == len(out) {
			break
		}
		out = next
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// pass merges the connected components of the duplicate graph over ms.
// Groups keep the order of their first member.
func (e *Engine) pass(ms []member) []Entity {
	parent := make([]int, len(ms))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i := range ms {
		for j := i + 1; j < len(ms); j++ {
			ri, rj := find(i), find(j)
			if ri != rj && e.duplicate(ms[i], ms[j]) {
				parent[rj] = ri
			}
		}
	}

	var order []int
	groups := make(map[int][]member)
	for i, m := range ms {
		r := find(i)
		if _, ok := groups[r]; !ok {
			order = append(order, r)
		}
		groups[r] = append(groups[r], m)
	}
	out := make([]Entity, 0, len(order))
	for _, r := range order {
		out = append(out, e.merge(groups[r]))
	}
	return out
}

func members(ents []Entity) []member {
	ms := make([]member, len(ents))
	for i, ent := range ents {
		ms[i] = member{
			name:        ent.Name,
			occupations: ent.Occupation,
			dob:         ent.DateOfBirth,
			aliases:     ent.Alias,
		}
	}
	return ms
}

// duplicate reports whether a and b denote the same entity: their names
// match, they were merged from a common raw name, or the DOB rule links them.
func (e *Engine) duplicate(a, b member) bool {
	if e.matcher.Match(strings.ToLower(a.name), strings.ToLower(b.name)) {
		return true
	}
	if sharesAlias(a.aliases, b.aliases) {
		return true
	}
	if a.dob == "" || b.dob == "" || a.dob != b.dob {
		return false
	}
	switch e.opts.DOB {
	case DOBEqual:
		return true
	case DOBWeakName:
		return e.weak.Match(a.name, b.name)
	}
	return false
}

func sharesAlias(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// merge builds one entity from a duplicate group. The longest name wins
// (first seen on ties); the date of birth is the first non-empty one.
func (e *Engine) merge(group []member) Entity {
	var longest, dob string
	occ := make(map[Occupation]bool)
	alias := make(map[string]bool)
	for _, m := range group {
		if utf8.RuneCountInString(m.name) > utf8.RuneCountInString(longest) {
			longest = m.name
		}
		if dob == "" && m.dob != "" {
			dob = m.dob
		}
		for _, o := range m.occupations {
			occ[o] = true
		}
		for _, a := range m.aliases {
			alias[a] = true
		}
	}

	canonical := e.lex.Canonical(longest)
	ent := Entity{
		Name:           canonical,
		ProfileName:    names.ProfileName(canonical),
		DateOfBirth:    dob,
		IsOrganization: e.lex.IsOrganization(canonical),
	}
	for o := range occ {
		ent.Occupation = append(ent.Occupation, o)
	}
	sort.Slice(ent.Occupation, func(i, j int) bool { return ent.Occupation[i] < ent.Occupation[j] })
	for a := range alias {
		ent.Alias = append(ent.Alias, a)
	}
	sort.Strings(ent.Alias)
	return ent
}

// AssignIdentities sets IdentityID on every entity, scoped to companyScopeID.
func AssignIdentities(entities []Entity, companyScopeID string) {
	for i := range entities {
		entities[i].IdentityID = identity.String(entities[i].Name, companyScopeID)
	}
}
