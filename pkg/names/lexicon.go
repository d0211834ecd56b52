// CLAUDE:SUMMARY Title and organization lexicons, compiled into word-boundary regexps, with optional YAML overrides.
package names

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Titles are honorifics removed from person names.
var Titles = []string{
	"ADM", "AMB", "AYATOLLAH", "BARON", "BARONESS", "BROTHER", "CAPT", "CMDR", "COL",
	"COUNTESS", "DR", "DUCHESS", "DUKE", "EARL", "FATHER", "FR", "KING", "LADY", "LORD",
	"LT", "MAJ", "MISS", "MOTHER", "MR", "MRS", "MS", "PHD", "PRESIDENT", "PRIME MINISTER",
	"PRINCE", "PRINCESS", "PROF", "PVT", "QUEEN", "RABBI", "REV", "SGT", "SHEIKH", "SIR",
	"SISTER", "SULTAN", "VISCOUNT", "VISCOUNTESS",
}

// OrganizationShortcuts are legal-form abbreviations.
var OrganizationShortcuts = []string{
	"A/S", "AB", "ADV", "AG", "AS", "ASBL", "BV", "BVBA", "BT", "CO", "CO.", "EIS", "EIRL",
	"EARL", "EI", "ETI", "EURL", "EV", "GAEC", "GCS", "GIE", "GMBH", "Gbr", "INC", "INC.",
	"KG", "KGaA", "KK", "Kd", "Kft", "Kkt", "LDA", "LLC", "LLLP", "LLP", "LP", "LTD", "M.B.",
	"ME", "NV", "Nyrt", "OG", "OOO", "PLC", "PT", "PTE", "PTE LTD", "PTY", "PVT", "PartG",
	"QSC", "Rt", "SCI", "SPA", "SA", "SAOC", "SAOG", "SAPA", "SARL", "SAS", "SASU", "SC",
	"SCA", "SCM", "SCP", "SRL", "SCRL", "SCS", "SCSP", "SDN", "SE", "SELARL", "SERL", "SL",
	"SLL", "SLNE", "SLU", "SNC", "SP.ZO.O", "SPRL", "SRO", "STH", "UA", "ULC", "VOF", "VAG",
	"VC", "VCC", "VCT", "VZW", "Zrt", "eG", "eU", "mbH", "АО", "ООО",
}

// OrganizationWords is corporate vocabulary that marks a name as an organization.
var OrganizationWords = []string{
	"&", "ACTIVITY", "ADVISORY", "ALPHA", "ASSOCIATE", "ASSOCIATES", "ASSOCIATI", "CAPITAL",
	"CAPITALS", "COMPANY", "COMPANIES", "CONSULTANCY", "COLLEGE", "COLLEGES", "COFUND", "CORP",
	"CORPS", "CORPORATION", "CORPORATIONS", "COUNCIL", "COUNCILS", "DIVERSIFIED", "ENTREPRENEUR",
	"ENTREPRENEURS", "EQUITY", "EQUITIES", "FACTORY", "FIRST", "FACTORIES", "FOUNDER", "FOUNDERS",
	"FOUNDATION", "FOUNDATIONS", "FUND", "FUNDS", "FUNDING", "GROUP", "GROUPS", "GROWTH",
	"HARDWARE", "HOLDING", "HOLDINGS", "INNOVATION", "INFORMATION", "INVEST", "INVESTMENT",
	"INVESTMENTS", "LAB", "LABS", "LEADERSHIP", "LIMITED", "MANAGEMENT", "NOMINEE", "NOMINEES",
	"OPPORTUNITY", "OPPORTUNITIES", "ORGANICZONA", "PARTNER", "PARTNERS", "PARTNERSHIP",
	"SCIENCE", "SCIENCES", "SCHOOL", "SHARES", "SOLUTION", "SOFTWARE", "SOLUTIONS", "STARTUP",
	"STRATEGIES", "STRATEGY", "SUPPORT", "TECHNOLOGY", "TECHNOLOGIES", "TRADING", "TRUST",
	"TRUSTEE", "TRUSTEES", "UNIVERSITY", "UNIVERSITIES", "VENTURE", "VENTURES",
}

// orgPunct is stripped from names (and lexicon entries) before organization matching.
var orgPunct = strings.NewReplacer(",", "", ".", "", "/", "", `\`, "", "|", "")

// Lexicon holds the compiled title and organization matchers.
type Lexicon struct {
	titles []string
	orgs   []string

	titleRe *regexp.Regexp
	orgRe   *regexp.Regexp
}

// LexiconFile is the YAML layout of a lexicon override file. Entries are
// appended to the built-in lists unless Replace is set.
type LexiconFile struct {
	Replace               bool     `yaml:"replace"`
	Titles                []string `yaml:"titles"`
	OrganizationShortcuts []string `yaml:"organization_shortcuts"`
	OrganizationWords     []string `yaml:"organization_words"`
}

var defaultLexicon = NewLexicon(Titles, append(append([]string{}, OrganizationShortcuts...), OrganizationWords...))

// Default returns the built-in lexicon.
func Default() *Lexicon { return defaultLexicon }

// NewLexicon compiles a lexicon from title and organization term lists.
func NewLexicon(titles, orgs []string) *Lexicon {
	l := &Lexicon{titles: dedupe(titles)}
	for _, o := range orgs {
		if s := orgPunct.Replace(o); s != "" {
			l.orgs = append(l.orgs, s)
		}
	}
	l.orgs = dedupe(l.orgs)
	l.titleRe = boundaryRegexp(l.titles)
	l.orgRe = boundaryRegexp(l.orgs)
	return l
}

// LoadLexicon reads a YAML override file and merges it with the built-in lists.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	var f LexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	var titles, orgs []string
	if !f.Replace {
		titles = append(titles, Titles...)
		orgs = append(orgs, OrganizationShortcuts...)
		orgs = append(orgs, OrganizationWords...)
	}
	titles = append(titles, f.Titles...)
	orgs = append(orgs, f.OrganizationShortcuts...)
	orgs = append(orgs, f.OrganizationWords...)
	if len(titles) == 0 || len(orgs) == 0 {
		return nil, fmt.Errorf("lexicon %s: empty title or organization list", path)
	}
	return NewLexicon(titles, orgs), nil
}

// TermCount returns the number of title and organization terms.
func (l *Lexicon) TermCount() (titles, orgs int) {
	return len(l.titles), len(l.orgs)
}

// boundaryRegexp builds a case-insensitive alternation whose terms must be
// delimited by a non-word rune or a string edge. The delimiters are captured
// so that replacements can keep them.
func boundaryRegexp(terms []string) *regexp.Regexp {
	sorted := append([]string(nil), terms...)
	// Longer terms first so "PRIME MINISTER" wins over shorter overlaps.
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, t := range sorted {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])(?:` + strings.Join(quoted, "|") + `)([^\p{L}\p{N}_]|$)`)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := strings.ToUpper(strings.TrimSpace(s))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
