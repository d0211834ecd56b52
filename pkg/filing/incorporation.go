// CLAUDE:SUMMARY Incorporation document parser: INITIAL SHAREHOLDINGS keyed-line splitting with per-field numeric leniency.
package filing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hazyhaar/companygraph/pkg/names"
)

// electronicMarker must appear within the first electronicPages pages of an
// incorporation document for its text to be trusted.
const (
	electronicMarker = "electronically filed document"
	electronicPages  = 3
)

// initialKeys are the field labels of an INITIAL SHAREHOLDINGS block.
var initialKeys = []string{
	"name", "address", "class of share", "number of shares",
	"currency", "amount unpaid", "amount paid", "nominal value of",
}

// specialChars are OCR artefacts replaced by spaces in field values.
var specialChars = strings.NewReplacer(
	"_", " ", "—", " ", `"`, " ", "?", " ", "#", " ", "¬", " ", "|", " ", ":", " ",
	";", " ", ",", " ", "=", " ", "!", " ", "%", " ", "$", " ", "£", " ", "*", " ", "&", " ",
)

// InitialShareholder is a subscriber listed in an incorporation document.
type InitialShareholder struct {
	Name           string   `json:"name"`
	Address        []string `json:"address,omitempty"`
	ShareType      string   `json:"share_type,omitempty"`
	Shares         *int     `json:"shares,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	AmountPaid     *float64 `json:"amount_paid"`
	AmountUnpaid   *float64 `json:"amount_unpaid"`
	NominalValue   *float64 `json:"nominal_value"`
	IsOrganization bool     `json:"is_organization"`
	NameOriginal   string   `json:"name_original,omitempty"`
	IdentityID     string   `json:"identity_id,omitempty"`
}

func (s *InitialShareholder) empty() bool {
	return s.Name == "" && len(s.Address) == 0 && s.ShareType == "" && s.Shares == nil &&
		s.Currency == "" && s.AmountPaid == nil && s.AmountUnpaid == nil && s.NominalValue == nil
}

// Incorporation is the extraction result of an incorporation document.
type Incorporation struct {
	Sections     Sections             `json:"-"`
	Shareholders []InitialShareholder `json:"shareholders"`
}

func (*Incorporation) Kind() Kind { return IncorporationKind }

// ParseIncorporation is Extractor.Incorporation with the default lexicon.
func ParseIncorporation(pages [][]string) (*Incorporation, error) {
	return Extractor{}.Incorporation(pages)
}

// Incorporation extracts the initial shareholdings of an incorporation
// document. Documents without the electronic filing marker in their first
// pages return ErrNotReadable.
func (x Extractor) Incorporation(pages [][]string) (*Incorporation, error) {
	if !isElectronic(pages) {
		return nil, ErrNotReadable
	}
	secs := Segment(IncorporationKind, pages)
	holders, err := parseInitialShareholdings(x.lexicon(), secs.Get(SectionInitialShareholding).Lines)
	if err != nil {
		return nil, err
	}
	return &Incorporation{Sections: secs, Shareholders: holders}, nil
}

func isElectronic(pages [][]string) bool {
	for p := 0; p < len(pages) && p < electronicPages; p++ {
		for _, line := range pages[p] {
			if strings.Contains(strings.ToLower(line), electronicMarker) {
				return true
			}
		}
	}
	return false
}

func parseInitialShareholdings(lex *names.Lexicon, lines []Line) ([]InitialShareholder, error) {
	out := []InitialShareholder{}
	keys := initialKeys
	cur := &InitialShareholder{}
	addressStarted := false
	prev := ""

	flush := func() {
		if !cur.empty() {
			out = append(out, *cur)
		}
		cur = &InitialShareholder{}
		addressStarted = false
	}

	for i := 0; i < len(lines); i++ {
		ln := lines[i]
		lower := strings.ToLower(ln.Text)
		if strings.Contains(lower, "name") {
			keys = initialKeys
			flush()
		}

		var fields map[string]string
		fields, keys = splitKeyed(lower, keys)
		rest, hasRest := fields[""]
		delete(fields, "")

		addr, hasAddr := fields["address"]
		switch {
		case hasAddr:
			addressStarted = true
			cur.Address = []string{}
			if addr != "" {
				cur.Address = append(cur.Address, addr)
			}
			delete(fields, "address")
		case hasRest && cur.Address != nil:
			add := replaceFold(rest, "each share", "")
			if !strings.HasPrefix(strings.ToLower(add), "electronically") {
				if add = clean(add); add != "" {
					cur.Address = append(cur.Address, add)
				}
			}
		case !hasRest:
			if v, ok := fields["nominal_value_of"]; ok && v == "" && i+1 < len(lines) {
				i++
				fields["nominal_value_of"] = lines[i].Text
				if err := cur.apply(fields, ln); err != nil {
					return nil, err
				}
				continue
			}
		}

		if hasRest && len(fields) == 0 && !addressStarted && strings.Contains(prev, "name") && cur.Name != "" {
			cur.Name += " " + rest
		}
		if err := cur.apply(fields, ln); err != nil {
			return nil, err
		}
		prev = lower
	}
	flush()

	for i := range out {
		raw := strings.TrimSpace(out[i].Name)
		out[i].Name = lex.RemoveTitles(raw)
		out[i].IsOrganization = lex.IsOrganization(raw)
	}
	return out, nil
}

// apply stores parsed field values. The share count is strict; monetary
// fields degrade to nil when they do not parse.
func (s *InitialShareholder) apply(fields map[string]string, ln Line) error {
	for k, v := range fields {
		switch k {
		case "name":
			s.Name = v
		case "address":
			s.Address = []string{v}
		case "class_of_share":
			s.ShareType = v
		case "number_of_shares":
			n, err := strconv.Atoi(strings.NewReplacer(",", "", " ", "").Replace(v))
			if err != nil {
				return &ParseError{Kind: IncorporationKind, Page: ln.Page, Line: ln.Text, Err: ErrBadShareCount}
			}
			s.Shares = &n
		case "currency":
			s.Currency = v
		case "amount_paid":
			s.AmountPaid = parseAmount(v)
		case "amount_unpaid":
			s.AmountUnpaid = parseAmount(v)
		case "nominal_value_of":
			s.NominalValue = parseAmount(v)
		}
	}
	return nil
}

func parseAmount(v string) *float64 {
	v = strings.ToLower(clean(v))
	v = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(v, "each", ""), "share", ""))
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// splitKeyed splits one lower-cased line into key/value spans. Keys are
// located by their first occurrence and consumed from the rightmost one, so
// a value never swallows the label that follows it. Text left before the
// first key is returned under "". Keys found here are removed from the
// returned key list.
func splitKeyed(line string, keys []string) (map[string]string, []string) {
	type hit struct {
		at  int
		key string
	}
	var hits []hit
	var remain []string
	for _, k := range keys {
		if at := strings.Index(line, k); at >= 0 {
			hits = append(hits, hit{at, k})
		} else {
			remain = append(remain, k)
		}
	}
	if len(hits) == 0 {
		return map[string]string{"": strings.ToUpper(clean(line))}, keys
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].at != hits[j].at {
			return hits[i].at > hits[j].at
		}
		return hits[i].key > hits[j].key
	})

	out := make(map[string]string, len(hits)+1)
	l := line
	for _, h := range hits {
		var v string
		if end := h.at + len(h.key); end <= len(l) {
			v = l[end:]
		}
		if h.at <= len(l) {
			l = l[:h.at]
		}
		out[strings.ReplaceAll(h.key, " ", "_")] = strings.ToUpper(clean(v))
	}
	if l = clean(l); l != "" {
		out[""] = strings.ToUpper(l)
	}
	return out, remain
}

func clean(s string) string {
	return strings.Join(strings.Fields(specialChars.Replace(s)), " ")
}

// replaceFold replaces every ASCII case-insensitive occurrence of old in s.
func replaceFold(s, old, repl string) string {
	for {
		at := indexFold(s, old)
		if at < 0 {
			return s
		}
		s = s[:at] + repl + s[at+len(old):]
	}
}
