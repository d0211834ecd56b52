// CLAUDE:SUMMARY Shareholder extraction for confirmation statements and annual returns (shares line + name lookahead).
package filing

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/companygraph/pkg/names"
)

// LookaheadLines bounds the search for a shareholder's name after its shares line.
const LookaheadLines = 10

// minShareholderLines is the size below which a confirmation statement's
// shareholder section is considered empty (heading and boilerplate only).
const minShareholderLines = 5

// Shareholder is one holding listed under FULL DETAILS OF SHAREHOLDERS.
type Shareholder struct {
	Name           string `json:"name"`
	ShareType      string `json:"share_type"`
	Shares         int    `json:"shares"`
	IsOrganization bool   `json:"is_organization"`
	NameOriginal   string `json:"name_original,omitempty"`
	IdentityID     string `json:"identity_id,omitempty"`
}

// Filing is the typed extraction result of one document.
type Filing interface {
	Kind() Kind
}

// ConfirmationStatement is the extraction result of a confirmation statement.
type ConfirmationStatement struct {
	Sections     Sections      `json:"-"`
	Shareholders []Shareholder `json:"shareholders"`
}

func (*ConfirmationStatement) Kind() Kind { return ConfirmationStatementKind }

// AnnualReturn is the extraction result of an annual return.
type AnnualReturn struct {
	Sections     Sections      `json:"-"`
	Shareholders []Shareholder `json:"shareholders"`
}

func (*AnnualReturn) Kind() Kind { return AnnualReturnKind }

// ParseConfirmationStatement extracts shareholders from a confirmation
// statement with the default lexicon.
func ParseConfirmationStatement(pages [][]string) (*ConfirmationStatement, error) {
	return Extractor{}.ConfirmationStatement(pages)
}

// ConfirmationStatement extracts shareholders from a confirmation statement.
func (x Extractor) ConfirmationStatement(pages [][]string) (*ConfirmationStatement, error) {
	secs := Segment(ConfirmationStatementKind, pages)
	out := &ConfirmationStatement{Sections: secs, Shareholders: []Shareholder{}}

	sec := secs.Get(SectionShareholders)
	if len(sec.Lines) <= minShareholderLines {
		return out, nil
	}
	holders, err := parseShareholders(x.lexicon(), ConfirmationStatementKind, sec.Lines, "shares held as at the date")
	if err != nil {
		return nil, err
	}
	out.Shareholders = holders
	return out, nil
}

// ParseAnnualReturn extracts shareholders from an annual return with the
// default lexicon.
func ParseAnnualReturn(pages [][]string) (*AnnualReturn, error) {
	return Extractor{}.AnnualReturn(pages)
}

// AnnualReturn extracts shareholders from an annual return.
func (x Extractor) AnnualReturn(pages [][]string) (*AnnualReturn, error) {
	secs := Segment(AnnualReturnKind, pages)
	holders, err := parseShareholders(x.lexicon(), AnnualReturnKind, secs.Get(SectionShareholders).Lines, "shares held as at")
	if err != nil {
		return nil, err
	}
	return &AnnualReturn{Sections: secs, Shareholders: holders}, nil
}

// shareCount matches the first number of a shares line, thousands separators included.
var shareCount = regexp.MustCompile(`\d[\d,]*`)

func parseShareholders(lex *names.Lexicon, kind Kind, lines []Line, marker string) ([]Shareholder, error) {
	out := []Shareholder{}
	for i, ln := range lines {
		text := afterLabel(ln.Text)
		at := indexFold(text, marker)
		if at < 0 {
			continue
		}
		text = strings.TrimSpace(text[:at])

		loc := shareCount.FindStringIndex(text)
		if loc == nil {
			return nil, &ParseError{Kind: kind, Page: ln.Page, Line: ln.Text, Err: ErrNoShareCount}
		}
		shares, err := CleanInt(text[loc[0]:loc[1]])
		if err != nil {
			return nil, &ParseError{Kind: kind, Page: ln.Page, Line: ln.Text, Err: err}
		}
		shareType := strings.TrimSpace(text[loc[1]:])

		raw := lookupName(lines, i)
		if raw == "" {
			return nil, &ParseError{Kind: kind, Page: ln.Page, Line: ln.Text, Err: ErrShareholderNotFound}
		}
		out = append(out, Shareholder{
			Name:           lex.RemoveTitles(raw),
			ShareType:      shareType,
			Shares:         shares,
			IsOrganization: lex.IsOrganization(raw),
		})
	}
	return out, nil
}

// lookupName scans the lines after lines[i] for one starting with "name" and
// returns the text after its label.
func lookupName(lines []Line, i int) string {
	for j := 1; j <= LookaheadLines && i+j < len(lines); j++ {
		next := strings.TrimSpace(lines[i+j].Text)
		if strings.HasPrefix(strings.ToLower(next), "name") {
			return strings.TrimSpace(afterLabel(next))
		}
	}
	return ""
}

// afterLabel drops a leading "Label:" from an OCR line. OCR often reads ':'
// as ';', so the cut is after the later of the first ':' and the first ';'.
func afterLabel(line string) string {
	i := max(strings.Index(line, ":"), strings.Index(line, ";"))
	if i < 0 {
		return line
	}
	return line[i+1:]
}

// indexFold is strings.Index with ASCII case folding; sub must be ASCII.
func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
