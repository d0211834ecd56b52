package filing

import "strings"

// Section names.
const (
	SectionCompanyInformation  = "COMPANY INFORMATION"
	SectionOfficers            = "OFFICERS OF THE COMPANY"
	SectionShareCapital        = "STATEMENT OF CAPITAL (SHARE CAPITAL)"
	SectionCapitalTotals       = "STATEMENT OF CAPITAL (TOTALS)"
	SectionShareholders        = "FULL DETAILS OF SHAREHOLDERS"
	SectionPSC                 = "PERSON WITH SIGNIFICANT CONTROL (PSC)"
	SectionConfirmation        = "CONFIRMATION STATEMENT"
	SectionAuthorisation       = "AUTHORISATION"
	SectionInitialShareholding = "INITIAL SHAREHOLDINGS"
)

// Line is one OCR line and the 1-based page it was read from.
type Line struct {
	Text string
	Page int
}

// Section is a named run of consecutive lines. The heading line that opened
// it is its first line.
type Section struct {
	Name  string
	Lines []Line
}

// Sections are the sections of one document in heading order.
type Sections []Section

// Get returns the named section, or nil.
func (s Sections) Get(name string) *Section {
	for i := range s {
		if s[i].Name == name {
			return &s[i]
		}
	}
	return nil
}

type heading struct {
	section string
	marker  string
	// prefix requires the line to start with marker instead of containing it.
	prefix bool
	// exactCase disables case folding for prefix headings.
	exactCase bool
}

func (h heading) matches(line string) bool {
	switch {
	case h.prefix && h.exactCase:
		return strings.HasPrefix(line, h.marker)
	case h.prefix:
		return strings.HasPrefix(strings.ToLower(line), strings.ToLower(h.marker))
	default:
		return strings.Contains(strings.ToLower(line), strings.ToLower(h.marker))
	}
}

// layout is the heading state machine of one document kind.
type layout struct {
	headings []heading
	// stops end the scan when seen inside the last section.
	stops []string
}

var layouts = map[Kind]layout{
	ConfirmationStatementKind: {headings: []heading{
		{section: SectionShareCapital, marker: SectionShareCapital},
		{section: SectionCapitalTotals, marker: SectionCapitalTotals},
		{section: SectionShareholders, marker: SectionShareholders},
		{section: SectionPSC, marker: SectionPSC},
		{section: SectionConfirmation, marker: "Confirmation Statement", prefix: true, exactCase: true},
		{section: SectionAuthorisation, marker: "Authorisation", prefix: true, exactCase: true},
	}},
	AnnualReturnKind: {headings: []heading{
		{section: SectionOfficers, marker: SectionOfficers},
		{section: SectionShareCapital, marker: SectionShareCapital},
		{section: SectionCapitalTotals, marker: SectionCapitalTotals},
		{section: SectionShareholders, marker: SectionShareholders},
		{section: SectionAuthorisation, marker: "authorisation", prefix: true},
	}},
	IncorporationKind: {
		headings: []heading{
			{section: SectionInitialShareholding, marker: SectionInitialShareholding},
		},
		stops: []string{
			"PROPOSED OFFICERS",
			"STATEMENT OF CAPITAL",
			"PERSONS WITH SIGNIFICANT CONTROL",
			"INDIVIDUAL PERSON WITH SIGNIFICANT CONTROL",
			"STATEMENT OF COMPLIANCE",
		},
	},
}

// Segment splits the pages of a document of the given kind into sections.
// The state starts at COMPANY INFORMATION and only moves forward: a heading
// earlier than the current section is treated as an ordinary line.
func Segment(kind Kind, pages [][]string) Sections {
	lay := layouts[kind]
	secs := make(Sections, 0, len(lay.headings)+1)
	secs = append(secs, Section{Name: SectionCompanyInformation})
	for _, h := range lay.headings {
		secs = append(secs, Section{Name: h.section})
	}

	cur := 0
	last := len(secs) - 1
	for p, page := range pages {
		for _, text := range page {
			for i := cur; i < len(lay.headings); i++ {
				if lay.headings[i].matches(text) {
					cur = i + 1
					break
				}
			}
			if cur == last && len(lay.stops) > 0 && containsAnyFold(text, lay.stops) {
				return secs
			}
			secs[cur].Lines = append(secs[cur].Lines, Line{Text: text, Page: p + 1})
		}
	}
	return secs
}

func containsAnyFold(s string, subs []string) bool {
	l := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(l, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
