// Package filing turns the OCR text of registry filings into typed
// shareholder records.
//
// Three document kinds are understood: confirmation statements, annual
// returns and incorporation documents. Each is segmented into named sections
// by a forward-only heading state machine, then the shareholder section is
// parsed with kind-specific rules.
package filing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/companygraph/pkg/names"
)

// Kind identifies a filing document type.
type Kind string

const (
	ConfirmationStatementKind Kind = "confirmation_statement"
	AnnualReturnKind          Kind = "annual_return"
	IncorporationKind         Kind = "incorporation"
)

// ParseKind maps a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case ConfirmationStatementKind, AnnualReturnKind, IncorporationKind:
		return k, nil
	}
	return "", fmt.Errorf("unknown filing kind %q", s)
}

// Document is the raw OCR output of one filing: one slice of lines per page.
type Document struct {
	Kind         Kind       `json:"kind"`
	ReceivedDate string     `json:"received_date"`
	FilingDate   string     `json:"filing_date"`
	Pages        [][]string `json:"pages"`
}

// CodedError is a source-level failure with a stable numeric code.
type CodedError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CodedError) Error() string { return fmt.Sprintf("%d: %s", e.Code, e.Message) }

var (
	// ErrNotReadable means the document carries no electronic text layer marker.
	ErrNotReadable = &CodedError{Code: 100, Message: "Document electronically not readable"}
	// ErrCompanyNotFound means the registry has no such company.
	ErrCompanyNotFound = &CodedError{Code: 110, Message: "Company not found"}
)

var (
	ErrShareholderNotFound = errors.New("shareholder not found")
	ErrNoShareCount        = errors.New("no share count")
	ErrBadShareCount       = errors.New("number of shares is not numeric")
)

// ParseError locates a fatal extraction failure within a filing.
type ParseError struct {
	Kind Kind
	Page int
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s page %d: %v (line %q)", e.Kind, e.Page, e.Err, e.Line)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor parses filings, classifying and cleaning names with Lexicon.
// The zero value uses names.Default.
type Extractor struct {
	Lexicon *names.Lexicon
}

func (x Extractor) lexicon() *names.Lexicon {
	if x.Lexicon == nil {
		return names.Default()
	}
	return x.Lexicon
}

// Extract dispatches doc to the default Extractor.
func Extract(doc Document) (Filing, error) {
	return Extractor{}.Extract(doc)
}

// Extract dispatches doc to the parser for its kind.
func (x Extractor) Extract(doc Document) (Filing, error) {
	switch doc.Kind {
	case ConfirmationStatementKind:
		return x.ConfirmationStatement(doc.Pages)
	case AnnualReturnKind:
		return x.AnnualReturn(doc.Pages)
	case IncorporationKind:
		return x.Incorporation(doc.Pages)
	}
	return nil, fmt.Errorf("extract: unknown filing kind %q", doc.Kind)
}
