// CLAUDE:SUMMARY Name normalization: title removal, organization detection, canonical and profile names, accent folding.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// IsOrganization reports whether name contains an organization term from the
// default lexicon as an isolated token.
func IsOrganization(name string) bool { return defaultLexicon.IsOrganization(name) }

// RemoveTitles strips honorifics using the default lexicon.
func RemoveTitles(name string) string { return defaultLexicon.RemoveTitles(name) }

// Canonical returns the canonical display form of a raw name using the default lexicon.
func Canonical(raw string) string { return defaultLexicon.Canonical(raw) }

// IsOrganization reports whether name contains an organization term. The
// name is stripped of , . / \ | before matching, so "Acme Ltd." and
// "A/S Foo" both classify.
func (l *Lexicon) IsOrganization(name string) bool {
	s := orgPunct.Replace(name)
	if strings.TrimSpace(s) == "" {
		return false
	}
	return l.orgRe.MatchString(s)
}

// RemoveTitles replaces periods with spaces, removes title tokens and
// collapses whitespace. A name made only of titles becomes "".
func (l *Lexicon) RemoveTitles(name string) string {
	s := strings.TrimSpace(strings.ReplaceAll(name, ".", " "))
	for {
		next := l.titleRe.ReplaceAllString(s, "${1}${2}")
		if next == s {
			break
		}
		s = next
	}
	return strings.Join(strings.Fields(s), " ")
}

// Canonical turns the longest raw name of a cluster into its display form:
// hyphens become spaces, person names lose their titles, the result is
// title-cased. Organization names keep every token.
func (l *Lexicon) Canonical(raw string) string {
	s := strings.ReplaceAll(raw, "-", " ")
	if !l.IsOrganization(s) {
		if stripped := l.RemoveTitles(s); stripped != "" {
			s = stripped
		}
	}
	return TitleCase(strings.Join(strings.Fields(s), " "))
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// ProfileName returns the first and last token of name, the key used when
// searching the profile source.
func ProfileName(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[0] + " " + parts[len(parts)-1]
	}
}

// AlignedName reorders a registry-style "Surname, Given Names" into reading order.
func AlignedName(name string) string {
	parts := strings.Split(name, ",")
	out := make([]string, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Fold lowercases and strips accents (e.g. "Élodie" -> "elodie").
func Fold(s string) string {
	result, _, _ := transform.String(stripAccents, strings.ToLower(s))
	return result
}

// MinCase keeps leading words of s until the result is at least n runes long.
// Short organization names ("AB Foo Bar") stay specific enough to search for.
func MinCase(s string, n int) string {
	words := strings.Fields(s)
	var b strings.Builder
	for _, w := range words {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		if len([]rune(b.String())) >= n {
			break
		}
	}
	return b.String()
}
