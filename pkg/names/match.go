// CLAUDE:SUMMARY Name matcher: exact single tokens, initials-aware pairs, fuzzy 2-token combinations over token-set ratio.
package names

import "strings"

// Default similarity thresholds on the 0-100 token-set scale.
const (
	DefaultThreshold = 80
	WeakThreshold    = 55
)

// Matcher decides whether two names denote the same entity.
type Matcher struct {
	Threshold int
}

// NewMatcher returns a Matcher with the given threshold (DefaultThreshold if <= 0).
func NewMatcher(threshold int) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Match reports whether a and b denote the same entity at the default threshold.
func Match(a, b string) bool {
	return NewMatcher(DefaultThreshold).Match(a, b)
}

// Match compares two names. Empty names never match. The comparison is
// symmetric: Match(a, b) == Match(b, a).
func (m *Matcher) Match(a, b string) bool {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	if equalTokens(ta, tb) {
		return true
	}

	if len(ta) == 1 && len(tb) == 1 {
		return ta[0] == tb[0]
	}

	initialsA, initialsB := isInitialsPair(ta), isInitialsPair(tb)
	if initialsA || initialsB {
		return (initialsA && matchInitials(ta, tb)) || (initialsB && matchInitials(tb, ta))
	}

	threshold := m.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	for _, ca := range pairs(ta) {
		for _, cb := range pairs(tb) {
			if TokenSetRatio(ca, cb) >= threshold {
				return true
			}
		}
	}
	return false
}

// MatchAligned compares names after reordering "Surname, Given" forms and
// folding accents. Profile search results are compared this way: both sides
// are expected to start with the given name.
func MatchAligned(a, b string, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	fa, fb := Fold(AlignedName(a)), Fold(AlignedName(b))
	if strings.TrimSpace(fa) == "" || strings.TrimSpace(fb) == "" {
		return false
	}
	return TokenSortRatio(fa, fb) >= threshold
}

// tokens lowercases name, splits on whitespace and commas, and trims periods
// from each token ("J." -> "j").
func tokens(name string) []string {
	fields := strings.Fields(strings.ReplaceAll(strings.ToLower(name), ",", " "))
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "."); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isInitialsPair reports whether toks is a two-token name with an initial.
func isInitialsPair(toks []string) bool {
	return len(toks) == 2 && (runeLen(toks[0]) == 1 || runeLen(toks[1]) == 1)
}

// matchInitials reports whether the initials pair equals some 2-combination
// of other, where an initial also stands for any token it begins.
func matchInitials(pair, other []string) bool {
	for i := 0; i < len(other); i++ {
		for j := i + 1; j < len(other); j++ {
			x, y := other[i], other[j]
			if (tokenEq(pair[0], x) && tokenEq(pair[1], y)) || (tokenEq(pair[0], y) && tokenEq(pair[1], x)) {
				return true
			}
		}
	}
	return false
}

func tokenEq(a, b string) bool {
	if a == b {
		return true
	}
	if runeLen(a) == 1 {
		return strings.HasPrefix(b, a)
	}
	if runeLen(b) == 1 {
		return strings.HasPrefix(a, b)
	}
	return false
}

// pairs returns every unordered 2-combination of the multi-character tokens
// of toks, joined by a space.
func pairs(toks []string) []string {
	kept := make([]string, 0, len(toks))
	for _, t := range toks {
		if runeLen(t) > 1 {
			kept = append(kept, t)
		}
	}
	var out []string
	for i := 0; i < len(kept); i++ {
		for j := i + 1; j < len(kept); j++ {
			out = append(out, kept[i]+" "+kept[j])
		}
	}
	return out
}

func runeLen(s string) int { return len([]rune(s)) }
