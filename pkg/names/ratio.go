package names

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Ratio returns the normalized indel similarity of a and b on a 0-100 scale:
// 100 * 2*LCS / (len(a)+len(b)), rounded. Either side empty scores 0.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(2*lcs(ra, rb)) / float64(total)))
}

// TokenSetRatio compares the token sets of a and b: the shared tokens are
// compared against each side's shared+remaining tokens and the best score
// wins. Word order and repeated words do not matter.
func TokenSetRatio(a, b string) int {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var inter, onlyA, onlyB []string
	for t := range ta {
		if tb[t] {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if !ta[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	return max(Ratio(sect, combinedA), Ratio(sect, combinedB), Ratio(combinedA, combinedB))
}

// TokenSortRatio compares a and b after sorting their tokens.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// Similarity is the edit-distance similarity of a and b in [0, 1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	n := max(len([]rune(a)), len([]rune(b)))
	if n == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(n)
}

// MatchingScore scores two name lists against each other: 1 when they share
// a name exactly, otherwise the best pairwise Similarity after folding.
func MatchingScore(names1, names2 []string) float64 {
	set := make(map[string]bool, len(names2))
	for _, n := range names2 {
		set[n] = true
	}
	for _, n := range names1 {
		if set[n] {
			return 1
		}
	}

	best := 0.0
	for _, a := range names1 {
		for _, b := range names2 {
			if s := Similarity(Fold(a), Fold(b)); s > best {
				best = s
			}
		}
	}
	return best
}

// process lowercases s and replaces every rune that is not a letter or a
// digit with a space.
func process(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(process(s)) {
		set[t] = true
	}
	return set
}

func sortedTokens(s string) string {
	toks := strings.Fields(process(s))
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// lcs returns the length of the longest common subsequence of a and b.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
