package filing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const isoDate = "2006-01-02"

// ParseDate converts a registry date ("2 January 2006" or "2 Jan 2006") to
// ISO form. An empty input yields an empty result.
func ParseDate(s string) (string, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", nil
	}
	for _, layout := range []string{"2 January 2006", "2 Jan 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate), nil
		}
	}
	return "", fmt.Errorf("parse date %q", s)
}

// ParseBirthMonth converts an officer's partial date of birth ("January 1980")
// to the first day of that month in ISO form.
func ParseBirthMonth(s string) (string, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", nil
	}
	t, err := time.Parse("January 2006", s)
	if err != nil {
		return "", fmt.Errorf("parse date of birth %q: %w", s, err)
	}
	return t.Format(isoDate), nil
}

// CleanInt parses the digits of s, ignoring separators and OCR noise
// ("1,000" -> 1000).
func CleanInt(s string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrBadShareCount, s)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadShareCount, s)
	}
	return n, nil
}
