package names

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"abc", "abc", 100},
		{"abcd", "abce", 75},
		{"", "abc", 0},
		{"abc", "xyz", 0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("Ratio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"john smith", "smith john", 100},
		{"john smith", "John  SMITH jr", 100},
		{"john smith", "", 0},
		{"abc", "xyz", 0},
	}
	for _, tt := range tests {
		if got := TokenSetRatio(tt.a, tt.b); got != tt.want {
			t.Errorf("TokenSetRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTokenSortRatio(t *testing.T) {
	if got := TokenSortRatio("Smith John", "john smith"); got != 100 {
		t.Errorf("TokenSortRatio = %d, want 100", got)
	}
}

func TestMatchingScore(t *testing.T) {
	tests := []struct {
		names1, names2 []string
		want           float64
	}{
		{[]string{"Acme Ltd"}, []string{"Other", "Acme Ltd"}, 1},
		{[]string{"abcd"}, []string{"abce"}, 0.75},
		{[]string{"abc"}, nil, 0},
	}
	for _, tt := range tests {
		got := MatchingScore(tt.names1, tt.names2)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("MatchingScore(%v, %v) = %v, want %v", tt.names1, tt.names2, got, tt.want)
		}
	}
}
