package password

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindRuns(t *testing.T) {
	tests := []struct {
		name  string
		value string
		rows  []sequenceRow
		want  []string
	}{
		{"ascending", "xabcdefx", alphabeticalRows, []string{"abcdef"}},
		{"descending", "zyxwv1", alphabeticalRows, []string{"zyxwv"}},
		{"mixed case", "aBcDe", alphabeticalRows, []string{"aBcDe"}},
		{"too short", "abcd", alphabeticalRows, nil},
		{"no wrap", "xyzab", alphabeticalRows, nil},
		{"reversal", "abcdedcba", alphabeticalRows, []string{"abcde", "edcba"}},
		{"numerical", "98765", numericalRows, []string{"98765"}},
		{"shifted qwerty", "!@#$%", qwertyRows, []string{"!@#$%"}},
		{"qwerty row", "zxcvb", qwertyRows, []string{"zxcvb"}},
		{"duplicates", "abcde-abcde", alphabeticalRows, []string{"abcde"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findRuns([]rune(tt.value), tt.rows, 5)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("findRuns(%q) mismatch (-want +got):\n%s", tt.value, diff)
			}
		})
	}
}

func TestAdjacent(t *testing.T) {
	tests := []struct {
		a, b rune
		want bool
	}{
		{'a', 'b', true},
		{'B', 'a', true},
		{'1', '2', true},
		{'q', 'w', true},
		{'!', '@', true},
		{'a', 'c', false},
		{'a', 'a', false},
		{'#', '0', false},
	}
	for _, tt := range tests {
		if got := adjacent(tt.a, tt.b); got != tt.want {
			t.Errorf("adjacent(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
