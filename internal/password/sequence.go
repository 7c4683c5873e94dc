package password

import "strings"

// sequenceRow is an ordered run of keys; each position holds every character
// produced by that key (both cases, or both shift states).
type sequenceRow []string

func (r sequenceRow) position(c rune) int {
	for i, key := range r {
		if strings.ContainsRune(key, c) {
			return i
		}
	}
	return -1
}

func row(keys ...string) sequenceRow {
	return sequenceRow(keys)
}

func pairedRow(lower, upper string) sequenceRow {
	l, u := []rune(lower), []rune(upper)
	r := make(sequenceRow, len(l))
	for i := range l {
		r[i] = string(l[i]) + string(u[i])
	}
	return r
}

var (
	alphabeticalRows = []sequenceRow{
		pairedRow("abcdefghijklmnopqrstuvwxyz", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"),
	}

	numericalRows = []sequenceRow{
		row("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
	}

	qwertyRows = []sequenceRow{
		pairedRow("`1234567890-=", "~!@#$%^&*()_+"),
		pairedRow(`qwertyuiop[]\`, "QWERTYUIOP{}|"),
		pairedRow("asdfghjkl;'", `ASDFGHJKL:"`),
		pairedRow("zxcvbnm,./", "ZXCVBNM<>?"),
	}

	allRows = concatRows(alphabeticalRows, numericalRows, qwertyRows)
)

func concatRows(groups ...[]sequenceRow) []sequenceRow {
	var out []sequenceRow
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// findRuns returns every maximal ascending or descending run of at least
// minLength characters along any of rows. Runs do not wrap around.
func findRuns(value []rune, rows []sequenceRow, minLength int) []string {
	var out []string
	seen := make(map[string]bool)

	for _, r := range rows {
		var run []rune
		direction := 0
		prev := -1

		flush := func() {
			if len(run) >= minLength {
				s := string(run)
				if !seen[s] {
					seen[s] = true
					out = append(out, s)
				}
			}
		}

		for _, c := range value {
			pos := r.position(c)
			step := pos - prev
			switch {
			case pos < 0:
				flush()
				run, direction = run[:0], 0
			case prev < 0 || (step != 1 && step != -1):
				flush()
				run, direction = append(run[:0], c), 0
			case direction == 0 || direction == step:
				run, direction = append(run, c), step
			default:
				// Direction reversal: the turning character starts the new run.
				flush()
				last := run[len(run)-1]
				run, direction = append(run[:0], last, c), step
			}
			prev = pos
		}
		flush()
	}
	return out
}

// adjacent reports whether a and b are neighbours in any sequence row.
func adjacent(a, b rune) bool {
	for _, r := range allRows {
		pa, pb := r.position(a), r.position(b)
		if pa >= 0 && pb >= 0 && (pa-pb == 1 || pb-pa == 1) {
			return true
		}
	}
	return false
}
