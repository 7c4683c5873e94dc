package password

import (
	"fmt"
	"strings"
	"unicode"
)

// Failure codes.
const (
	CodeTooShort                    = "TOO_SHORT"
	CodeInsufficientUppercase       = "INSUFFICIENT_UPPERCASE"
	CodeInsufficientLowercase       = "INSUFFICIENT_LOWERCASE"
	CodeInsufficientDigit           = "INSUFFICIENT_DIGIT"
	CodeInsufficientSpecial         = "INSUFFICIENT_SPECIAL"
	CodeInsufficientCharacteristics = "INSUFFICIENT_CHARACTERISTICS"
	CodeIllegalWhitespace           = "ILLEGAL_WHITESPACE"
	CodeIllegalAlphabetical         = "ILLEGAL_ALPHABETICAL_SEQUENCE"
	CodeIllegalNumerical            = "ILLEGAL_NUMERICAL_SEQUENCE"
	CodeIllegalQwerty               = "ILLEGAL_QWERTY_SEQUENCE"
)

// SpecialCharacters is the special character class.
const SpecialCharacters = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// characterClass is one of the four characteristics.
type characterClass struct {
	code       string
	label      string
	characters string
}

var (
	upperCase = characterClass{CodeInsufficientUppercase, "uppercase", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"}
	lowerCase = characterClass{CodeInsufficientLowercase, "lowercase", "abcdefghijklmnopqrstuvwxyz"}
	digits    = characterClass{CodeInsufficientDigit, "digit", "0123456789"}
	special   = characterClass{CodeInsufficientSpecial, "special", SpecialCharacters}
)

func (cc characterClass) count(value []rune) int {
	n := 0
	for _, c := range value {
		if strings.ContainsRune(cc.characters, c) {
			n++
		}
	}
	return n
}

// detail is a single rule failure.
type detail struct {
	code    string
	message string
}

type rule interface {
	validate(value []rune) []detail
}

type lengthRule struct {
	min int
}

func (r lengthRule) validate(value []rune) []detail {
	if len(value) >= r.min {
		return nil
	}
	return []detail{{CodeTooShort, fmt.Sprintf("Password must be %d or more characters in length.", r.min)}}
}

type characterRule struct {
	class characterClass
	min   int
}

func (r characterRule) check(value []rune) (detail, bool) {
	if r.class.count(value) >= r.min {
		return detail{}, true
	}
	return detail{r.class.code, fmt.Sprintf("Password must contain %d or more %s characters.", r.min, r.class.label)}, false
}

// characteristicsRule requires required of its character rules to pass.
// Individual class failures are only reported when the count falls short.
type characteristicsRule struct {
	rules    []characterRule
	required int
}

func (r characteristicsRule) validate(value []rune) []detail {
	var details []detail
	matched := 0
	for _, cr := range r.rules {
		if d, ok := cr.check(value); ok {
			matched++
		} else {
			details = append(details, d)
		}
	}
	if matched >= r.required {
		return nil
	}
	return append(details, detail{CodeInsufficientCharacteristics,
		fmt.Sprintf("Password matches %d of %d character rules, but %d are required.", matched, len(r.rules), r.required)})
}

type whitespaceRule struct{}

func (whitespaceRule) validate(value []rune) []detail {
	var details []detail
	seen := make(map[rune]bool)
	for _, c := range value {
		if unicode.IsSpace(c) && !seen[c] {
			seen[c] = true
			details = append(details, detail{CodeIllegalWhitespace, "Password contains a whitespace character."})
		}
	}
	return details
}

type sequenceRule struct {
	code   string
	label  string
	rows   []sequenceRow
	length int
}

func (r sequenceRule) validate(value []rune) []detail {
	var details []detail
	for _, run := range findRuns(value, r.rows, r.length) {
		details = append(details, detail{r.code,
			fmt.Sprintf("Password contains the illegal %s sequence '%s'.", r.label, run)})
	}
	return details
}

func characterRules(upper, lower, digit, specials int) []characterRule {
	return []characterRule{
		{upperCase, upper},
		{lowerCase, lower},
		{digits, digit},
		{special, specials},
	}
}

// newChain compiles the fixed rule order for one severity.
func newChain(length, characteristics, illegalSequenceLength int, classes []characterRule) []rule {
	return []rule{
		lengthRule{min: length},
		characteristicsRule{rules: classes, required: characteristics},
		whitespaceRule{},
		sequenceRule{CodeIllegalAlphabetical, "alphabetical", alphabeticalRows, illegalSequenceLength},
		sequenceRule{CodeIllegalNumerical, "numerical", numericalRows, illegalSequenceLength},
		sequenceRule{CodeIllegalQwerty, "QWERTY", qwertyRows, illegalSequenceLength},
	}
}
