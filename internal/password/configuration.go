package password

import (
	"sort"

	"github.com/ppiankov/guardrails/internal/guardrail"
)

// MaxCharacteristics is the number of character classes: upper, lower,
// digit and special.
const MaxCharacteristics = 4

// Defaults.
const (
	DefaultMinCharacteristicsWarn = 3
	DefaultMinCharacteristicsFail = 2

	DefaultMinLengthWarn = 12
	DefaultMinLengthFail = 8

	DefaultMinUpperCaseCharsWarn = 2
	DefaultMinUpperCaseCharsFail = 1

	DefaultMinLowerCaseCharsWarn = 2
	DefaultMinLowerCaseCharsFail = 1

	DefaultMinDigitsCharsWarn = 2
	DefaultMinDigitsCharsFail = 1

	DefaultMinSpecialCharsWarn = 2
	DefaultMinSpecialCharsFail = 1

	// DefaultIllegalSequenceLength is also the lowest accepted value.
	DefaultIllegalSequenceLength = 5
)

// Configuration keys.
const (
	MinCharacteristicsWarnKey = "min_characteristics_warn"
	MinCharacteristicsFailKey = "min_characteristics_fail"

	MinLengthWarnKey = "min_length_warn"
	MinLengthFailKey = "min_length_fail"

	MinUpperCaseCharsWarnKey = "min_upper_case_chars_warn"
	MinUpperCaseCharsFailKey = "min_upper_case_chars_fail"

	MinLowerCaseCharsWarnKey = "min_lower_case_chars_warn"
	MinLowerCaseCharsFailKey = "min_lower_case_chars_fail"

	MinDigitsCharsWarnKey = "min_digits_chars_warn"
	MinDigitsCharsFailKey = "min_digits_chars_fail"

	MinSpecialCharsWarnKey = "min_special_chars_warn"
	MinSpecialCharsFailKey = "min_special_chars_fail"

	IllegalSequenceLengthKey = "illegal_sequence_length"
)

// Configuration is the validated password policy. It is an immutable,
// comparable value.
type Configuration struct {
	MinCharacteristicsWarn int
	MinCharacteristicsFail int

	MinLengthWarn int
	MinLengthFail int

	MinUpperCaseCharsWarn int
	MinUpperCaseCharsFail int

	MinLowerCaseCharsWarn int
	MinLowerCaseCharsFail int

	MinDigitsCharsWarn int
	MinDigitsCharsFail int

	MinSpecialCharsWarn int
	MinSpecialCharsFail int

	IllegalSequenceLength int
}

// NewConfiguration parses cfg, filling absent keys with defaults, and
// validates the result.
func NewConfiguration(cfg guardrail.CustomConfig) (Configuration, error) {
	c := Configuration{
		MinCharacteristicsWarn: cfg.ResolveInt(MinCharacteristicsWarnKey, DefaultMinCharacteristicsWarn),
		MinCharacteristicsFail: cfg.ResolveInt(MinCharacteristicsFailKey, DefaultMinCharacteristicsFail),

		MinLengthWarn: cfg.ResolveInt(MinLengthWarnKey, DefaultMinLengthWarn),
		MinLengthFail: cfg.ResolveInt(MinLengthFailKey, DefaultMinLengthFail),

		MinUpperCaseCharsWarn: cfg.ResolveInt(MinUpperCaseCharsWarnKey, DefaultMinUpperCaseCharsWarn),
		MinUpperCaseCharsFail: cfg.ResolveInt(MinUpperCaseCharsFailKey, DefaultMinUpperCaseCharsFail),

		MinLowerCaseCharsWarn: cfg.ResolveInt(MinLowerCaseCharsWarnKey, DefaultMinLowerCaseCharsWarn),
		MinLowerCaseCharsFail: cfg.ResolveInt(MinLowerCaseCharsFailKey, DefaultMinLowerCaseCharsFail),

		MinDigitsCharsWarn: cfg.ResolveInt(MinDigitsCharsWarnKey, DefaultMinDigitsCharsWarn),
		MinDigitsCharsFail: cfg.ResolveInt(MinDigitsCharsFailKey, DefaultMinDigitsCharsFail),

		MinSpecialCharsWarn: cfg.ResolveInt(MinSpecialCharsWarnKey, DefaultMinSpecialCharsWarn),
		MinSpecialCharsFail: cfg.ResolveInt(MinSpecialCharsFailKey, DefaultMinSpecialCharsFail),

		IllegalSequenceLength: cfg.ResolveInt(IllegalSequenceLengthKey, DefaultIllegalSequenceLength),
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, err
	}
	return c, nil
}

// DefaultConfiguration returns the built-in policy.
func DefaultConfiguration() Configuration {
	c, _ := NewConfiguration(guardrail.NewCustomConfig())
	return c
}

// CustomConfig exports the configuration back into its key/value form.
func (c Configuration) CustomConfig() guardrail.CustomConfig {
	return guardrail.CustomConfig{
		MinCharacteristicsWarnKey: c.MinCharacteristicsWarn,
		MinCharacteristicsFailKey: c.MinCharacteristicsFail,
		MinLengthWarnKey:          c.MinLengthWarn,
		MinLengthFailKey:          c.MinLengthFail,
		MinUpperCaseCharsWarnKey:  c.MinUpperCaseCharsWarn,
		MinUpperCaseCharsFailKey:  c.MinUpperCaseCharsFail,
		MinLowerCaseCharsWarnKey:  c.MinLowerCaseCharsWarn,
		MinLowerCaseCharsFailKey:  c.MinLowerCaseCharsFail,
		MinDigitsCharsWarnKey:     c.MinDigitsCharsWarn,
		MinDigitsCharsFailKey:     c.MinDigitsCharsFail,
		MinSpecialCharsWarnKey:    c.MinSpecialCharsWarn,
		MinSpecialCharsFailKey:    c.MinSpecialCharsFail,
		IllegalSequenceLengthKey:  c.IllegalSequenceLength,
	}
}

// Validate checks the cross-parameter invariants. Checks run in a fixed
// order and the first violation is returned.
func (c Configuration) Validate() error {
	pairs := []struct {
		warnKey string
		warn    int
		failKey string
		fail    int
	}{
		{MinLengthWarnKey, c.MinLengthWarn, MinLengthFailKey, c.MinLengthFail},
		{MinSpecialCharsWarnKey, c.MinSpecialCharsWarn, MinSpecialCharsFailKey, c.MinSpecialCharsFail},
		{MinDigitsCharsWarnKey, c.MinDigitsCharsWarn, MinDigitsCharsFailKey, c.MinDigitsCharsFail},
		{MinUpperCaseCharsWarnKey, c.MinUpperCaseCharsWarn, MinUpperCaseCharsFailKey, c.MinUpperCaseCharsFail},
		{MinLowerCaseCharsWarnKey, c.MinLowerCaseCharsWarn, MinLowerCaseCharsFailKey, c.MinLowerCaseCharsFail},
	}
	for _, p := range pairs {
		if p.warn <= p.fail {
			return guardrail.ConfigErrorf("%s of value %d is less or equal to %s of value %d",
				p.warnKey, p.warn, p.failKey, p.fail)
		}
	}

	if c.IllegalSequenceLength < DefaultIllegalSequenceLength {
		return guardrail.ConfigErrorf("Illegal sequence length can not be lower than %d.", DefaultIllegalSequenceLength)
	}

	if c.MinCharacteristicsWarn > MaxCharacteristics {
		return guardrail.ConfigErrorf("%s can not be bigger than %d", MinCharacteristicsWarnKey, MaxCharacteristics)
	}
	if c.MinCharacteristicsFail > MaxCharacteristics {
		return guardrail.ConfigErrorf("%s can not be bigger than %d", MinCharacteristicsFailKey, MaxCharacteristics)
	}
	if c.MinCharacteristicsWarn < 0 {
		return guardrail.ConfigErrorf("%s can not be lower than 0", MinCharacteristicsWarnKey)
	}
	if c.MinCharacteristicsFail < 0 {
		return guardrail.ConfigErrorf("%s can not be lower than 0", MinCharacteristicsFailKey)
	}
	if c.MinCharacteristicsFail == c.MinCharacteristicsWarn {
		return guardrail.ConfigErrorf("%s can not be equal to %s. You set %d and %d respectively.",
			MinCharacteristicsFailKey, MinCharacteristicsWarnKey, c.MinCharacteristicsFail, c.MinCharacteristicsWarn)
	}
	if c.MinCharacteristicsFail > c.MinCharacteristicsWarn {
		return guardrail.ConfigErrorf("%s can not be bigger than %s. You have set %d and %d respectively.",
			MinCharacteristicsFailKey, MinCharacteristicsWarnKey, c.MinCharacteristicsFail, c.MinCharacteristicsWarn)
	}

	warnShortest := shortestSum(c.MinCharacteristicsWarn,
		c.MinSpecialCharsWarn, c.MinDigitsCharsWarn, c.MinUpperCaseCharsWarn, c.MinLowerCaseCharsWarn)
	if warnShortest > c.MinLengthWarn {
		return guardrail.ConfigErrorf("The shortest password to pass the warning validator for any %d characteristics out of %d is %d but you have set the %s to %d.",
			c.MinCharacteristicsWarn, MaxCharacteristics, warnShortest, MinLengthWarnKey, c.MinLengthWarn)
	}

	failShortest := shortestSum(c.MinCharacteristicsFail,
		c.MinSpecialCharsFail, c.MinDigitsCharsFail, c.MinUpperCaseCharsFail, c.MinLowerCaseCharsFail)
	if failShortest > c.MinLengthFail {
		return guardrail.ConfigErrorf("The shortest password to pass the failing validator for any %d characteristics out of %d is %d but you have set the %s to %d.",
			c.MinCharacteristicsFail, MaxCharacteristics, failShortest, MinLengthFailKey, c.MinLengthFail)
	}

	// Pairs are strictly ordered, so checking the fail side covers both.
	for _, p := range pairs {
		if p.fail < 0 {
			return guardrail.ConfigErrorf("%s can not be negative", p.failKey)
		}
	}
	return nil
}

// shortestSum is the sum of the k smallest minimums.
func shortestSum(k int, minimums ...int) int {
	sorted := append([]int(nil), minimums...)
	sort.Ints(sorted)
	sum := 0
	for i := 0; i < k && i < len(sorted); i++ {
		sum += sorted[i]
	}
	return sum
}

// classMinimumsWarn is the sum of every warn-level class minimum.
func (c Configuration) classMinimumsWarn() int {
	return c.MinUpperCaseCharsWarn + c.MinLowerCaseCharsWarn + c.MinDigitsCharsWarn + c.MinSpecialCharsWarn
}
