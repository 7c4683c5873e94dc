// Package password implements the password strength policy: its validated
// configuration, a two-severity validator and a generator whose output
// always passes the validator.
package password

import (
	"strings"

	"github.com/ppiankov/guardrails/internal/guardrail"
)

const (
	warnPreamble = "Password was set, however it might not be strong enough according to the configured password strength policy. " +
		"To fix this warning, the following has to be resolved: "
	failPreamble = "Password was not set as it violated configured password strength policy. " +
		"To fix this error, the following has to be resolved: "
)

// codeOrder is the canonical order of failure codes in redacted messages.
// The redacted form is a set: it depends on which codes failed, never on
// the order in which rules reported them.
var codeOrder = []string{
	CodeIllegalWhitespace,
	CodeInsufficientDigit,
	CodeIllegalQwerty,
	CodeIllegalNumerical,
	CodeInsufficientCharacteristics,
	CodeInsufficientLowercase,
	CodeTooShort,
	CodeIllegalAlphabetical,
	CodeInsufficientSpecial,
	CodeInsufficientUppercase,
}

// Validator evaluates passwords against the warn and fail rule chains.
type Validator struct {
	config Configuration
	warn   []rule
	fail   []rule
}

// NewValidator parses cfg and compiles both chains.
func NewValidator(cfg guardrail.CustomConfig) (*Validator, error) {
	c, err := NewConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return NewValidatorFromConfiguration(c), nil
}

// NewValidatorFromConfiguration compiles both chains from a validated
// configuration.
func NewValidatorFromConfiguration(c Configuration) *Validator {
	return &Validator{
		config: c,
		warn: newChain(c.MinLengthWarn, c.MinCharacteristicsWarn, c.IllegalSequenceLength,
			characterRules(c.MinUpperCaseCharsWarn, c.MinLowerCaseCharsWarn, c.MinDigitsCharsWarn, c.MinSpecialCharsWarn)),
		fail: newChain(c.MinLengthFail, c.MinCharacteristicsFail, c.IllegalSequenceLength,
			characterRules(c.MinUpperCaseCharsFail, c.MinLowerCaseCharsFail, c.MinDigitsCharsFail, c.MinSpecialCharsFail)),
	}
}

// Configuration returns the policy the validator was compiled from.
func (v *Validator) Configuration() Configuration {
	return v.config
}

// ShouldWarn validates against the warn chain.
func (v *Validator) ShouldWarn(value string) (guardrail.Violation, bool) {
	return evaluate(v.warn, value, warnPreamble)
}

// ShouldFail validates against the fail chain.
func (v *Validator) ShouldFail(value string) (guardrail.Violation, bool) {
	return evaluate(v.fail, value, failPreamble)
}

// Parameters exports the configuration.
func (v *Validator) Parameters() guardrail.CustomConfig {
	return v.config.CustomConfig()
}

// ValidateParameters re-checks the configuration invariants.
func (v *Validator) ValidateParameters() error {
	return v.config.Validate()
}

func runChain(chain []rule, value string) []detail {
	runes := []rune(value)
	var details []detail
	for _, r := range chain {
		details = append(details, r.validate(runes)...)
	}
	return details
}

func evaluate(chain []rule, value, preamble string) (guardrail.Violation, bool) {
	details := runChain(chain, value)
	if len(details) == 0 {
		return guardrail.Violation{}, false
	}

	var sb strings.Builder
	sb.WriteString(preamble)
	for _, d := range details {
		sb.WriteString(d.message)
		sb.WriteByte(' ')
	}

	return guardrail.Violation{
		Message:         sb.String(),
		RedactedMessage: redact(details),
	}, true
}

// redact renders the set of failed codes as "[A, B]".
func redact(details []detail) string {
	failed := make(map[string]bool, len(details))
	for _, d := range details {
		failed[d.code] = true
	}
	codes := make([]string, 0, len(failed))
	for _, c := range codeOrder {
		if failed[c] {
			codes = append(codes, c)
		}
	}
	return "[" + strings.Join(codes, ", ") + "]"
}
