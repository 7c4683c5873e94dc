package guardrail

import (
	"fmt"
	"sync/atomic"
)

// Disabled is the threshold value that turns one side of a threshold off.
const Disabled int64 = -1

// RedactedWhat replaces user data in diagnostics messages.
const RedactedWhat = "<redacted>"

// ThresholdKind selects the comparison a Threshold applies.
type ThresholdKind int

const (
	// MaxThreshold triggers when the value is greater than the threshold.
	MaxThreshold ThresholdKind = iota
	// MinThreshold triggers when the value is lower than the threshold.
	MinThreshold
)

func (k ThresholdKind) String() string {
	if k == MinThreshold {
		return "min"
	}
	return "max"
}

// ThresholdMessage renders the message for a triggered threshold.
type ThresholdMessage func(warning bool, what string, value, threshold int64) string

// thresholdPair is immutable; it is replaced as a whole on reconfiguration.
type thresholdPair struct {
	warn int64
	fail int64
}

// Threshold is a guardrail whose state is a (warn, fail) numeric pair.
type Threshold struct {
	*Guardrail
	kind    ThresholdKind
	message ThresholdMessage
	pair    atomic.Pointer[thresholdPair]
}

// NewThreshold creates a threshold guardrail with both sides disabled.
// A nil message uses DefaultThresholdMessage.
func NewThreshold(name string, kind ThresholdKind, message ThresholdMessage, opts ...Option) *Threshold {
	if message == nil {
		message = DefaultThresholdMessage(kind)
	}
	t := &Threshold{
		Guardrail: New(name, opts...),
		kind:      kind,
		message:   message,
	}
	t.pair.Store(&thresholdPair{warn: Disabled, fail: Disabled})
	return t
}

// DefaultThresholdMessage returns the generic message for a threshold kind.
func DefaultThresholdMessage(kind ThresholdKind) ThresholdMessage {
	return func(warning bool, what string, value, threshold int64) string {
		side := "failure"
		if warning {
			side = "warning"
		}
		if kind == MinThreshold {
			return fmt.Sprintf("%s is %d, which is below the %s threshold of %d.", what, value, side, threshold)
		}
		return fmt.Sprintf("%s is %d, which exceeds the %s threshold of %d.", what, value, side, threshold)
	}
}

// Kind returns the comparison kind.
func (t *Threshold) Kind() ThresholdKind {
	return t.kind
}

// Thresholds returns the current (warn, fail) pair, read as one unit.
func (t *Threshold) Thresholds() (warn, fail int64) {
	p := t.pair.Load()
	return p.warn, p.fail
}

// SetThresholds validates and atomically installs a new pair. A rejected
// pair leaves the current one in place.
func (t *Threshold) SetThresholds(warn, fail int64) error {
	if err := ValidateThresholds(t.Name(), t.kind, warn, fail); err != nil {
		return err
	}
	t.pair.Store(&thresholdPair{warn: warn, fail: fail})
	return nil
}

// ValidateThresholds checks a (warn, fail) pair for the named guardrail.
func ValidateThresholds(name string, kind ThresholdKind, warn, fail int64) error {
	if err := validateThresholdValue(warn, name+"_warn_threshold"); err != nil {
		return err
	}
	if err := validateThresholdValue(fail, name+"_fail_threshold"); err != nil {
		return err
	}
	if warn == Disabled || fail == Disabled {
		return nil
	}
	switch kind {
	case MinThreshold:
		if warn < fail {
			return ConfigErrorf("The warn threshold %d for %s_warn_threshold should be greater than the fail threshold %d", warn, name, fail)
		}
	default:
		if warn > fail {
			return ConfigErrorf("The warn threshold %d for %s_warn_threshold should be lower than the fail threshold %d", warn, name, fail)
		}
	}
	return nil
}

func validateThresholdValue(value int64, key string) error {
	if value < Disabled {
		return ConfigErrorf("Invalid value %d for %s: negative values are not allowed, with the exception of -1 for disabling a guardrail", value, key)
	}
	return nil
}

// Triggers reports whether value would trigger either side, ignoring the
// client state.
func (t *Threshold) Triggers(value int64) bool {
	p := t.pair.Load()
	return t.exceeds(value, p.warn) || t.exceeds(value, p.fail)
}

// Guard checks value against the thresholds. what names the guarded
// subject in messages; with containsUserData it is redacted from
// diagnostics.
func (t *Threshold) Guard(value int64, what string, containsUserData bool, state *ClientState) error {
	if !t.Enabled(state) {
		return nil
	}

	redactedWhat := what
	if containsUserData {
		redactedWhat = RedactedWhat
	}

	p := t.pair.Load()
	if t.exceeds(value, p.fail) {
		return t.FailRedacted(state,
			t.message(false, what, value, p.fail),
			t.message(false, redactedWhat, value, p.fail))
	}
	if t.exceeds(value, p.warn) {
		t.WarnRedacted(state,
			t.message(true, what, value, p.warn),
			t.message(true, redactedWhat, value, p.warn))
	}
	return nil
}

func (t *Threshold) exceeds(value, threshold int64) bool {
	if threshold == Disabled {
		return false
	}
	if t.kind == MinThreshold {
		return value < threshold
	}
	return value > threshold
}
