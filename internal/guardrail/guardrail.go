// Package guardrail implements the warn/fail enforcement primitives shared by
// every guardrail: severity dispatch, client-state bypass, message
// decoration, and the feature-gate, threshold and custom specializations.
package guardrail

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Guardrail is the named enforcement unit embedded by every guardrail kind.
// Its identity never changes; only the state of the embedding type is
// reconfigurable.
type Guardrail struct {
	name              string
	reason            string
	failOnNilState    bool
	minNotifyInterval time.Duration
	diagnostics       Diagnostics
	now               func() time.Time

	lastWarn atomic.Int64
	lastFail atomic.Int64
}

// Option customizes a Guardrail.
type Option func(*Guardrail)

// WithReason sets the description appended to every message.
func WithReason(reason string) Option {
	return func(g *Guardrail) { g.reason = reason }
}

// WithDiagnostics sets the sink notified on warn and fail.
func WithDiagnostics(d Diagnostics) Option {
	return func(g *Guardrail) {
		if d != nil {
			g.diagnostics = d
		}
	}
}

// WithMinNotifyInterval suppresses repeated notifications of the same kind
// within the interval. Violations are still returned to the caller.
func WithMinNotifyInterval(d time.Duration) Option {
	return func(g *Guardrail) { g.minNotifyInterval = d }
}

// WithFailOnNilState makes fail-severity outcomes abort background callers
// too. Used by guardrails that protect values which must never be stored,
// like passwords.
func WithFailOnNilState() Option {
	return func(g *Guardrail) { g.failOnNilState = true }
}

func withClock(now func() time.Time) Option {
	return func(g *Guardrail) { g.now = now }
}

// New creates a Guardrail.
func New(name string, opts ...Option) *Guardrail {
	g := &Guardrail{
		name:        name,
		diagnostics: nopDiagnostics{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the identifying name of the guardrail.
func (g *Guardrail) Name() string {
	return g.name
}

// Reason returns the optional description of why the operation is guarded.
func (g *Guardrail) Reason() string {
	return g.reason
}

// Enabled reports whether the guardrail applies to the given state.
// Internal queries and superusers bypass guardrails; a nil state is always
// evaluated.
func (g *Guardrail) Enabled(state *ClientState) bool {
	return state == nil || state.IsOrdinaryUser()
}

// Warn reports a warning. It never aborts.
func (g *Guardrail) Warn(state *ClientState, message string) {
	g.WarnRedacted(state, message, message)
}

// WarnRedacted reports a warning whose diagnostics form differs from the
// client-visible form.
func (g *Guardrail) WarnRedacted(state *ClientState, message, redacted string) {
	if g.skipNotifying(&g.lastWarn) {
		return
	}
	state.warn(g.decorate(message))
	g.diagnostics.Notify(Warned, g.name, g.decorate(redacted))
}

// Fail reports a failure. A *ViolationError is returned only when state is
// non-nil: background callers are informed but never aborted.
func (g *Guardrail) Fail(state *ClientState, message string) error {
	return g.FailRedacted(state, message, message)
}

// FailRedacted is Fail with a separate diagnostics form.
func (g *Guardrail) FailRedacted(state *ClientState, message, redacted string) error {
	msg := g.decorate(message)
	redactedMsg := g.decorate(redacted)

	if !g.skipNotifying(&g.lastFail) {
		state.warn(msg)
		g.diagnostics.Notify(Failed, g.name, redactedMsg)
	}

	if state != nil || g.failOnNilState {
		return &ViolationError{
			Guardrail:       g.name,
			Message:         msg,
			RedactedMessage: redactedMsg,
		}
	}
	return nil
}

func (g *Guardrail) decorate(message string) string {
	decorated := fmt.Sprintf("Guardrail %s violated: %s", g.name, message)
	if g.reason == "" {
		return decorated
	}
	if strings.HasSuffix(message, ".") {
		return decorated + " " + g.reason
	}
	return decorated + ". " + g.reason
}

// skipNotifying returns true when a notification tracked by last happened
// within the minimum interval.
func (g *Guardrail) skipNotifying(last *atomic.Int64) bool {
	if g.minNotifyInterval <= 0 {
		return false
	}
	now := g.now().UnixNano()
	prev := last.Load()
	if prev != 0 && now-prev < int64(g.minNotifyInterval) {
		return true
	}
	// Losing the race means another caller just notified.
	return !last.CompareAndSwap(prev, now)
}
