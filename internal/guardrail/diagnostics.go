package guardrail

// EventKind classifies a diagnostics notification.
type EventKind string

const (
	Warned EventKind = "warned"
	Failed EventKind = "failed"
)

// Diagnostics is the audit/diagnostics sink notified on every non-passing
// outcome. Only redacted messages cross this boundary.
//
// Notify has no error return: delivery is best-effort and a sink outage never
// changes the outcome of a check. Implementations must be safe for
// concurrent use.
type Diagnostics interface {
	Notify(kind EventKind, guardrail, message string)
}

// DiagnosticsFunc adapts a function to the Diagnostics interface.
type DiagnosticsFunc func(kind EventKind, guardrail, message string)

// Notify calls f.
func (f DiagnosticsFunc) Notify(kind EventKind, guardrail, message string) {
	f(kind, guardrail, message)
}

type nopDiagnostics struct{}

func (nopDiagnostics) Notify(EventKind, string, string) {}
