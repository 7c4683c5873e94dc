package guardrail

import "sync"

// ClientWarner receives client-visible warnings for the session that
// triggered a check. Implementations must be safe for concurrent use.
type ClientWarner interface {
	Warn(message string)
}

// ClientState describes the caller of a guardrail check.
//
// A nil *ClientState means the check originates from a background process
// (compaction, repair, schema propagation): it is always evaluated, but a
// failure is reported without aborting the caller.
type ClientState struct {
	User      string
	Keyspace  string
	Internal  bool
	Superuser bool
	Warnings  ClientWarner
}

// IsOrdinaryUser returns true for states that are subject to guardrails:
// neither internal queries nor superusers.
func (s *ClientState) IsOrdinaryUser() bool {
	return s != nil && !s.Internal && !s.Superuser
}

func (s *ClientState) warn(message string) {
	if s != nil && s.Warnings != nil {
		s.Warnings.Warn(message)
	}
}

// WarningCollector is a ClientWarner that accumulates warnings in order.
type WarningCollector struct {
	mu       sync.Mutex
	messages []string
}

// Warn records a warning.
func (w *WarningCollector) Warn(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, message)
}

// Warnings returns a copy of the collected warnings.
func (w *WarningCollector) Warnings() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.messages))
	copy(out, w.messages)
	return out
}
