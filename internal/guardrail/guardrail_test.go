package guardrail

import (
	"sync"
	"testing"
	"time"
)

type event struct {
	kind    EventKind
	name    string
	message string
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Notify(kind EventKind, name, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{kind, name, message})
}

func (r *recorder) all() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

func userState() (*ClientState, *WarningCollector) {
	w := &WarningCollector{}
	return &ClientState{User: "alice", Keyspace: "ks", Warnings: w}, w
}

func TestEnabledBypass(t *testing.T) {
	g := New("test")
	tests := []struct {
		name  string
		state *ClientState
		want  bool
	}{
		{"nil state", nil, true},
		{"ordinary user", &ClientState{User: "alice"}, true},
		{"internal", &ClientState{Internal: true}, false},
		{"superuser", &ClientState{User: "root", Superuser: true}, false},
	}
	for _, tt := range tests {
		if got := g.Enabled(tt.state); got != tt.want {
			t.Errorf("%s: Enabled = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWarnDeliversToClientAndDiagnostics(t *testing.T) {
	rec := &recorder{}
	g := New("tables", WithDiagnostics(rec))
	state, warnings := userState()

	g.WarnRedacted(state, "secret value", "<redacted> value")

	if got := warnings.Warnings(); len(got) != 1 || got[0] != "Guardrail tables violated: secret value" {
		t.Errorf("client warnings = %v", got)
	}
	events := rec.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].kind != Warned || events[0].name != "tables" || events[0].message != "Guardrail tables violated: <redacted> value" {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestFailReturnsViolationOnlyWithState(t *testing.T) {
	rec := &recorder{}
	g := New("tables", WithDiagnostics(rec))
	state, warnings := userState()

	err := g.Fail(state, "too many tables")
	violation, ok := AsViolation(err)
	if !ok {
		t.Fatalf("expected ViolationError, got %v", err)
	}
	if violation.Guardrail != "tables" || violation.Message != "Guardrail tables violated: too many tables" {
		t.Errorf("unexpected violation %+v", violation)
	}
	if len(warnings.Warnings()) != 1 {
		t.Errorf("failure should also be sent to the client")
	}

	if err := g.Fail(nil, "too many tables"); err != nil {
		t.Errorf("nil state should not abort, got %v", err)
	}
	if events := rec.all(); len(events) != 2 || events[1].kind != Failed {
		t.Errorf("background failure should still be notified: %+v", events)
	}
}

func TestFailOnNilState(t *testing.T) {
	g := New("password", WithFailOnNilState())
	if err := g.Fail(nil, "weak"); err == nil {
		t.Error("expected violation for nil state")
	}
}

func TestDecorateReason(t *testing.T) {
	tests := []struct {
		reason  string
		message string
		want    string
	}{
		{"", "boom", "Guardrail g violated: boom"},
		{"Keep it small.", "boom", "Guardrail g violated: boom. Keep it small."},
		{"Keep it small.", "boom.", "Guardrail g violated: boom. Keep it small."},
	}
	for _, tt := range tests {
		g := New("g", WithReason(tt.reason))
		if got := g.decorate(tt.message); got != tt.want {
			t.Errorf("decorate(%q) with reason %q = %q, want %q", tt.message, tt.reason, got, tt.want)
		}
	}
}

func TestMinNotifyInterval(t *testing.T) {
	rec := &recorder{}
	now := time.Unix(1000, 0)
	g := New("tables",
		WithDiagnostics(rec),
		WithMinNotifyInterval(time.Minute),
		withClock(func() time.Time { return now }))
	state, _ := userState()

	g.Warn(state, "one")
	g.Warn(state, "two")
	if err := g.Fail(state, "three"); err == nil {
		t.Error("throttled failure must still abort")
	}
	if err := g.Fail(state, "four"); err == nil {
		t.Error("throttled failure must still abort")
	}

	now = now.Add(2 * time.Minute)
	g.Warn(state, "five")

	var kinds []EventKind
	for _, e := range rec.all() {
		kinds = append(kinds, e.kind)
	}
	want := []EventKind{Warned, Failed, Warned}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestWarnWithoutClientWarner(t *testing.T) {
	g := New("tables")
	g.Warn(&ClientState{User: "alice"}, "no warner attached")
	g.Warn(nil, "background")
}
