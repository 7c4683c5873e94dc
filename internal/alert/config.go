// Package alert delivers guardrail events to webhook endpoints.
package alert

// AlertConfig defines a webhook alert destination.
type AlertConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["warned", "failed"]; empty matches all
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// AlertEvent is the payload sent to webhook endpoints. Message is always the
// redacted form.
type AlertEvent struct {
	Timestamp  string `json:"timestamp"`
	EventID    string `json:"event_id"`
	Guardrail  string `json:"guardrail"`
	Kind       string `json:"kind"` // "warned" or "failed"
	Message    string `json:"message"`
	ConfigHash string `json:"config_hash,omitempty"`
}
