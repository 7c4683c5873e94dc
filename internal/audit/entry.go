// Package audit keeps a tamper-evident, hash-chained JSONL record of
// guardrail events and reconfigurations.
package audit

// Entry kinds besides the guardrail event kinds ("warned", "failed").
const (
	KindReconfigured = "reconfigured"
	KindRejected     = "reconfiguration_rejected"
)

// AuditEntry is one line in the hash-chained JSONL audit log.
// All fields are scalars so json.Marshal field order is deterministic and
// hashes are reproducible. Message only ever holds redacted text.
type AuditEntry struct {
	Timestamp  string `json:"ts"`
	EventID    string `json:"event_id"`
	Guardrail  string `json:"guardrail"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Source     string `json:"source,omitempty"`
	ConfigHash string `json:"config_hash,omitempty"`
	PrevHash   string `json:"prev_hash"`
}
