// Package diagnostics implements the guardrail event sinks: structured
// logs, the audit log, metrics and webhook alerts.
//
// Sinks are fail-open. A sink that cannot deliver logs the failure and
// returns; the outcome of a guardrail check never depends on a sink.
package diagnostics

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/guardrails/internal/alert"
	"github.com/ppiankov/guardrails/internal/audit"
	"github.com/ppiankov/guardrails/internal/guardrail"
	"github.com/ppiankov/guardrails/internal/metrics"
)

// ConfigHash holds the hash of the configuration currently applied. It is
// attached to audit entries and alerts.
type ConfigHash struct {
	v atomic.Pointer[string]
}

// Set stores h.
func (c *ConfigHash) Set(h string) {
	c.v.Store(&h)
}

// Get returns the stored hash, or "" when unset or c is nil.
func (c *ConfigHash) Get() string {
	if c == nil {
		return ""
	}
	if p := c.v.Load(); p != nil {
		return *p
	}
	return ""
}

// Multi fans a notification out to every non-nil sink in order.
func Multi(sinks ...guardrail.Diagnostics) guardrail.Diagnostics {
	var out multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []guardrail.Diagnostics

func (m multi) Notify(kind guardrail.EventKind, name, message string) {
	for _, s := range m {
		s.Notify(kind, name, message)
	}
}

// LogSink writes every notification to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify logs failures at error and warnings at warn level.
func (s *LogSink) Notify(kind guardrail.EventKind, name, message string) {
	fields := []zap.Field{
		zap.String("guardrail", name),
		zap.String("kind", string(kind)),
		zap.String("message", message),
	}
	if kind == guardrail.Failed {
		s.logger.Error("guardrail failed", fields...)
		return
	}
	s.logger.Warn("guardrail warned", fields...)
}

// AuditSink records notifications in the hash-chained audit log.
type AuditSink struct {
	log    *audit.Log
	hash   *ConfigHash
	logger *zap.Logger
}

// NewAuditSink creates an AuditSink. hash may be nil. A nil *AuditSink
// records nothing.
func NewAuditSink(log *audit.Log, hash *ConfigHash, logger *zap.Logger) *AuditSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditSink{log: log, hash: hash, logger: logger}
}

// Notify appends an entry; write errors are logged.
func (s *AuditSink) Notify(kind guardrail.EventKind, name, message string) {
	s.record(audit.AuditEntry{
		Guardrail: name,
		Kind:      string(kind),
		Message:   message,
	})
}

// Reconfigured records a reconfiguration attempt from source. A nil err is
// recorded as applied.
func (s *AuditSink) Reconfigured(source, name, detail string, err error) {
	entry := audit.AuditEntry{
		Guardrail: name,
		Kind:      audit.KindReconfigured,
		Message:   detail,
		Source:    source,
	}
	if err != nil {
		entry.Kind = audit.KindRejected
		entry.Message = err.Error()
	}
	s.record(entry)
}

func (s *AuditSink) record(entry audit.AuditEntry) {
	if s == nil {
		return
	}
	entry.ConfigHash = s.hash.Get()
	if err := s.log.Record(entry); err != nil {
		s.logger.Error("failed to record audit entry",
			zap.String("guardrail", entry.Guardrail),
			zap.Error(err))
	}
}

// MetricsSink counts notifications.
type MetricsSink struct {
	recorder *metrics.Recorder
}

// NewMetricsSink creates a MetricsSink.
func NewMetricsSink(r *metrics.Recorder) *MetricsSink {
	return &MetricsSink{recorder: r}
}

// Notify increments the event counter.
func (s *MetricsSink) Notify(kind guardrail.EventKind, name, _ string) {
	s.recorder.ObserveEvent(name, string(kind))
}

// AlertSink forwards notifications to webhook alerts.
type AlertSink struct {
	dispatcher *alert.Dispatcher
	hash       *ConfigHash
	now        func() time.Time
}

// NewAlertSink creates an AlertSink. It returns nil when d is nil, which
// Multi skips.
func NewAlertSink(d *alert.Dispatcher, hash *ConfigHash) guardrail.Diagnostics {
	if d == nil {
		return nil
	}
	return &AlertSink{dispatcher: d, hash: hash, now: time.Now}
}

// Notify dispatches an alert without blocking.
func (s *AlertSink) Notify(kind guardrail.EventKind, name, message string) {
	s.dispatcher.Dispatch(alert.AlertEvent{
		Timestamp:  s.now().UTC().Format(audit.TimestampFormat),
		EventID:    uuid.NewString(),
		Guardrail:  name,
		Kind:       string(kind),
		Message:    message,
		ConfigHash: s.hash.Get(),
	})
}
