package alert

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event AlertEvent) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return formatGeneric(event)
	}
}

func formatGeneric(event AlertEvent) ([]byte, error) {
	return json.Marshal(event)
}

func formatSlack(event AlertEvent) ([]byte, error) {
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("guardrail %s %s", event.Guardrail, event.Kind),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Guardrail:* %s", event.Guardrail)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Severity:* %s", severityFor(event.Kind))},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Time:* %s", event.Timestamp)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Message:* %s", event.Message)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event AlertEvent) ([]byte, error) {
	payload := map[string]any{
		"event_action": "trigger",
		"dedup_key":    event.EventID,
		"payload": map[string]any{
			"summary":  fmt.Sprintf("guardrail %s %s", event.Guardrail, event.Kind),
			"severity": severityFor(event.Kind),
			"source":   "guardrails",
			"custom_details": map[string]any{
				"guardrail":   event.Guardrail,
				"message":     event.Message,
				"config_hash": event.ConfigHash,
			},
		},
	}
	return json.Marshal(payload)
}

func severityFor(kind string) string {
	switch kind {
	case "failed":
		return "error"
	case "warned":
		return "warning"
	default:
		return "info"
	}
}
