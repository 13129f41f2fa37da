// Package domain holds the telemetry event emitted for every handled chat event.
package domain

import (
	"encoding/json"
	"time"
)

// Outcome values for BotEvent.Outcome.
const (
	OutcomeOK      = "ok"
	OutcomeBlocked = "blocked" // rejected by the gatekeeper
	OutcomeIgnored = "ignored" // produced no reply
)

// BotEvent is one processed chat event. It is serialized as JSON onto Kafka and read back by the worker.
type BotEvent struct {
	Identity  int64           `json:"identity"`
	OrgID     string          `json:"orgId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	EventType string          `json:"eventType"` // command, button or text
	Name      string          `json:"name,omitempty"`
	Flow      string          `json:"flow,omitempty"`
	Outcome   string          `json:"outcome,omitempty"`
	Source    string          `json:"source"`
	LatencyMS int64           `json:"latencyMs"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
