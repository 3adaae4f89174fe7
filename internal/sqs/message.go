package sqs

import (
	"encoding/json"
	"time"
)

// eventTypeAttribute carries the event type as a message attribute.
const eventTypeAttribute = "event_type"

// CatalogMessage is the queue payload describing one catalog change.
type CatalogMessage struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}
