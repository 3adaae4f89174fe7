package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the status of an event in the outbox. Published
// events are removed from the outbox, so only pending and failed ones are stored.
type EventStatus string

const (
	// EventStatusPending indicates the event has been recorded but not yet published
	EventStatusPending EventStatus = "pending"
	// EventStatusFailed indicates publishing the event has failed
	EventStatusFailed EventStatus = "failed"
)

// Catalog event types.
const (
	EventProductCreated = "product.created"
	EventProductDeleted = "product.deleted"
	EventOrderCreated   = "order.created"
	EventOrderDeleted   = "order.deleted"
)

// Event is a catalog change waiting in the outbox.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	EventType   string          `json:"eventType"`
	EventData   json.RawMessage `json:"eventData"`
	Status      EventStatus     `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
}

// InitMeta initializes the event metadata including ID and timestamps.
func (e *Event) InitMeta() {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	if e.Status == "" {
		e.Status = EventStatusPending
	}
}

// Validate checks an event decoded from storage.
func (e Event) Validate() error {
	if e.ID == uuid.Nil {
		return &ValidationError{Field: "id"}
	}
	return requireNonBlank([2]string{"eventType", e.EventType})
}
