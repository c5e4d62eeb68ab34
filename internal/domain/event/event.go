package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event emitted after a committed dossier change.
// Events are emitted strictly after persistence: a handler can always re-read
// the dossier and see the state the event describes.
type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	DossierID string                 `json:"dossier_id"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent creates a new domain event with a generated ID and timestamp
func NewEvent(eventType Type, dossierID string, payload map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		DossierID: dossierID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// PayloadString retrieves a string value from the payload
func (e *Event) PayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
