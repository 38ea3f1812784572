package events

import "time"

// Event type codes carried on the broker. Subscribers fan these out to
// connected websocket clients as notifications.
const (
	TypeStudioItemsUpdated = "STUDIO_ITEMS_UPDATED"
	TypeDocumentIndexed    = "DOCUMENT_INDEXED"
)

// Event is the contract every published event satisfies.
type Event interface {
	// EventType returns the event code, one of the Type* constants.
	EventType() string

	// Payload returns the event data. Values must be JSON-safe.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used by all publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// New builds a BaseEvent stamped with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
