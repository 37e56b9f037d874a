package events

import "time"

const (
	QuotaUpdated   = "QUOTA_UPDATED"
	MessageCreated = "MESSAGE_CREATED"
	UserDeleted    = "USER_DELETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "QUOTA_UPDATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is also the wire form on every broker.
type BaseEvent struct {
	Type       string                 `json:"type"`
	UserID     string                 `json:"user_id,omitempty"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType, userID string, data map[string]interface{}, at time.Time) BaseEvent {
	return BaseEvent{Type: eventType, UserID: userID, Data: data, OccurredAt: at}
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
