package events

import "time"

const (
	// SessionsTopic carries change notifications for the entries collection.
	SessionsTopic = "sessions.changed"

	EventSessionCreated  = "session.created"
	EventSessionUpdated  = "session.updated"
	EventSessionNotified = "session.notified"
	EventSessionsPurged  = "sessions.purged"
)

// SessionChangedEvent announces that a write touched the entries collection.
// Consumers reload the full ordered set rather than applying the event as a
// diff; the payload exists for logging and debugging.
type SessionChangedEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	SessionID  string    `json:"session_id,omitempty"`
	Count      int       `json:"count,omitempty"`
}
