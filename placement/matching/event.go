package matching

import "time"

type EventType string

const (
	EventMatchCreated       EventType = "match.created"
	EventMatchStatusChanged EventType = "match.status_changed"
	EventMatchHired         EventType = "match.hired"
	EventMatchDeleted       EventType = "match.deleted"
)

// Event is a lifecycle notification consumed by placement and commissions
type Event struct {
	Type           EventType   `json:"type"`
	Match          Match       `json:"match"`
	PreviousStatus MatchStatus `json:"previousStatus,omitempty"`
	OccurredAt     time.Time   `json:"occurredAt"`
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
