package infrastructure

import (
	"fmt"

	"coindrop/events"
)

const (
	SubjectCoinPlaced        = "coins.placed"
	SubjectCoinCollected     = "coins.collected"
	SubjectCoinExpired       = "coins.expired"
	SubjectSessionStarted    = "sessions.started"
	SubjectSessionEnded      = "sessions.ended"
	SubjectInventoryCredited = "inventory.credited"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeCoinPlaced:
		return SubjectCoinPlaced
	case events.EventTypeCoinCollected:
		return SubjectCoinCollected
	case events.EventTypeCoinExpired:
		return SubjectCoinExpired
	case events.EventTypeSessionStarted:
		return SubjectSessionStarted
	case events.EventTypeSessionEnded:
		return SubjectSessionEnded
	case events.EventTypeInventoryCredited:
		return SubjectInventoryCredited
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectCoinPlaced:
		return events.EventTypeCoinPlaced
	case SubjectCoinCollected:
		return events.EventTypeCoinCollected
	case SubjectCoinExpired:
		return events.EventTypeCoinExpired
	case SubjectSessionStarted:
		return events.EventTypeSessionStarted
	case SubjectSessionEnded:
		return events.EventTypeSessionEnded
	case SubjectInventoryCredited:
		return events.EventTypeInventoryCredited
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectCoinPlaced,
		SubjectCoinCollected,
		SubjectCoinExpired,
		SubjectSessionStarted,
		SubjectSessionEnded,
		SubjectInventoryCredited,
	}
}
