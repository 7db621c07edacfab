package infrastructure

import (
	"coindrop/events"
)

// NoopEventPublisher drops every event. Used when NATS is not configured.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
