package infrastructure

import (
	"context"

	"coindrop/domain/interfaces"
	"coindrop/events"

	log "github.com/sirupsen/logrus"
)

// NATSTransactionalPublisher holds events until the owning transaction commits
type NATSTransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	pending       []events.Event
}

// NewNATSTransactionalPublisher creates a new transactional publisher
func NewNATSTransactionalPublisher(realPublisher interfaces.EventPublisher) *NATSTransactionalPublisher {
	return &NATSTransactionalPublisher{
		realPublisher: realPublisher,
		pending:       make([]events.Event, 0),
	}
}

// Publish queues an event without publishing it
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes every pending event in order. A failed event is logged and
// skipped so one bad publish does not drop the rest.
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(p.pending)).Debug("Flushing pending events")

	for _, event := range p.pending {
		if err := p.realPublisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}

	p.pending = p.pending[:0]
	return nil
}

// Discard drops all pending events
func (p *NATSTransactionalPublisher) Discard() {
	log.WithField("discardedEventCount", len(p.pending)).Debug("Discarding pending events")
	p.pending = p.pending[:0]
}

// Pending returns the number of queued events
func (p *NATSTransactionalPublisher) Pending() int {
	return len(p.pending)
}
