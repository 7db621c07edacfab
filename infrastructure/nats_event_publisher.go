package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"coindrop/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const domainEventStream = "coindrop_events"

// EventEnvelope wraps a domain event published on the bus
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// LocalEventHandler is invoked in-process for every published event of a type
type LocalEventHandler func(ctx context.Context, event events.Event) error

// PublishMetrics counts events forwarded to NATS
type PublishMetrics interface {
	RecordNATSMessagePublished(eventType string)
}

// NATSEventPublisher publishes domain events to NATS subjects
type NATSEventPublisher struct {
	publisher     MessagePublisher
	subjectMapper *EventSubjectMapper
	metrics       PublishMetrics
	mu            sync.RWMutex
	localHandlers map[events.EventType][]LocalEventHandler
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(publisher MessagePublisher, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		publisher:     publisher,
		subjectMapper: subjectMapper,
		localHandlers: make(map[events.EventType][]LocalEventHandler),
	}
}

// Publish runs local handlers and then publishes the event envelope to its subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()
	eventType := event.Type()

	p.mu.RLock()
	handlers := p.localHandlers[eventType]
	p.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// local handler errors never block publishing
			log.WithFields(log.Fields{
				"eventType": eventType,
				"error":     err,
			}).Error("Local event handler failed")
		}
	}

	if p.publisher == nil {
		return nil
	}

	subject := p.subjectMapper.MapEventToSubject(event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     string(eventType),
		Timestamp:     time.Now().UTC(),
		SourceService: clientName,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RecordNATSMessagePublished(string(eventType))
	}

	log.WithFields(log.Fields{
		"eventType": eventType,
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}

// SetMetrics attaches a recorder for forwarded events
func (p *NATSEventPublisher) SetMetrics(metrics PublishMetrics) {
	p.metrics = metrics
}

// RegisterLocalHandler registers a handler invoked in-process for eventType
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(p.localHandlers[eventType]),
	}).Info("Registered local event handler")
}

// EnsureDomainEventStream creates the stream that carries every outbound domain event
func (p *NATSEventPublisher) EnsureDomainEventStream(client *NATSClient) error {
	return client.EnsureStream(domainEventStream, p.subjectMapper.GetAllSubjects(), "Coin drop domain events")
}
