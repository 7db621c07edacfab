package infrastructure

import (
	"context"
	"errors"
	"sync"

	"coindrop/domain/entities"
	"coindrop/events"

	"github.com/stretchr/testify/mock"
)

// recordingEventPublisher captures published domain events
type recordingEventPublisher struct {
	PublishedEvents []events.Event
	FailOn          events.EventType
}

func (r *recordingEventPublisher) Publish(event events.Event) error {
	if r.FailOn != "" && event.Type() == r.FailOn {
		return errors.New("publish failed")
	}
	r.PublishedEvents = append(r.PublishedEvents, event)
	return nil
}

type publishedMessage struct {
	subject string
	data    []byte
}

// fakeMessagePublisher captures raw NATS publishes
type fakeMessagePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (f *fakeMessagePublisher) Publish(_ context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, publishedMessage{subject: subject, data: data})
	return nil
}

// fakeSubscriber records stream and subscription setup and exposes the handler
type fakeSubscriber struct {
	streams   map[string][]string
	handlers  map[string]func([]byte) error
	streamErr error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		streams:  make(map[string][]string),
		handlers: make(map[string]func([]byte) error),
	}
}

func (f *fakeSubscriber) EnsureStream(streamName string, subjects []string, _ string) error {
	if f.streamErr != nil {
		return f.streamErr
	}
	f.streams[streamName] = subjects
	return nil
}

func (f *fakeSubscriber) Subscribe(subject string, handler func([]byte) error) error {
	f.handlers[subject] = handler
	return nil
}

// mockPurchaseHandler is a testify mock of application.PurchaseHandler
type mockPurchaseHandler struct {
	mock.Mock
}

func (m *mockPurchaseHandler) HandlePurchaseCompleted(ctx context.Context, purchase entities.PurchaseCompleted) (bool, error) {
	args := m.Called(ctx, purchase)
	return args.Bool(0), args.Error(1)
}

// countingMetrics records metric calls
type countingMetrics struct {
	mu        sync.Mutex
	received  map[string]int
	outcomes  map[string]int
	published map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		received:  make(map[string]int),
		outcomes:  make(map[string]int),
		published: make(map[string]int),
	}
}

func (c *countingMetrics) RecordNATSMessageReceived(eventType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received[eventType]++
}

func (c *countingMetrics) RecordPurchase(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[outcome]++
}

func (c *countingMetrics) RecordNATSMessagePublished(eventType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published[eventType]++
}
