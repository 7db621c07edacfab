package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coindrop/application"
	"coindrop/domain/entities"
	"coindrop/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

const (
	paymentsStream           = "payments"
	purchaseCompletedMessage = "purchase_completed"
)

// MessageSubscriber is the subset of NATSClient the purchase consumer needs
type MessageSubscriber interface {
	EnsureStream(streamName string, subjects []string, description string) error
	Subscribe(subject string, handler func([]byte) error) error
}

// PurchaseMetrics receives purchase consumption outcomes
type PurchaseMetrics interface {
	RecordNATSMessageReceived(eventType string)
	RecordPurchase(outcome string)
}

// PurchaseConsumer credits sponsor inventory from payment provider events.
// The in-memory cache short-circuits redeliveries; the processed_events table
// remains the authority and is checked in the same transaction as the credit.
type PurchaseConsumer struct {
	subscriber MessageSubscriber
	handler    application.PurchaseHandler
	cache      *ProcessedEventCache
	subject    string
	metrics    PurchaseMetrics
}

// NewPurchaseConsumer creates a new purchase consumer. metrics may be nil.
func NewPurchaseConsumer(
	subscriber MessageSubscriber,
	handler application.PurchaseHandler,
	cache *ProcessedEventCache,
	subject string,
	metrics PurchaseMetrics,
) *PurchaseConsumer {
	return &PurchaseConsumer{
		subscriber: subscriber,
		handler:    handler,
		cache:      cache,
		subject:    subject,
		metrics:    metrics,
	}
}

// Start ensures the payments stream exists and subscribes to the purchase subject
func (c *PurchaseConsumer) Start(ctx context.Context) error {
	if err := c.subscriber.EnsureStream(paymentsStream, []string{c.subject}, "Payment provider purchase events"); err != nil {
		return fmt.Errorf("failed to ensure payments stream: %w", err)
	}

	if err := c.subscriber.Subscribe(c.subject, func(data []byte) error {
		return c.Handle(ctx, data)
	}); err != nil {
		return fmt.Errorf("failed to subscribe to purchases: %w", err)
	}

	log.WithField("subject", c.subject).Info("Purchase consumer started")
	return nil
}

// Handle processes one raw purchase message. A nil return acks the message;
// only transient failures are returned so JetStream redelivers them.
func (c *PurchaseConsumer) Handle(ctx context.Context, data []byte) error {
	c.recordReceived()

	purchase, err := decodePurchase(data)
	if err != nil {
		log.WithError(err).Warn("Dropping malformed purchase message")
		c.recordOutcome(observability.PurchaseOutcomeInvalid)
		return nil
	}

	logger := log.WithFields(log.Fields{
		"eventId":   purchase.EventID,
		"sponsorId": purchase.SponsorID,
	})

	if c.cache != nil && c.cache.Seen(purchase.EventID) {
		logger.Debug("Purchase event already processed (cache)")
		c.recordOutcome(observability.PurchaseOutcomeDuplicate)
		return nil
	}

	credited, err := c.handler.HandlePurchaseCompleted(ctx, purchase)
	if err != nil {
		if isPermanentPurchaseError(err) {
			logger.WithError(err).Warn("Rejecting invalid purchase event")
			c.recordOutcome(observability.PurchaseOutcomeInvalid)
			return nil
		}
		c.recordOutcome(observability.PurchaseOutcomeFailed)
		return fmt.Errorf("failed to credit purchase %s: %w", purchase.EventID, err)
	}

	if c.cache != nil {
		c.cache.Remember(purchase.EventID)
	}

	if credited {
		c.recordOutcome(observability.PurchaseOutcomeCredited)
	} else {
		logger.Debug("Purchase event already processed (database)")
		c.recordOutcome(observability.PurchaseOutcomeDuplicate)
	}
	return nil
}

func decodePurchase(data []byte) (entities.PurchaseCompleted, error) {
	var purchase entities.PurchaseCompleted
	if err := json.Unmarshal(data, &purchase); err != nil {
		return purchase, fmt.Errorf("failed to unmarshal purchase: %w", err)
	}
	if purchase.EventID == "" {
		return purchase, errors.New("purchase message has no event_id")
	}
	return purchase, nil
}

// isPermanentPurchaseError reports whether redelivery could never succeed
func isPermanentPurchaseError(err error) bool {
	return errors.Is(err, entities.ErrInvalidDenomination) ||
		errors.Is(err, entities.ErrInvalidQuantity) ||
		errors.Is(err, entities.ErrInvalidIdentifier)
}

func (c *PurchaseConsumer) recordReceived() {
	if c.metrics != nil {
		c.metrics.RecordNATSMessageReceived(purchaseCompletedMessage)
	}
}

func (c *PurchaseConsumer) recordOutcome(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordPurchase(outcome)
	}
}
