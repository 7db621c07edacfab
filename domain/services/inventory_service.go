package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/domain/utils"
	"coindrop/events"

	log "github.com/sirupsen/logrus"
)

// inventoryService implements sponsor inventory policy
type inventoryService struct {
	inventoryRepo      interfaces.InventoryRepository
	sponsorRepo        interfaces.SponsorProfileRepository
	processedEventRepo interfaces.ProcessedEventRepository
	eventPublisher     interfaces.EventPublisher
	rng                utils.RandomSource
	rules              entities.GameRules
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	inventoryRepo interfaces.InventoryRepository,
	sponsorRepo interfaces.SponsorProfileRepository,
	processedEventRepo interfaces.ProcessedEventRepository,
	eventPublisher interfaces.EventPublisher,
	rng utils.RandomSource,
	rules entities.GameRules,
) interfaces.InventoryService {
	return &inventoryService{
		inventoryRepo:      inventoryRepo,
		sponsorRepo:        sponsorRepo,
		processedEventRepo: processedEventRepo,
		eventPublisher:     eventPublisher,
		rng:                rng,
		rules:              rules,
	}
}

// DrawRandom flattens available inventory into a pool of at most 2*count units,
// shuffles it and takes the first count. Owners listed first fill the pool first,
// so the draw is not uniform across sponsors once the cap is hit.
func (s *inventoryService) DrawRandom(ctx context.Context, count int) ([]entities.CoinUnit, error) {
	if count <= 0 {
		return nil, nil
	}

	// every listed row holds at least one unit, so 2*count rows always fill the pool
	entries, err := s.inventoryRepo.ListAvailable(ctx, 2*count)
	if err != nil {
		return nil, fmt.Errorf("failed to list available inventory: %w", err)
	}

	pool := BuildCandidatePool(entries, count)
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if len(pool) > count {
		pool = pool[:count]
	}
	return pool, nil
}

// BuildCandidatePool expands inventory entries into individual coin units, capped at 2*count
func BuildCandidatePool(entries []*entities.InventoryEntry, count int) []entities.CoinUnit {
	limit := 2 * count
	pool := make([]entities.CoinUnit, 0, limit)

	for _, entry := range entries {
		for i := int64(0); i < entry.Quantity && len(pool) < limit; i++ {
			pool = append(pool, entities.CoinUnit{
				OwnerID:      entry.OwnerID,
				Denomination: entry.Denomination,
			})
		}
		if len(pool) >= limit {
			break
		}
	}
	return pool
}

// CreditPurchase adds purchased coins to the sponsor's inventory once per event id
func (s *inventoryService) CreditPurchase(ctx context.Context, purchase entities.PurchaseCompleted, now time.Time) (bool, error) {
	if err := s.validatePurchase(purchase); err != nil {
		return false, err
	}

	fresh, err := s.processedEventRepo.MarkProcessed(ctx, purchase.EventID, now)
	if err != nil {
		return false, fmt.Errorf("failed to record purchase event: %w", err)
	}
	if !fresh {
		log.WithFields(log.Fields{
			"eventId":   purchase.EventID,
			"sponsorId": purchase.SponsorID,
		}).Info("Ignoring already processed purchase event")
		return false, nil
	}

	if err := s.inventoryRepo.Credit(ctx, purchase.SponsorID, purchase.Denomination, purchase.Quantity); err != nil {
		return false, fmt.Errorf("failed to credit inventory: %w", err)
	}

	if err := s.sponsorRepo.ApplyStats(ctx, purchase.SponsorID, entities.SponsorStatsDelta{Purchased: purchase.Quantity}); err != nil {
		return false, fmt.Errorf("failed to update sponsor stats: %w", err)
	}

	if err := s.eventPublisher.Publish(events.InventoryCreditedEvent{
		PurchaseEventID: purchase.EventID,
		OwnerID:         purchase.SponsorID,
		Denomination:    purchase.Denomination,
		Quantity:        purchase.Quantity,
	}); err != nil {
		return false, fmt.Errorf("failed to publish inventory credited event: %w", err)
	}

	return true, nil
}

// GetInventory returns a sponsor's inventory
func (s *inventoryService) GetInventory(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, entities.ErrInvalidIdentifier
	}

	entries, err := s.inventoryRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory for %s: %w", ownerID, err)
	}
	return entries, nil
}

func (s *inventoryService) validatePurchase(purchase entities.PurchaseCompleted) error {
	if strings.TrimSpace(purchase.EventID) == "" || strings.TrimSpace(purchase.SponsorID) == "" {
		return entities.ErrInvalidIdentifier
	}
	if purchase.Quantity <= 0 {
		return entities.ErrInvalidQuantity
	}
	if purchase.Denomination < s.rules.MinDenomination || purchase.Denomination > s.rules.MaxDenomination {
		return fmt.Errorf("%w: %d not in [%d, %d]", entities.ErrInvalidDenomination,
			purchase.Denomination, s.rules.MinDenomination, s.rules.MaxDenomination)
	}
	return nil
}
