package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/events"

	log "github.com/sirupsen/logrus"
)

// coinReclaimer performs the single expiry transition shared by session end,
// lazy expiry during collection and the background sweeper
type coinReclaimer struct {
	coinRepo       interfaces.CoinRepository
	inventoryRepo  interfaces.InventoryRepository
	escrowRepo     interfaces.EscrowRepository
	eventPublisher interfaces.EventPublisher
}

// NewCoinReclaimer creates a new coin reclaimer
func NewCoinReclaimer(
	coinRepo interfaces.CoinRepository,
	inventoryRepo interfaces.InventoryRepository,
	escrowRepo interfaces.EscrowRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.CoinReclaimer {
	return &coinReclaimer{
		coinRepo:       coinRepo,
		inventoryRepo:  inventoryRepo,
		escrowRepo:     escrowRepo,
		eventPublisher: eventPublisher,
	}
}

// Reclaim expires a placed coin, returns one unit to inventory and refunds its escrow
func (r *coinReclaimer) Reclaim(ctx context.Context, coin *entities.PlacedCoin, reason events.ExpiryReason, now time.Time) (bool, error) {
	won, err := r.coinRepo.TransitionStatus(ctx, coin.ID, entities.CoinStatusExpired, nil, now)
	if err != nil {
		return false, fmt.Errorf("failed to expire coin %s: %w", coin.ID, err)
	}
	if !won {
		log.WithFields(log.Fields{
			"coinId": coin.ID,
			"reason": reason,
		}).Debug("Coin already settled, nothing to reclaim")
		return false, nil
	}

	if err := r.inventoryRepo.Credit(ctx, coin.OwnerID, coin.Denomination, 1); err != nil {
		return false, fmt.Errorf("failed to return coin %s to inventory: %w", coin.ID, err)
	}

	if err := r.escrowRepo.Refund(ctx, coin.ID, now); err != nil {
		if errors.Is(err, entities.ErrEscrowConflict) || errors.Is(err, entities.ErrEscrowNotFound) {
			log.WithFields(log.Fields{
				"coinId": coin.ID,
				"reason": reason,
				"error":  err,
			}).Error("Escrow refund violated ledger integrity")
			return false, fmt.Errorf("%w: refund for coin %s: %v", entities.ErrLedgerIntegrity, coin.ID, err)
		}
		return false, fmt.Errorf("failed to refund escrow for coin %s: %w", coin.ID, err)
	}

	sessionID := ""
	if coin.SessionID != nil {
		sessionID = *coin.SessionID
	}
	if err := r.eventPublisher.Publish(events.CoinExpiredEvent{
		CoinID:       coin.ID,
		SessionID:    sessionID,
		OwnerID:      coin.OwnerID,
		Denomination: coin.Denomination,
		Reason:       reason,
	}); err != nil {
		return false, fmt.Errorf("failed to publish coin expired event: %w", err)
	}

	log.WithFields(log.Fields{
		"coinId":       coin.ID,
		"ownerId":      coin.OwnerID,
		"denomination": coin.Denomination,
		"reason":       reason,
	}).Info("Coin reclaimed")

	return true, nil
}
