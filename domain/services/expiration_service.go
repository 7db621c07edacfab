package services

import (
	"context"
	"fmt"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/events"
)

// expirationService reclaims coins whose TTL elapsed without a collection
type expirationService struct {
	coinRepo  interfaces.CoinRepository
	reclaimer interfaces.CoinReclaimer
}

// NewExpirationService creates a new expiration service
func NewExpirationService(coinRepo interfaces.CoinRepository, reclaimer interfaces.CoinReclaimer) interfaces.ExpirationService {
	return &expirationService{
		coinRepo:  coinRepo,
		reclaimer: reclaimer,
	}
}

// FindDue returns up to limit placed coins whose expiry is at or before now
func (s *expirationService) FindDue(ctx context.Context, now time.Time, limit int) ([]*entities.PlacedCoin, error) {
	coins, err := s.coinRepo.FindExpired(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired coins: %w", err)
	}
	return coins, nil
}

// ExpireCoin reloads the coin and reclaims it if it is still placed and overdue
func (s *expirationService) ExpireCoin(ctx context.Context, coinID string, now time.Time) (bool, error) {
	coin, err := s.coinRepo.GetByID(ctx, coinID)
	if err != nil {
		return false, fmt.Errorf("failed to get coin %s: %w", coinID, err)
	}
	if coin == nil || !coin.IsPlaced() || !coin.IsExpiredAt(now) {
		return false, nil
	}

	return s.reclaimer.Reclaim(ctx, coin, events.ExpiryReasonSweep, now)
}
