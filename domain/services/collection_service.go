package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/domain/utils"
	"coindrop/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const defaultHistoryLimit = 50

// collectionService implements the coin collection protocol
type collectionService struct {
	sessionRepo    interfaces.SessionRepository
	coinRepo       interfaces.CoinRepository
	escrowRepo     interfaces.EscrowRepository
	playerRepo     interfaces.PlayerProfileRepository
	sponsorRepo    interfaces.SponsorProfileRepository
	collectionRepo interfaces.CollectionRecordRepository
	reclaimer      interfaces.CoinReclaimer
	eventPublisher interfaces.EventPublisher
	rules          entities.GameRules
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	sessionRepo interfaces.SessionRepository,
	coinRepo interfaces.CoinRepository,
	escrowRepo interfaces.EscrowRepository,
	playerRepo interfaces.PlayerProfileRepository,
	sponsorRepo interfaces.SponsorProfileRepository,
	collectionRepo interfaces.CollectionRecordRepository,
	reclaimer interfaces.CoinReclaimer,
	eventPublisher interfaces.EventPublisher,
	rules entities.GameRules,
) interfaces.CollectionService {
	return &collectionService{
		sessionRepo:    sessionRepo,
		coinRepo:       coinRepo,
		escrowRepo:     escrowRepo,
		playerRepo:     playerRepo,
		sponsorRepo:    sponsorRepo,
		collectionRepo: collectionRepo,
		reclaimer:      reclaimer,
		eventPublisher: eventPublisher,
		rules:          rules,
	}
}

// CollectCoin validates a collection attempt and settles the coin.
// On ErrCoinExpired the coin has already been reclaimed and the caller must commit.
func (s *collectionService) CollectCoin(ctx context.Context, playerID, coinID string, lat, lon float64, now time.Time) (*interfaces.CollectResult, error) {
	if strings.TrimSpace(playerID) == "" || strings.TrimSpace(coinID) == "" {
		return nil, entities.ErrInvalidIdentifier
	}
	if err := utils.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetActiveByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	if session == nil {
		return nil, entities.ErrNoActiveSession
	}

	coin, err := s.coinRepo.GetByID(ctx, coinID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coin: %w", err)
	}
	if coin == nil {
		return nil, entities.ErrCoinNotFound
	}

	if !coin.IsPlaced() {
		return nil, entities.ErrCoinUnavailable
	}

	if !coin.BelongsToSession(session.ID) {
		return nil, entities.ErrWrongSession
	}

	distance := utils.DistanceMeters(lat, lon, coin.Latitude, coin.Longitude)
	if distance > s.rules.CollectionRadiusMeters {
		return nil, &entities.TooFarError{
			DistanceMeters: distance,
			RadiusMeters:   s.rules.CollectionRadiusMeters,
		}
	}

	if coin.IsExpiredAt(now) {
		reclaimed, err := s.reclaimer.Reclaim(ctx, coin, events.ExpiryReasonLazy, now)
		if err != nil {
			return nil, err
		}
		if !reclaimed {
			// the sweeper or a concurrent collection settled it first
			return nil, entities.ErrCoinUnavailable
		}
		return nil, entities.ErrCoinExpired
	}

	collector := playerID
	won, err := s.coinRepo.TransitionStatus(ctx, coin.ID, entities.CoinStatusCollected, &collector, now)
	if err != nil {
		return nil, fmt.Errorf("failed to collect coin %s: %w", coin.ID, err)
	}
	if !won {
		return nil, entities.ErrCoinUnavailable
	}

	if err := s.escrowRepo.Release(ctx, coin.ID, now); err != nil {
		if errors.Is(err, entities.ErrEscrowConflict) || errors.Is(err, entities.ErrEscrowNotFound) {
			log.WithFields(log.Fields{
				"coinId":   coin.ID,
				"playerId": playerID,
				"error":    err,
			}).Error("Escrow release violated ledger integrity")
			return nil, fmt.Errorf("%w: release for coin %s: %v", entities.ErrLedgerIntegrity, coin.ID, err)
		}
		return nil, fmt.Errorf("failed to release escrow for coin %s: %w", coin.ID, err)
	}

	if err := s.playerRepo.RecordCollection(ctx, playerID, coin.Denomination); err != nil {
		return nil, fmt.Errorf("failed to update player stats: %w", err)
	}

	if err := s.sponsorRepo.ApplyStats(ctx, coin.OwnerID, entities.SponsorStatsDelta{Donated: coin.Denomination}); err != nil {
		return nil, fmt.Errorf("failed to update sponsor stats: %w", err)
	}

	updated, err := s.sessionRepo.RecordCollection(ctx, session.ID, coin.Denomination)
	if err != nil {
		return nil, fmt.Errorf("failed to update session totals: %w", err)
	}

	if err := s.collectionRepo.Append(ctx, &entities.CollectionRecord{
		ID:           uuid.NewString(),
		PlayerID:     playerID,
		CoinID:       coin.ID,
		SessionID:    session.ID,
		Denomination: coin.Denomination,
		CollectedAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("failed to append collection record: %w", err)
	}

	if err := s.eventPublisher.Publish(events.CoinCollectedEvent{
		CoinID:       coin.ID,
		SessionID:    session.ID,
		PlayerID:     playerID,
		OwnerID:      coin.OwnerID,
		Denomination: coin.Denomination,
		CollectedAt:  now,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish coin collected event: %w", err)
	}

	log.WithFields(log.Fields{
		"coinId":       coin.ID,
		"playerId":     playerID,
		"sessionId":    session.ID,
		"denomination": coin.Denomination,
		"distance":     distance,
	}).Info("Coin collected")

	return &interfaces.CollectResult{
		CoinID:         coin.ID,
		Denomination:   coin.Denomination,
		SessionID:      session.ID,
		CoinsCollected: updated.CoinsCollected,
		TotalValue:     updated.TotalValue,
	}, nil
}

// GetHistory returns the player's most recent collections
func (s *collectionService) GetHistory(ctx context.Context, playerID string, limit int) ([]*entities.CollectionRecord, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, entities.ErrInvalidIdentifier
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := s.collectionRepo.ListByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return records, nil
}
