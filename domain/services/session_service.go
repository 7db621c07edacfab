package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/domain/utils"
	"coindrop/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// sessionService implements the player session lifecycle
type sessionService struct {
	sessionRepo      interfaces.SessionRepository
	coinRepo         interfaces.CoinRepository
	escrowRepo       interfaces.EscrowRepository
	inventoryRepo    interfaces.InventoryRepository
	playerRepo       interfaces.PlayerProfileRepository
	sponsorRepo      interfaces.SponsorProfileRepository
	inventoryService interfaces.InventoryService
	reclaimer        interfaces.CoinReclaimer
	eventPublisher   interfaces.EventPublisher
	rng              utils.RandomSource
	rules            entities.GameRules
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo interfaces.SessionRepository,
	coinRepo interfaces.CoinRepository,
	escrowRepo interfaces.EscrowRepository,
	inventoryRepo interfaces.InventoryRepository,
	playerRepo interfaces.PlayerProfileRepository,
	sponsorRepo interfaces.SponsorProfileRepository,
	inventoryService interfaces.InventoryService,
	reclaimer interfaces.CoinReclaimer,
	eventPublisher interfaces.EventPublisher,
	rng utils.RandomSource,
	rules entities.GameRules,
) interfaces.SessionService {
	return &sessionService{
		sessionRepo:      sessionRepo,
		coinRepo:         coinRepo,
		escrowRepo:       escrowRepo,
		inventoryRepo:    inventoryRepo,
		playerRepo:       playerRepo,
		sponsorRepo:      sponsorRepo,
		inventoryService: inventoryService,
		reclaimer:        reclaimer,
		eventPublisher:   eventPublisher,
		rng:              rng,
		rules:            rules,
	}
}

// StartSession opens a session and places between MinCoinsPerSession and
// MaxCoinsPerSession coins around the start point. Units whose debit fails are
// dropped; if none can be placed the session is not created.
func (s *sessionService) StartSession(ctx context.Context, playerID string, lat, lon float64, now time.Time) (*interfaces.StartSessionResult, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, entities.ErrInvalidIdentifier
	}
	if err := utils.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	profile, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player profile: %w", err)
	}
	if profile == nil {
		return nil, entities.ErrNoActiveProfile
	}

	active, err := s.sessionRepo.GetActiveByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}
	if active != nil {
		return nil, entities.ErrSessionAlreadyActive
	}

	session := &entities.Session{
		ID:             uuid.NewString(),
		PlayerID:       playerID,
		Status:         entities.SessionStatusActive,
		StartLatitude:  lat,
		StartLongitude: lon,
		StartedAt:      now,
	}
	// The one-active-session index turns a concurrent start into ErrSessionAlreadyActive here
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	count := s.rules.MinCoinsPerSession + s.rng.IntN(s.rules.MaxCoinsPerSession-s.rules.MinCoinsPerSession+1)
	units, err := s.inventoryService.DrawRandom(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("failed to draw coins: %w", err)
	}
	sortByLockOrder(units)

	coins := make([]*entities.PlacedCoin, 0, len(units))
	for _, unit := range units {
		coin, err := s.placeUnit(ctx, session, unit, now)
		if err != nil {
			return nil, err
		}
		if coin != nil {
			coins = append(coins, coin)
		}
	}

	if len(coins) == 0 {
		log.WithFields(log.Fields{
			"playerId":  playerID,
			"requested": count,
			"drawn":     len(units),
		}).Info("No coins could be placed, session not started")
		return nil, entities.ErrNoCoinsAvailable
	}

	if err := s.recordPlacements(ctx, coins); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.SessionStartedEvent{
		SessionID:   session.ID,
		PlayerID:    playerID,
		CoinsPlaced: len(coins),
	}); err != nil {
		return nil, fmt.Errorf("failed to publish session started event: %w", err)
	}

	log.WithFields(log.Fields{
		"sessionId":   session.ID,
		"playerId":    playerID,
		"requested":   count,
		"coinsPlaced": len(coins),
	}).Info("Session started")

	return &interfaces.StartSessionResult{
		Session: session,
		Coins:   coins,
	}, nil
}

// placeUnit debits one unit and places it; returns nil when the unit is no longer in stock
func (s *sessionService) placeUnit(ctx context.Context, session *entities.Session, unit entities.CoinUnit, now time.Time) (*entities.PlacedCoin, error) {
	point := utils.RandomPointInAnnulus(s.rng, session.StartLatitude, session.StartLongitude,
		s.rules.PlacementMinKm, s.rules.PlacementMaxKm)

	debited, err := s.inventoryRepo.Debit(ctx, unit.OwnerID, unit.Denomination, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to debit inventory: %w", err)
	}
	if !debited {
		log.WithFields(log.Fields{
			"sessionId":    session.ID,
			"ownerId":      unit.OwnerID,
			"denomination": unit.Denomination,
		}).Debug("Inventory changed concurrently, skipping unit")
		return nil, nil
	}

	sessionID := session.ID
	coin := &entities.PlacedCoin{
		ID:           uuid.NewString(),
		OwnerID:      unit.OwnerID,
		SessionID:    &sessionID,
		Denomination: unit.Denomination,
		Latitude:     point.Lat,
		Longitude:    point.Lon,
		Status:       entities.CoinStatusPlaced,
		PlacedAt:     now,
		ExpiresAt:    now.Add(s.rules.CoinTTL),
	}
	if err := s.coinRepo.Place(ctx, coin); err != nil {
		return nil, fmt.Errorf("failed to place coin: %w", err)
	}

	if _, err := s.escrowRepo.Open(ctx, coin.ID, coin.OwnerID, coin.Denomination, now); err != nil {
		return nil, fmt.Errorf("failed to open escrow for coin %s: %w", coin.ID, err)
	}

	if err := s.eventPublisher.Publish(events.CoinPlacedEvent{
		CoinID:       coin.ID,
		SessionID:    sessionID,
		OwnerID:      coin.OwnerID,
		Denomination: coin.Denomination,
		Latitude:     coin.Latitude,
		Longitude:    coin.Longitude,
		ExpiresAt:    coin.ExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish coin placed event: %w", err)
	}

	return coin, nil
}

// recordPlacements adds each sponsor's placed count once, after every inventory
// row is locked. coins must already be in lock order.
func (s *sessionService) recordPlacements(ctx context.Context, coins []*entities.PlacedCoin) error {
	for i := 0; i < len(coins); {
		ownerID := coins[i].OwnerID
		j := i
		for j < len(coins) && coins[j].OwnerID == ownerID {
			j++
		}
		if err := s.sponsorRepo.ApplyStats(ctx, ownerID, entities.SponsorStatsDelta{Placed: int64(j - i)}); err != nil {
			return fmt.Errorf("failed to update sponsor stats: %w", err)
		}
		i = j
	}
	return nil
}

// sortByLockOrder orders units by (owner, denomination). Every transaction that
// touches several inventory rows takes their locks in this order.
func sortByLockOrder(units []entities.CoinUnit) {
	slices.SortFunc(units, func(a, b entities.CoinUnit) int {
		if c := cmp.Compare(a.OwnerID, b.OwnerID); c != 0 {
			return c
		}
		return cmp.Compare(a.Denomination, b.Denomination)
	})
}

// sortCoinsByLockOrder orders coins by (owner, denomination, id)
func sortCoinsByLockOrder(coins []*entities.PlacedCoin) {
	slices.SortFunc(coins, func(a, b *entities.PlacedCoin) int {
		if c := cmp.Compare(a.OwnerID, b.OwnerID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Denomination, b.Denomination); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// EndSession returns every still-placed coin to inventory and closes the session
func (s *sessionService) EndSession(ctx context.Context, playerID string, now time.Time) (*interfaces.EndSessionResult, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, entities.ErrInvalidIdentifier
	}

	session, err := s.sessionRepo.GetActiveByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	if session == nil {
		return nil, entities.ErrNoActiveSession
	}

	coins, err := s.coinRepo.GetActiveForSession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session coins: %w", err)
	}
	sortCoinsByLockOrder(coins)

	returned := 0
	for _, coin := range coins {
		reclaimed, err := s.reclaimer.Reclaim(ctx, coin, events.ExpiryReasonSessionEnd, now)
		if err != nil {
			return nil, err
		}
		if reclaimed {
			returned++
		}
	}

	ended, err := s.sessionRepo.End(ctx, session.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	if ended == nil {
		// another request ended it first
		return nil, entities.ErrNoActiveSession
	}

	if err := s.eventPublisher.Publish(events.SessionEndedEvent{
		SessionID:      ended.ID,
		PlayerID:       ended.PlayerID,
		Status:         string(ended.Status),
		CoinsCollected: ended.CoinsCollected,
		TotalValue:     ended.TotalValue,
		CoinsReturned:  returned,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish session ended event: %w", err)
	}

	log.WithFields(log.Fields{
		"sessionId":      ended.ID,
		"playerId":       playerID,
		"status":         ended.Status,
		"coinsCollected": ended.CoinsCollected,
		"coinsReturned":  returned,
	}).Info("Session ended")

	return &interfaces.EndSessionResult{
		Session:       ended,
		CoinsReturned: returned,
	}, nil
}

// GetActiveSession returns the player's active session and its uncollected coins
func (s *sessionService) GetActiveSession(ctx context.Context, playerID string) (*interfaces.ActiveSessionView, error) {
	session, err := s.sessionRepo.GetActiveByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	if session == nil {
		return nil, entities.ErrNoActiveSession
	}

	coins, err := s.coinRepo.GetActiveForSession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session coins: %w", err)
	}

	return &interfaces.ActiveSessionView{
		Session: session,
		Coins:   coins,
	}, nil
}
