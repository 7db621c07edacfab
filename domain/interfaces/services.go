package interfaces

import (
	"context"
	"time"

	"coindrop/domain/entities"
	"coindrop/events"
)

// InventoryService defines sponsor inventory policy
type InventoryService interface {
	// DrawRandom selects up to count coin units without mutating inventory
	DrawRandom(ctx context.Context, count int) ([]entities.CoinUnit, error)

	// CreditPurchase adds purchased coins once per event id.
	// Returns false when the event was already processed.
	CreditPurchase(ctx context.Context, purchase entities.PurchaseCompleted, now time.Time) (bool, error)

	// GetInventory returns a sponsor's inventory
	GetInventory(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error)
}

// CoinReclaimer returns an uncollected coin to its sponsor.
// Session end, lazy expiry and the sweeper all go through it.
type CoinReclaimer interface {
	// Reclaim expires the coin, credits one unit back and refunds its escrow.
	// Returns false if another transition already settled the coin.
	Reclaim(ctx context.Context, coin *entities.PlacedCoin, reason events.ExpiryReason, now time.Time) (bool, error)
}

// SessionService defines the session lifecycle
type SessionService interface {
	StartSession(ctx context.Context, playerID string, lat, lon float64, now time.Time) (*StartSessionResult, error)
	EndSession(ctx context.Context, playerID string, now time.Time) (*EndSessionResult, error)
	GetActiveSession(ctx context.Context, playerID string) (*ActiveSessionView, error)
}

// CollectionService defines the coin collection protocol
type CollectionService interface {
	CollectCoin(ctx context.Context, playerID, coinID string, lat, lon float64, now time.Time) (*CollectResult, error)
	GetHistory(ctx context.Context, playerID string, limit int) ([]*entities.CollectionRecord, error)
}

// ExpirationService defines the background reclaim of overdue coins
type ExpirationService interface {
	// FindDue returns up to limit coins whose TTL has elapsed
	FindDue(ctx context.Context, now time.Time, limit int) ([]*entities.PlacedCoin, error)

	// ExpireCoin reclaims one overdue coin; returns false if it was already settled or not yet due
	ExpireCoin(ctx context.Context, coinID string, now time.Time) (bool, error)
}

// ProfileService defines player and sponsor registration
type ProfileService interface {
	RegisterPlayer(ctx context.Context, playerID, displayName string) (*entities.PlayerProfile, error)
	RegisterSponsor(ctx context.Context, sponsorID, displayName string) (*entities.SponsorProfile, error)
	GetPlayerProfile(ctx context.Context, playerID string) (*entities.PlayerProfile, error)
	GetSponsorProfile(ctx context.Context, sponsorID string) (*entities.SponsorProfile, error)
}

// StartSessionResult is the outcome of a successful session start
type StartSessionResult struct {
	Session *entities.Session
	Coins   []*entities.PlacedCoin
}

// EndSessionResult is the outcome of ending a session
type EndSessionResult struct {
	Session       *entities.Session
	CoinsReturned int
}

// ActiveSessionView is a player's active session with its remaining coins
type ActiveSessionView struct {
	Session *entities.Session
	Coins   []*entities.PlacedCoin
}

// CollectResult is the outcome of a successful collection
type CollectResult struct {
	CoinID         string
	Denomination   int64
	SessionID      string
	CoinsCollected int
	TotalValue     int64
}

// SweepResult summarises one expiration sweep
type SweepResult struct {
	Found   int
	Expired int
	Skipped int
	Failed  int
}
