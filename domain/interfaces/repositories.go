package interfaces

import (
	"context"
	"time"

	"coindrop/domain/entities"
)

// InventoryRepository defines the interface for the sponsor coin inventory ledger
type InventoryRepository interface {
	// Credit adds quantity units, creating the (owner, denomination) row if absent
	Credit(ctx context.Context, ownerID string, denomination, quantity int64) error

	// Debit removes quantity units in a single conditional update.
	// Returns false without mutating anything when the row is missing or holds fewer units.
	Debit(ctx context.Context, ownerID string, denomination, quantity int64) (bool, error)

	// Get returns a single inventory entry, or nil if none exists
	Get(ctx context.Context, ownerID string, denomination int64) (*entities.InventoryEntry, error)

	// ListAvailable returns up to limit entries with quantity > 0 ordered by owner and denomination
	ListAvailable(ctx context.Context, limit int) ([]*entities.InventoryEntry, error)

	// ListByOwner returns every inventory entry of a sponsor
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error)
}

// CoinRepository defines the interface for the placed coin registry
type CoinRepository interface {
	// Place inserts a new coin in the placed state
	Place(ctx context.Context, coin *entities.PlacedCoin) error

	// GetByID returns a coin, or nil if it does not exist
	GetByID(ctx context.Context, coinID string) (*entities.PlacedCoin, error)

	// GetActiveForSession returns the coins of a session still in the placed state
	GetActiveForSession(ctx context.Context, sessionID string) ([]*entities.PlacedCoin, error)

	// FindExpired returns up to limit placed coins whose expiry is at or before now
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*entities.PlacedCoin, error)

	// TransitionStatus moves a placed coin to collected or expired.
	// Returns false when the coin is no longer placed; only one caller can ever win.
	TransitionStatus(ctx context.Context, coinID string, newStatus entities.CoinStatus, collectorID *string, at time.Time) (bool, error)
}

// EscrowRepository defines the interface for the escrow ledger
type EscrowRepository interface {
	// Open creates a held escrow tied to a coin
	Open(ctx context.Context, coinID, ownerID string, amount int64, at time.Time) (*entities.EscrowHold, error)

	// Release settles a hold as released. Already released is a no-op; refunded returns ErrEscrowConflict.
	Release(ctx context.Context, coinID string, at time.Time) error

	// Refund settles a hold as refunded. Already refunded is a no-op; released returns ErrEscrowConflict.
	Refund(ctx context.Context, coinID string, at time.Time) error

	// GetByCoinID returns the hold for a coin, or nil if none exists
	GetByCoinID(ctx context.Context, coinID string) (*entities.EscrowHold, error)
}

// SessionRepository defines the interface for player sessions
type SessionRepository interface {
	// Create inserts an active session; returns ErrSessionAlreadyActive if the player already has one
	Create(ctx context.Context, session *entities.Session) error

	// GetByID returns a session, or nil if it does not exist
	GetByID(ctx context.Context, sessionID string) (*entities.Session, error)

	// GetActiveByPlayer returns the player's active session, or nil if there is none
	GetActiveByPlayer(ctx context.Context, playerID string) (*entities.Session, error)

	// RecordCollection increments the session's collected count and total value and returns the updated row
	RecordCollection(ctx context.Context, sessionID string, denomination int64) (*entities.Session, error)

	// End moves an active session to completed or abandoned depending on its collections.
	// Returns nil if the session was not active.
	End(ctx context.Context, sessionID string, at time.Time) (*entities.Session, error)
}

// CollectionRecordRepository defines the interface for the collection audit log
type CollectionRecordRepository interface {
	Append(ctx context.Context, record *entities.CollectionRecord) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.CollectionRecord, error)
}

// PlayerProfileRepository defines the interface for player profiles
type PlayerProfileRepository interface {
	// Create registers a player; returns ErrProfileExists when already registered
	Create(ctx context.Context, playerID, displayName string) (*entities.PlayerProfile, error)

	// GetByID returns a profile, or nil if the player is not registered
	GetByID(ctx context.Context, playerID string) (*entities.PlayerProfile, error)

	// RecordCollection adds one coin and its value to the player's totals
	RecordCollection(ctx context.Context, playerID string, denomination int64) error
}

// SponsorProfileRepository defines the interface for sponsor profiles
type SponsorProfileRepository interface {
	// Create registers a sponsor; returns ErrProfileExists when already registered
	Create(ctx context.Context, sponsorID, displayName string) (*entities.SponsorProfile, error)

	// GetByID returns a profile, or nil if the sponsor is not registered
	GetByID(ctx context.Context, sponsorID string) (*entities.SponsorProfile, error)

	// ApplyStats adds delta to the sponsor's counters, creating the profile if needed
	ApplyStats(ctx context.Context, sponsorID string, delta entities.SponsorStatsDelta) error
}

// ProcessedEventRepository defines the interface for inbound event deduplication
type ProcessedEventRepository interface {
	// MarkProcessed records an event id; returns false if it was already recorded
	MarkProcessed(ctx context.Context, eventID string, at time.Time) (bool, error)

	// Exists reports whether an event id was already recorded
	Exists(ctx context.Context, eventID string) (bool, error)
}
