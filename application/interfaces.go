package application

import (
	"context"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
)

// SessionHandler runs session operations inside a unit of work
type SessionHandler interface {
	StartSession(ctx context.Context, playerID string, lat, lon float64) (*interfaces.StartSessionResult, error)
	EndSession(ctx context.Context, playerID string) (*interfaces.EndSessionResult, error)
	GetActiveSession(ctx context.Context, playerID string) (*interfaces.ActiveSessionView, error)
}

// CollectionHandler runs coin collection inside a unit of work
type CollectionHandler interface {
	CollectCoin(ctx context.Context, playerID, coinID string, lat, lon float64) (*interfaces.CollectResult, error)
	GetHistory(ctx context.Context, playerID string, limit int) ([]*entities.CollectionRecord, error)
}

// PurchaseHandler credits inventory for payment provider notifications.
// It is implemented by the application layer and called by the NATS consumer.
type PurchaseHandler interface {
	// HandlePurchaseCompleted returns false when the event was already processed
	HandlePurchaseCompleted(ctx context.Context, purchase entities.PurchaseCompleted) (bool, error)
}

// InventoryHandler exposes sponsor inventory
type InventoryHandler interface {
	PurchaseHandler
	GetInventory(ctx context.Context, sponsorID string) ([]*entities.InventoryEntry, error)
}

// ProfileHandler registers and reads player and sponsor profiles
type ProfileHandler interface {
	RegisterPlayer(ctx context.Context, playerID, displayName string) (*entities.PlayerProfile, error)
	RegisterSponsor(ctx context.Context, sponsorID, displayName string) (*entities.SponsorProfile, error)
	GetPlayerProfile(ctx context.Context, playerID string) (*entities.PlayerProfile, error)
	GetSponsorProfile(ctx context.Context, sponsorID string) (*entities.SponsorProfile, error)
}

// SweepObserver receives the outcome of every expiration sweep
type SweepObserver interface {
	RecordSweep(result interfaces.SweepResult, duration time.Duration)
}
