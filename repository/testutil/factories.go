package testutil

import (
	"context"
	"testing"
	"time"

	"coindrop/database"
	"coindrop/domain/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// CreateTestSession builds an active session for a player
func CreateTestSession(playerID string, startedAt time.Time) *entities.Session {
	return &entities.Session{
		ID:             uuid.NewString(),
		PlayerID:       playerID,
		Status:         entities.SessionStatusActive,
		StartLatitude:  51.50,
		StartLongitude: -0.12,
		StartedAt:      startedAt,
	}
}

// CreateTestCoin builds a placed coin for a session expiring ttl after placedAt
func CreateTestCoin(sessionID, ownerID string, denomination int64, placedAt time.Time, ttl time.Duration) *entities.PlacedCoin {
	return &entities.PlacedCoin{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		SessionID:    &sessionID,
		Denomination: denomination,
		Latitude:     51.51,
		Longitude:    -0.12,
		Status:       entities.CoinStatusPlaced,
		PlacedAt:     placedAt,
		ExpiresAt:    placedAt.Add(ttl),
	}
}

// SeedInventory credits a sponsor directly, bypassing purchase deduplication
func SeedInventory(t *testing.T, db *database.DB, ownerID string, denomination, quantity int64) {
	t.Helper()
	_, err := db.Exec(context.Background(), `
		INSERT INTO inventory (owner_id, denomination, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, denomination) DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity
	`, ownerID, denomination, quantity)
	require.NoError(t, err)
}

// SeedPlayer registers a player profile
func SeedPlayer(t *testing.T, db *database.DB, playerID string) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO player_profiles (player_id, display_name) VALUES ($1, $1)`, playerID)
	require.NoError(t, err)
}

// SeedPlacedCoin inserts a placed coin and its held escrow; the session must already exist
func SeedPlacedCoin(t *testing.T, db *database.DB, coin *entities.PlacedCoin) {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO placed_coins (id, owner_id, session_id, denomination, latitude, longitude, status, placed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'placed', $7, $8)
	`, coin.ID, coin.OwnerID, coin.SessionID, coin.Denomination, coin.Latitude, coin.Longitude, coin.PlacedAt, coin.ExpiresAt)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO escrow_holds (id, coin_id, owner_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, 'held', $5)
	`, uuid.NewString(), coin.ID, coin.OwnerID, coin.Denomination, coin.PlacedAt)
	require.NoError(t, err)
}
