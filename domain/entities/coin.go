package entities

import "time"

// CoinStatus represents the lifecycle state of a placed coin
type CoinStatus string

const (
	// CoinStatusAvailable is never assigned by placement; coins are created as placed
	CoinStatusAvailable CoinStatus = "available"
	CoinStatusPlaced    CoinStatus = "placed"
	CoinStatusCollected CoinStatus = "collected"
	CoinStatusExpired   CoinStatus = "expired"
)

// IsTerminal returns true once the coin can no longer change state
func (s CoinStatus) IsTerminal() bool {
	return s == CoinStatusCollected || s == CoinStatusExpired
}

// PlacedCoin is one coin instance placed on the map for a single session
type PlacedCoin struct {
	ID                  string     `db:"id"`
	OwnerID             string     `db:"owner_id"`
	SessionID           *string    `db:"session_id"`
	Denomination        int64      `db:"denomination"`
	Latitude            float64    `db:"latitude"`
	Longitude           float64    `db:"longitude"`
	Status              CoinStatus `db:"status"`
	PlacedAt            time.Time  `db:"placed_at"`
	ExpiresAt           time.Time  `db:"expires_at"`
	CollectedAt         *time.Time `db:"collected_at"`
	CollectedByPlayerID *string    `db:"collected_by_player_id"`
}

// IsPlaced returns true if the coin is still waiting to be collected or expired
func (c *PlacedCoin) IsPlaced() bool {
	return c.Status == CoinStatusPlaced
}

// IsExpiredAt returns true if the coin's TTL has elapsed at the given time
func (c *PlacedCoin) IsExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// BelongsToSession returns true if the coin was placed for the given session
func (c *PlacedCoin) BelongsToSession(sessionID string) bool {
	return c.SessionID != nil && *c.SessionID == sessionID
}
