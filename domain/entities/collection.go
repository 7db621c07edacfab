package entities

import "time"

// CollectionRecord is the append-only audit entry for a successful collection
type CollectionRecord struct {
	ID           string    `db:"id"`
	PlayerID     string    `db:"player_id"`
	CoinID       string    `db:"coin_id"`
	SessionID    string    `db:"session_id"`
	Denomination int64     `db:"denomination"`
	CollectedAt  time.Time `db:"collected_at"`
}
