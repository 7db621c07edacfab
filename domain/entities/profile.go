package entities

import "time"

// PlayerProfile aggregates a player's collection totals
type PlayerProfile struct {
	PlayerID            string    `db:"player_id" json:"player_id"`
	DisplayName         string    `db:"display_name" json:"display_name"`
	TotalCoinsCollected int64     `db:"total_coins_collected" json:"total_coins_collected"`
	TotalDonated        int64     `db:"total_donated" json:"total_donated"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// SponsorProfile aggregates a sponsor's purchase and donation totals.
// TotalPurchased and TotalPlaced count coins; TotalDonated is a value in minor units.
type SponsorProfile struct {
	SponsorID      string    `db:"sponsor_id" json:"sponsor_id"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	TotalPurchased int64     `db:"total_purchased" json:"total_purchased"`
	TotalPlaced    int64     `db:"total_placed" json:"total_placed"`
	TotalDonated   int64     `db:"total_donated" json:"total_donated"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SponsorStatsDelta is an incremental change to a sponsor's aggregate counters
type SponsorStatsDelta struct {
	Purchased int64
	Placed    int64
	Donated   int64
}
