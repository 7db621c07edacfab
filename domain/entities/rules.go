package entities

import "time"

// GameRules holds the placement and collection constants
type GameRules struct {
	CollectionRadiusMeters float64
	CoinTTL                time.Duration
	PlacementMinKm         float64
	PlacementMaxKm         float64
	MinCoinsPerSession     int
	MaxCoinsPerSession     int
	MinDenomination        int64
	MaxDenomination        int64
}

// DefaultGameRules returns the production rule set
func DefaultGameRules() GameRules {
	return GameRules{
		CollectionRadiusMeters: 10,
		CoinTTL:                30 * time.Minute,
		PlacementMinKm:         1,
		PlacementMaxKm:         2,
		MinCoinsPerSession:     1,
		MaxCoinsPerSession:     10,
		MinDenomination:        50,
		MaxDenomination:        50000,
	}
}
