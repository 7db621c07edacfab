package entities

import "time"

// InventoryEntry is a sponsor's stock of unplaced coins of one denomination
type InventoryEntry struct {
	OwnerID      string    `db:"owner_id"`
	Denomination int64     `db:"denomination"`
	Quantity     int64     `db:"quantity"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// CoinUnit is a single coin drawn from inventory for placement
type CoinUnit struct {
	OwnerID      string
	Denomination int64
}

// TotalValue returns the combined value of every unit in the entry
func (e *InventoryEntry) TotalValue() int64 {
	return e.Quantity * e.Denomination
}
