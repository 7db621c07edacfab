package entities

import "time"

// EscrowStatus represents the state of an escrow hold
type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "held"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusRefunded EscrowStatus = "refunded"
)

// EscrowHold reserves a coin's value between placement and collection or expiry.
// Released mirrors a collected coin, refunded mirrors an expired one.
type EscrowHold struct {
	ID         string       `db:"id"`
	CoinID     string       `db:"coin_id"`
	OwnerID    string       `db:"owner_id"`
	Amount     int64        `db:"amount"`
	Status     EscrowStatus `db:"status"`
	CreatedAt  time.Time    `db:"created_at"`
	ReleasedAt *time.Time   `db:"released_at"`
}

// IsHeld returns true if the hold has not been settled
func (h *EscrowHold) IsHeld() bool {
	return h.Status == EscrowStatusHeld
}
