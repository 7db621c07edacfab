package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeCoinPlaced        EventType = "coin_placed"
	EventTypeCoinCollected     EventType = "coin_collected"
	EventTypeCoinExpired       EventType = "coin_expired"
	EventTypeSessionStarted    EventType = "session_started"
	EventTypeSessionEnded      EventType = "session_ended"
	EventTypeInventoryCredited EventType = "inventory_credited"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ExpiryReason records which path reclaimed an uncollected coin
type ExpiryReason string

const (
	ExpiryReasonSessionEnd ExpiryReason = "session_end"
	ExpiryReasonLazy       ExpiryReason = "lazy"
	ExpiryReasonSweep      ExpiryReason = "sweep"
)

// CoinPlacedEvent is emitted for each coin placed at session start
type CoinPlacedEvent struct {
	CoinID       string    `json:"coin_id"`
	SessionID    string    `json:"session_id"`
	OwnerID      string    `json:"owner_id"`
	Denomination int64     `json:"denomination"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (e CoinPlacedEvent) Type() EventType {
	return EventTypeCoinPlaced
}

// CoinCollectedEvent is emitted when a player collects a coin and its escrow is released
type CoinCollectedEvent struct {
	CoinID       string    `json:"coin_id"`
	SessionID    string    `json:"session_id"`
	PlayerID     string    `json:"player_id"`
	OwnerID      string    `json:"owner_id"`
	Denomination int64     `json:"denomination"`
	CollectedAt  time.Time `json:"collected_at"`
}

func (e CoinCollectedEvent) Type() EventType {
	return EventTypeCoinCollected
}

// CoinExpiredEvent is emitted when an uncollected coin is returned to inventory
type CoinExpiredEvent struct {
	CoinID       string       `json:"coin_id"`
	SessionID    string       `json:"session_id,omitempty"`
	OwnerID      string       `json:"owner_id"`
	Denomination int64        `json:"denomination"`
	Reason       ExpiryReason `json:"reason"`
}

func (e CoinExpiredEvent) Type() EventType {
	return EventTypeCoinExpired
}

// SessionStartedEvent is emitted once a session has at least one coin placed
type SessionStartedEvent struct {
	SessionID   string `json:"session_id"`
	PlayerID    string `json:"player_id"`
	CoinsPlaced int    `json:"coins_placed"`
}

func (e SessionStartedEvent) Type() EventType {
	return EventTypeSessionStarted
}

// SessionEndedEvent is emitted when a player ends their session
type SessionEndedEvent struct {
	SessionID      string `json:"session_id"`
	PlayerID       string `json:"player_id"`
	Status         string `json:"status"`
	CoinsCollected int    `json:"coins_collected"`
	TotalValue     int64  `json:"total_value"`
	CoinsReturned  int    `json:"coins_returned"`
}

func (e SessionEndedEvent) Type() EventType {
	return EventTypeSessionEnded
}

// InventoryCreditedEvent is emitted when a purchase adds coins to a sponsor's inventory
type InventoryCreditedEvent struct {
	PurchaseEventID string `json:"purchase_event_id"`
	OwnerID         string `json:"owner_id"`
	Denomination    int64  `json:"denomination"`
	Quantity        int64  `json:"quantity"`
}

func (e InventoryCreditedEvent) Type() EventType {
	return EventTypeInventoryCredited
}
