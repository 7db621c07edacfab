package entities

// PurchaseCompleted is a payment provider notification that a sponsor bought coins
type PurchaseCompleted struct {
	EventID      string `json:"event_id"`
	SponsorID    string `json:"sponsor_id"`
	Denomination int64  `json:"denomination"`
	Quantity     int64  `json:"quantity"`
}
