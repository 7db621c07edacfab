package observability

// Metric name prefixes
const (
	MetricPrefix = "coindrop"
)

// Metric names
const (
	// Coin metrics
	CoinsPlacedTotal    = MetricPrefix + ".coins.placed_total"
	CoinsCollectedTotal = MetricPrefix + ".coins.collected_total"
	CoinsExpiredTotal   = MetricPrefix + ".coins.expired_total"
	CoinValueDonated    = MetricPrefix + ".coins.value_donated_total"

	// Session metrics
	SessionsStartedTotal = MetricPrefix + ".sessions.started_total"
	SessionsEndedTotal   = MetricPrefix + ".sessions.ended_total"
	SessionsActive       = MetricPrefix + ".sessions.active"

	// Purchase metrics
	PurchasesTotal = MetricPrefix + ".purchases.total"

	// Sweeper metrics
	SweepRunsTotal = MetricPrefix + ".sweeper.runs_total"
	SweepDuration  = MetricPrefix + ".sweeper.duration"

	// NATS metrics
	NATSMessagesReceivedTotal  = MetricPrefix + ".nats.messages_received_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelEventType = "event_type"
	LabelReason    = "reason"
	LabelStatus    = "status"
	LabelOutcome   = "outcome"
)

// Purchase outcomes
const (
	PurchaseOutcomeCredited  = "credited"
	PurchaseOutcomeDuplicate = "duplicate"
	PurchaseOutcomeInvalid   = "invalid"
	PurchaseOutcomeFailed    = "failed"
)
