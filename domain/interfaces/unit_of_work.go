package interfaces

import "context"

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	InventoryRepository() InventoryRepository
	CoinRepository() CoinRepository
	EscrowRepository() EscrowRepository
	SessionRepository() SessionRepository
	CollectionRecordRepository() CollectionRecordRepository
	PlayerProfileRepository() PlayerProfileRepository
	SponsorProfileRepository() SponsorProfileRepository
	ProcessedEventRepository() ProcessedEventRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
