package testhelpers

import (
	"context"
	"time"

	"coindrop/domain/entities"
	"coindrop/events"

	"github.com/stretchr/testify/mock"
)

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Credit(ctx context.Context, ownerID string, denomination, quantity int64) error {
	args := m.Called(ctx, ownerID, denomination, quantity)
	return args.Error(0)
}

func (m *MockInventoryRepository) Debit(ctx context.Context, ownerID string, denomination, quantity int64) (bool, error) {
	args := m.Called(ctx, ownerID, denomination, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) Get(ctx context.Context, ownerID string, denomination int64) (*entities.InventoryEntry, error) {
	args := m.Called(ctx, ownerID, denomination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InventoryEntry), args.Error(1)
}

func (m *MockInventoryRepository) ListAvailable(ctx context.Context, limit int) ([]*entities.InventoryEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InventoryEntry), args.Error(1)
}

func (m *MockInventoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InventoryEntry), args.Error(1)
}

// MockCoinRepository is a mock implementation of CoinRepository
type MockCoinRepository struct {
	mock.Mock
}

func (m *MockCoinRepository) Place(ctx context.Context, coin *entities.PlacedCoin) error {
	args := m.Called(ctx, coin)
	return args.Error(0)
}

func (m *MockCoinRepository) GetByID(ctx context.Context, coinID string) (*entities.PlacedCoin, error) {
	args := m.Called(ctx, coinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlacedCoin), args.Error(1)
}

func (m *MockCoinRepository) GetActiveForSession(ctx context.Context, sessionID string) ([]*entities.PlacedCoin, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PlacedCoin), args.Error(1)
}

func (m *MockCoinRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entities.PlacedCoin, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PlacedCoin), args.Error(1)
}

func (m *MockCoinRepository) TransitionStatus(ctx context.Context, coinID string, newStatus entities.CoinStatus, collectorID *string, at time.Time) (bool, error) {
	args := m.Called(ctx, coinID, newStatus, collectorID, at)
	return args.Bool(0), args.Error(1)
}

// MockEscrowRepository is a mock implementation of EscrowRepository
type MockEscrowRepository struct {
	mock.Mock
}

func (m *MockEscrowRepository) Open(ctx context.Context, coinID, ownerID string, amount int64, at time.Time) (*entities.EscrowHold, error) {
	args := m.Called(ctx, coinID, ownerID, amount, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EscrowHold), args.Error(1)
}

func (m *MockEscrowRepository) Release(ctx context.Context, coinID string, at time.Time) error {
	args := m.Called(ctx, coinID, at)
	return args.Error(0)
}

func (m *MockEscrowRepository) Refund(ctx context.Context, coinID string, at time.Time) error {
	args := m.Called(ctx, coinID, at)
	return args.Error(0)
}

func (m *MockEscrowRepository) GetByCoinID(ctx context.Context, coinID string) (*entities.EscrowHold, error) {
	args := m.Called(ctx, coinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EscrowHold), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *entities.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, sessionID string) (*entities.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) GetActiveByPlayer(ctx context.Context, playerID string) (*entities.Session, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) RecordCollection(ctx context.Context, sessionID string, denomination int64) (*entities.Session, error) {
	args := m.Called(ctx, sessionID, denomination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionRepository) End(ctx context.Context, sessionID string, at time.Time) (*entities.Session, error) {
	args := m.Called(ctx, sessionID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

// MockCollectionRecordRepository is a mock implementation of CollectionRecordRepository
type MockCollectionRecordRepository struct {
	mock.Mock
}

func (m *MockCollectionRecordRepository) Append(ctx context.Context, record *entities.CollectionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCollectionRecordRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.CollectionRecord, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CollectionRecord), args.Error(1)
}

// MockPlayerProfileRepository is a mock implementation of PlayerProfileRepository
type MockPlayerProfileRepository struct {
	mock.Mock
}

func (m *MockPlayerProfileRepository) Create(ctx context.Context, playerID, displayName string) (*entities.PlayerProfile, error) {
	args := m.Called(ctx, playerID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlayerProfile), args.Error(1)
}

func (m *MockPlayerProfileRepository) GetByID(ctx context.Context, playerID string) (*entities.PlayerProfile, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlayerProfile), args.Error(1)
}

func (m *MockPlayerProfileRepository) RecordCollection(ctx context.Context, playerID string, denomination int64) error {
	args := m.Called(ctx, playerID, denomination)
	return args.Error(0)
}

// MockSponsorProfileRepository is a mock implementation of SponsorProfileRepository
type MockSponsorProfileRepository struct {
	mock.Mock
}

func (m *MockSponsorProfileRepository) Create(ctx context.Context, sponsorID, displayName string) (*entities.SponsorProfile, error) {
	args := m.Called(ctx, sponsorID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SponsorProfile), args.Error(1)
}

func (m *MockSponsorProfileRepository) GetByID(ctx context.Context, sponsorID string) (*entities.SponsorProfile, error) {
	args := m.Called(ctx, sponsorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SponsorProfile), args.Error(1)
}

func (m *MockSponsorProfileRepository) ApplyStats(ctx context.Context, sponsorID string, delta entities.SponsorStatsDelta) error {
	args := m.Called(ctx, sponsorID, delta)
	return args.Error(0)
}

// MockProcessedEventRepository is a mock implementation of ProcessedEventRepository
type MockProcessedEventRepository struct {
	mock.Mock
}

func (m *MockProcessedEventRepository) MarkProcessed(ctx context.Context, eventID string, at time.Time) (bool, error) {
	args := m.Called(ctx, eventID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockProcessedEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockCoinReclaimer is a mock implementation of CoinReclaimer
type MockCoinReclaimer struct {
	mock.Mock
}

func (m *MockCoinReclaimer) Reclaim(ctx context.Context, coin *entities.PlacedCoin, reason events.ExpiryReason, now time.Time) (bool, error) {
	args := m.Called(ctx, coin, reason, now)
	return args.Bool(0), args.Error(1)
}

// MockTransactionalEventPublisher is a mock implementation of TransactionalEventPublisher
type MockTransactionalEventPublisher struct {
	MockEventPublisher
}

func (m *MockTransactionalEventPublisher) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransactionalEventPublisher) Discard() {
	m.Called()
}
