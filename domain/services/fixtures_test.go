package services

import (
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/testhelpers"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type serviceMocks struct {
	inventory *testhelpers.MockInventoryRepository
	coins     *testhelpers.MockCoinRepository
	escrow    *testhelpers.MockEscrowRepository
	sessions  *testhelpers.MockSessionRepository
	records   *testhelpers.MockCollectionRecordRepository
	players   *testhelpers.MockPlayerProfileRepository
	sponsors  *testhelpers.MockSponsorProfileRepository
	processed *testhelpers.MockProcessedEventRepository
	publisher *testhelpers.MockEventPublisher
	reclaimer *testhelpers.MockCoinReclaimer
}

func newServiceMocks() *serviceMocks {
	return &serviceMocks{
		inventory: new(testhelpers.MockInventoryRepository),
		coins:     new(testhelpers.MockCoinRepository),
		escrow:    new(testhelpers.MockEscrowRepository),
		sessions:  new(testhelpers.MockSessionRepository),
		records:   new(testhelpers.MockCollectionRecordRepository),
		players:   new(testhelpers.MockPlayerProfileRepository),
		sponsors:  new(testhelpers.MockSponsorProfileRepository),
		processed: new(testhelpers.MockProcessedEventRepository),
		publisher: new(testhelpers.MockEventPublisher),
		reclaimer: new(testhelpers.MockCoinReclaimer),
	}
}

func activeSession(id, playerID string) *entities.Session {
	return &entities.Session{
		ID:             id,
		PlayerID:       playerID,
		Status:         entities.SessionStatusActive,
		StartLatitude:  51.50,
		StartLongitude: -0.12,
		StartedAt:      testNow.Add(-10 * time.Minute),
	}
}

func placedCoin(id, sessionID, ownerID string, denomination int64, lat, lon float64, expiresAt time.Time) *entities.PlacedCoin {
	sid := sessionID
	return &entities.PlacedCoin{
		ID:           id,
		OwnerID:      ownerID,
		SessionID:    &sid,
		Denomination: denomination,
		Latitude:     lat,
		Longitude:    lon,
		Status:       entities.CoinStatusPlaced,
		PlacedAt:     expiresAt.Add(-30 * time.Minute),
		ExpiresAt:    expiresAt,
	}
}
