package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"coindrop/application"
	"coindrop/config"
	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/domain/utils"
	"coindrop/infrastructure"
	"coindrop/repository/testutil"

	"github.com/stretchr/testify/require"
)

// testApp bundles the handlers over one test database
type testApp struct {
	db         *testutil.TestDatabase
	uowFactory *infrastructure.UnitOfWorkFactory
	sessions   application.SessionHandler
	collection application.CollectionHandler
	inventory  application.InventoryHandler
	profiles   application.ProfileHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	testDB := testutil.SetupTestDatabase(t)
	uowFactory := infrastructure.NewUnitOfWorkFactory(testDB.DB, infrastructure.NewNoopEventPublisher())
	rules := config.Get().GameRules()
	rng := utils.NewSeededRandomSource(uint64(time.Now().UnixNano()))

	return &testApp{
		db:         testDB,
		uowFactory: uowFactory,
		sessions:   application.NewSessionHandler(uowFactory, rng, rules),
		collection: application.NewCollectionHandler(uowFactory, rng, rules),
		inventory:  application.NewInventoryHandler(uowFactory, rng, rules),
		profiles:   application.NewProfileHandler(uowFactory),
	}
}

// read runs fn in a unit of work that is rolled back afterwards
func (a *testApp) read(t *testing.T, fn func(uow interfaces.UnitOfWork)) {
	t.Helper()
	uow := a.uowFactory.Create()
	require.NoError(t, uow.Begin(context.Background()))
	defer uow.Rollback()
	fn(uow)
}

func (a *testApp) inventoryQuantity(t *testing.T, ownerID string, denomination int64) int64 {
	t.Helper()
	var quantity int64
	a.read(t, func(uow interfaces.UnitOfWork) {
		entry, err := uow.InventoryRepository().Get(context.Background(), ownerID, denomination)
		require.NoError(t, err)
		if entry != nil {
			quantity = entry.Quantity
		}
	})
	return quantity
}

func (a *testApp) coin(t *testing.T, coinID string) *entities.PlacedCoin {
	t.Helper()
	var coin *entities.PlacedCoin
	a.read(t, func(uow interfaces.UnitOfWork) {
		var err error
		coin, err = uow.CoinRepository().GetByID(context.Background(), coinID)
		require.NoError(t, err)
	})
	require.NotNil(t, coin)
	return coin
}

func (a *testApp) escrow(t *testing.T, coinID string) *entities.EscrowHold {
	t.Helper()
	var hold *entities.EscrowHold
	a.read(t, func(uow interfaces.UnitOfWork) {
		var err error
		hold, err = uow.EscrowRepository().GetByCoinID(context.Background(), coinID)
		require.NoError(t, err)
	})
	require.NotNil(t, hold)
	return hold
}

// recordingObserver captures sweep results
type recordingObserver struct {
	mu      sync.Mutex
	results []interfaces.SweepResult
}

func (o *recordingObserver) RecordSweep(result interfaces.SweepResult, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}
