package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coindrop/application"
	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	startLat = 51.50
	startLon = -0.12
)

// ledgerTotal counts a sponsor's units still in inventory plus those on the map
func ledgerTotal(t *testing.T, app *testApp, sponsorID string) int64 {
	t.Helper()
	var total int64
	err := app.db.DB.QueryRow(context.Background(), `
		SELECT
			COALESCE((SELECT SUM(quantity) FROM inventory WHERE owner_id = $1), 0) +
			(SELECT COUNT(*) FROM placed_coins WHERE owner_id = $1 AND status = 'placed')
	`, sponsorID).Scan(&total)
	require.NoError(t, err)
	return total
}

func TestCoinDrop_EndToEndFlow(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.profiles.RegisterSponsor(ctx, "sponsor-1", "Acme")
	require.NoError(t, err)
	_, err = app.profiles.RegisterPlayer(ctx, "player-1", "Walker")
	require.NoError(t, err)

	credited, err := app.inventory.HandlePurchaseCompleted(ctx, entities.PurchaseCompleted{
		EventID:      "evt-1",
		SponsorID:    "sponsor-1",
		Denomination: 100,
		Quantity:     5,
	})
	require.NoError(t, err)
	require.True(t, credited)

	started, err := app.sessions.StartSession(ctx, "player-1", startLat, startLon)
	require.NoError(t, err)
	require.NotEmpty(t, started.Coins)
	placed := len(started.Coins)
	assert.LessOrEqual(t, placed, 5)
	assert.Equal(t, int64(5-placed), app.inventoryQuantity(t, "sponsor-1", 100))

	for _, coin := range started.Coins {
		assert.Equal(t, entities.CoinStatusPlaced, coin.Status)
		assert.Equal(t, entities.EscrowStatusHeld, app.escrow(t, coin.ID).Status)
	}

	t.Run("collect at coin location", func(t *testing.T) {
		target := started.Coins[0]

		result, err := app.collection.CollectCoin(ctx, "player-1", target.ID, target.Latitude, target.Longitude)
		require.NoError(t, err)
		assert.Equal(t, target.ID, result.CoinID)
		assert.Equal(t, int64(100), result.Denomination)
		assert.Equal(t, 1, result.CoinsCollected)
		assert.Equal(t, int64(100), result.TotalValue)

		assert.Equal(t, entities.CoinStatusCollected, app.coin(t, target.ID).Status)
		assert.Equal(t, entities.EscrowStatusReleased, app.escrow(t, target.ID).Status)

		history, err := app.collection.GetHistory(ctx, "player-1", 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, target.ID, history[0].CoinID)
	})

	t.Run("collecting twice is rejected", func(t *testing.T) {
		target := started.Coins[0]
		_, err := app.collection.CollectCoin(ctx, "player-1", target.ID, target.Latitude, target.Longitude)
		assert.ErrorIs(t, err, entities.ErrCoinUnavailable)
	})

	t.Run("end session returns remaining coins", func(t *testing.T) {
		result, err := app.sessions.EndSession(ctx, "player-1")
		require.NoError(t, err)
		assert.Equal(t, entities.SessionStatusCompleted, result.Session.Status)
		assert.Equal(t, placed-1, result.CoinsReturned)

		assert.Equal(t, int64(4), app.inventoryQuantity(t, "sponsor-1", 100))
		for _, coin := range started.Coins[1:] {
			assert.Equal(t, entities.CoinStatusExpired, app.coin(t, coin.ID).Status)
			assert.Equal(t, entities.EscrowStatusRefunded, app.escrow(t, coin.ID).Status)
		}

		_, err = app.sessions.GetActiveSession(ctx, "player-1")
		assert.ErrorIs(t, err, entities.ErrNoActiveSession)
	})

	t.Run("profiles reflect the donation", func(t *testing.T) {
		player, err := app.profiles.GetPlayerProfile(ctx, "player-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), player.TotalCoinsCollected)
		assert.Equal(t, int64(100), player.TotalDonated)

		sponsor, err := app.profiles.GetSponsorProfile(ctx, "sponsor-1")
		require.NoError(t, err)
		assert.Equal(t, "Acme", sponsor.DisplayName)
		assert.Equal(t, int64(5), sponsor.TotalPurchased)
		assert.Equal(t, int64(placed), sponsor.TotalPlaced)
		assert.Equal(t, int64(100), sponsor.TotalDonated)
	})
}

func TestCoinDrop_StartSessionWithoutInventory(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()

	testutil.SeedPlayer(t, app.db.DB, "player-1")

	_, err := app.sessions.StartSession(ctx, "player-1", startLat, startLon)
	assert.ErrorIs(t, err, entities.ErrNoCoinsAvailable)

	// the failed start rolled back, so no session is left behind
	_, err = app.sessions.GetActiveSession(ctx, "player-1")
	assert.ErrorIs(t, err, entities.ErrNoActiveSession)
}

func TestCoinDrop_LazyExpiryOnCollect(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()
	now := time.Now().UTC()

	testutil.SeedPlayer(t, app.db.DB, "player-1")
	session := seedSession(t, app, "player-1", now.Add(-time.Hour))
	coin := testutil.CreateTestCoin(session.ID, "sponsor-1", 200, now.Add(-31*time.Minute), 30*time.Minute)
	testutil.SeedPlacedCoin(t, app.db.DB, coin)

	_, err := app.collection.CollectCoin(ctx, "player-1", coin.ID, coin.Latitude, coin.Longitude)
	require.ErrorIs(t, err, entities.ErrCoinExpired)

	// the reclaim is committed even though the collection failed
	assert.Equal(t, entities.CoinStatusExpired, app.coin(t, coin.ID).Status)
	assert.Equal(t, entities.EscrowStatusRefunded, app.escrow(t, coin.ID).Status)
	assert.Equal(t, int64(1), app.inventoryQuantity(t, "sponsor-1", 200))

	// the sweeper has nothing left to do for it
	sweeper := application.NewExpirationSweeper(app.uowFactory, time.Minute, 100, nil)
	result, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Found)
}

func TestExpirationSweeper_SweepOnce(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()
	now := time.Now().UTC()

	testutil.SeedPlayer(t, app.db.DB, "player-1")
	session := seedSession(t, app, "player-1", now.Add(-time.Hour))

	var overdue []*entities.PlacedCoin
	for i := 0; i < 3; i++ {
		coin := testutil.CreateTestCoin(session.ID, "sponsor-1", 50, now.Add(-40*time.Minute), 30*time.Minute)
		testutil.SeedPlacedCoin(t, app.db.DB, coin)
		overdue = append(overdue, coin)
	}
	fresh := testutil.CreateTestCoin(session.ID, "sponsor-1", 50, now, 30*time.Minute)
	testutil.SeedPlacedCoin(t, app.db.DB, fresh)

	observer := &recordingObserver{}
	sweeper := application.NewExpirationSweeper(app.uowFactory, time.Minute, 100, observer)

	result, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, interfaces.SweepResult{Found: 3, Expired: 3}, result)

	for _, coin := range overdue {
		assert.Equal(t, entities.CoinStatusExpired, app.coin(t, coin.ID).Status)
		assert.Equal(t, entities.EscrowStatusRefunded, app.escrow(t, coin.ID).Status)
	}
	assert.Equal(t, entities.CoinStatusPlaced, app.coin(t, fresh.ID).Status)
	assert.Equal(t, int64(3), app.inventoryQuantity(t, "sponsor-1", 50))

	// a second sweep is a no-op
	result, err = sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, interfaces.SweepResult{}, result)
	assert.Equal(t, int64(3), app.inventoryQuantity(t, "sponsor-1", 50))

	observer.mu.Lock()
	defer observer.mu.Unlock()
	assert.Len(t, observer.results, 2)
}

func TestCoinDrop_ConcurrentCollect(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()
	now := time.Now().UTC()

	testutil.SeedPlayer(t, app.db.DB, "player-1")
	session := seedSession(t, app, "player-1", now)
	coin := testutil.CreateTestCoin(session.ID, "sponsor-1", 500, now, 30*time.Minute)
	testutil.SeedPlacedCoin(t, app.db.DB, coin)

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = app.collection.CollectCoin(ctx, "player-1", coin.ID, coin.Latitude, coin.Longitude)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, entities.ErrCoinUnavailable)
	}
	assert.Equal(t, 1, succeeded)

	player, err := app.profiles.GetPlayerProfile(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), player.TotalCoinsCollected)
	assert.Equal(t, int64(500), player.TotalDonated)
	assert.Equal(t, entities.EscrowStatusReleased, app.escrow(t, coin.ID).Status)
}

func TestCoinDrop_ExpiryRacesCollection(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()
	now := time.Now().UTC()

	testutil.SeedPlayer(t, app.db.DB, "player-1")
	session := seedSession(t, app, "player-1", now.Add(-time.Hour))
	coin := testutil.CreateTestCoin(session.ID, "sponsor-1", 1000, now.Add(-31*time.Minute), 30*time.Minute)
	testutil.SeedPlacedCoin(t, app.db.DB, coin)

	sweeper := application.NewExpirationSweeper(app.uowFactory, time.Minute, 100, nil)

	var wg sync.WaitGroup
	var collectErr, sweepErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, collectErr = app.collection.CollectCoin(ctx, "player-1", coin.ID, coin.Latitude, coin.Longitude)
	}()
	go func() {
		defer wg.Done()
		_, sweepErr = sweeper.SweepOnce(ctx)
	}()
	wg.Wait()

	require.NoError(t, sweepErr)
	require.Error(t, collectErr)
	assert.True(t,
		errors.Is(collectErr, entities.ErrCoinExpired) || errors.Is(collectErr, entities.ErrCoinUnavailable),
		"unexpected collect error: %v", collectErr)

	// whichever path won, the coin went back exactly once
	assert.Equal(t, entities.CoinStatusExpired, app.coin(t, coin.ID).Status)
	assert.Equal(t, entities.EscrowStatusRefunded, app.escrow(t, coin.ID).Status)
	assert.Equal(t, int64(1), app.inventoryQuantity(t, "sponsor-1", 1000))
}

func TestCoinDrop_ConcurrentSessionStart(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()

	testutil.SeedPlayer(t, app.db.DB, "player-1")
	testutil.SeedInventory(t, app.db.DB, "sponsor-1", 100, 30)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = app.sessions.StartSession(ctx, "player-1", startLat, startLon)
		}(i)
	}
	wg.Wait()

	var started int
	for _, err := range errs {
		if err == nil {
			started++
			continue
		}
		assert.ErrorIs(t, err, entities.ErrSessionAlreadyActive)
	}
	assert.Equal(t, 1, started)

	// rejected starts never touched inventory
	assert.Equal(t, int64(30), ledgerTotal(t, app, "sponsor-1"))
}

func TestCoinDrop_ConcurrentSessionsConserveInventory(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()

	sponsors := []string{"sponsor-1", "sponsor-2", "sponsor-3"}
	denominations := []int64{50, 100, 500}
	for _, sponsorID := range sponsors {
		for _, denomination := range denominations {
			testutil.SeedInventory(t, app.db.DB, sponsorID, denomination, 3)
		}
	}

	const players = 8
	playerIDs := make([]string, players)
	for i := range playerIDs {
		playerIDs[i] = "player-" + string(rune('a'+i))
		testutil.SeedPlayer(t, app.db.DB, playerIDs[i])
	}

	var wg sync.WaitGroup
	startErrs := make([]error, players)
	for i, playerID := range playerIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, startErrs[i] = app.sessions.StartSession(ctx, playerID, startLat, startLon)
		}()
	}
	wg.Wait()

	started := 0
	for _, err := range startErrs {
		if err == nil {
			started++
			continue
		}
		assert.ErrorIs(t, err, entities.ErrNoCoinsAvailable)
	}
	assert.Positive(t, started)

	for _, sponsorID := range sponsors {
		assert.Equal(t, int64(9), ledgerTotal(t, app, sponsorID))
		for _, denomination := range denominations {
			assert.GreaterOrEqual(t, app.inventoryQuantity(t, sponsorID, denomination), int64(0))
		}
	}

	endErrs := make([]error, players)
	for i, playerID := range playerIDs {
		if startErrs[i] != nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, endErrs[i] = app.sessions.EndSession(ctx, playerID)
		}()
	}
	wg.Wait()

	for _, err := range endErrs {
		assert.NoError(t, err)
	}
	for _, sponsorID := range sponsors {
		for _, denomination := range denominations {
			assert.Equal(t, int64(3), app.inventoryQuantity(t, sponsorID, denomination))
		}
	}
}

func TestCoinDrop_PurchaseDeduplication(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()

	purchase := entities.PurchaseCompleted{
		EventID:      "evt-dup",
		SponsorID:    "sponsor-1",
		Denomination: 250,
		Quantity:     4,
	}

	const deliveries = 5
	var wg sync.WaitGroup
	results := make([]bool, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			credited, err := app.inventory.HandlePurchaseCompleted(ctx, purchase)
			assert.NoError(t, err)
			results[i] = credited
		}(i)
	}
	wg.Wait()

	var credited int
	for _, ok := range results {
		if ok {
			credited++
		}
	}
	assert.Equal(t, 1, credited)
	assert.Equal(t, int64(4), app.inventoryQuantity(t, "sponsor-1", 250))

	entries, err := app.inventory.GetInventory(ctx, "sponsor-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].Quantity)

	_, err = app.inventory.HandlePurchaseCompleted(ctx, entities.PurchaseCompleted{
		EventID:      "evt-bad",
		SponsorID:    "sponsor-1",
		Denomination: 1,
		Quantity:     1,
	})
	assert.ErrorIs(t, err, entities.ErrInvalidDenomination)
}

func seedSession(t *testing.T, app *testApp, playerID string, startedAt time.Time) *entities.Session {
	t.Helper()
	session := testutil.CreateTestSession(playerID, startedAt)
	app.read(t, func(uow interfaces.UnitOfWork) {
		require.NoError(t, uow.SessionRepository().Create(context.Background(), session))
		require.NoError(t, uow.Commit())
	})
	return session
}
