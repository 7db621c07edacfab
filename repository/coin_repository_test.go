package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coindrop/domain/entities"
	"coindrop/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinRepository_PlaceAndQuery(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sessions := NewSessionRepository(testDB.DB)
	coins := NewCoinRepository(testDB.DB)

	session := testutil.CreateTestSession("player-1", now)
	require.NoError(t, sessions.Create(ctx, session))

	fresh := testutil.CreateTestCoin(session.ID, "sponsor-a", 100, now, 30*time.Minute)
	stale := testutil.CreateTestCoin(session.ID, "sponsor-a", 200, now.Add(-time.Hour), 30*time.Minute)
	require.NoError(t, coins.Place(ctx, fresh))
	require.NoError(t, coins.Place(ctx, stale))

	t.Run("get by id", func(t *testing.T) {
		got, err := coins.GetByID(ctx, fresh.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, fresh.Denomination, got.Denomination)
		assert.True(t, got.BelongsToSession(session.ID))
		assert.True(t, got.ExpiresAt.Equal(fresh.ExpiresAt))
		assert.Nil(t, got.CollectedAt)

		missing, err := coins.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("active for session", func(t *testing.T) {
		got, err := coins.GetActiveForSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("find expired includes the boundary", func(t *testing.T) {
		got, err := coins.FindExpired(ctx, stale.ExpiresAt, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, stale.ID, got[0].ID)

		got, err = coins.FindExpired(ctx, now.Add(time.Hour), 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestCoinRepository_TransitionStatus(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sessions := NewSessionRepository(testDB.DB)
	coins := NewCoinRepository(testDB.DB)

	session := testutil.CreateTestSession("player-1", now)
	require.NoError(t, sessions.Create(ctx, session))

	t.Run("collected records the collector", func(t *testing.T) {
		coin := testutil.CreateTestCoin(session.ID, "sponsor-a", 100, now, 30*time.Minute)
		require.NoError(t, coins.Place(ctx, coin))

		player := "player-1"
		won, err := coins.TransitionStatus(ctx, coin.ID, entities.CoinStatusCollected, &player, now)
		require.NoError(t, err)
		assert.True(t, won)

		got, err := coins.GetByID(ctx, coin.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.CoinStatusCollected, got.Status)
		require.NotNil(t, got.CollectedByPlayerID)
		assert.Equal(t, "player-1", *got.CollectedByPlayerID)

		won, err = coins.TransitionStatus(ctx, coin.ID, entities.CoinStatusExpired, nil, now)
		require.NoError(t, err)
		assert.False(t, won)
	})

	t.Run("placed is not a valid target", func(t *testing.T) {
		_, err := coins.TransitionStatus(ctx, "any", entities.CoinStatusPlaced, nil, now)
		assert.Error(t, err)
	})

	t.Run("concurrent collect and expire have a single winner", func(t *testing.T) {
		coin := testutil.CreateTestCoin(session.ID, "sponsor-a", 100, now, 30*time.Minute)
		require.NoError(t, coins.Place(ctx, coin))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
					repo := NewCoinRepositoryScoped(tx)
					var won bool
					var err error
					if i%2 == 0 {
						player := "player-1"
						won, err = repo.TransitionStatus(ctx, coin.ID, entities.CoinStatusCollected, &player, now)
					} else {
						won, err = repo.TransitionStatus(ctx, coin.ID, entities.CoinStatusExpired, nil, now)
					}
					if won {
						wins.Add(1)
					}
					return err
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())

		got, err := coins.GetByID(ctx, coin.ID)
		require.NoError(t, err)
		assert.True(t, got.Status.IsTerminal())
	})
}
