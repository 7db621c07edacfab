package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"coindrop/domain/entities"
	"coindrop/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_OneActivePerPlayer(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	repo := NewSessionRepository(testDB.DB)

	first := testutil.CreateTestSession("player-1", now)
	require.NoError(t, repo.Create(ctx, first))

	second := testutil.CreateTestSession("player-1", now)
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, entities.ErrSessionAlreadyActive)

	// another player is unaffected
	require.NoError(t, repo.Create(ctx, testutil.CreateTestSession("player-2", now)))

	ended, err := repo.End(ctx, first.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, ended)

	// once ended a new session can start
	require.NoError(t, repo.Create(ctx, testutil.CreateTestSession("player-1", now.Add(2*time.Minute))))
}

func TestSessionRepository_ConcurrentCreate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	repo := NewSessionRepository(testDB.DB)

	var mu sync.Mutex
	var created, rejected int
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, testutil.CreateTestSession("player-1", now))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case assert.ErrorIs(t, err, entities.ErrSessionAlreadyActive):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 7, rejected)
}

func TestSessionRepository_RecordCollectionAndEnd(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	repo := NewSessionRepository(testDB.DB)

	t.Run("collections end completed", func(t *testing.T) {
		session := testutil.CreateTestSession("player-1", now)
		require.NoError(t, repo.Create(ctx, session))

		updated, err := repo.RecordCollection(ctx, session.ID, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.CoinsCollected)

		updated, err = repo.RecordCollection(ctx, session.ID, 250)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.CoinsCollected)
		assert.Equal(t, int64(350), updated.TotalValue)

		ended, err := repo.End(ctx, session.ID, now)
		require.NoError(t, err)
		assert.Equal(t, entities.SessionStatusCompleted, ended.Status)
		require.NotNil(t, ended.EndedAt)

		again, err := repo.End(ctx, session.ID, now)
		require.NoError(t, err)
		assert.Nil(t, again)
	})

	t.Run("no collections end abandoned", func(t *testing.T) {
		session := testutil.CreateTestSession("player-2", now)
		require.NoError(t, repo.Create(ctx, session))

		ended, err := repo.End(ctx, session.ID, now)
		require.NoError(t, err)
		assert.Equal(t, entities.SessionStatusAbandoned, ended.Status)

		active, err := repo.GetActiveByPlayer(ctx, "player-2")
		require.NoError(t, err)
		assert.Nil(t, active)

		got, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.SessionStatusAbandoned, got.Status)
	})
}
