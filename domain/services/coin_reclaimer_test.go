package services

import (
	"context"
	"errors"
	"testing"

	"coindrop/domain/entities"
	"coindrop/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCoinReclaimer_Reclaim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("expires the coin and returns the unit", func(t *testing.T) {
		m := newServiceMocks()
		coin := placedCoin("coin-1", "session-1", "sponsor-a", 500, coinLat, coinLon, testNow)

		m.coins.On("TransitionStatus", ctx, "coin-1", entities.CoinStatusExpired, (*string)(nil), testNow).Return(true, nil)
		m.inventory.On("Credit", ctx, "sponsor-a", int64(500), int64(1)).Return(nil)
		m.escrow.On("Refund", ctx, "coin-1", testNow).Return(nil)
		m.publisher.On("Publish", events.CoinExpiredEvent{
			CoinID:       "coin-1",
			SessionID:    "session-1",
			OwnerID:      "sponsor-a",
			Denomination: 500,
			Reason:       events.ExpiryReasonSweep,
		}).Return(nil)

		reclaimer := NewCoinReclaimer(m.coins, m.inventory, m.escrow, m.publisher)
		reclaimed, err := reclaimer.Reclaim(ctx, coin, events.ExpiryReasonSweep, testNow)
		require.NoError(t, err)
		assert.True(t, reclaimed)

		m.inventory.AssertExpectations(t)
		m.escrow.AssertExpectations(t)
		m.publisher.AssertExpectations(t)
	})

	t.Run("coin settled elsewhere is left alone", func(t *testing.T) {
		m := newServiceMocks()
		coin := placedCoin("coin-1", "session-1", "sponsor-a", 500, coinLat, coinLon, testNow)

		m.coins.On("TransitionStatus", ctx, "coin-1", entities.CoinStatusExpired, (*string)(nil), testNow).Return(false, nil)

		reclaimer := NewCoinReclaimer(m.coins, m.inventory, m.escrow, m.publisher)
		reclaimed, err := reclaimer.Reclaim(ctx, coin, events.ExpiryReasonLazy, testNow)
		require.NoError(t, err)
		assert.False(t, reclaimed)

		m.inventory.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.escrow.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("refund conflict is an integrity failure", func(t *testing.T) {
		m := newServiceMocks()
		coin := placedCoin("coin-1", "session-1", "sponsor-a", 500, coinLat, coinLon, testNow)

		m.coins.On("TransitionStatus", ctx, "coin-1", entities.CoinStatusExpired, (*string)(nil), testNow).Return(true, nil)
		m.inventory.On("Credit", ctx, "sponsor-a", int64(500), int64(1)).Return(nil)
		m.escrow.On("Refund", ctx, "coin-1", testNow).Return(entities.ErrEscrowConflict)

		reclaimer := NewCoinReclaimer(m.coins, m.inventory, m.escrow, m.publisher)
		_, err := reclaimer.Reclaim(ctx, coin, events.ExpiryReasonSessionEnd, testNow)
		assert.ErrorIs(t, err, entities.ErrLedgerIntegrity)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("storage errors are wrapped", func(t *testing.T) {
		m := newServiceMocks()
		coin := placedCoin("coin-1", "session-1", "sponsor-a", 500, coinLat, coinLon, testNow)
		dbErr := errors.New("deadlock detected")

		m.coins.On("TransitionStatus", ctx, "coin-1", entities.CoinStatusExpired, (*string)(nil), testNow).Return(true, nil)
		m.inventory.On("Credit", ctx, "sponsor-a", int64(500), int64(1)).Return(dbErr)

		reclaimer := NewCoinReclaimer(m.coins, m.inventory, m.escrow, m.publisher)
		_, err := reclaimer.Reclaim(ctx, coin, events.ExpiryReasonSweep, testNow)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, entities.ErrLedgerIntegrity)
	})
}
