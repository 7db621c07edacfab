package services

import (
	"context"
	"errors"
	"testing"

	"coindrop/domain/entities"
	"coindrop/domain/testhelpers"
	"coindrop/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBuildCandidatePool(t *testing.T) {
	t.Parallel()

	entries := []*entities.InventoryEntry{
		{OwnerID: "sponsor-a", Denomination: 100, Quantity: 3},
		{OwnerID: "sponsor-b", Denomination: 500, Quantity: 10},
		{OwnerID: "sponsor-c", Denomination: 50, Quantity: 4},
	}

	tests := []struct {
		name      string
		count     int
		wantLen   int
		wantFirst string
		wantLast  string
	}{
		{name: "cap at twice the count", count: 2, wantLen: 4, wantFirst: "sponsor-a", wantLast: "sponsor-b"},
		{name: "pool spans owners in listing order", count: 5, wantLen: 10, wantFirst: "sponsor-a", wantLast: "sponsor-b"},
		{name: "pool smaller than cap", count: 10, wantLen: 17, wantFirst: "sponsor-a", wantLast: "sponsor-c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := BuildCandidatePool(entries, tt.count)
			require.Len(t, pool, tt.wantLen)
			assert.Equal(t, tt.wantFirst, pool[0].OwnerID)
			assert.Equal(t, tt.wantLast, pool[len(pool)-1].OwnerID)
		})
	}

	t.Run("empty inventory", func(t *testing.T) {
		assert.Empty(t, BuildCandidatePool(nil, 5))
	})
}

func TestInventoryService_DrawRandom(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("takes at most count units without mutating inventory", func(t *testing.T) {
		m := newServiceMocks()
		m.inventory.On("ListAvailable", ctx, 6).Return([]*entities.InventoryEntry{
			{OwnerID: "sponsor-a", Denomination: 100, Quantity: 2},
			{OwnerID: "sponsor-b", Denomination: 200, Quantity: 5},
		}, nil)

		svc := NewInventoryService(m.inventory, m.sponsors, m.processed, m.publisher, &testhelpers.ScriptedRandom{}, entities.DefaultGameRules())
		units, err := svc.DrawRandom(ctx, 3)
		require.NoError(t, err)

		assert.Equal(t, []entities.CoinUnit{
			{OwnerID: "sponsor-a", Denomination: 100},
			{OwnerID: "sponsor-a", Denomination: 100},
			{OwnerID: "sponsor-b", Denomination: 200},
		}, units)
		m.inventory.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns fewer units when inventory is short", func(t *testing.T) {
		m := newServiceMocks()
		m.inventory.On("ListAvailable", ctx, 20).Return([]*entities.InventoryEntry{
			{OwnerID: "sponsor-a", Denomination: 100, Quantity: 2},
		}, nil)

		svc := NewInventoryService(m.inventory, m.sponsors, m.processed, m.publisher, &testhelpers.ScriptedRandom{}, entities.DefaultGameRules())
		units, err := svc.DrawRandom(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, units, 2)
	})

	t.Run("zero count skips the query", func(t *testing.T) {
		m := newServiceMocks()
		svc := NewInventoryService(m.inventory, m.sponsors, m.processed, m.publisher, &testhelpers.ScriptedRandom{}, entities.DefaultGameRules())

		units, err := svc.DrawRandom(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, units)
		m.inventory.AssertNotCalled(t, "ListAvailable", mock.Anything, mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		m := newServiceMocks()
		m.inventory.On("ListAvailable", ctx, 2).Return(nil, errors.New("connection refused"))

		svc := NewInventoryService(m.inventory, m.sponsors, m.processed, m.publisher, &testhelpers.ScriptedRandom{}, entities.DefaultGameRules())
		_, err := svc.DrawRandom(ctx, 1)
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestInventoryService_CreditPurchase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	purchase := entities.PurchaseCompleted{
		EventID:      "evt-1",
		SponsorID:    "sponsor-a",
		Denomination: 100,
		Quantity:     5,
	}

	t.Run("first delivery credits inventory", func(t *testing.T) {
		m := newServiceMocks()
		m.processed.On("MarkProcessed", ctx, "evt-1", testNow).Return(true, nil)
		m.inventory.On("Credit", ctx, "sponsor-a", int64(100), int64(5)).Return(nil)
		m.sponsors.On("ApplyStats", ctx, "sponsor-a", entities.SponsorStatsDelta{Purchased: 5}).Return(nil)
		m.publisher.On("Publish", events.InventoryCreditedEvent{
			PurchaseEventID: "evt-1",
			OwnerID:         "sponsor-a",
			Denomination:    100,
			Quantity:        5,
		}).Return(nil)

		svc := NewInventoryService(m.inventory, m.sponsors, m.processed, m.publisher, &testhelpers.ScriptedRandom{}, entities.DefaultGameRules())
		credited, err := svc.CreditPurchase(ctx, purchase, testNow)
		require.NoError(t, err)
		assert.True(t, credited)

		m.inventory.AssertExpectations(t)
		m.sponsors.AssertExpectations(t)
		m.publisher.AssertExpectations(t)
	})

	t.Run("redelivery is ignored", func(t *testing.T) {
		m := newServiceMocks()
		m.processed.On("MarkProcessed", ctx, "evt-1", testNow).Return(false, nil)

		svc := NewInventoryService(m.inventory, m.sponsors, m.processed, m.publisher, &testhelpers.ScriptedRandom{}, entities.DefaultGameRules())
		credited, err := svc.CreditPurchase(ctx, purchase, testNow)
		require.NoError(t, err)
		assert.False(t, credited)

		m.inventory.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	invalid := []struct {
		name    string
		mutate  func(p *entities.PurchaseCompleted)
		wantErr error
	}{
		{name: "missing event id", mutate: func(p *entities.PurchaseCompleted) { p.EventID = "" }, wantErr: entities.ErrInvalidIdentifier},
		{name: "missing sponsor", mutate: func(p *entities.PurchaseCompleted) { p.SponsorID = " " }, wantErr: entities.ErrInvalidIdentifier},
		{name: "zero quantity", mutate: func(p *entities.PurchaseCompleted) { p.Quantity = 0 }, wantErr: entities.ErrInvalidQuantity},
		{name: "denomination below minimum", mutate: func(p *entities.PurchaseCompleted) { p.Denomination = 49 }, wantErr: entities.ErrInvalidDenomination},
		{name: "denomination above maximum", mutate: func(p *entities.PurchaseCompleted) { p.Denomination = 50001 }, wantErr: entities.ErrInvalidDenomination},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			m := newServiceMocks()
			p := purchase
			tt.mutate(&p)

			svc := NewInventoryService(m.inventory, m.sponsors, m.processed, m.publisher, &testhelpers.ScriptedRandom{}, entities.DefaultGameRules())
			_, err := svc.CreditPurchase(ctx, p, testNow)
			assert.ErrorIs(t, err, tt.wantErr)
			m.processed.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestInventoryService_GetInventory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := newServiceMocks()
	entries := []*entities.InventoryEntry{{OwnerID: "sponsor-a", Denomination: 100, Quantity: 4}}
	m.inventory.On("ListByOwner", ctx, "sponsor-a").Return(entries, nil)

	svc := NewInventoryService(m.inventory, m.sponsors, m.processed, m.publisher, &testhelpers.ScriptedRandom{}, entities.DefaultGameRules())

	got, err := svc.GetInventory(ctx, "sponsor-a")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
	assert.Equal(t, int64(400), got[0].TotalValue())

	_, err = svc.GetInventory(ctx, "")
	assert.ErrorIs(t, err, entities.ErrInvalidIdentifier)
}
