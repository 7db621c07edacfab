package api

import (
	"context"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

type mockSessionHandler struct{ mock.Mock }

func (m *mockSessionHandler) StartSession(ctx context.Context, playerID string, lat, lon float64) (*interfaces.StartSessionResult, error) {
	args := m.Called(ctx, playerID, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.StartSessionResult), args.Error(1)
}

func (m *mockSessionHandler) EndSession(ctx context.Context, playerID string) (*interfaces.EndSessionResult, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.EndSessionResult), args.Error(1)
}

func (m *mockSessionHandler) GetActiveSession(ctx context.Context, playerID string) (*interfaces.ActiveSessionView, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ActiveSessionView), args.Error(1)
}

type mockCollectionHandler struct{ mock.Mock }

func (m *mockCollectionHandler) CollectCoin(ctx context.Context, playerID, coinID string, lat, lon float64) (*interfaces.CollectResult, error) {
	args := m.Called(ctx, playerID, coinID, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.CollectResult), args.Error(1)
}

func (m *mockCollectionHandler) GetHistory(ctx context.Context, playerID string, limit int) ([]*entities.CollectionRecord, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CollectionRecord), args.Error(1)
}

type mockInventoryHandler struct{ mock.Mock }

func (m *mockInventoryHandler) HandlePurchaseCompleted(ctx context.Context, purchase entities.PurchaseCompleted) (bool, error) {
	args := m.Called(ctx, purchase)
	return args.Bool(0), args.Error(1)
}

func (m *mockInventoryHandler) GetInventory(ctx context.Context, sponsorID string) ([]*entities.InventoryEntry, error) {
	args := m.Called(ctx, sponsorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InventoryEntry), args.Error(1)
}

type mockProfileHandler struct{ mock.Mock }

func (m *mockProfileHandler) RegisterPlayer(ctx context.Context, playerID, displayName string) (*entities.PlayerProfile, error) {
	args := m.Called(ctx, playerID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlayerProfile), args.Error(1)
}

func (m *mockProfileHandler) RegisterSponsor(ctx context.Context, sponsorID, displayName string) (*entities.SponsorProfile, error) {
	args := m.Called(ctx, sponsorID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SponsorProfile), args.Error(1)
}

func (m *mockProfileHandler) GetPlayerProfile(ctx context.Context, playerID string) (*entities.PlayerProfile, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlayerProfile), args.Error(1)
}

func (m *mockProfileHandler) GetSponsorProfile(ctx context.Context, sponsorID string) (*entities.SponsorProfile, error) {
	args := m.Called(ctx, sponsorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SponsorProfile), args.Error(1)
}
