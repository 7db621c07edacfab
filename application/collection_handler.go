package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/domain/utils"
)

type collectionHandler struct {
	uowFactory interfaces.UnitOfWorkFactory
	rng        utils.RandomSource
	rules      entities.GameRules
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(uowFactory interfaces.UnitOfWorkFactory, rng utils.RandomSource, rules entities.GameRules) CollectionHandler {
	return &collectionHandler{
		uowFactory: uowFactory,
		rng:        rng,
		rules:      rules,
	}
}

// CollectCoin settles a collection attempt. An expired coin is reclaimed and
// committed before ErrCoinExpired is returned to the caller.
func (h *collectionHandler) CollectCoin(ctx context.Context, playerID, coinID string, lat, lon float64) (*interfaces.CollectResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := newServiceSet(uow, h.rng, h.rules).collection.CollectCoin(ctx, playerID, coinID, lat, lon, time.Now().UTC())
	if errors.Is(err, entities.ErrCoinExpired) {
		if commitErr := uow.Commit(); commitErr != nil {
			return nil, fmt.Errorf("failed to commit lazy expiry: %w", commitErr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit collection: %w", err)
	}
	return result, nil
}

func (h *collectionHandler) GetHistory(ctx context.Context, playerID string, limit int) ([]*entities.CollectionRecord, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return newServiceSet(uow, h.rng, h.rules).collection.GetHistory(ctx, playerID, limit)
}
