package application

import (
	"context"
	"fmt"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/domain/utils"
)

type sessionHandler struct {
	uowFactory interfaces.UnitOfWorkFactory
	rng        utils.RandomSource
	rules      entities.GameRules
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(uowFactory interfaces.UnitOfWorkFactory, rng utils.RandomSource, rules entities.GameRules) SessionHandler {
	return &sessionHandler{
		uowFactory: uowFactory,
		rng:        rng,
		rules:      rules,
	}
}

// StartSession opens a session and places its coins in one transaction
func (h *sessionHandler) StartSession(ctx context.Context, playerID string, lat, lon float64) (*interfaces.StartSessionResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := newServiceSet(uow, h.rng, h.rules).sessions.StartSession(ctx, playerID, lat, lon, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session start: %w", err)
	}
	return result, nil
}

// EndSession returns the session's remaining coins to inventory and closes it
func (h *sessionHandler) EndSession(ctx context.Context, playerID string) (*interfaces.EndSessionResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := newServiceSet(uow, h.rng, h.rules).sessions.EndSession(ctx, playerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session end: %w", err)
	}
	return result, nil
}

func (h *sessionHandler) GetActiveSession(ctx context.Context, playerID string) (*interfaces.ActiveSessionView, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return newServiceSet(uow, h.rng, h.rules).sessions.GetActiveSession(ctx, playerID)
}
