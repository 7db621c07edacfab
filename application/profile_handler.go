package application

import (
	"context"
	"fmt"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
	"coindrop/domain/services"
)

type profileHandler struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(uowFactory interfaces.UnitOfWorkFactory) ProfileHandler {
	return &profileHandler{uowFactory: uowFactory}
}

// withProfiles runs fn against a profile service and commits when commit is set
func withProfiles[T any](ctx context.Context, f interfaces.UnitOfWorkFactory, commit bool, fn func(interfaces.ProfileService) (T, error)) (T, error) {
	var zero T

	uow := f.Create()
	if err := uow.Begin(ctx); err != nil {
		return zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := fn(services.NewProfileService(uow.PlayerProfileRepository(), uow.SponsorProfileRepository()))
	if err != nil {
		return zero, err
	}

	if commit {
		if err := uow.Commit(); err != nil {
			return zero, fmt.Errorf("failed to commit transaction: %w", err)
		}
	}
	return result, nil
}

func (h *profileHandler) RegisterPlayer(ctx context.Context, playerID, displayName string) (*entities.PlayerProfile, error) {
	return withProfiles(ctx, h.uowFactory, true, func(s interfaces.ProfileService) (*entities.PlayerProfile, error) {
		return s.RegisterPlayer(ctx, playerID, displayName)
	})
}

func (h *profileHandler) RegisterSponsor(ctx context.Context, sponsorID, displayName string) (*entities.SponsorProfile, error) {
	return withProfiles(ctx, h.uowFactory, true, func(s interfaces.ProfileService) (*entities.SponsorProfile, error) {
		return s.RegisterSponsor(ctx, sponsorID, displayName)
	})
}

func (h *profileHandler) GetPlayerProfile(ctx context.Context, playerID string) (*entities.PlayerProfile, error) {
	return withProfiles(ctx, h.uowFactory, false, func(s interfaces.ProfileService) (*entities.PlayerProfile, error) {
		return s.GetPlayerProfile(ctx, playerID)
	})
}

func (h *profileHandler) GetSponsorProfile(ctx context.Context, sponsorID string) (*entities.SponsorProfile, error) {
	return withProfiles(ctx, h.uowFactory, false, func(s interfaces.ProfileService) (*entities.SponsorProfile, error) {
		return s.GetSponsorProfile(ctx, sponsorID)
	})
}
