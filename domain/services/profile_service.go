package services

import (
	"context"
	"fmt"
	"strings"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"
)

const maxDisplayNameLength = 64

// profileService implements player and sponsor registration
type profileService struct {
	playerRepo  interfaces.PlayerProfileRepository
	sponsorRepo interfaces.SponsorProfileRepository
}

// NewProfileService creates a new profile service
func NewProfileService(playerRepo interfaces.PlayerProfileRepository, sponsorRepo interfaces.SponsorProfileRepository) interfaces.ProfileService {
	return &profileService{
		playerRepo:  playerRepo,
		sponsorRepo: sponsorRepo,
	}
}

func (s *profileService) RegisterPlayer(ctx context.Context, playerID, displayName string) (*entities.PlayerProfile, error) {
	displayName, err := normalizeRegistration(playerID, displayName)
	if err != nil {
		return nil, err
	}

	profile, err := s.playerRepo.Create(ctx, playerID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to register player %s: %w", playerID, err)
	}
	return profile, nil
}

func (s *profileService) RegisterSponsor(ctx context.Context, sponsorID, displayName string) (*entities.SponsorProfile, error) {
	displayName, err := normalizeRegistration(sponsorID, displayName)
	if err != nil {
		return nil, err
	}

	profile, err := s.sponsorRepo.Create(ctx, sponsorID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to register sponsor %s: %w", sponsorID, err)
	}
	return profile, nil
}

func (s *profileService) GetPlayerProfile(ctx context.Context, playerID string) (*entities.PlayerProfile, error) {
	profile, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player profile: %w", err)
	}
	if profile == nil {
		return nil, entities.ErrNoActiveProfile
	}
	return profile, nil
}

func (s *profileService) GetSponsorProfile(ctx context.Context, sponsorID string) (*entities.SponsorProfile, error) {
	profile, err := s.sponsorRepo.GetByID(ctx, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sponsor profile: %w", err)
	}
	if profile == nil {
		return nil, entities.ErrNoActiveProfile
	}
	return profile, nil
}

func normalizeRegistration(id, displayName string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", entities.ErrInvalidIdentifier
	}
	displayName = strings.TrimSpace(displayName)
	if runes := []rune(displayName); len(runes) > maxDisplayNameLength {
		displayName = string(runes[:maxDisplayNameLength])
	}
	return displayName, nil
}
