package repository

import (
	"context"
	"fmt"

	"coindrop/database"
	"coindrop/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PlayerProfileRepository implements player profile storage
type PlayerProfileRepository struct {
	q Queryable
}

// NewPlayerProfileRepository creates a new player profile repository
func NewPlayerProfileRepository(db *database.DB) *PlayerProfileRepository {
	return &PlayerProfileRepository{q: db.Pool}
}

// NewPlayerProfileRepositoryScoped creates a new player profile repository bound to a transaction
func NewPlayerProfileRepositoryScoped(tx Queryable) *PlayerProfileRepository {
	return &PlayerProfileRepository{q: tx}
}

// Create registers a player
func (r *PlayerProfileRepository) Create(ctx context.Context, playerID, displayName string) (*entities.PlayerProfile, error) {
	query := `
		INSERT INTO player_profiles (player_id, display_name)
		VALUES ($1, $2)
		RETURNING player_id, display_name, total_coins_collected, total_donated, created_at, updated_at
	`

	profile, err := scanPlayerProfile(r.q.QueryRow(ctx, query, playerID, displayName))
	if isUniqueViolation(err, "") {
		return nil, entities.ErrProfileExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create player %s: %w", playerID, err)
	}
	return profile, nil
}

// GetByID retrieves a player profile
func (r *PlayerProfileRepository) GetByID(ctx context.Context, playerID string) (*entities.PlayerProfile, error) {
	query := `
		SELECT player_id, display_name, total_coins_collected, total_donated, created_at, updated_at
		FROM player_profiles
		WHERE player_id = $1
	`

	profile, err := scanPlayerProfile(r.q.QueryRow(ctx, query, playerID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}
	return profile, nil
}

// RecordCollection adds one coin of the given value to the player's totals
func (r *PlayerProfileRepository) RecordCollection(ctx context.Context, playerID string, denomination int64) error {
	query := `
		UPDATE player_profiles
		SET total_coins_collected = total_coins_collected + 1,
		    total_donated = total_donated + $2,
		    updated_at = NOW()
		WHERE player_id = $1
	`

	tag, err := r.q.Exec(ctx, query, playerID, denomination)
	if err != nil {
		return fmt.Errorf("failed to record collection for player %s: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("player %s: %w", playerID, entities.ErrNoActiveProfile)
	}
	return nil
}

func scanPlayerProfile(row pgx.Row) (*entities.PlayerProfile, error) {
	var profile entities.PlayerProfile
	err := row.Scan(
		&profile.PlayerID,
		&profile.DisplayName,
		&profile.TotalCoinsCollected,
		&profile.TotalDonated,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SponsorProfileRepository implements sponsor profile storage
type SponsorProfileRepository struct {
	q Queryable
}

// NewSponsorProfileRepository creates a new sponsor profile repository
func NewSponsorProfileRepository(db *database.DB) *SponsorProfileRepository {
	return &SponsorProfileRepository{q: db.Pool}
}

// NewSponsorProfileRepositoryScoped creates a new sponsor profile repository bound to a transaction
func NewSponsorProfileRepositoryScoped(tx Queryable) *SponsorProfileRepository {
	return &SponsorProfileRepository{q: tx}
}

// Create registers a sponsor. A sponsor row already created implicitly by a
// purchase is claimed by filling in its display name.
func (r *SponsorProfileRepository) Create(ctx context.Context, sponsorID, displayName string) (*entities.SponsorProfile, error) {
	query := `
		INSERT INTO sponsor_profiles (sponsor_id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (sponsor_id) DO UPDATE
		SET display_name = EXCLUDED.display_name, updated_at = NOW()
		WHERE sponsor_profiles.display_name = ''
		RETURNING sponsor_id, display_name, total_purchased, total_placed, total_donated, created_at, updated_at
	`

	profile, err := scanSponsorProfile(r.q.QueryRow(ctx, query, sponsorID, displayName))
	if err == pgx.ErrNoRows {
		return nil, entities.ErrProfileExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create sponsor %s: %w", sponsorID, err)
	}
	return profile, nil
}

// GetByID retrieves a sponsor profile
func (r *SponsorProfileRepository) GetByID(ctx context.Context, sponsorID string) (*entities.SponsorProfile, error) {
	query := `
		SELECT sponsor_id, display_name, total_purchased, total_placed, total_donated, created_at, updated_at
		FROM sponsor_profiles
		WHERE sponsor_id = $1
	`

	profile, err := scanSponsorProfile(r.q.QueryRow(ctx, query, sponsorID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sponsor %s: %w", sponsorID, err)
	}
	return profile, nil
}

// ApplyStats adds delta to the sponsor's counters, creating the row on first use
func (r *SponsorProfileRepository) ApplyStats(ctx context.Context, sponsorID string, delta entities.SponsorStatsDelta) error {
	query := `
		INSERT INTO sponsor_profiles (sponsor_id, total_purchased, total_placed, total_donated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sponsor_id) DO UPDATE
		SET total_purchased = sponsor_profiles.total_purchased + EXCLUDED.total_purchased,
		    total_placed = sponsor_profiles.total_placed + EXCLUDED.total_placed,
		    total_donated = sponsor_profiles.total_donated + EXCLUDED.total_donated,
		    updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query, sponsorID, delta.Purchased, delta.Placed, delta.Donated)
	if err != nil {
		return fmt.Errorf("failed to update stats for sponsor %s: %w", sponsorID, err)
	}
	return nil
}

func scanSponsorProfile(row pgx.Row) (*entities.SponsorProfile, error) {
	var profile entities.SponsorProfile
	err := row.Scan(
		&profile.SponsorID,
		&profile.DisplayName,
		&profile.TotalPurchased,
		&profile.TotalPlaced,
		&profile.TotalDonated,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
