package repository

import (
	"context"
	"fmt"
	"time"

	"coindrop/database"
	"coindrop/domain/entities"

	"github.com/jackc/pgx/v5"
)

const coinColumns = `
	id, owner_id, session_id, denomination, latitude, longitude,
	status, placed_at, expires_at, collected_at, collected_by_player_id`

// CoinRepository implements the placed coin registry
type CoinRepository struct {
	q Queryable
}

// NewCoinRepository creates a new coin repository
func NewCoinRepository(db *database.DB) *CoinRepository {
	return &CoinRepository{q: db.Pool}
}

// NewCoinRepositoryScoped creates a new coin repository bound to a transaction
func NewCoinRepositoryScoped(tx Queryable) *CoinRepository {
	return &CoinRepository{q: tx}
}

// Place inserts a placed coin
func (r *CoinRepository) Place(ctx context.Context, coin *entities.PlacedCoin) error {
	query := `
		INSERT INTO placed_coins (
			id, owner_id, session_id, denomination, latitude, longitude,
			status, placed_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.Exec(ctx, query,
		coin.ID,
		coin.OwnerID,
		coin.SessionID,
		coin.Denomination,
		coin.Latitude,
		coin.Longitude,
		coin.Status,
		coin.PlacedAt,
		coin.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to place coin %s: %w", coin.ID, err)
	}
	return nil
}

// GetByID retrieves a coin by id
func (r *CoinRepository) GetByID(ctx context.Context, coinID string) (*entities.PlacedCoin, error) {
	query := `SELECT` + coinColumns + ` FROM placed_coins WHERE id = $1`

	coin, err := scanCoin(r.q.QueryRow(ctx, query, coinID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coin %s: %w", coinID, err)
	}
	return coin, nil
}

// GetActiveForSession returns the still-placed coins of a session
func (r *CoinRepository) GetActiveForSession(ctx context.Context, sessionID string) ([]*entities.PlacedCoin, error) {
	query := `SELECT` + coinColumns + `
		FROM placed_coins
		WHERE session_id = $1 AND status = 'placed'
		ORDER BY placed_at, id
	`

	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get coins for session %s: %w", sessionID, err)
	}
	return scanCoins(rows)
}

// FindExpired returns up to limit placed coins with expires_at <= now, oldest first
func (r *CoinRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entities.PlacedCoin, error) {
	query := `SELECT` + coinColumns + `
		FROM placed_coins
		WHERE status = 'placed' AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired coins: %w", err)
	}
	return scanCoins(rows)
}

// TransitionStatus moves a coin out of the placed state. The status guard in the
// WHERE clause makes this the single arbitration point between collection and expiry.
func (r *CoinRepository) TransitionStatus(ctx context.Context, coinID string, newStatus entities.CoinStatus, collectorID *string, at time.Time) (bool, error) {
	if newStatus != entities.CoinStatusCollected && newStatus != entities.CoinStatusExpired {
		return false, fmt.Errorf("invalid coin transition to %s", newStatus)
	}
	if newStatus == entities.CoinStatusCollected && collectorID == nil {
		return false, fmt.Errorf("collecting coin %s requires a collector", coinID)
	}

	var collectedAt *time.Time
	if newStatus == entities.CoinStatusCollected {
		collectedAt = &at
	} else {
		collectorID = nil
	}

	query := `
		UPDATE placed_coins
		SET status = $2, collected_at = $3, collected_by_player_id = $4
		WHERE id = $1 AND status = 'placed'
	`

	tag, err := r.q.Exec(ctx, query, coinID, newStatus, collectedAt, collectorID)
	if err != nil {
		return false, fmt.Errorf("failed to transition coin %s to %s: %w", coinID, newStatus, err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanCoin(row pgx.Row) (*entities.PlacedCoin, error) {
	var coin entities.PlacedCoin
	err := row.Scan(
		&coin.ID,
		&coin.OwnerID,
		&coin.SessionID,
		&coin.Denomination,
		&coin.Latitude,
		&coin.Longitude,
		&coin.Status,
		&coin.PlacedAt,
		&coin.ExpiresAt,
		&coin.CollectedAt,
		&coin.CollectedByPlayerID,
	)
	if err != nil {
		return nil, err
	}
	return &coin, nil
}

func scanCoins(rows pgx.Rows) ([]*entities.PlacedCoin, error) {
	defer rows.Close()

	var coins []*entities.PlacedCoin
	for rows.Next() {
		coin, err := scanCoin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coin: %w", err)
		}
		coins = append(coins, coin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coins: %w", err)
	}
	return coins, nil
}
