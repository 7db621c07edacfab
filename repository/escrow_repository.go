package repository

import (
	"context"
	"fmt"
	"time"

	"coindrop/database"
	"coindrop/domain/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EscrowRepository implements the escrow ledger
type EscrowRepository struct {
	q Queryable
}

// NewEscrowRepository creates a new escrow repository
func NewEscrowRepository(db *database.DB) *EscrowRepository {
	return &EscrowRepository{q: db.Pool}
}

// NewEscrowRepositoryScoped creates a new escrow repository bound to a transaction
func NewEscrowRepositoryScoped(tx Queryable) *EscrowRepository {
	return &EscrowRepository{q: tx}
}

// Open creates a held escrow for a coin
func (r *EscrowRepository) Open(ctx context.Context, coinID, ownerID string, amount int64, at time.Time) (*entities.EscrowHold, error) {
	hold := &entities.EscrowHold{
		ID:        uuid.NewString(),
		CoinID:    coinID,
		OwnerID:   ownerID,
		Amount:    amount,
		Status:    entities.EscrowStatusHeld,
		CreatedAt: at,
	}

	query := `
		INSERT INTO escrow_holds (id, coin_id, owner_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query, hold.ID, hold.CoinID, hold.OwnerID, hold.Amount, hold.Status, hold.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to open escrow for coin %s: %w", coinID, err)
	}
	return hold, nil
}

// Release settles the coin's hold as released
func (r *EscrowRepository) Release(ctx context.Context, coinID string, at time.Time) error {
	return r.settle(ctx, coinID, entities.EscrowStatusReleased, at)
}

// Refund settles the coin's hold as refunded
func (r *EscrowRepository) Refund(ctx context.Context, coinID string, at time.Time) error {
	return r.settle(ctx, coinID, entities.EscrowStatusRefunded, at)
}

// settle moves a held escrow to target. Repeating the same settlement is a no-op,
// settling in the opposite direction is ErrEscrowConflict.
func (r *EscrowRepository) settle(ctx context.Context, coinID string, target entities.EscrowStatus, at time.Time) error {
	query := `
		UPDATE escrow_holds
		SET status = $2, released_at = $3
		WHERE coin_id = $1 AND status = 'held'
	`

	tag, err := r.q.Exec(ctx, query, coinID, target, at)
	if err != nil {
		return fmt.Errorf("failed to settle escrow for coin %s: %w", coinID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	hold, err := r.GetByCoinID(ctx, coinID)
	if err != nil {
		return err
	}
	if hold == nil {
		return fmt.Errorf("%w: coin %s", entities.ErrEscrowNotFound, coinID)
	}
	if hold.Status == target {
		return nil
	}
	return fmt.Errorf("%w: coin %s is %s, cannot mark %s", entities.ErrEscrowConflict, coinID, hold.Status, target)
}

// GetByCoinID retrieves the hold for a coin
func (r *EscrowRepository) GetByCoinID(ctx context.Context, coinID string) (*entities.EscrowHold, error) {
	query := `
		SELECT id, coin_id, owner_id, amount, status, created_at, released_at
		FROM escrow_holds
		WHERE coin_id = $1
	`

	var hold entities.EscrowHold
	err := r.q.QueryRow(ctx, query, coinID).Scan(
		&hold.ID,
		&hold.CoinID,
		&hold.OwnerID,
		&hold.Amount,
		&hold.Status,
		&hold.CreatedAt,
		&hold.ReleasedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow for coin %s: %w", coinID, err)
	}
	return &hold, nil
}
