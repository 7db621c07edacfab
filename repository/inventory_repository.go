package repository

import (
	"context"
	"fmt"

	"coindrop/database"
	"coindrop/domain/entities"

	"github.com/jackc/pgx/v5"
)

// InventoryRepository implements the sponsor inventory ledger
type InventoryRepository struct {
	q Queryable
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{q: db.Pool}
}

// NewInventoryRepositoryScoped creates a new inventory repository bound to a transaction
func NewInventoryRepositoryScoped(tx Queryable) *InventoryRepository {
	return &InventoryRepository{q: tx}
}

// Credit adds quantity units to the (owner, denomination) row, creating it if needed
func (r *InventoryRepository) Credit(ctx context.Context, ownerID string, denomination, quantity int64) error {
	query := `
		INSERT INTO inventory (owner_id, denomination, quantity, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (owner_id, denomination)
		DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, ownerID, denomination, quantity); err != nil {
		return fmt.Errorf("failed to credit %d x %d to %s: %w", quantity, denomination, ownerID, err)
	}
	return nil
}

// Debit removes quantity units only if at least that many remain
func (r *InventoryRepository) Debit(ctx context.Context, ownerID string, denomination, quantity int64) (bool, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity - $3, updated_at = NOW()
		WHERE owner_id = $1 AND denomination = $2 AND quantity >= $3
	`

	tag, err := r.q.Exec(ctx, query, ownerID, denomination, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to debit %d x %d from %s: %w", quantity, denomination, ownerID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Get retrieves one inventory entry
func (r *InventoryRepository) Get(ctx context.Context, ownerID string, denomination int64) (*entities.InventoryEntry, error) {
	query := `
		SELECT owner_id, denomination, quantity, updated_at
		FROM inventory
		WHERE owner_id = $1 AND denomination = $2
	`

	var entry entities.InventoryEntry
	err := r.q.QueryRow(ctx, query, ownerID, denomination).Scan(
		&entry.OwnerID,
		&entry.Denomination,
		&entry.Quantity,
		&entry.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory %s/%d: %w", ownerID, denomination, err)
	}
	return &entry, nil
}

// ListAvailable returns up to limit non-empty entries ordered by owner then denomination
func (r *InventoryRepository) ListAvailable(ctx context.Context, limit int) ([]*entities.InventoryEntry, error) {
	query := `
		SELECT owner_id, denomination, quantity, updated_at
		FROM inventory
		WHERE quantity > 0
		ORDER BY owner_id, denomination
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list available inventory: %w", err)
	}
	return scanInventoryEntries(rows)
}

// ListByOwner returns every entry of a sponsor, including empty ones
func (r *InventoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.InventoryEntry, error) {
	query := `
		SELECT owner_id, denomination, quantity, updated_at
		FROM inventory
		WHERE owner_id = $1
		ORDER BY denomination
	`

	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory for %s: %w", ownerID, err)
	}
	return scanInventoryEntries(rows)
}

func scanInventoryEntries(rows pgx.Rows) ([]*entities.InventoryEntry, error) {
	defer rows.Close()

	var entries []*entities.InventoryEntry
	for rows.Next() {
		var entry entities.InventoryEntry
		if err := rows.Scan(&entry.OwnerID, &entry.Denomination, &entry.Quantity, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}
	return entries, nil
}
