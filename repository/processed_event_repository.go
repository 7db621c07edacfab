package repository

import (
	"context"
	"fmt"
	"time"

	"coindrop/database"
)

// ProcessedEventRepository records inbound event ids for deduplication
type ProcessedEventRepository struct {
	q Queryable
}

// NewProcessedEventRepository creates a new processed event repository
func NewProcessedEventRepository(db *database.DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{q: db.Pool}
}

// NewProcessedEventRepositoryScoped creates a new processed event repository bound to a transaction
func NewProcessedEventRepositoryScoped(tx Queryable) *ProcessedEventRepository {
	return &ProcessedEventRepository{q: tx}
}

// MarkProcessed records an event id, returning false if it was already present
func (r *ProcessedEventRepository) MarkProcessed(ctx context.Context, eventID string, at time.Time) (bool, error) {
	query := `
		INSERT INTO processed_events (event_id, processed_at)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
	`

	tag, err := r.q.Exec(ctx, query, eventID, at)
	if err != nil {
		return false, fmt.Errorf("failed to mark event %s processed: %w", eventID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Exists reports whether an event id has been recorded
func (r *ProcessedEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM processed_events WHERE event_id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check event %s: %w", eventID, err)
	}
	return exists, nil
}
