package repository

import (
	"context"
	"fmt"

	"coindrop/database"
	"coindrop/domain/entities"
)

// CollectionRecordRepository implements the append-only collection log
type CollectionRecordRepository struct {
	q Queryable
}

// NewCollectionRecordRepository creates a new collection record repository
func NewCollectionRecordRepository(db *database.DB) *CollectionRecordRepository {
	return &CollectionRecordRepository{q: db.Pool}
}

// NewCollectionRecordRepositoryScoped creates a new collection record repository bound to a transaction
func NewCollectionRecordRepositoryScoped(tx Queryable) *CollectionRecordRepository {
	return &CollectionRecordRepository{q: tx}
}

// Append inserts a collection record
func (r *CollectionRecordRepository) Append(ctx context.Context, record *entities.CollectionRecord) error {
	query := `
		INSERT INTO collection_records (id, player_id, coin_id, session_id, denomination, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		record.ID,
		record.PlayerID,
		record.CoinID,
		record.SessionID,
		record.Denomination,
		record.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append collection record for coin %s: %w", record.CoinID, err)
	}
	return nil
}

// ListByPlayer returns the player's most recent collections, newest first
func (r *CollectionRecordRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.CollectionRecord, error) {
	query := `
		SELECT id, player_id, coin_id, session_id, denomination, collected_at
		FROM collection_records
		WHERE player_id = $1
		ORDER BY collected_at DESC, id
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections for player %s: %w", playerID, err)
	}
	defer rows.Close()

	var records []*entities.CollectionRecord
	for rows.Next() {
		var record entities.CollectionRecord
		err := rows.Scan(
			&record.ID,
			&record.PlayerID,
			&record.CoinID,
			&record.SessionID,
			&record.Denomination,
			&record.CollectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection record: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection records: %w", err)
	}
	return records, nil
}
