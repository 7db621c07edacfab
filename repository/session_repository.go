package repository

import (
	"context"
	"fmt"
	"time"

	"coindrop/database"
	"coindrop/domain/entities"

	"github.com/jackc/pgx/v5"
)

const (
	sessionColumns = `
		id, player_id, status, start_latitude, start_longitude,
		coins_collected, total_value, started_at, ended_at`

	oneActiveSessionIndex = "uq_sessions_one_active_per_player"
)

// SessionRepository implements player session storage
type SessionRepository struct {
	q Queryable
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{q: db.Pool}
}

// NewSessionRepositoryScoped creates a new session repository bound to a transaction
func NewSessionRepositoryScoped(tx Queryable) *SessionRepository {
	return &SessionRepository{q: tx}
}

// Create inserts an active session
func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	query := `
		INSERT INTO sessions (id, player_id, status, start_latitude, start_longitude, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		session.ID,
		session.PlayerID,
		session.Status,
		session.StartLatitude,
		session.StartLongitude,
		session.StartedAt,
	)
	if isUniqueViolation(err, oneActiveSessionIndex) {
		return entities.ErrSessionAlreadyActive
	}
	if err != nil {
		return fmt.Errorf("failed to create session for player %s: %w", session.PlayerID, err)
	}
	return nil
}

// GetByID retrieves a session by id
func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*entities.Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.q.QueryRow(ctx, query, sessionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	return session, nil
}

// GetActiveByPlayer retrieves the player's active session
func (r *SessionRepository) GetActiveByPlayer(ctx context.Context, playerID string) (*entities.Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE player_id = $1 AND status = 'active'`

	session, err := scanSession(r.q.QueryRow(ctx, query, playerID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session for player %s: %w", playerID, err)
	}
	return session, nil
}

// RecordCollection adds one collected coin to the session totals
func (r *SessionRepository) RecordCollection(ctx context.Context, sessionID string, denomination int64) (*entities.Session, error) {
	query := `
		UPDATE sessions
		SET coins_collected = coins_collected + 1, total_value = total_value + $2
		WHERE id = $1
		RETURNING` + sessionColumns

	session, err := scanSession(r.q.QueryRow(ctx, query, sessionID, denomination))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record collection on session %s: %w", sessionID, err)
	}
	return session, nil
}

// End closes an active session as completed if anything was collected, abandoned otherwise
func (r *SessionRepository) End(ctx context.Context, sessionID string, at time.Time) (*entities.Session, error) {
	query := `
		UPDATE sessions
		SET status = CASE WHEN coins_collected > 0 THEN 'completed' ELSE 'abandoned' END,
		    ended_at = $2
		WHERE id = $1 AND status = 'active'
		RETURNING` + sessionColumns

	session, err := scanSession(r.q.QueryRow(ctx, query, sessionID, at))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to end session %s: %w", sessionID, err)
	}
	return session, nil
}

func scanSession(row pgx.Row) (*entities.Session, error) {
	var session entities.Session
	err := row.Scan(
		&session.ID,
		&session.PlayerID,
		&session.Status,
		&session.StartLatitude,
		&session.StartLongitude,
		&session.CoinsCollected,
		&session.TotalValue,
		&session.StartedAt,
		&session.EndedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
