package entities

import "time"

// SessionStatus represents the state of a player's collection session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// Session is a single collection outing by a player
type Session struct {
	ID             string        `db:"id"`
	PlayerID       string        `db:"player_id"`
	Status         SessionStatus `db:"status"`
	StartLatitude  float64       `db:"start_latitude"`
	StartLongitude float64       `db:"start_longitude"`
	CoinsCollected int           `db:"coins_collected"`
	TotalValue     int64         `db:"total_value"`
	StartedAt      time.Time     `db:"started_at"`
	EndedAt        *time.Time    `db:"ended_at"`
}

// IsActive returns true if the session has not ended
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// EndStatus returns the terminal status the session would take if ended now
func (s *Session) EndStatus() SessionStatus {
	if s.CoinsCollected > 0 {
		return SessionStatusCompleted
	}
	return SessionStatusAbandoned
}
