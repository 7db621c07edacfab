package entities

import (
	"errors"
	"fmt"
)

// Client input errors
var (
	ErrInvalidCoordinates  = errors.New("coordinates out of range")
	ErrInvalidDenomination = errors.New("denomination out of range")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidIdentifier   = errors.New("identifier must not be empty")
)

// State conflict errors
var (
	ErrNoActiveProfile      = errors.New("no profile registered for this user")
	ErrProfileExists        = errors.New("profile already registered")
	ErrSessionAlreadyActive = errors.New("a session is already active for this player")
	ErrNoActiveSession      = errors.New("no active session for this player")
	ErrCoinNotFound         = errors.New("coin not found")
	ErrCoinUnavailable      = errors.New("coin is no longer available")
	ErrWrongSession         = errors.New("coin belongs to a different session")
	ErrTooFar               = errors.New("too far from coin")
	ErrCoinExpired          = errors.New("coin has expired")
)

// Resource exhaustion errors
var (
	ErrNoCoinsAvailable = errors.New("no coins available to place right now, try again later")
)

// Integrity violation errors
var (
	ErrEscrowNotFound  = errors.New("escrow hold not found")
	ErrEscrowConflict  = errors.New("escrow hold already settled in the opposite state")
	ErrLedgerIntegrity = errors.New("ledger integrity violation")
)

// TooFarError reports the measured distance of a rejected collection attempt
type TooFarError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *TooFarError) Error() string {
	return fmt.Sprintf("too far from coin: %.1fm away, must be within %.0fm", e.DistanceMeters, e.RadiusMeters)
}

// Is lets errors.Is(err, ErrTooFar) match a *TooFarError
func (e *TooFarError) Is(target error) bool {
	return target == ErrTooFar
}
