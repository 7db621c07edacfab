package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"coindrop/domain/entities"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error          string   `json:"error"`
	Message        string   `json:"message"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// errorMapping pairs a domain error with its HTTP status and error code
type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{entities.ErrInvalidCoordinates, http.StatusBadRequest, "invalid_coordinates"},
	{entities.ErrInvalidDenomination, http.StatusBadRequest, "invalid_denomination"},
	{entities.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{entities.ErrInvalidIdentifier, http.StatusBadRequest, "invalid_identifier"},
	{entities.ErrNoActiveProfile, http.StatusForbidden, "no_active_profile"},
	{entities.ErrProfileExists, http.StatusConflict, "profile_exists"},
	{entities.ErrSessionAlreadyActive, http.StatusConflict, "session_already_active"},
	{entities.ErrNoCoinsAvailable, http.StatusConflict, "no_coins_available"},
	{entities.ErrNoActiveSession, http.StatusNotFound, "no_active_session"},
	{entities.ErrCoinNotFound, http.StatusNotFound, "coin_not_found"},
	{entities.ErrCoinUnavailable, http.StatusConflict, "coin_unavailable"},
	{entities.ErrWrongSession, http.StatusForbidden, "wrong_session"},
	{entities.ErrCoinExpired, http.StatusGone, "coin_expired"},
}

// writeDomainError maps a handler error onto the API error contract
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var tooFar *entities.TooFarError
	if errors.As(err, &tooFar) {
		distance := tooFar.DistanceMeters
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:          "too_far",
			Message:        tooFar.Error(),
			DistanceMeters: &distance,
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, m.err.Error())
			return
		}
	}

	log.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"error":  err,
	}).Error("Request failed")

	if errors.Is(err, entities.ErrLedgerIntegrity) {
		writeError(w, http.StatusInternalServerError, "ledger_integrity", "the coin ledger is inconsistent, please contact support")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
