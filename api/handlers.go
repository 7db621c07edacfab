package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"coindrop/domain/entities"
	"coindrop/domain/interfaces"

	"github.com/go-chi/chi/v5"
)

const (
	defaultHistoryLimit = 50
	maxBodyBytes        = 1 << 20
)

// HandlerProvider exposes the application handlers as HTTP handlers
type HandlerProvider struct {
	handlers Handlers
}

// NewHandlerProvider returns a new handler provider
func NewHandlerProvider(handlers Handlers) *HandlerProvider {
	return &HandlerProvider{handlers: handlers}
}

// --- Requests and responses ---

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
}

type coinResponse struct {
	ID           string    `json:"id"`
	Denomination int64     `json:"denomination"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type sessionResponse struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	StartLat       float64    `json:"start_lat"`
	StartLon       float64    `json:"start_lon"`
	CoinsCollected int        `json:"coins_collected"`
	TotalValue     int64      `json:"total_value"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

type sessionWithCoinsResponse struct {
	Session sessionResponse `json:"session"`
	Coins   []coinResponse  `json:"coins"`
}

type endSessionResponse struct {
	Status         string `json:"status"`
	CoinsCollected int    `json:"coins_collected"`
	TotalValue     int64  `json:"total_value"`
	CoinsReturned  int    `json:"coins_returned"`
}

type collectResponse struct {
	CoinID         string `json:"coin_id"`
	Denomination   int64  `json:"denomination"`
	SessionID      string `json:"session_id"`
	CoinsCollected int    `json:"coins_collected"`
	TotalValue     int64  `json:"total_value"`
}

type inventoryEntryResponse struct {
	Denomination int64 `json:"denomination"`
	Quantity     int64 `json:"quantity"`
}

type collectionRecordResponse struct {
	CoinID       string    `json:"coin_id"`
	SessionID    string    `json:"session_id"`
	Denomination int64     `json:"denomination"`
	CollectedAt  time.Time `json:"collected_at"`
}

func toSessionResponse(s *entities.Session) sessionResponse {
	return sessionResponse{
		ID:             s.ID,
		Status:         string(s.Status),
		StartLat:       s.StartLatitude,
		StartLon:       s.StartLongitude,
		CoinsCollected: s.CoinsCollected,
		TotalValue:     s.TotalValue,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
}

func toCoinResponses(coins []*entities.PlacedCoin) []coinResponse {
	resp := make([]coinResponse, 0, len(coins))
	for _, c := range coins {
		resp = append(resp, coinResponse{
			ID:           c.ID,
			Denomination: c.Denomination,
			Lat:          c.Latitude,
			Lon:          c.Longitude,
			Status:       string(c.Status),
			ExpiresAt:    c.ExpiresAt,
		})
	}
	return resp
}

// decodeJSON reads a size-limited JSON body, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid_request", "empty body")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON")
		return false
	}
	return true
}

func decodeLocation(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	var req locationRequest
	if !decodeJSON(w, r, &req) {
		return 0, 0, false
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "lat and lon are required")
		return 0, 0, false
	}
	return *req.Lat, *req.Lon, true
}

// --- Profiles ---

// RegisterPlayer handles POST /v1/players
func (h *HandlerProvider) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.handlers.Profiles.RegisterPlayer(r.Context(), userIDFrom(r), req.DisplayName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// GetPlayerProfile handles GET /v1/players/me
func (h *HandlerProvider) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.handlers.Profiles.GetPlayerProfile(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// RegisterSponsor handles POST /v1/sponsors
func (h *HandlerProvider) RegisterSponsor(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.handlers.Profiles.RegisterSponsor(r.Context(), userIDFrom(r), req.DisplayName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// GetSponsorProfile handles GET /v1/sponsors/me
func (h *HandlerProvider) GetSponsorProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.handlers.Profiles.GetSponsorProfile(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// --- Sessions ---

// StartSession handles POST /v1/sessions
func (h *HandlerProvider) StartSession(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := decodeLocation(w, r)
	if !ok {
		return
	}

	result, err := h.handlers.Sessions.StartSession(r.Context(), userIDFrom(r), lat, lon)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionWithCoinsResponse{
		Session: toSessionResponse(result.Session),
		Coins:   toCoinResponses(result.Coins),
	})
}

// EndSession handles POST /v1/sessions/end
func (h *HandlerProvider) EndSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.handlers.Sessions.EndSession(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, endSessionResponse{
		Status:         string(result.Session.Status),
		CoinsCollected: result.Session.CoinsCollected,
		TotalValue:     result.Session.TotalValue,
		CoinsReturned:  result.CoinsReturned,
	})
}

// GetActiveSession handles GET /v1/sessions/active
func (h *HandlerProvider) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.handlers.Sessions.GetActiveSession(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionWithCoinsResponse{
		Session: toSessionResponse(view.Session),
		Coins:   toCoinResponses(view.Coins),
	})
}

// --- Collection ---

// CollectCoin handles POST /v1/coins/{coinID}/collect
func (h *HandlerProvider) CollectCoin(w http.ResponseWriter, r *http.Request) {
	coinID := chi.URLParam(r, "coinID")

	lat, lon, ok := decodeLocation(w, r)
	if !ok {
		return
	}

	result, err := h.handlers.Collection.CollectCoin(r.Context(), userIDFrom(r), coinID, lat, lon)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCollectResponse(result))
}

func toCollectResponse(result *interfaces.CollectResult) collectResponse {
	return collectResponse{
		CoinID:         result.CoinID,
		Denomination:   result.Denomination,
		SessionID:      result.SessionID,
		CoinsCollected: result.CoinsCollected,
		TotalValue:     result.TotalValue,
	}
}

// GetHistory handles GET /v1/collections?limit=N
func (h *HandlerProvider) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.handlers.Collection.GetHistory(r.Context(), userIDFrom(r), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]collectionRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, collectionRecordResponse{
			CoinID:       rec.CoinID,
			SessionID:    rec.SessionID,
			Denomination: rec.Denomination,
			CollectedAt:  rec.CollectedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Inventory ---

// GetInventory handles GET /v1/inventory
func (h *HandlerProvider) GetInventory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.handlers.Inventory.GetInventory(r.Context(), userIDFrom(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]inventoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, inventoryEntryResponse{
			Denomination: e.Denomination,
			Quantity:     e.Quantity,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
