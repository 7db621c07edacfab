package api

import (
	"net/http"

	"coindrop/application"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the application handlers served over HTTP
type Handlers struct {
	Sessions   application.SessionHandler
	Collection application.CollectionHandler
	Inventory  application.InventoryHandler
	Profiles   application.ProfileHandler
}

// NewRouter builds the chi router with every API endpoint registered
func NewRouter(handlers Handlers) http.Handler {
	h := NewHandlerProvider(handlers)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireUserID)

		r.Post("/players", h.RegisterPlayer)
		r.Get("/players/me", h.GetPlayerProfile)
		r.Post("/sponsors", h.RegisterSponsor)
		r.Get("/sponsors/me", h.GetSponsorProfile)

		r.Post("/sessions", h.StartSession)
		r.Post("/sessions/end", h.EndSession)
		r.Get("/sessions/active", h.GetActiveSession)

		r.Post("/coins/{coinID}/collect", h.CollectCoin)
		r.Get("/collections", h.GetHistory)

		r.Get("/inventory", h.GetInventory)
	})

	return r
}
