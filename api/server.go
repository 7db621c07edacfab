package api

import (
	"net/http"
	"time"
)

// NewServer creates a configured *http.Server for the coin drop API
func NewServer(addr string, handlers Handlers) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(handlers),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
