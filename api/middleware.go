package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const (
	userIDHeader                = "X-User-ID"
	userIDContextKey contextKey = "userID"
)

// requireUserID rejects requests without an identity header
func requireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(userIDHeader))
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "missing "+userIDHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDContextKey, userID)))
	})
}

func userIDFrom(r *http.Request) string {
	userID, _ := r.Context().Value(userIDContextKey).(string)
	return userID
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		entry := log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start),
			"requestId": middleware.GetReqID(r.Context()),
		})
		if ww.Status() >= http.StatusInternalServerError {
			entry.Warn("HTTP request failed")
			return
		}
		entry.Debug("HTTP request")
	})
}
