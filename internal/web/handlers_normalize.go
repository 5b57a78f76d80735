package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/textnorm/internal/logging"
)

// normalizeRequest is the body of POST /api/normalize.
type normalizeRequest struct {
	Text string `json:"text"`
}

// handleNormalize returns the live normalization preview for one string.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.PreviewText(req.Text))
}

// handleStatus reports import slot usage.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"imports": s.service.LimiterStatus(),
	})
}

// handleHealth checks the backing store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
