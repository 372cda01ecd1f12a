/*
health.go - Liveness and storage health endpoints

PURPOSE:
  /ok answers immediately without touching collaborators; /health proves the
  storage path by writing a timestamp row and echoing it back.
*/
package api

import (
	"context"
	"net/http"
)

// HealthChecker is the storage capability the health endpoint needs.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (string, error)
}

// Version reported by /health.
var Version = "1.0.0"

// Ok is a pure liveness probe.
func (h *Handler) Ok(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Health performs a storage round-trip. 503 when the write fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
		return
	}

	now, err := h.Checker.HealthCheck(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"version": Version,
			"healthy": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version": Version,
		"healthy": true,
		"now":     now,
	})
}
