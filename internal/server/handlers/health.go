package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/scoremerge/internal/server/response"
)

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "scoremerge-api",
		"version": h.deps.Version,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}
