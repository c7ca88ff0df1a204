package httpx

import (
	"net/http"
	"time"
)

// HealthHandlers answers liveness checks.
type HealthHandlers struct {
	startedAt time.Time
	version   string
}

// NewHealthHandlers constructs HealthHandlers.
func NewHealthHandlers(version string) *HealthHandlers {
	return &HealthHandlers{startedAt: time.Now(), version: version}
}

// Health reports process liveness and uptime.
func (h *HealthHandlers) Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}
