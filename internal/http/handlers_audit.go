package httpx

import (
	"net/http"
	"strconv"

	"github.com/probeops/console/internal/ports"
)

// AuditHandlers exposes the auth audit trail to administrators.
type AuditHandlers struct {
	trail ports.AuditTrail
}

// NewAuditHandlers constructs AuditHandlers.
func NewAuditHandlers(trail ports.AuditTrail) *AuditHandlers {
	return &AuditHandlers{trail: trail}
}

// Recent returns the newest audit events.
func (h *AuditHandlers) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.trail.Recent(r.Context(), limit)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
