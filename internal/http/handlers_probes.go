package httpx

import (
	"net/http"
	"strconv"

	"github.com/probeops/console/internal/domain/probe"
	"github.com/probeops/console/internal/service"
)

// ProbeHandlers exposes probe execution and history.
type ProbeHandlers struct {
	probes *service.ProbeService
}

// NewProbeHandlers constructs ProbeHandlers.
func NewProbeHandlers(probes *service.ProbeService) *ProbeHandlers {
	return &ProbeHandlers{probes: probes}
}

type probeRequest struct {
	Target     string `json:"target"`
	RecordType string `json:"record_type,omitempty"`
	Extract    string `json:"extract,omitempty"`
}

// Run executes a probe of the kind named in the path.
func (h *ProbeHandlers) Run(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	var req probeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	raw, err := h.probes.Run(r.Context(), profileID, probe.Request{
		Kind:       probe.Kind(r.PathValue("kind")),
		Target:     req.Target,
		RecordType: req.RecordType,
		Extract:    req.Extract,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteRawJSON(w, http.StatusOK, raw)
}

// History returns the profile's recent probe results.
func (h *ProbeHandlers) History(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}

	raw, err := h.probes.History(r.Context(), profileID, limit)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteRawJSON(w, http.StatusOK, raw)
}
