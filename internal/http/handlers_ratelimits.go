package httpx

import (
	"net/http"

	"github.com/probeops/console/internal/domain/ratelimit"
	"github.com/probeops/console/internal/service"
)

// RateLimitHandlers exposes the cached usage snapshot.
type RateLimitHandlers struct {
	limits *service.RateLimitService
}

// NewRateLimitHandlers constructs RateLimitHandlers.
func NewRateLimitHandlers(limits *service.RateLimitService) *RateLimitHandlers {
	return &RateLimitHandlers{limits: limits}
}

// rateLimitPayload is the wire form of a snapshot, with the derived
// percentages precomputed for display.
type rateLimitPayload struct {
	Known                   bool                `json:"known"`
	Snapshot                *ratelimit.Snapshot `json:"snapshot,omitempty"`
	DailyPercent            int                 `json:"daily_percent,omitempty"`
	MonthlyPercent          int                 `json:"monthly_percent,omitempty"`
	ApproachingDailyLimit   bool                `json:"approaching_daily_limit,omitempty"`
	ApproachingMonthlyLimit bool                `json:"approaching_monthly_limit,omitempty"`
}

func snapshotPayload(snap *ratelimit.Snapshot) rateLimitPayload {
	if snap == nil {
		// Unknown usage is reported as unknown, never as zero.
		return rateLimitPayload{Known: false}
	}
	return rateLimitPayload{
		Known:                   true,
		Snapshot:                snap,
		DailyPercent:            snap.DailyUsagePercent(),
		MonthlyPercent:          snap.MonthlyUsagePercent(),
		ApproachingDailyLimit:   snap.IsApproachingDailyLimit(),
		ApproachingMonthlyLimit: snap.IsApproachingMonthlyLimit(),
	}
}

// Get returns the cached snapshot for the profile.
func (h *RateLimitHandlers) Get(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())
	WriteJSON(w, http.StatusOK, snapshotPayload(h.limits.Snapshot(profileID)))
}

// Refresh fetches a fresh snapshot immediately. The dashboard calls this when
// the window regains focus.
func (h *RateLimitHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	snap, err := h.limits.Refresh(r.Context(), profileID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snapshotPayload(snap))
}
