// Package httpx wires the console's HTTP surface: profile resolution, the
// session route guard, and the JSON handlers in front of the service layer.
package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/probeops/console/internal/domain/auth"
	"github.com/probeops/console/internal/ports"
	"github.com/probeops/console/internal/service"
)

// RouterOptions groups dependencies for NewRouter.
type RouterOptions struct {
	Sessions  *service.SessionManager
	RateLimit *service.RateLimitService
	APIKeys   *service.APIKeyService
	Probes    *service.ProbeService
	Audit     ports.AuditTrail
	Logger    *slog.Logger
	Version   string
}

// NewRouter assembles the full route table. Auth endpoints sit behind only
// the profile middleware; everything else goes through the session guard.
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auth := NewAuthHandlers(opts.Sessions, logger)
	limits := NewRateLimitHandlers(opts.RateLimit)
	keys := NewAPIKeyHandlers(opts.APIKeys)
	probes := NewProbeHandlers(opts.Probes)
	health := NewHealthHandlers(opts.Version)

	requireAuth := RequireAuth(opts.Sessions)
	requireAdmin := RequireRole(opts.Sessions, domainauth.RoleAdmin)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.Health)

	// Session lifecycle: reachable while anonymous.
	mux.HandleFunc("GET /api/auth/session", auth.Session)
	mux.HandleFunc("POST /api/auth/login", auth.Login)
	mux.HandleFunc("POST /api/auth/register", auth.Register)
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/auth/first-key", auth.FirstAPIKey)

	// Guarded routes.
	mux.Handle("GET /api/rate-limits", requireAuth(http.HandlerFunc(limits.Get)))
	mux.Handle("POST /api/rate-limits/refresh", requireAuth(http.HandlerFunc(limits.Refresh)))

	mux.Handle("GET /api/apikeys", requireAuth(http.HandlerFunc(keys.List)))
	mux.Handle("POST /api/apikeys", requireAuth(http.HandlerFunc(keys.Create)))
	mux.Handle("DELETE /api/apikeys/{id}", requireAuth(http.HandlerFunc(keys.Delete)))

	mux.Handle("POST /api/probes/{kind}", requireAuth(http.HandlerFunc(probes.Run)))
	mux.Handle("GET /api/probes/history", requireAuth(http.HandlerFunc(probes.History)))

	if opts.Audit != nil {
		audit := NewAuditHandlers(opts.Audit)
		mux.Handle("GET /api/admin/audit", requireAdmin(http.HandlerFunc(audit.Recent)))
	}

	var handler http.Handler = mux
	handler = Profile()(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}
