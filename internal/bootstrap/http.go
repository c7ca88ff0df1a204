package bootstrap

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/probeops/console/config"
	httpx "github.com/probeops/console/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	Version  string
}

// NewHTTPServer builds the router and the server around it. The caller owns
// the listen/shutdown lifecycle.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	addr := ":8080"
	if cfg.Config != nil && cfg.Config.HTTP.Addr != "" {
		addr = cfg.Config.HTTP.Addr
	}

	handler := httpx.NewRouter(httpx.RouterOptions{
		Sessions:  cfg.Services.Sessions,
		RateLimit: cfg.Services.RateLimits,
		APIKeys:   cfg.Services.APIKeys,
		Probes:    cfg.Services.Probes,
		Audit:     cfg.Services.Audit,
		Logger:    logger,
		Version:   cfg.Version,
	})

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
