package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/probeops/console/config"
	"github.com/probeops/console/internal/adapters/probeapi"
	redisstore "github.com/probeops/console/internal/adapters/redis"
	"github.com/probeops/console/internal/adapters/slognotify"
	"github.com/probeops/console/internal/data"
	"github.com/probeops/console/internal/observability/statsd"
	"github.com/probeops/console/internal/ports"
	"github.com/probeops/console/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions   *service.SessionManager
	RateLimits *service.RateLimitService
	APIKeys    *service.APIKeyService
	Probes     *service.ProbeService

	// Audit is nil when no database is configured; the audit routes are
	// simply not mounted in that case.
	Audit ports.AuditTrail

	// Metrics is the shared StatsD sink; nil-safe and disabled when metrics
	// are off.
	Metrics *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires adapters and services for the console.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("redis client is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metrics := buildMetrics(logger, cfg.Observability.Metrics)

	backend, err := probeapi.NewClient(probeapi.Config{
		BaseURL: cfg.Backend.APIURL,
		Timeout: cfg.Backend.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build probeops api client: %w", err)
	}

	sessionStore := redisstore.NewSessionStore(deps.RedisClient)
	notifier := slognotify.NewNotifier(logger)

	var audit ports.AuditTrail
	if deps.DB != nil {
		audit = data.NewAuditRepo(deps.DB)
	}

	sessions, err := service.NewSessionManager(service.SessionManagerOptions{
		Backend:       backend,
		Sessions:      sessionStore,
		Notifier:      notifier,
		Audit:         audit,
		Metrics:       metrics,
		Logger:        logger,
		VerifyTimeout: cfg.Session.VerifyTimeout,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build session manager: %w", err)
	}

	rateLimits, err := service.NewRateLimitService(service.RateLimitServiceOptions{
		Backend:      backend,
		Sessions:     sessions,
		Metrics:      metrics,
		Logger:       logger,
		PollInterval: cfg.RateLimits.PollInterval,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build rate limit service: %w", err)
	}

	apiKeys, err := service.NewAPIKeyService(service.APIKeyServiceOptions{
		Backend:  backend,
		Sessions: sessions,
		Notifier: notifier,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build api key service: %w", err)
	}

	probes, err := service.NewProbeService(service.ProbeServiceOptions{
		Backend:  backend,
		Sessions: sessions,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build probe service: %w", err)
	}

	return ServiceContainer{
		Sessions:   sessions,
		RateLimits: rateLimits,
		APIKeys:    apiKeys,
		Probes:     probes,
		Audit:      audit,
		Metrics:    metrics,
	}, nil
}

// buildMetrics configures the StatsD sink. Failures degrade to a disabled
// client instead of blocking startup.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}
