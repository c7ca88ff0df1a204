package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/probeops/console/config"
)

// RunOptions groups dependencies for running the console until shutdown.
type RunOptions struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	Version  string
}

// RunServicesWithShutdown starts the HTTP server and the rate-limit refresh
// loop, then blocks until a shutdown signal arrives or a service fails.
func RunServicesWithShutdown(opts *RunOptions) error {
	if opts == nil || opts.Config == nil {
		return errors.New("run options with config are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := NewHTTPServer(&HTTPServerConfig{
		Config:   opts.Config,
		Services: opts.Services,
		Logger:   logger,
		Version:  opts.Version,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if opts.Services.RateLimits != nil {
		g.Go(func() error {
			if err := opts.Services.RateLimits.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(opts.Config))
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}

func shutdownTimeout(cfg *config.AppConfig) time.Duration {
	if cfg != nil && cfg.HTTP.ShutdownTimeout > 0 {
		return cfg.HTTP.ShutdownTimeout
	}
	return 10 * time.Second
}
