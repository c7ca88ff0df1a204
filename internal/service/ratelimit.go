package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/probeops/console/internal/domain/auth"
	"github.com/probeops/console/internal/domain/ratelimit"
	apperrors "github.com/probeops/console/internal/errors"
	"github.com/probeops/console/internal/observability/statsd"
	"github.com/probeops/console/internal/ports"
)

// DefaultRateLimitPollInterval is how often cached snapshots are refreshed in
// the background.
const DefaultRateLimitPollInterval = 5 * time.Minute

// RateLimitServiceOptions groups dependencies for RateLimitService.
type RateLimitServiceOptions struct {
	Backend  ports.Backend
	Sessions *SessionManager
	Metrics  statsd.Sink
	Logger   *slog.Logger

	// PollInterval overrides the background refresh cadence. Zero means the
	// default of five minutes.
	PollInterval time.Duration
}

// RateLimitService caches one usage snapshot per authenticated profile. A
// snapshot is fetched when a profile authenticates, refreshed every poll
// interval and on demand, and dropped on logout. When the backend cannot
// produce a snapshot, static per-tier defaults stand in as long as the tier
// is known; an unknown tier yields no snapshot rather than a guessed one,
// and an expired session surfaces as an error rather than healthy defaults.
type RateLimitService struct {
	backend  ports.Backend
	sessions *SessionManager
	metrics  statsd.Sink
	logger   *slog.Logger
	interval time.Duration

	mu        sync.Mutex
	snapshots map[string]*ratelimit.Snapshot
}

// NewRateLimitService constructs a RateLimitService and hooks it into the
// session manager's settle events.
func NewRateLimitService(opts RateLimitServiceOptions) (*RateLimitService, error) {
	if opts.Backend == nil {
		return nil, errors.New("Backend is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("Sessions is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultRateLimitPollInterval
	}

	s := &RateLimitService{
		backend:   opts.Backend,
		sessions:  opts.Sessions,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "ratelimit_service"),
		interval:  interval,
		snapshots: make(map[string]*ratelimit.Snapshot),
	}

	opts.Sessions.OnSettled(s.onSessionSettled)
	return s, nil
}

// onSessionSettled primes or drops the cache as profiles log in and out.
func (s *RateLimitService) onSessionSettled(profileID string, view SessionView) {
	switch view.State {
	case StateAuthenticated:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.Refresh(ctx, profileID); err != nil {
			s.logger.Warn("initial rate limit fetch failed", "profile_id", profileID, "error", err)
		}
	case StateAnonymous:
		s.drop(profileID)
	}
}

// Snapshot returns the cached snapshot for a profile, or nil when none is
// held. Callers must treat nil as "unknown", never as zero usage.
func (s *RateLimitService) Snapshot(profileID string) *ratelimit.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[profileID]
	if !ok {
		return nil
	}
	copied := *snap
	return &copied
}

// Refresh fetches a fresh snapshot from the backend and caches it. On
// failure the per-tier defaults are substituted when the profile's tier is
// known; an unauthorized response or an unknown tier propagates the error
// and any stale snapshot stays in place. Concurrent refreshes are
// last-write-wins.
func (s *RateLimitService) Refresh(ctx context.Context, profileID string) (*ratelimit.Snapshot, error) {
	token, err := s.sessions.Token(profileID)
	if err != nil {
		return nil, err
	}

	snap, err := s.backend.RateLimits(ctx, token)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			// The session is gone, not the backend; defaults would fabricate
			// quota for an expired token.
			return nil, err
		}
		return s.fallback(profileID, err)
	}

	s.store(profileID, snap)
	return s.Snapshot(profileID), nil
}

// fallback substitutes static per-tier defaults for a failed fetch. Only a
// known tier earns a fallback; guessing limits for an unknown tier would
// misreport quota.
func (s *RateLimitService) fallback(profileID string, cause error) (*ratelimit.Snapshot, error) {
	view := s.sessions.View(profileID)

	var tier domainauth.Tier
	if view.Session != nil {
		tier = view.Session.User.SubscriptionTier
	}

	defaults, ok := ratelimit.Defaults(tier)
	if !ok {
		return nil, apperrors.Wrap(cause, apperrors.CodeOf(cause), "rate limit fetch failed with unknown tier")
	}

	s.count("ratelimit.fallback", map[string]string{"tier": string(tier)})
	s.logger.Warn("serving static rate limit defaults", "profile_id", profileID, "tier", string(tier), "error", cause)

	s.store(profileID, defaults)
	return s.Snapshot(profileID), nil
}

func (s *RateLimitService) store(profileID string, snap ratelimit.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[profileID] = &snap
}

func (s *RateLimitService) drop(profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, profileID)
}

// cachedProfiles lists profiles that currently hold a snapshot.
func (s *RateLimitService) cachedProfiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		out = append(out, id)
	}
	return out
}

// Run refreshes every cached profile on the poll interval until the context
// is canceled. Intended to run under the service group.
func (s *RateLimitService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "rate limit poller started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("rate limit poller stopped")
			return ctx.Err()
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

func (s *RateLimitService) pollOnce(ctx context.Context) {
	for _, profileID := range s.cachedProfiles() {
		if _, err := s.Refresh(ctx, profileID); err != nil {
			if apperrors.IsUnauthorized(err) {
				// Profile logged out between listing and refresh.
				s.drop(profileID)
				continue
			}
			s.logger.WarnContext(ctx, "background rate limit refresh failed", "profile_id", profileID, "error", err)
		}
	}
}

func (s *RateLimitService) count(name string, tags map[string]string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Count(name, 1, tags)
}
