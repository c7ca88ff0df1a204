package config

import "time"

// SessionConfig controls background verification of mirrored sessions.
type SessionConfig struct {
	// VerifyTimeout bounds each background verification call against the
	// ProbeOps API.
	VerifyTimeout time.Duration `env:"SESSION_VERIFY_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize() {
	if c.VerifyTimeout <= 0 {
		c.VerifyTimeout = 10 * time.Second
	}
}

// RateLimitConfig controls the cached rate-limit snapshot refresh loop.
type RateLimitConfig struct {
	// PollInterval is how often cached snapshots are refreshed for
	// authenticated profiles.
	PollInterval time.Duration `env:"RATE_LIMIT_POLL_INTERVAL" envDefault:"5m"`
}

// Sanitize clamps the poll interval to a sane floor so a misconfigured
// environment cannot hammer the backend.
func (c *RateLimitConfig) Sanitize() {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Minute
	}
	if c.PollInterval < 30*time.Second {
		c.PollInterval = 30 * time.Second
	}
}
