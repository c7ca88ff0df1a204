package config

import (
	"strings"
	"time"
)

// BackendConfig describes how to reach the remote ProbeOps API.
type BackendConfig struct {
	// APIURL is the base URL of the ProbeOps API, including any path prefix.
	APIURL string `env:"API_URL" envDefault:"http://localhost:5000"`

	// Timeout bounds each outbound API request.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
}

// Sanitize applies guardrails to backend configuration values.
func (c *BackendConfig) Sanitize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}
