package auth

import (
	"strings"

	apperrors "github.com/probeops/console/internal/errors"
)

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login payload before it leaves the console.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if c.Password == "" {
		return apperrors.ValidationField("password", "password is required")
	}
	return nil
}

// Registration is a new-account request.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration payload before it leaves the console.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return apperrors.ValidationField("username", "username is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return apperrors.ValidationField("email", "email must be a valid address")
	}
	if len(r.Password) < 8 {
		return apperrors.ValidationField("password", "password must be at least 8 characters")
	}
	return nil
}

// APIKey is a probe API key owned by the account.
type APIKey struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// Key is the secret itself; the backend only discloses it on creation.
	Key       string `json:"key,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}
