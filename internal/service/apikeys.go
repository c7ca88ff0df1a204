package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainauth "github.com/probeops/console/internal/domain/auth"
	apperrors "github.com/probeops/console/internal/errors"
	"github.com/probeops/console/internal/ports"
)

// APIKeyServiceOptions groups dependencies for APIKeyService.
type APIKeyServiceOptions struct {
	Backend  ports.Backend
	Sessions *SessionManager
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// APIKeyService manages an account's probe API keys through the backend.
type APIKeyService struct {
	backend  ports.Backend
	sessions *SessionManager
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewAPIKeyService constructs an APIKeyService.
func NewAPIKeyService(opts APIKeyServiceOptions) (*APIKeyService, error) {
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

	return &APIKeyService{
		backend:  opts.Backend,
		sessions: opts.Sessions,
		notifier: opts.Notifier,
		logger:   logger.With("component", "apikey_service"),
	}, nil
}

// List returns the profile's API keys. Secrets are only present on keys the
// backend chooses to echo; listings normally omit them.
func (s *APIKeyService) List(ctx context.Context, profileID string) ([]domainauth.APIKey, error) {
	token, err := s.sessions.Token(profileID)
	if err != nil {
		return nil, err
	}
	return s.backend.ListAPIKeys(ctx, token)
}

// Create issues a new named key. The returned record carries the secret; it
// is shown once and never stored by the console.
func (s *APIKeyService) Create(ctx context.Context, profileID, name string) (domainauth.APIKey, error) {
	token, err := s.sessions.Token(profileID)
	if err != nil {
		return domainauth.APIKey{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domainauth.APIKey{}, apperrors.ValidationField("name", "key name is required")
	}

	key, err := s.backend.CreateAPIKey(ctx, token, name)
	if err != nil {
		return domainauth.APIKey{}, err
	}

	s.notify(ctx, profileID, ports.Notice{
		Level:   ports.NoticeSuccess,
		Title:   "API key created",
		Message: "Copy the key now; it will not be shown again.",
	})
	return key, nil
}

// Delete revokes a key by ID.
func (s *APIKeyService) Delete(ctx context.Context, profileID string, id int64) error {
	token, err := s.sessions.Token(profileID)
	if err != nil {
		return err
	}

	if err := s.backend.DeleteAPIKey(ctx, token, id); err != nil {
		return err
	}

	s.notify(ctx, profileID, ports.Notice{
		Level:   ports.NoticeSuccess,
		Title:   "API key deleted",
		Message: "The key can no longer be used.",
	})
	return nil
}

func (s *APIKeyService) notify(ctx context.Context, profileID string, notice ports.Notice) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, profileID, notice)
}
