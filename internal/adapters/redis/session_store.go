package redis

// Package redis provides Redis-based adapters for the ProbeOps console.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/probeops/console/internal/domain/auth"
)

// SessionStore is a Redis-based session mirror keyed by browser profile.
// The user record and bearer token are separate entries, matching the two
// durable cells the dashboard keeps. No TTL is applied: local copies carry
// no expiry, validity is decided by the next backend verification.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "profile:",
	}
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *SessionStore) userKey(profileID string) string {
	return s.prefix + profileID + ":user"
}

func (s *SessionStore) tokenKey(profileID string) string {
	return s.prefix + profileID + ":token"
}

func (s *SessionStore) firstAPIKeyKey(profileID string) string {
	return s.prefix + profileID + ":first_api_key"
}

// Save writes the serialized user record and the token as separate entries.
func (s *SessionStore) Save(ctx context.Context, profileID string, sess domainauth.Session) error {
	if profileID == "" {
		return errors.New("profile ID cannot be empty")
	}

	data, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	if err := s.client.Set(ctx, s.userKey(profileID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set user: %w", err)
	}
	// Registration persists a user without a token; keep the cells in sync by
	// dropping any stale token instead of writing an empty one.
	if sess.Token == "" {
		if err := s.client.Del(ctx, s.tokenKey(profileID)).Err(); err != nil {
			return fmt.Errorf("redis del token: %w", err)
		}
		return nil
	}
	if err := s.client.Set(ctx, s.tokenKey(profileID), sess.Token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// Load returns the mirrored session, or nil when the user record or token is
// missing. Absence is not an error.
func (s *SessionStore) Load(ctx context.Context, profileID string) (*domainauth.Session, error) {
	if profileID == "" {
		return nil, nil
	}

	data, err := s.client.Get(ctx, s.userKey(profileID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get user: %w", err)
	}

	token, err := s.client.Get(ctx, s.tokenKey(profileID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get token: %w", err)
	}

	var user domainauth.User
	if unmarshalErr := json.Unmarshal([]byte(data), &user); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal user: %w", unmarshalErr)
	}

	return &domainauth.Session{User: user, Token: token}, nil
}

// Clear removes every entry for the profile. Clearing an absent profile is a
// no-op, so Clear is idempotent.
func (s *SessionStore) Clear(ctx context.Context, profileID string) error {
	if profileID == "" {
		return nil
	}

	keys := []string{
		s.userKey(profileID),
		s.tokenKey(profileID),
		s.firstAPIKeyKey(profileID),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// SaveFirstAPIKey retains the API key issued at registration.
func (s *SessionStore) SaveFirstAPIKey(ctx context.Context, profileID, key string) error {
	if profileID == "" {
		return errors.New("profile ID cannot be empty")
	}
	if key == "" {
		return nil
	}
	if err := s.client.Set(ctx, s.firstAPIKeyKey(profileID), key, 0).Err(); err != nil {
		return fmt.Errorf("redis set first api key: %w", err)
	}
	return nil
}

// TakeFirstAPIKey returns the retained key and deletes it, making the read
// one-time. Returns empty when nothing was retained.
func (s *SessionStore) TakeFirstAPIKey(ctx context.Context, profileID string) (string, error) {
	if profileID == "" {
		return "", nil
	}

	key, err := s.client.GetDel(ctx, s.firstAPIKeyKey(profileID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis getdel first api key: %w", err)
	}
	return key, nil
}
