package auth

// Package auth contains simple hand-written test doubles for the session
// lifecycle ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"encoding/json"
	"sync"

	domainauth "github.com/probeops/console/internal/domain/auth"
	"github.com/probeops/console/internal/domain/probe"
	"github.com/probeops/console/internal/domain/ratelimit"
	apperrors "github.com/probeops/console/internal/errors"
	"github.com/probeops/console/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Backend      = (*MockBackend)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.Notifier     = (*RecordingNotifier)(nil)
	_ ports.AuditTrail   = (*MemoryAuditTrail)(nil)
)

// MockBackend simulates the remote ProbeOps API with overridable behavior per
// operation. Unset funcs fall back to deterministic defaults built around
// DefaultUser and DefaultToken.
type MockBackend struct {
	LoginFunc         func(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error)
	RegisterFunc      func(ctx context.Context, reg domainauth.Registration) (ports.RegistrationResult, error)
	VerifySessionFunc func(ctx context.Context, token string) (domainauth.User, error)
	LogoutFunc        func(ctx context.Context, token string) error
	RateLimitsFunc    func(ctx context.Context, token string) (ratelimit.Snapshot, error)
	ListAPIKeysFunc   func(ctx context.Context, token string) ([]domainauth.APIKey, error)
	CreateAPIKeyFunc  func(ctx context.Context, token, name string) (domainauth.APIKey, error)
	DeleteAPIKeyFunc  func(ctx context.Context, token string, id int64) error
	RunProbeFunc      func(ctx context.Context, token string, req probe.Request) (json.RawMessage, error)
	ProbeHistoryFunc  func(ctx context.Context, token string, limit int) (json.RawMessage, error)

	DefaultUser  domainauth.User
	DefaultToken string

	mu    sync.Mutex
	calls map[string]int
}

// NewMockBackend creates a MockBackend with a plain free-tier user.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		DefaultUser: domainauth.User{
			ID:               1,
			Username:         "mockuser",
			Email:            "mock.user@example.com",
			IsActive:         true,
			Role:             domainauth.RoleUser,
			SubscriptionTier: domainauth.TierFree,
		},
		DefaultToken: "mock-token",
	}
}

// Calls reports how many times the named operation ran.
func (m *MockBackend) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockBackend) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

func (m *MockBackend) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error) {
	m.record("Login")
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return domainauth.Session{User: m.DefaultUser, Token: m.DefaultToken}, nil
}

func (m *MockBackend) Register(ctx context.Context, reg domainauth.Registration) (ports.RegistrationResult, error) {
	m.record("Register")
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, reg)
	}
	user := m.DefaultUser
	user.Username = reg.Username
	user.Email = reg.Email
	return ports.RegistrationResult{User: user.NormalizedForRegistration(), APIKey: "pk_mock_first"}, nil
}

func (m *MockBackend) VerifySession(ctx context.Context, token string) (domainauth.User, error) {
	m.record("VerifySession")
	if m.VerifySessionFunc != nil {
		return m.VerifySessionFunc(ctx, token)
	}
	if token != m.DefaultToken {
		return domainauth.User{}, apperrors.Unauthorized("")
	}
	return m.DefaultUser, nil
}

func (m *MockBackend) Logout(ctx context.Context, token string) error {
	m.record("Logout")
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

func (m *MockBackend) RateLimits(ctx context.Context, token string) (ratelimit.Snapshot, error) {
	m.record("RateLimits")
	if m.RateLimitsFunc != nil {
		return m.RateLimitsFunc(ctx, token)
	}
	snap, _ := ratelimit.Defaults(m.DefaultUser.SubscriptionTier)
	return snap, nil
}

func (m *MockBackend) ListAPIKeys(ctx context.Context, token string) ([]domainauth.APIKey, error) {
	m.record("ListAPIKeys")
	if m.ListAPIKeysFunc != nil {
		return m.ListAPIKeysFunc(ctx, token)
	}
	return []domainauth.APIKey{{ID: 1, Name: "default"}}, nil
}

func (m *MockBackend) CreateAPIKey(ctx context.Context, token, name string) (domainauth.APIKey, error) {
	m.record("CreateAPIKey")
	if m.CreateAPIKeyFunc != nil {
		return m.CreateAPIKeyFunc(ctx, token, name)
	}
	return domainauth.APIKey{ID: 2, Name: name, Key: "pk_mock_new"}, nil
}

func (m *MockBackend) DeleteAPIKey(ctx context.Context, token string, id int64) error {
	m.record("DeleteAPIKey")
	if m.DeleteAPIKeyFunc != nil {
		return m.DeleteAPIKeyFunc(ctx, token, id)
	}
	return nil
}

func (m *MockBackend) RunProbe(ctx context.Context, token string, req probe.Request) (json.RawMessage, error) {
	m.record("RunProbe")
	if m.RunProbeFunc != nil {
		return m.RunProbeFunc(ctx, token, req)
	}
	return json.RawMessage(`{"status":"success"}`), nil
}

func (m *MockBackend) ProbeHistory(ctx context.Context, token string, limit int) (json.RawMessage, error) {
	m.record("ProbeHistory")
	if m.ProbeHistoryFunc != nil {
		return m.ProbeHistoryFunc(ctx, token, limit)
	}
	return json.RawMessage(`[]`), nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu        sync.Mutex
	sessions  map[string]domainauth.Session
	firstKeys map[string]string

	// FailNext makes the next mutating call return this error once.
	FailNext error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions:  make(map[string]domainauth.Session),
		firstKeys: make(map[string]string),
	}
}

func (m *MemorySessionStore) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *MemorySessionStore) Save(_ context.Context, profileID string, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.sessions[profileID] = sess
	return nil
}

func (m *MemorySessionStore) Load(_ context.Context, profileID string) (*domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	sess, ok := m.sessions[profileID]
	if !ok {
		return nil, nil
	}
	copied := sess
	return &copied, nil
}

func (m *MemorySessionStore) Clear(_ context.Context, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	delete(m.sessions, profileID)
	delete(m.firstKeys, profileID)
	return nil
}

func (m *MemorySessionStore) SaveFirstAPIKey(_ context.Context, profileID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.firstKeys[profileID] = key
	return nil
}

func (m *MemorySessionStore) TakeFirstAPIKey(_ context.Context, profileID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return "", err
	}
	key := m.firstKeys[profileID]
	delete(m.firstKeys, profileID)
	return key, nil
}

// RecordingNotifier captures delivered notices for assertions.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []DeliveredNotice
}

// DeliveredNotice pairs a notice with the profile it went to.
type DeliveredNotice struct {
	ProfileID string
	Notice    ports.Notice
}

func (r *RecordingNotifier) Notify(_ context.Context, profileID string, notice ports.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, DeliveredNotice{ProfileID: profileID, Notice: notice})
}

// Notices returns a snapshot of everything delivered so far.
func (r *RecordingNotifier) Notices() []DeliveredNotice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DeliveredNotice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, or false when none were delivered.
func (r *RecordingNotifier) Last() (DeliveredNotice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return DeliveredNotice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// MemoryAuditTrail keeps audit events in memory, newest first.
type MemoryAuditTrail struct {
	mu     sync.Mutex
	events []ports.AuditEvent

	// RecordErr, when set, is returned from every Record call.
	RecordErr error
}

func (m *MemoryAuditTrail) Record(_ context.Context, event ports.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return m.RecordErr
	}
	event.ID = int64(len(m.events) + 1)
	m.events = append([]ports.AuditEvent{event}, m.events...)
	return nil
}

func (m *MemoryAuditTrail) Recent(_ context.Context, limit int) ([]ports.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.events) {
		limit = len(m.events)
	}
	out := make([]ports.AuditEvent, limit)
	copy(out, m.events[:limit])
	return out, nil
}
