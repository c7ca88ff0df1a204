package ports

// Package ports defines interfaces (hexagonal ports) for the console's
// collaborators. Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.

import (
	"context"
	"encoding/json"
	"time"

	domainauth "github.com/probeops/console/internal/domain/auth"
	"github.com/probeops/console/internal/domain/probe"
	"github.com/probeops/console/internal/domain/ratelimit"
)

// SessionStore mirrors the authenticated identity and bearer token for one
// browser profile. It is a cache: the backend stays the source of truth, and
// no expiry is tracked locally.
type SessionStore interface {
	// Save writes the user record and token; subsequent Loads see the new
	// values immediately.
	Save(ctx context.Context, profileID string, sess domainauth.Session) error
	// Load returns the mirrored session, or nil when either entry is absent.
	// Absence is not an error.
	Load(ctx context.Context, profileID string) (*domainauth.Session, error)
	// Clear removes all entries for the profile. Clearing an empty profile is
	// not an error.
	Clear(ctx context.Context, profileID string) error

	// SaveFirstAPIKey retains the API key issued at registration for a later
	// one-time display.
	SaveFirstAPIKey(ctx context.Context, profileID, key string) error
	// TakeFirstAPIKey returns the retained key and removes it; empty when none.
	TakeFirstAPIKey(ctx context.Context, profileID string) (string, error)
}

// RegistrationResult is what the backend hands back for a new account: the
// user record plus the initial API key generated server-side.
type RegistrationResult struct {
	User   domainauth.User
	APIKey string
}

// Backend is the remote ProbeOps API. Implementations normalize the
// backend's drifting response shapes into canonical domain types and classify
// failures into the internal/errors taxonomy.
type Backend interface {
	// Login exchanges credentials for a bearer token and normalized user.
	Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error)
	// Register creates an account. It does not yield a bearer token; the
	// account holder logs in afterwards.
	Register(ctx context.Context, reg domainauth.Registration) (RegistrationResult, error)
	// VerifySession asks the backend who the token belongs to. A 401 comes
	// back as an Unauthorized AppError.
	VerifySession(ctx context.Context, token string) (domainauth.User, error)
	// Logout invalidates the token server-side. Callers are expected to
	// proceed with local teardown even when this fails.
	Logout(ctx context.Context, token string) error

	// RateLimits fetches the usage snapshot for the token's account.
	RateLimits(ctx context.Context, token string) (ratelimit.Snapshot, error)

	ListAPIKeys(ctx context.Context, token string) ([]domainauth.APIKey, error)
	CreateAPIKey(ctx context.Context, token, name string) (domainauth.APIKey, error)
	DeleteAPIKey(ctx context.Context, token string, id int64) error

	// RunProbe forwards a validated probe request; the backend executes (or
	// simulates) it and returns the raw result document.
	RunProbe(ctx context.Context, token string, req probe.Request) (json.RawMessage, error)
	// ProbeHistory returns the most recent probe results, newest first.
	ProbeHistory(ctx context.Context, token string, limit int) (json.RawMessage, error)
}

// NoticeLevel grades a user-facing notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing notification (the SPA rendered these as toasts).
type Notice struct {
	Level   NoticeLevel
	Title   string
	Message string
}

// Notifier delivers notices for a profile. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, profileID string, notice Notice)
}

// AuditAction identifies an auth lifecycle event worth recording.
type AuditAction string

const (
	AuditLogin        AuditAction = "login"
	AuditLoginFailed  AuditAction = "login_failed"
	AuditRegister     AuditAction = "register"
	AuditLogout       AuditAction = "logout"
	AuditVerifyFailed AuditAction = "verify_failed"
)

// AuditEvent is one recorded auth lifecycle event.
type AuditEvent struct {
	ID        int64
	ProfileID string
	UserID    int64
	Username  string
	Action    AuditAction
	Detail    string
	CreatedAt time.Time
}

// AuditTrail records auth lifecycle events. Recording is best-effort; the
// session lifecycle never fails because the trail is down.
type AuditTrail interface {
	Record(ctx context.Context, event AuditEvent) error
	Recent(ctx context.Context, limit int) ([]AuditEvent, error)
}
