package httpx

import (
	"context"

	domainauth "github.com/probeops/console/internal/domain/auth"
)

// profileKey is an unexported context key type to avoid collisions across packages.
type profileKey struct{}

// sessionKey carries the confirmed session for guarded routes.
type sessionKey struct{}

// SetProfileIDInContext returns a child context carrying the browser profile ID.
func SetProfileIDInContext(ctx context.Context, profileID string) context.Context {
	if profileID == "" {
		return ctx
	}
	return context.WithValue(ctx, profileKey{}, profileID)
}

// ProfileIDFromContext returns the browser profile ID, or empty when the
// profile middleware did not run.
func ProfileIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(profileKey{}).(string); ok {
		return id
	}
	return ""
}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// GetSessionFromContext retrieves the session from the request context.
// Maintained for convenience; prefer GetUserSessionFromContext when you need presence info.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := GetUserSessionFromContext(ctx); ok {
		return s
	}
	return nil
}
