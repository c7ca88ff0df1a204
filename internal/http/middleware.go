package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/probeops/console/internal/domain/auth"
	"github.com/probeops/console/internal/service"
)

// ProfileCookieName is the cookie identifying one browser profile. The
// console keys all session state by it.
const ProfileCookieName = "probeops_profile"

// safeDefaultRoute is where a denied client is pointed back to.
const safeDefaultRoute = "/"

// Logging returns a middleware that logs HTTP requests and responses. Each
// request gets an ID, echoed in the X-Request-ID header; an inbound ID from a
// proxy is kept.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", requestID),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Profile returns a middleware that resolves the browser profile cookie,
// minting one on first contact, and stores the profile ID in the request
// context. Every route behind it can rely on a non-empty profile ID.
func Profile() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID := profileIDFromRequest(r)
			if profileID == "" {
				profileID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ProfileCookieName,
					Value:    profileID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := SetProfileIDInContext(r.Context(), profileID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func profileIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(ProfileCookieName)
	if err != nil {
		return ""
	}
	if _, parseErr := uuid.Parse(cookie.Value); parseErr != nil {
		return ""
	}
	return cookie.Value
}

// RequireAuth returns a middleware guarding a route behind an authenticated
// session. An uninitialized profile is restored first, adopting any mirrored
// session optimistically, so a still-verifying session renders rather than
// flashing a logout. Anonymous profiles get 401; a lifecycle that has not
// produced a view yet answers 503 with a retry hint.
func RequireAuth(sessions *service.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			view, ok := resolveSession(w, r, sessions)
			if !ok {
				return
			}

			ctx := SetSessionInContext(r.Context(), view.Session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns a middleware that additionally requires a role. Admin
// sessions satisfy every role requirement.
func RequireRole(sessions *service.SessionManager, required domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			view, ok := resolveSession(w, r, sessions)
			if !ok {
				return
			}

			if !view.Session.HasRole(required) {
				WriteError(w, ErrorParams{
					Code:     http.StatusForbidden,
					ErrCode:  "insufficient_permissions",
					Err:      errors.New("insufficient permissions"),
					Redirect: safeDefaultRoute,
				})
				return
			}

			ctx := SetSessionInContext(r.Context(), view.Session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTier returns a middleware that requires a minimum subscription tier.
func RequireTier(sessions *service.SessionManager, minimum domainauth.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			view, ok := resolveSession(w, r, sessions)
			if !ok {
				return
			}

			if !view.Session.TierSatisfies(minimum) {
				WriteError(w, ErrorParams{
					Code:     http.StatusForbidden,
					ErrCode:  "tier_required",
					Err:      errors.New("subscription tier does not allow this operation"),
					Redirect: safeDefaultRoute,
				})
				return
			}

			ctx := SetSessionInContext(r.Context(), view.Session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveSession walks the profile through the session lifecycle for one
// request. It reports false after writing the response itself.
func resolveSession(w http.ResponseWriter, r *http.Request, sessions *service.SessionManager) (service.SessionView, bool) {
	profileID := ProfileIDFromContext(r.Context())
	if profileID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return service.SessionView{}, false
	}

	view := sessions.View(profileID)
	if view.State == service.StateInitializing {
		view = sessions.Restore(r.Context(), profileID)
	}

	switch view.State {
	case service.StateAuthenticated, service.StateVerifying:
		if view.Session != nil {
			return view, true
		}
	case service.StateAnonymous:
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return service.SessionView{}, false
	}

	// Lifecycle has not produced a usable view; ask the client to retry.
	w.Header().Set("Retry-After", "1")
	WriteError(w, ErrorParams{
		Code:    http.StatusServiceUnavailable,
		ErrCode: "session_loading",
		Err:     errors.New("session state is still loading"),
	})
	return service.SessionView{}, false
}
