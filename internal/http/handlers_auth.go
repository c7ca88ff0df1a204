package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/probeops/console/internal/domain/auth"
	"github.com/probeops/console/internal/service"
)

// AuthHandlers exposes the session lifecycle over HTTP. Responses carry the
// lifecycle state and the user record; the bearer token never leaves the
// console.
type AuthHandlers struct {
	sessions *service.SessionManager
	logger   *slog.Logger
}

// NewAuthHandlers constructs AuthHandlers.
func NewAuthHandlers(sessions *service.SessionManager, logger *slog.Logger) *AuthHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandlers{sessions: sessions, logger: logger.With("component", "auth_handlers")}
}

// sessionPayload is the wire form of a lifecycle view.
type sessionPayload struct {
	State string           `json:"state"`
	User  *domainauth.User `json:"user,omitempty"`
}

func viewPayload(view service.SessionView) sessionPayload {
	payload := sessionPayload{State: string(view.State)}
	if view.Session != nil {
		user := view.Session.User
		payload.User = &user
	}
	return payload
}

// Session reports the profile's current lifecycle state, restoring it from
// the mirror on first contact.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	view := h.sessions.View(profileID)
	if view.State == service.StateInitializing {
		view = h.sessions.Restore(r.Context(), profileID)
	}
	WriteJSON(w, http.StatusOK, viewPayload(view))
}

// Login authenticates the profile against the backend.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	var creds domainauth.Credentials
	if !DecodeJSON(w, r, &creds) {
		return
	}

	view, err := h.sessions.Login(r.Context(), profileID, creds)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, viewPayload(view))
}

// registerRequest mirrors the registration form.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. The response carries the fresh user record;
// the profile stays logged out until an explicit login.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.sessions.Register(r.Context(), profileID, domainauth.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// FirstAPIKey surfaces the registration-issued API key exactly once.
func (h *AuthHandlers) FirstAPIKey(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	key, err := h.sessions.FirstAPIKey(r.Context(), profileID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if key == "" {
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "no API key pending display"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"api_key": key})
}

// Logout tears the profile's session down. Always answers with the anonymous
// view; a failed remote invalidation only changes the notice the profile sees.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	view := h.sessions.Logout(r.Context(), profileID)
	WriteJSON(w, http.StatusOK, viewPayload(view))
}
