// Package service provides the orchestration layer for the console: session
// lifecycle, rate-limit caching, API key management, and probe forwarding.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/probeops/console/internal/domain/auth"
	apperrors "github.com/probeops/console/internal/errors"
	"github.com/probeops/console/internal/observability/statsd"
	"github.com/probeops/console/internal/ports"
)

// SessionState names the phase of a profile's session lifecycle.
type SessionState string

const (
	// StateInitializing means the durable store has not been consulted yet.
	StateInitializing SessionState = "initializing"
	// StateVerifying means a mirrored session was restored optimistically and
	// backend reconciliation is in flight.
	StateVerifying SessionState = "verifying"
	// StateAuthenticated means the backend has confirmed the session.
	StateAuthenticated SessionState = "authenticated"
	// StateAnonymous means no session is held for the profile.
	StateAnonymous SessionState = "anonymous"
)

// SessionView is a read-only snapshot of a profile's session lifecycle.
// Session is non-nil only in the verifying and authenticated states.
type SessionView struct {
	State   SessionState
	Session *domainauth.Session
}

// Settled reports whether the lifecycle reached a terminal state.
func (v SessionView) Settled() bool {
	return v.State == StateAuthenticated || v.State == StateAnonymous
}

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Backend  ports.Backend
	Sessions ports.SessionStore
	Notifier ports.Notifier
	Audit    ports.AuditTrail
	Metrics  statsd.Sink
	Logger   *slog.Logger

	// VerifyTimeout bounds the async reconciliation call. Zero means 10s.
	VerifyTimeout time.Duration
}

// SessionManager owns the session lifecycle for every browser profile. Each
// profile moves through initializing -> (verifying) -> authenticated or
// anonymous; transitions are serialized per profile and guarded by a
// monotonic operation sequence so a slow verification can never overwrite the
// result of a newer login or logout.
type SessionManager struct {
	backend       ports.Backend
	sessions      ports.SessionStore
	notifier      ports.Notifier
	audit         ports.AuditTrail
	metrics       statsd.Sink
	logger        *slog.Logger
	verifyTimeout time.Duration

	mu       sync.Mutex
	profiles map[string]*profileState

	// onSettled, when set, runs after a profile reaches a terminal state.
	// The rate-limit service hooks in here to fetch or drop its snapshot.
	onSettled func(profileID string, view SessionView)
}

type profileState struct {
	state   SessionState
	session *domainauth.Session
	seq     uint64
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(opts SessionManagerOptions) (*SessionManager, error) {
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

	timeout := opts.VerifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SessionManager{
		backend:       opts.Backend,
		sessions:      opts.Sessions,
		notifier:      opts.Notifier,
		audit:         opts.Audit,
		metrics:       opts.Metrics,
		logger:        logger.With("component", "session_manager"),
		verifyTimeout: timeout,
		profiles:      make(map[string]*profileState),
	}, nil
}

// OnSettled registers a hook invoked whenever a profile reaches authenticated
// or anonymous. Call before serving traffic; the hook runs outside the
// manager's lock.
func (m *SessionManager) OnSettled(fn func(profileID string, view SessionView)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSettled = fn
}

// View returns the current lifecycle snapshot for a profile. Unknown profiles
// report initializing; Restore moves them on.
func (m *SessionManager) View(profileID string) SessionView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked(profileID)
}

func (m *SessionManager) viewLocked(profileID string) SessionView {
	p, ok := m.profiles[profileID]
	if !ok {
		return SessionView{State: StateInitializing}
	}
	return SessionView{State: p.state, Session: copySession(p.session)}
}

func copySession(s *domainauth.Session) *domainauth.Session {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

// profile returns the tracked state for a profile, creating it at
// initializing. Callers must hold the lock.
func (m *SessionManager) profileLocked(profileID string) *profileState {
	p, ok := m.profiles[profileID]
	if !ok {
		p = &profileState{state: StateInitializing}
		m.profiles[profileID] = p
	}
	return p
}

// Restore brings a profile out of initializing. A mirrored session is adopted
// optimistically and reconciled against the backend in the background; an
// empty or unreadable mirror settles the profile as anonymous immediately.
// Calling Restore on an already-settled profile is a no-op.
func (m *SessionManager) Restore(ctx context.Context, profileID string) SessionView {
	m.mu.Lock()
	p := m.profileLocked(profileID)
	if p.state != StateInitializing {
		view := m.viewLocked(profileID)
		m.mu.Unlock()
		return view
	}
	seq := p.seq
	m.mu.Unlock()

	mirrored, err := m.sessions.Load(ctx, profileID)
	if err != nil {
		// The mirror being unreadable is indistinguishable from it being
		// empty; the profile starts logged out either way.
		m.logger.WarnContext(ctx, "session mirror unreadable", "profile_id", profileID, "error", err)
		mirrored = nil
	}

	if mirrored == nil || mirrored.Token == "" {
		return m.settle(profileID, seq, StateAnonymous, nil)
	}

	view := m.transition(profileID, seq, StateVerifying, mirrored)
	if view.State != StateVerifying {
		// A login or logout won the race while we read the mirror.
		return view
	}

	go m.reconcile(profileID, seq, mirrored.Token)
	return view
}

// reconcile confirms a restored session with the backend. Any failure tears
// the optimistic session down: the mirror is cleared and the profile lands
// anonymous. State is settled before the mirror is touched so a stale verdict
// can never wipe what a newer login or logout just persisted.
func (m *SessionManager) reconcile(profileID string, seq uint64, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.verifyTimeout)
	defer cancel()

	user, err := m.backend.VerifySession(ctx, token)
	if err == nil {
		sess := &domainauth.Session{User: user, Token: token}
		if _, ok := m.settleIfCurrent(profileID, seq, StateAuthenticated, sess); !ok {
			// A newer operation owns the mirror now.
			return
		}
		if saveErr := m.sessions.Save(ctx, profileID, *sess); saveErr != nil {
			m.logger.WarnContext(ctx, "session mirror refresh failed", "profile_id", profileID, "error", saveErr)
		}
		return
	}

	if _, ok := m.settleIfCurrent(profileID, seq, StateAnonymous, nil); !ok {
		return
	}

	m.count("session.verify_failed", map[string]string{"code": string(apperrors.CodeOf(err))})
	m.logger.WarnContext(ctx, "session verification failed", "profile_id", profileID, "error", err)
	m.recordAudit(ctx, ports.AuditEvent{
		ProfileID: profileID,
		Action:    ports.AuditVerifyFailed,
		Detail:    string(apperrors.CodeOf(err)),
	})
	if clearErr := m.sessions.Clear(ctx, profileID); clearErr != nil {
		m.logger.WarnContext(ctx, "session mirror clear failed", "profile_id", profileID, "error", clearErr)
	}
}

// Login authenticates the profile with the backend and settles it as
// authenticated on success.
func (m *SessionManager) Login(ctx context.Context, profileID string, creds domainauth.Credentials) (SessionView, error) {
	if err := creds.Validate(); err != nil {
		return m.View(profileID), err
	}

	seq := m.bump(profileID)

	sess, err := m.backend.Login(ctx, creds)
	if err != nil {
		m.count("session.login", map[string]string{"result": "failure"})
		m.recordAudit(ctx, ports.AuditEvent{
			ProfileID: profileID,
			Action:    ports.AuditLoginFailed,
			Detail:    string(apperrors.CodeOf(err)),
		})
		m.notify(ctx, profileID, ports.Notice{
			Level:   ports.NoticeError,
			Title:   "Login failed",
			Message: apperrors.UserMessage(err),
		})
		m.recoverAfterFailedLogin(profileID, seq)
		return m.View(profileID), err
	}

	if saveErr := m.sessions.Save(ctx, profileID, sess); saveErr != nil {
		// The session is live server-side; a failed mirror only costs the
		// next restore.
		m.logger.WarnContext(ctx, "session mirror save failed", "profile_id", profileID, "error", saveErr)
	}

	view := m.settle(profileID, seq, StateAuthenticated, &sess)

	m.count("session.login", map[string]string{"result": "success"})
	m.recordAudit(ctx, ports.AuditEvent{
		ProfileID: profileID,
		UserID:    sess.User.ID,
		Username:  sess.User.Username,
		Action:    ports.AuditLogin,
	})

	title := "Welcome back!"
	message := "You are now logged in."
	if sess.IsAdmin() {
		message = "You are now logged in as an administrator."
	}
	m.notify(ctx, profileID, ports.Notice{Level: ports.NoticeSuccess, Title: title, Message: message})

	return view, nil
}

// Register creates a new account. The profile is not logged in afterwards;
// the fresh user record is mirrored without a token and the server-issued
// first API key is retained for one-time display.
func (m *SessionManager) Register(ctx context.Context, profileID string, reg domainauth.Registration) (domainauth.User, error) {
	if err := reg.Validate(); err != nil {
		return domainauth.User{}, err
	}

	result, err := m.backend.Register(ctx, reg)
	if err != nil {
		m.count("session.register", map[string]string{"result": "failure"})
		m.notify(ctx, profileID, ports.Notice{
			Level:   ports.NoticeError,
			Title:   "Registration failed",
			Message: apperrors.UserMessage(err),
		})
		return domainauth.User{}, err
	}

	user := result.User.NormalizedForRegistration()

	if saveErr := m.sessions.Save(ctx, profileID, domainauth.Session{User: user}); saveErr != nil {
		m.logger.WarnContext(ctx, "registered user mirror save failed", "profile_id", profileID, "error", saveErr)
	}
	if result.APIKey != "" {
		if keyErr := m.sessions.SaveFirstAPIKey(ctx, profileID, result.APIKey); keyErr != nil {
			m.logger.WarnContext(ctx, "first api key retention failed", "profile_id", profileID, "error", keyErr)
		}
	}

	m.count("session.register", map[string]string{"result": "success"})
	m.recordAudit(ctx, ports.AuditEvent{
		ProfileID: profileID,
		UserID:    user.ID,
		Username:  user.Username,
		Action:    ports.AuditRegister,
	})
	m.notify(ctx, profileID, ports.Notice{
		Level:   ports.NoticeSuccess,
		Title:   "Account created",
		Message: "Your account is ready. Log in to get started.",
	})

	return user, nil
}

// FirstAPIKey returns the API key issued at registration, once. Subsequent
// calls return empty.
func (m *SessionManager) FirstAPIKey(ctx context.Context, profileID string) (string, error) {
	return m.sessions.TakeFirstAPIKey(ctx, profileID)
}

// Logout tears the session down. Local state is always cleared and the
// profile settles as anonymous even when the backend call fails; only the
// notice wording differs.
func (m *SessionManager) Logout(ctx context.Context, profileID string) SessionView {
	m.mu.Lock()
	p := m.profileLocked(profileID)
	p.seq++
	seq := p.seq
	sess := copySession(p.session)
	m.mu.Unlock()

	var remoteErr error
	if sess != nil && sess.Token != "" {
		remoteErr = m.backend.Logout(ctx, sess.Token)
	}

	if clearErr := m.sessions.Clear(ctx, profileID); clearErr != nil {
		m.logger.WarnContext(ctx, "session mirror clear failed", "profile_id", profileID, "error", clearErr)
	}

	view := m.settle(profileID, seq, StateAnonymous, nil)

	event := ports.AuditEvent{ProfileID: profileID, Action: ports.AuditLogout}
	if sess != nil {
		event.UserID = sess.User.ID
		event.Username = sess.User.Username
	}
	m.recordAudit(ctx, event)

	if remoteErr != nil {
		m.logger.WarnContext(ctx, "remote logout failed", "profile_id", profileID, "error", remoteErr)
		m.notify(ctx, profileID, ports.Notice{
			Level:   ports.NoticeWarning,
			Title:   "Logged out locally",
			Message: "The server could not be reached; your local session was cleared.",
		})
	} else {
		m.notify(ctx, profileID, ports.Notice{
			Level:   ports.NoticeSuccess,
			Title:   "Logged out",
			Message: "You have been logged out.",
		})
	}

	return view
}

// Token returns the bearer token for an authenticated or verifying profile,
// or an Unauthorized error otherwise.
func (m *SessionManager) Token(profileID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[profileID]
	if !ok || p.session == nil || p.session.Token == "" {
		return "", apperrors.Unauthorized("")
	}
	return p.session.Token, nil
}

// recoverAfterFailedLogin re-settles a profile whose in-flight restore was
// invalidated by the bump for a failed login attempt. A settled profile keeps
// its state, a held session goes back through verification, and anything else
// lands anonymous.
func (m *SessionManager) recoverAfterFailedLogin(profileID string, seq uint64) {
	m.mu.Lock()
	p := m.profileLocked(profileID)
	if p.seq != seq || p.state == StateAuthenticated || p.state == StateAnonymous {
		m.mu.Unlock()
		return
	}
	cur := copySession(p.session)
	m.mu.Unlock()

	if cur == nil || cur.Token == "" {
		m.settle(profileID, seq, StateAnonymous, nil)
		return
	}
	m.transition(profileID, seq, StateVerifying, cur)
	go m.reconcile(profileID, seq, cur.Token)
}

// bump invalidates any in-flight reconciliation for the profile and returns
// the new sequence.
func (m *SessionManager) bump(profileID string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profileLocked(profileID)
	p.seq++
	return p.seq
}

// transition applies a non-terminal state change when the sequence still
// matches; stale callers get the current view back unchanged.
func (m *SessionManager) transition(profileID string, seq uint64, state SessionState, sess *domainauth.Session) SessionView {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profileLocked(profileID)
	if p.seq != seq {
		return m.viewLocked(profileID)
	}
	p.state = state
	p.session = copySession(sess)
	return m.viewLocked(profileID)
}

// settle moves the profile to a terminal state and fires the settled hook.
// Stale sequences are ignored.
func (m *SessionManager) settle(profileID string, seq uint64, state SessionState, sess *domainauth.Session) SessionView {
	view, _ := m.settleIfCurrent(profileID, seq, state, sess)
	return view
}

// settleIfCurrent is settle with the guard outcome exposed, for callers whose
// side effects outside the lock must not run on behalf of a superseded
// operation.
func (m *SessionManager) settleIfCurrent(profileID string, seq uint64, state SessionState, sess *domainauth.Session) (SessionView, bool) {
	m.mu.Lock()
	p := m.profileLocked(profileID)
	if p.seq != seq {
		view := m.viewLocked(profileID)
		m.mu.Unlock()
		return view, false
	}
	p.state = state
	p.session = copySession(sess)
	view := m.viewLocked(profileID)
	hook := m.onSettled
	m.mu.Unlock()

	if hook != nil {
		hook(profileID, view)
	}
	return view, true
}

func (m *SessionManager) notify(ctx context.Context, profileID string, notice ports.Notice) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(ctx, profileID, notice)
}

// recordAudit writes the event best-effort; the trail being down never fails
// a session operation.
func (m *SessionManager) recordAudit(ctx context.Context, event ports.AuditEvent) {
	if m.audit == nil {
		return
	}
	if err := m.audit.Record(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "audit record failed", "action", string(event.Action), "error", err)
	}
}

func (m *SessionManager) count(name string, tags map[string]string) {
	if m.metrics == nil {
		return
	}
	m.metrics.Count(name, 1, tags)
}
