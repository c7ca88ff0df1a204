package probeapi

// Package probeapi is the HTTP adapter for the remote ProbeOps API. It owns
// endpoint paths, bearer-token transport, response-shape normalization, and
// error classification; callers only ever see canonical domain types and
// AppError codes.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	domainauth "github.com/probeops/console/internal/domain/auth"
	"github.com/probeops/console/internal/domain/probe"
	"github.com/probeops/console/internal/domain/ratelimit"
	apperrors "github.com/probeops/console/internal/errors"
	"github.com/probeops/console/internal/ports"
)

// Config captures how to reach the ProbeOps API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  *slog.Logger
}

// Client talks to the remote ProbeOps API. It is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.Backend = (*Client)(nil)

// NewClient builds a ProbeOps API client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("probeops api base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: baseURL,
		client:  hc,
		logger:  logger.With("component", "probeapi"),
	}, nil
}

// Login exchanges credentials for a bearer token and normalized user.
func (c *Client) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error) {
	body, err := c.do(ctx, request{method: http.MethodPost, path: "/users/login", body: creds})
	if err != nil {
		return domainauth.Session{}, err
	}

	var envelope struct {
		Message string          `json:"message"`
		Token   string          `json:"token"`
		User    json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode login response")
	}
	if envelope.Token == "" {
		return domainauth.Session{}, apperrors.Internal("login response missing token")
	}

	user, err := parseUserPayload(envelope.User)
	if err != nil {
		return domainauth.Session{}, err
	}

	return domainauth.Session{User: user.Normalized(), Token: envelope.Token}, nil
}

// Register creates an account and surfaces the server-generated first API
// key separately from the user record.
func (c *Client) Register(ctx context.Context, reg domainauth.Registration) (ports.RegistrationResult, error) {
	body, err := c.do(ctx, request{method: http.MethodPost, path: "/users/register", body: reg})
	if err != nil {
		return ports.RegistrationResult{}, err
	}

	var envelope struct {
		Message string          `json:"message"`
		User    json.RawMessage `json:"user"`
		APIKey  json.RawMessage `json:"api_key"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ports.RegistrationResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode register response")
	}

	user, err := parseUserPayload(envelope.User)
	if err != nil {
		return ports.RegistrationResult{}, err
	}

	apiKey, err := parseAPIKeyValue(envelope.APIKey)
	if err != nil {
		return ports.RegistrationResult{}, err
	}

	return ports.RegistrationResult{User: user.Normalized(), APIKey: apiKey}, nil
}

// VerifySession resolves the token to its account. The response nests the
// user under "user" or returns it flat; both are accepted.
func (c *Client) VerifySession(ctx context.Context, token string) (domainauth.User, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/users/me", token: token})
	if err != nil {
		return domainauth.User{}, err
	}

	user, err := parseUserPayload(body)
	if err != nil {
		return domainauth.User{}, err
	}
	return user.Normalized(), nil
}

// Logout invalidates the token server-side. The caller decides whether the
// error matters; local teardown must proceed regardless.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/users/logout", token: token})
	return err
}

// RateLimits fetches the usage snapshot for the token's account.
func (c *Client) RateLimits(ctx context.Context, token string) (ratelimit.Snapshot, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/user/rate-limits", token: token})
	if err != nil {
		return ratelimit.Snapshot{}, err
	}

	var snap ratelimit.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return ratelimit.Snapshot{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode rate limit response")
	}
	return snap, nil
}

// ListAPIKeys returns the account's probe API keys.
func (c *Client) ListAPIKeys(ctx context.Context, token string) ([]domainauth.APIKey, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/apikeys", token: token})
	if err != nil {
		return nil, err
	}
	return parseAPIKeyList(body)
}

// CreateAPIKey creates a named probe API key and returns it with the secret.
func (c *Client) CreateAPIKey(ctx context.Context, token, name string) (domainauth.APIKey, error) {
	payload := map[string]string{"name": name}
	body, err := c.do(ctx, request{method: http.MethodPost, path: "/apikeys", token: token, body: payload})
	if err != nil {
		return domainauth.APIKey{}, err
	}

	// Prefer the full record; fall back to bare key extraction when the
	// backend wraps only the secret.
	var record struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"created_at"`
	}
	_ = json.Unmarshal(body, &record)

	key, err := extractAPIKeyValue(body)
	if err != nil {
		return domainauth.APIKey{}, err
	}

	name = record.Name
	if name == "" {
		name = payload["name"]
	}
	return domainauth.APIKey{ID: record.ID, Name: name, Key: key, CreatedAt: record.CreatedAt}, nil
}

// DeleteAPIKey removes a probe API key. Deleting an already-removed key
// comes back as a NotFound AppError.
func (c *Client) DeleteAPIKey(ctx context.Context, token string, id int64) error {
	path := "/apikeys/" + strconv.FormatInt(id, 10)
	_, err := c.do(ctx, request{method: http.MethodDelete, path: path, token: token})
	return err
}

// RunProbe forwards a validated probe request to the matching backend
// endpoint and returns the raw result document.
func (c *Client) RunProbe(ctx context.Context, token string, req probe.Request) (json.RawMessage, error) {
	payload := map[string]string{}
	switch req.Kind {
	case probe.KindPing, probe.KindTraceroute:
		payload["host"] = req.Target
	case probe.KindDNS:
		payload["domain"] = req.Target
		recordType := req.RecordType
		if recordType == "" {
			recordType = "A"
		}
		payload["recordType"] = strings.ToUpper(recordType)
	case probe.KindWhois:
		payload["domain"] = req.Target
	default:
		return nil, apperrors.ValidationField("kind", "unknown probe type")
	}

	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/probes/" + string(req.Kind),
		token:  token,
		body:   payload,
	})
}

// ProbeHistory returns the most recent probe results.
func (c *Client) ProbeHistory(ctx context.Context, token string, limit int) (json.RawMessage, error) {
	path := "/probes/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	return c.do(ctx, request{method: http.MethodGet, path: path, token: token})
}

// request groups the parameters for one backend round-trip.
type request struct {
	method string
	path   string
	token  string
	body   any
}

// do performs the round-trip and classifies failures: transport errors are
// Network, 401 is Unauthorized, 404 NotFound, other 4xx Validation, and 5xx
// ServerFault. Success returns the raw body.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	var reader io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClientFor(req.token).Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNetwork, "no response from server")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close response body failed", "error", cerr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNetwork, "read response body")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, classifyStatus(resp.StatusCode, body)
}

const maxResponseBytes = 4 << 20

// httpClientFor wraps the base client with a bearer-token transport when a
// token is present. oauth2.Transport handles the Authorization header.
func (c *Client) httpClientFor(token string) *http.Client {
	if token == "" {
		return c.client
	}
	wrapped := *c.client
	wrapped.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   c.client.Transport,
	}
	return &wrapped
}

// classifyStatus maps a non-2xx response to the error taxonomy, preferring
// the server's own message when it sends one.
func classifyStatus(status int, body []byte) error {
	message := serverMessage(body)
	if message == "" {
		message = fmt.Sprintf("Server error: %d", status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case status == http.StatusNotFound:
		return apperrors.NotFound(message)
	case status >= 400 && status < 500:
		return apperrors.Validation(message)
	default:
		return apperrors.ServerFault(message)
	}
}

// serverMessage pulls the human-readable message out of an error body.
// The backend uses "error" in some handlers and "message" in others.
func serverMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
