package probeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/probeops/console/internal/domain/auth"
	"github.com/probeops/console/internal/domain/probe"
	apperrors "github.com/probeops/console/internal/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)
	return client, server
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestClient_Login_NormalizesUser(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/login", r.URL.Path)

		var creds domainauth.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "bob@example.com", creds.Email)

		_, _ = w.Write([]byte(`{"message":"ok","token":"abc","user":{"id":1,"username":"bob","is_admin":false}}`))
	}))

	sess, err := client.Login(context.Background(), domainauth.Credentials{
		Email:    "bob@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", sess.Token)
	assert.Equal(t, domainauth.RoleUser, sess.User.Role)
	assert.Equal(t, domainauth.TierFree, sess.User.SubscriptionTier)
}

func TestClient_Login_AdminFlagDerivesRole(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"t","user":{"id":9,"username":"root","is_admin":true}}`))
	}))

	sess, err := client.Login(context.Background(), domainauth.Credentials{Email: "a", Password: "b"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, sess.User.Role)
}

func TestClient_Login_MissingToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok","user":{"id":1,"username":"bob"}}`))
	}))

	_, err := client.Login(context.Background(), domainauth.Credentials{Email: "a", Password: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing token")
}

func TestClient_Login_ServerMessageSurfaced(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid username or password"}`))
	}))

	_, err := client.Login(context.Background(), domainauth.Credentials{Email: "a", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Invalid username or password")
}

func TestClient_Register_SurfacesAPIKey(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/register", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"created","user":{"id":3,"username":"carol"},"api_key":{"key":"pk_first"}}`))
	}))

	result, err := client.Register(context.Background(), domainauth.Registration{
		Username: "carol", Email: "carol@example.com", Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", result.User.Username)
	assert.Equal(t, "pk_first", result.APIKey)
}

func TestClient_VerifySession_BearerAndShapes(t *testing.T) {
	for name, body := range map[string]string{
		"nested": `{"user":{"id":5,"username":"dana","subscription_tier":"enterprise"}}`,
		"flat":   `{"id":5,"username":"dana","subscription_tier":"enterprise"}`,
	} {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/users/me", r.URL.Path)
				require.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(body))
			}))

			user, err := client.VerifySession(context.Background(), "token-123")
			require.NoError(t, err)
			assert.Equal(t, int64(5), user.ID)
			assert.Equal(t, domainauth.TierEnterprise, user.SubscriptionTier)
			assert.Equal(t, domainauth.RoleUser, user.Role, "normalization fills the missing role")
		})
	}
}

func TestClient_VerifySession_Unauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	}))

	_, err := client.VerifySession(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestClient_NetworkErrorClassified(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listening anymore

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.VerifySession(context.Background(), "t")
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))
}

func TestClient_ServerFaultClassified(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.RateLimits(context.Background(), "t")
	require.Error(t, err)
	assert.True(t, apperrors.IsServerFault(err))
	assert.Contains(t, err.Error(), "Server error: 500")
}

func TestClient_RateLimits(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/rate-limits", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"tier":"standard",
			"daily":{"limit":500,"used":42,"remaining":458},
			"monthly":{"limit":5000,"used":420,"remaining":4580},
			"probe_interval":5
		}`))
	}))

	snap, err := client.RateLimits(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, domainauth.TierStandard, snap.Tier)
	assert.Equal(t, 42, snap.Daily.Used)
	assert.Equal(t, 5, snap.ProbeIntervalMinutes)
}

func TestClient_APIKeys(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /apikeys", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"api_keys":[{"id":1,"name":"default"}]}`))
	})
	mux.HandleFunc("POST /apikeys", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ci", payload["name"])
		_, _ = w.Write([]byte(`{"id":2,"name":"ci","api_key":"pk_new"}`))
	})
	mux.HandleFunc("DELETE /apikeys/2", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /apikeys/9", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"api key not found"}`))
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	keys, err := client.ListAPIKeys(ctx, "t")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "default", keys[0].Name)

	created, err := client.CreateAPIKey(ctx, "t", "ci")
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)
	assert.Equal(t, "pk_new", created.Key)

	require.NoError(t, client.DeleteAPIKey(ctx, "t", 2))

	err = client.DeleteAPIKey(ctx, "t", 9)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestClient_RunProbe_PayloadShapes(t *testing.T) {
	var got struct {
		path    string
		payload map[string]string
	}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.payload = nil
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got.payload))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	ctx := context.Background()

	_, err := client.RunProbe(ctx, "t", probe.Request{Kind: probe.KindPing, Target: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, "/probes/ping", got.path)
	assert.Equal(t, map[string]string{"host": "example.com"}, got.payload)

	_, err = client.RunProbe(ctx, "t", probe.Request{Kind: probe.KindDNS, Target: "example.com", RecordType: "mx"})
	require.NoError(t, err)
	assert.Equal(t, "/probes/dns", got.path)
	assert.Equal(t, map[string]string{"domain": "example.com", "recordType": "MX"}, got.payload)

	_, err = client.RunProbe(ctx, "t", probe.Request{Kind: probe.KindDNS, Target: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, "A", got.payload["recordType"], "record type defaults to A")
}

func TestClient_ProbeHistory_Limit(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/probes/history", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[]`))
	}))

	raw, err := client.ProbeHistory(context.Background(), "t", 25)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
