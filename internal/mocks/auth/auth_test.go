package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/probeops/console/internal/domain/auth"
	apperrors "github.com/probeops/console/internal/errors"
	"github.com/probeops/console/internal/ports"
)

func TestMockBackend_Defaults(t *testing.T) {
	backend := NewMockBackend()
	ctx := context.Background()

	sess, err := backend.Login(ctx, domainauth.Credentials{Email: "a", Password: "b"})
	require.NoError(t, err)
	assert.Equal(t, "mock-token", sess.Token)
	assert.Equal(t, domainauth.TierFree, sess.User.SubscriptionTier)

	user, err := backend.VerifySession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, user.ID)

	_, err = backend.VerifySession(ctx, "wrong-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))

	assert.Equal(t, 1, backend.Calls("Login"))
	assert.Equal(t, 2, backend.Calls("VerifySession"))
}

func TestMockBackend_Overrides(t *testing.T) {
	backend := NewMockBackend()
	backend.LoginFunc = func(context.Context, domainauth.Credentials) (domainauth.Session, error) {
		return domainauth.Session{}, apperrors.Validation("Invalid username or password")
	}

	_, err := backend.Login(context.Background(), domainauth.Credentials{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestMemorySessionStore_RoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	missing, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	sess := domainauth.Session{User: domainauth.User{ID: 7, Username: "bob"}, Token: "t"}
	require.NoError(t, store.Save(ctx, "p1", sess))

	loaded, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sess, *loaded)

	require.NoError(t, store.Clear(ctx, "p1"))
	require.NoError(t, store.Clear(ctx, "p1"), "clearing twice is fine")

	gone, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestMemorySessionStore_FirstAPIKeyIsOneTime(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.SaveFirstAPIKey(ctx, "p1", "pk_first"))

	key, err := store.TakeFirstAPIKey(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "pk_first", key)

	key, err = store.TakeFirstAPIKey(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestMemorySessionStore_FailNextIsOneShot(t *testing.T) {
	store := NewMemorySessionStore()
	store.FailNext = errors.New("redis down")

	require.Error(t, store.Save(context.Background(), "p1", domainauth.Session{Token: "t"}))
	require.NoError(t, store.Save(context.Background(), "p1", domainauth.Session{Token: "t"}))
}

func TestRecordingNotifier(t *testing.T) {
	var notifier RecordingNotifier

	_, ok := notifier.Last()
	assert.False(t, ok)

	notifier.Notify(context.Background(), "p1", ports.Notice{
		Level: ports.NoticeSuccess, Title: "Welcome back!",
	})

	last, ok := notifier.Last()
	require.True(t, ok)
	assert.Equal(t, "p1", last.ProfileID)
	assert.Equal(t, "Welcome back!", last.Notice.Title)
	assert.Len(t, notifier.Notices(), 1)
}

func TestMemoryAuditTrail_NewestFirst(t *testing.T) {
	var trail MemoryAuditTrail
	ctx := context.Background()

	require.NoError(t, trail.Record(ctx, ports.AuditEvent{Action: ports.AuditLogin}))
	require.NoError(t, trail.Record(ctx, ports.AuditEvent{Action: ports.AuditLogout}))

	events, err := trail.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ports.AuditLogout, events[0].Action)

	one, err := trail.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
}
