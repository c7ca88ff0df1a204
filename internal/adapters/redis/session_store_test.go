package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/probeops/console/internal/domain/auth"
	"github.com/probeops/console/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func testSession() domainauth.Session {
	return domainauth.Session{
		User: domainauth.User{
			ID:               7,
			Username:         "bob",
			Email:            "bob@example.com",
			IsActive:         true,
			Role:             domainauth.RoleUser,
			SubscriptionTier: domainauth.TierStandard,
			APIKeyCount:      2,
		},
		Token: "bearer-token-abc",
	}
}

func TestSessionStore_SaveAndLoad(t *testing.T) {
	client := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "profile-1", testSession()))

	loaded, err := store.Load(ctx, "profile-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, testSession().User, loaded.User)
	assert.Equal(t, "bearer-token-abc", loaded.Token)
}

func TestSessionStore_Load_AbsentProfile(t *testing.T) {
	client := setupTestRedis(t)
	store := NewSessionStore(client)

	loaded, err := store.Load(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionStore_Load_TokenMissing(t *testing.T) {
	client := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	// A registration persists the user record without a token; a restore must
	// then see "no session", not a half session.
	sess := testSession()
	sess.Token = ""
	require.NoError(t, store.Save(ctx, "profile-reg", sess))

	loaded, err := store.Load(ctx, "profile-reg")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionStore_Save_EmptyTokenDropsStaleToken(t *testing.T) {
	client := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "profile-2", testSession()))

	sess := testSession()
	sess.Token = ""
	require.NoError(t, store.Save(ctx, "profile-2", sess))

	loaded, err := store.Load(ctx, "profile-2")
	require.NoError(t, err)
	assert.Nil(t, loaded, "stale token must not survive a tokenless save")
}

func TestSessionStore_Clear_Idempotent(t *testing.T) {
	client := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "profile-3", testSession()))
	require.NoError(t, store.Clear(ctx, "profile-3"))

	loaded, err := store.Load(ctx, "profile-3")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing again is not an error.
	require.NoError(t, store.Clear(ctx, "profile-3"))
	require.NoError(t, store.Clear(ctx, ""))
}

func TestSessionStore_FirstAPIKey_OneTimeRead(t *testing.T) {
	client := setupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveFirstAPIKey(ctx, "profile-4", "pk_live_123"))

	key, err := store.TakeFirstAPIKey(ctx, "profile-4")
	require.NoError(t, err)
	assert.Equal(t, "pk_live_123", key)

	key, err = store.TakeFirstAPIKey(ctx, "profile-4")
	require.NoError(t, err)
	assert.Empty(t, key, "second read must come back empty")
}

func TestSessionStore_ClearRemovesFirstAPIKey(t *testing.T) {
	client := setupTestRedis(t)
	store := NewSessionStoreWithPrefix(client, "custom:")
	ctx := context.Background()

	require.NoError(t, store.SaveFirstAPIKey(ctx, "profile-5", "pk_live_456"))
	require.NoError(t, store.Clear(ctx, "profile-5"))

	key, err := store.TakeFirstAPIKey(ctx, "profile-5")
	require.NoError(t, err)
	assert.Empty(t, key)
}
