package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/probeops/console/internal/domain/auth"
	apperrors "github.com/probeops/console/internal/errors"
	"github.com/probeops/console/internal/mocks"
	mockauth "github.com/probeops/console/internal/mocks/auth"
	"github.com/probeops/console/internal/ports"
)

type apiKeyFixture struct {
	*sessionFixture
	service *APIKeyService
}

func newAPIKeyFixture(t *testing.T) *apiKeyFixture {
	t.Helper()

	base := newSessionFixture(t)
	service, err := NewAPIKeyService(APIKeyServiceOptions{
		Backend:  base.backend,
		Sessions: base.manager,
		Notifier: base.notifier,
	})
	require.NoError(t, err)

	_, err = base.manager.Login(context.Background(), "p1", validCreds())
	require.NoError(t, err)

	return &apiKeyFixture{sessionFixture: base, service: service}
}

func TestAPIKeyService_List(t *testing.T) {
	f := newAPIKeyFixture(t)

	keys, err := f.service.List(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "default", keys[0].Name)
}

func TestAPIKeyService_ListRequiresAuth(t *testing.T) {
	f := newAPIKeyFixture(t)

	_, err := f.service.List(context.Background(), "anon")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestAPIKeyService_CreateValidatesName(t *testing.T) {
	f := newAPIKeyFixture(t)

	_, err := f.service.Create(context.Background(), "p1", "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, f.backend.Calls("CreateAPIKey"))
}

func TestAPIKeyService_CreateNotifies(t *testing.T) {
	f := newAPIKeyFixture(t)

	key, err := f.service.Create(context.Background(), "p1", "ci")
	require.NoError(t, err)
	assert.Equal(t, "ci", key.Name)
	assert.NotEmpty(t, key.Key)

	last, ok := f.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, "API key created", last.Notice.Title)
}

func TestAPIKeyService_Delete(t *testing.T) {
	f := newAPIKeyFixture(t)

	require.NoError(t, f.service.Delete(context.Background(), "p1", 2))

	last, ok := f.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, "API key deleted", last.Notice.Title)
}

func TestAPIKeyService_DeleteMissingKey(t *testing.T) {
	f := newAPIKeyFixture(t)
	f.backend.DeleteAPIKeyFunc = func(context.Context, string, int64) error {
		return apperrors.NotFound("api key not found")
	}

	err := f.service.Delete(context.Background(), "p1", 9)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

// The generated gomock backend suits expectation-style tests where call
// order and arguments matter.
func TestAPIKeyService_GomockExpectations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backend := mocks.NewMockBackend(ctrl)
	store := mockauth.NewMemorySessionStore()

	manager, err := NewSessionManager(SessionManagerOptions{Backend: backend, Sessions: store})
	require.NoError(t, err)

	service, err := NewAPIKeyService(APIKeyServiceOptions{Backend: backend, Sessions: manager})
	require.NoError(t, err)

	sess := domainauth.Session{
		User:  domainauth.User{ID: 1, Username: "bob", Role: domainauth.RoleUser, SubscriptionTier: domainauth.TierFree},
		Token: "tok",
	}
	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(sess, nil)
	backend.EXPECT().CreateAPIKey(gomock.Any(), "tok", "ci").
		Return(domainauth.APIKey{ID: 3, Name: "ci", Key: "pk_new"}, nil)

	ctx := context.Background()
	_, err = manager.Login(ctx, "p1", validCreds())
	require.NoError(t, err)

	key, err := service.Create(ctx, "p1", "ci")
	require.NoError(t, err)
	assert.Equal(t, int64(3), key.ID)
}

var _ ports.Backend = (*mocks.MockBackend)(nil)
