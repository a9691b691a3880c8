package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"harbor/config"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/service"
	"harbor/internal/infra/auth"
	"harbor/internal/infra/cache"
	"harbor/internal/infra/gateway"
	"harbor/internal/infra/metrics"
	"harbor/internal/infra/persistence/memory"
	"harbor/internal/usecase"
	"harbor/internal/usecase/impl"
)

type fixture struct {
	manager *Manager
	backend cache.Backend
	gw      *gateway.Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore(auth.NewBcryptHasher(bcrypt.MinCost))
	require.NoError(t, gateway.LoadDemoData(store))
	gw := gateway.NewMemory(store, "http://blobs.test", logger)

	cfg := &config.Config{Session: &config.SessionConfig{Secret: "test-secret", TTL: time.Hour}}
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	backend := cache.NewMemoryBackend(0)
	authFactory := impl.NewAuthServiceFactory(impl.AuthServiceParams{
		Auth:   gw.Auth,
		Users:  gw.Users,
		Ports:  gw.Ports,
		Logger: logger,
	})

	m := newManager(logger, tokens, backend, authFactory, gw.Chats, metrics.New(), time.Hour)
	t.Cleanup(m.CloseAll)

	return &fixture{manager: m, backend: backend, gw: gw}
}

func TestManager_CreateAndResolve(t *testing.T) {
	f := newFixture(t)

	sess, token, expiresAt, err := f.manager.Create()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	resolved, err := f.manager.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Same(t, sess, resolved)
	assert.Equal(t, 1, f.manager.Len())
}

func TestManager_ResolveRejectsForgedToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domainerrors.ErrSessionInvalid)
}

func TestManager_ResolveRestoresReleasedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, token, _, err := f.manager.Create()
	require.NoError(t, err)

	_, err = sess.Auth.SignIn(ctx, sess.Store, gateway.DemoBuyerEmail, gateway.DemoPassword)
	require.NoError(t, err)

	// Simulate a restart: live sessions go away, the cache backend stays.
	f.manager.mu.Lock()
	delete(f.manager.sessions, sess.ID)
	f.manager.mu.Unlock()
	f.manager.release(sess)

	restored, err := f.manager.Resolve(ctx, token)
	require.NoError(t, err)
	assert.NotSame(t, sess, restored)
	assert.Equal(t, sess.ID, restored.ID)
	assert.Equal(t, "demo-buyer", restored.UserID())
	assert.Equal(t, 1, restored.Realtime.Active())
}

func TestManager_ResolveUnknownSessionWithoutCacheIsAnonymous(t *testing.T) {
	f := newFixture(t)

	tokens, err := auth.NewJWTService(&config.Config{Session: &config.SessionConfig{Secret: "test-secret", TTL: time.Hour}})
	require.NoError(t, err)
	token, _, err := tokens.IssueSessionToken("never-opened")
	require.NoError(t, err)

	sess, err := f.manager.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "never-opened", sess.ID)
	assert.Empty(t, sess.UserID())
	assert.False(t, sess.State().UserAuth.IsAuthenticated)
}

func TestManager_EndClearsCacheAndSubscriptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, _, _, err := f.manager.Create()
	require.NoError(t, err)
	user, err := sess.Auth.SignIn(ctx, sess.Store, gateway.DemoSellerEmail, gateway.DemoPassword)
	require.NoError(t, err)
	require.NoError(t, sess.WatchChats(user.ID))

	f.manager.End(ctx, sess)

	assert.Equal(t, 0, f.manager.Len())
	assert.Equal(t, 0, sess.Realtime.Active())
	assert.Error(t, sess.Context().Err())

	_, err = cache.Namespaced(f.backend, sess.ID).Get(ctx, service.CacheKeyCurrentUser)
	assert.Error(t, err)
}

func TestSession_SignInAsAnotherUserStopsPreviousStreams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, _, _, err := f.manager.Create()
	require.NoError(t, err)

	buyer, err := sess.Auth.SignIn(ctx, sess.Store, gateway.DemoBuyerEmail, gateway.DemoPassword)
	require.NoError(t, err)
	require.NoError(t, sess.WatchChats(buyer.ID))
	require.NoError(t, sess.WatchMessages("demo-chat", buyer.ID))
	require.Equal(t, 2, sess.Realtime.Active())

	seller, err := sess.Auth.SignIn(ctx, sess.Store, gateway.DemoSellerEmail, gateway.DemoPassword)
	require.NoError(t, err)
	require.NoError(t, sess.WatchChats(seller.ID))

	assert.Equal(t, 1, sess.Realtime.Active())

	// signing in again as the same user keeps a single stream
	require.NoError(t, sess.WatchChats(seller.ID))
	assert.Equal(t, 1, sess.Realtime.Active())
}

func TestManager_SweepReleasesIdleSessions(t *testing.T) {
	f := newFixture(t)

	now := time.Now()
	f.manager.now = func() time.Time { return now }

	_, _, _, err := f.manager.Create()
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	f.manager.sweep()

	assert.Equal(t, 0, f.manager.Len())
}

func TestSession_RegistrationForm(t *testing.T) {
	f := newFixture(t)

	sess, _, _, err := f.manager.Create()
	require.NoError(t, err)

	err = sess.Registration(func(form *usecase.RegistrationForm) error {
		return form.SubmitCredentials(usecase.Credentials{Email: "new@harbor.dev", Password: "secret1", ConfirmPassword: "secret1"})
	})
	require.NoError(t, err)

	var step int
	require.NoError(t, sess.Registration(func(form *usecase.RegistrationForm) error {
		step = form.Step

		return nil
	}))
	assert.Equal(t, usecase.StepDetails, step)

	sess.ResetRegistration()
	require.NoError(t, sess.Registration(func(form *usecase.RegistrationForm) error {
		step = form.Step

		return nil
	}))
	assert.Equal(t, usecase.StepCredentials, step)
}
