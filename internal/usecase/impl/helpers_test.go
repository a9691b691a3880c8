package impl

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"harbor/internal/domain/service"
	"harbor/internal/infra/auth"
	"harbor/internal/infra/cache"
	"harbor/internal/infra/gateway"
	"harbor/internal/infra/imaging"
	"harbor/internal/infra/persistence/memory"
	mockSvc "harbor/internal/mocks/service"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store     *memory.Store
	gw        *gateway.Gateway
	images    service.ImageProcessor
	publisher *mockSvc.MockEventPublisher
	logger    *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore(auth.NewBcryptHasher(bcrypt.MinCost), memory.WithClock(func() time.Time { return testNow }))
	require.NoError(t, gateway.LoadDemoData(store))

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return &testEnv{
		store:     store,
		gw:        gateway.NewMemory(store, "http://blobs.test", logger),
		images:    imaging.NewProcessor(256, 80),
		publisher: mockSvc.NewMockEventPublisher(t),
		logger:    logger,
	}
}

func (env *testEnv) authService(t *testing.T) (usecase.AuthUsecase, *cache.SessionCache) {
	t.Helper()

	backend := cache.NewMemoryBackend(time.Hour)
	t.Cleanup(func() { _ = backend.Close() })
	sessionCache := cache.Namespaced(backend, "test-session")

	factory := NewAuthServiceFactory(AuthServiceParams{
		Auth:   env.gw.Auth,
		Users:  env.gw.Users,
		Ports:  env.gw.Ports,
		Logger: env.logger,
	})

	return factory.ForSession(sessionCache), sessionCache
}

func (env *testEnv) catalogService() *catalogService {
	srv := NewCatalogService(CatalogServiceParams{
		Categories: env.gw.Categories,
		Goods:      env.gw.Goods,
		Blobs:      env.gw.Blobs,
		Images:     env.images,
		Logger:     env.logger,
	}).(*catalogService)
	srv.now = func() time.Time { return testNow }

	return srv
}

func (env *testEnv) chatService() *chatService {
	srv := NewChatService(ChatServiceParams{
		Chats:     env.gw.Chats,
		Users:     env.gw.Users,
		Publisher: env.publisher,
		Logger:    env.logger,
	}).(*chatService)
	srv.now = func() time.Time { return testNow }

	return srv
}

// pngUpload returns a small opaque PNG as an upload.
func pngUpload(t *testing.T, name string, shade uint8) usecase.Upload {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: shade, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return usecase.Upload{FileName: name, Reader: &buf}
}

// terminalFailure returns the failure message of the last recorded action.
func terminalFailure(t *testing.T, a state.Action) string {
	t.Helper()

	f, ok := a.(state.Failure)
	require.True(t, ok, "expected a failure action, got %s", a.Type())

	return f.FailureMessage()
}
