package memory

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/infra/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore() *Store {
	return NewStore(auth.NewBcryptHasher(bcrypt.MinCost))
}

func TestGoodRepository_FindFiltersByPortCategoryAndOwner(t *testing.T) {
	s := newTestStore()
	s.Load(Seed{Goods: []entity.Good{
		{ID: "g1", OwnerID: "u1", PortID: "p1", CategoryID: "c1"},
		{ID: "g2", OwnerID: "u2", PortID: "p1", CategoryID: "c1"},
		{ID: "g3", OwnerID: "u1", PortID: "p1", CategoryID: "c2"},
		{ID: "g4", OwnerID: "u1", PortID: "p2", CategoryID: "c1"},
	}})
	repo := NewGoodRepository(s)

	goods, err := repo.Find(context.Background(), repository.GoodsFilter{PortID: "p1", CategoryID: "c1", OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, goods, 1)
	assert.Equal(t, "g1", goods[0].ID)

	goods, err = repo.Find(context.Background(), repository.GoodsFilter{PortID: "p1"})
	require.NoError(t, err)
	assert.Len(t, goods, 3)
}

func TestGoodRepository_RejectsGoodWithoutOwnerOrPort(t *testing.T) {
	repo := NewGoodRepository(newTestStore())

	err := repo.Create(context.Background(), &entity.Good{ID: "g1", PortID: "p1"})
	assert.ErrorIs(t, err, entity.ErrGoodOwnerRequired)

	err = repo.Update(context.Background(), &entity.Good{ID: "missing", OwnerID: "u1", PortID: "p1"})
	assert.ErrorIs(t, err, repository.ErrGoodNotFound)
}

func TestUserRepository_UpdateAndTokens(t *testing.T) {
	s := newTestStore()
	repo := NewUserRepository(s)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", FirstName: "Ada"}))

	phone := "+31 10 000"
	user, err := repo.Update(ctx, "u1", repository.UserUpdate{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, phone, user.Phone)
	assert.False(t, user.CreatedAt.IsZero())

	require.NoError(t, repo.AddFCMToken(ctx, "u1", "t1"))
	require.NoError(t, repo.AddFCMToken(ctx, "u1", "t1"))
	require.NoError(t, repo.AddFCMToken(ctx, "u1", "t2"))
	require.NoError(t, repo.RemoveFCMTokens(ctx, "u1", []string{"t1"}))

	user, err = repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, user.FCMTokens)

	_, err = repo.FindByID(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestChatRepository_AddMessageBumpsCounterpartUnread(t *testing.T) {
	s := newTestStore()
	repo := NewChatRepository(s)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Chat{ID: "chat1", Members: []string{"u1", "u2"}}))
	require.NoError(t, repo.AddMessage(ctx, &entity.Message{ID: "m1", ChatID: "chat1", SenderID: "u1", Text: "hello", Timestamp: time.Now()}))

	chat, err := repo.FindByID(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, 0, chat.Unread("u1"))
	assert.Equal(t, 1, chat.Unread("u2"))
	assert.Equal(t, "hello", chat.LastMessage)

	require.NoError(t, repo.MarkRead(ctx, "chat1", "u2"))
	chat, err = repo.FindByID(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, 0, chat.Unread("u2"))

	msgs, err := repo.Messages(ctx, "chat1")
	require.NoError(t, err)
	assert.True(t, msgs[0].Read)

	between, err := repo.FindBetween(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.Equal(t, "chat1", between.ID)

	err = repo.AddMessage(ctx, &entity.Message{ChatID: "missing"})
	assert.ErrorIs(t, err, repository.ErrChatNotFound)
}

func TestChatRepository_WatchMessages(t *testing.T) {
	s := newTestStore()
	repo := NewChatRepository(s)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, repo.Create(ctx, &entity.Chat{ID: "chat1", Members: []string{"u1", "u2"}}))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AddMessage(ctx, &entity.Message{ID: "m1", ChatID: "chat1", SenderID: "u1", Timestamp: t0}))

	var mu sync.Mutex
	var batches []repository.MessageBatch
	done := make(chan error, 1)
	go func() {
		done <- repo.WatchMessages(ctx, "chat1", func(b repository.MessageBatch) {
			mu.Lock()
			batches = append(batches, b)
			mu.Unlock()
		})
	}()

	count := func() int {
		mu.Lock()
		defer mu.Unlock()

		return len(batches)
	}
	require.Eventually(t, func() bool { return count() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, repo.AddMessage(ctx, &entity.Message{ID: "m2", ChatID: "chat1", SenderID: "u2", Timestamp: t0.Add(time.Second)}))
	require.Eventually(t, func() bool { return count() == 2 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, repo.MarkRead(ctx, "chat1", "u2"))
	require.Eventually(t, func() bool { return count() == 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, batches[0].Initial)
	assert.Equal(t, "m1", batches[0].Added[0].ID)
	assert.Equal(t, "m2", batches[1].Added[0].ID)
	require.Len(t, batches[2].Modified, 1)
	assert.Equal(t, "m1", batches[2].Modified[0].ID)
	assert.True(t, batches[2].Modified[0].Read)
}

func TestAuthProvider_PasswordAndGoogle(t *testing.T) {
	s := newTestStore()
	provider := NewAuthProvider(s)
	ctx := context.Background()

	created, err := provider.CreateUser(ctx, "Ada@Example.com", "secret-pass")
	require.NoError(t, err)

	_, err = provider.CreateUser(ctx, "ada@example.com", "secret-pass")
	assert.ErrorIs(t, err, service.ErrEmailExists)

	identity, err := provider.SignInWithPassword(ctx, "ada@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, created.UID, identity.UID)

	_, err = provider.SignInWithPassword(ctx, "ada@example.com", "wrong-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	s.RegisterGoogleIdentity("google-token", service.AuthIdentity{Email: "new@example.com", FirstName: "New", LastName: "Sailor"})
	google, err := provider.SignInWithGoogle(ctx, "google-token")
	require.NoError(t, err)
	assert.True(t, google.IsNewUser)
	assert.Equal(t, "New", google.FirstName)

	require.NoError(t, NewUserRepository(s).Create(ctx, &entity.User{ID: google.UID}))
	again, err := provider.SignInWithGoogle(ctx, "google-token")
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)
	assert.Equal(t, google.UID, again.UID)

	require.NoError(t, provider.SignOut(ctx, created.UID))
	assert.Error(t, provider.SignOut(ctx, "unknown"))
}

func TestBlobStorage(t *testing.T) {
	s := newTestStore()
	blobs := NewBlobStorage(s, "http://localhost:8080/blobs/")

	url, err := blobs.Upload(context.Background(), "goods/p1/u1/g1/a.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/blobs/goods%2Fp1%2Fu1%2Fg1%2Fa.jpg", url)

	contentType, data, ok := s.Blob("goods/p1/u1/g1/a.jpg")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, []byte("jpeg"), data)

	require.NoError(t, blobs.Delete(context.Background(), "goods/p1/u1/g1/a.jpg"))
	assert.Empty(t, s.BlobPaths())
}
