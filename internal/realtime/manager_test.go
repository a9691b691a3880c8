package realtime

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
	"harbor/internal/state"
	"harbor/internal/state/statetest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFeed is a ChatRepository whose change feeds are driven by the test.
// On cancellation every watch emits one late notification before returning.
type fakeFeed struct {
	repository.ChatRepository

	mu        sync.Mutex
	chatFeeds map[string]chan []entity.Chat
	msgFeeds  map[string]chan repository.MessageBatch
	started   chan string
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		chatFeeds: make(map[string]chan []entity.Chat),
		msgFeeds:  make(map[string]chan repository.MessageBatch),
		started:   make(chan string, 16),
	}
}

func (f *fakeFeed) chats(uid string) chan []entity.Chat {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.chatFeeds[uid]; !ok {
		f.chatFeeds[uid] = make(chan []entity.Chat, 16)
	}

	return f.chatFeeds[uid]
}

func (f *fakeFeed) messages(chatID string) chan repository.MessageBatch {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.msgFeeds[chatID]; !ok {
		f.msgFeeds[chatID] = make(chan repository.MessageBatch, 16)
	}

	return f.msgFeeds[chatID]
}

func (f *fakeFeed) WatchChats(ctx context.Context, uid string, fn func([]entity.Chat)) error {
	feed := f.chats(uid)
	f.started <- "chats:" + uid

	for {
		select {
		case <-ctx.Done():
			fn([]entity.Chat{{ID: "late"}})

			return ctx.Err()
		case chats := <-feed:
			fn(chats)
		}
	}
}

func (f *fakeFeed) WatchMessages(ctx context.Context, chatID string, fn func(repository.MessageBatch)) error {
	feed := f.messages(chatID)
	f.started <- "messages:" + chatID

	for {
		select {
		case <-ctx.Done():
			fn(repository.MessageBatch{Added: []entity.Message{{ID: "late", ChatID: chatID}}})

			return ctx.Err()
		case batch := <-feed:
			fn(batch)
		}
	}
}

func waitStarted(t *testing.T, f *fakeFeed, want string) {
	t.Helper()

	select {
	case got := <-f.started:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("watch %q did not start", want)
	}
}

func newTestManager(feed *fakeFeed) *Manager {
	return NewManager(feed, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestManager_SubscribeChatsDispatchesUpdates(t *testing.T) {
	feed := newFakeFeed()
	m := newTestManager(feed)
	defer m.Close()

	rec := &statetest.Recorder{}
	unsubscribe, err := m.SubscribeChats(context.Background(), rec, "u1")
	require.NoError(t, err)
	waitStarted(t, feed, "chats:u1")

	feed.chats("u1") <- []entity.Chat{{ID: "chat1"}}

	require.Eventually(t, func() bool { return len(rec.Actions()) == 1 }, 2*time.Second, 5*time.Millisecond)
	update, ok := rec.Last().(state.UpdateChatRealtime)
	require.True(t, ok)
	assert.Equal(t, "chat1", update.Chats[0].ID)

	unsubscribe()
	assert.Len(t, rec.Actions(), 1, "late notification after teardown must be dropped")
	assert.Equal(t, 0, m.Active())
}

func TestManager_MessageBatchesMapToActions(t *testing.T) {
	feed := newFakeFeed()
	m := newTestManager(feed)
	defer m.Close()

	rec := &statetest.Recorder{}
	unsubscribe, err := m.SubscribeMessages(context.Background(), rec, "chat1", "u1")
	require.NoError(t, err)
	defer unsubscribe()
	waitStarted(t, feed, "messages:chat1")

	feed.messages("chat1") <- repository.MessageBatch{Initial: true, Added: []entity.Message{{ID: "m1", ChatID: "chat1"}}}
	feed.messages("chat1") <- repository.MessageBatch{
		Added:    []entity.Message{{ID: "m2", ChatID: "chat1"}},
		Modified: []entity.Message{{ID: "m1", ChatID: "chat1", Read: true}},
	}

	require.Eventually(t, func() bool { return len(rec.Actions()) == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []state.ActionType{
		state.TypeUpdateMessagesRealtime,
		state.TypeNewMessageReceived,
		state.TypeUpdateMessagesRealtime,
	}, rec.Types())

	received := rec.Actions()[1].(state.NewMessageReceived)
	assert.Equal(t, "u1", received.ViewerID)
	assert.Equal(t, "m2", received.Message.ID)
}

func TestManager_ResubscribeTearsDownPreviousHandle(t *testing.T) {
	feed := newFakeFeed()
	m := newTestManager(feed)
	defer m.Close()

	first := &statetest.Recorder{}
	unsubscribeFirst, err := m.SubscribeMessages(context.Background(), first, "chat1", "u1")
	require.NoError(t, err)
	waitStarted(t, feed, "messages:chat1")

	// switch away
	second := &statetest.Recorder{}
	unsubscribeSecond, err := m.SubscribeMessages(context.Background(), second, "chat2", "u1")
	require.NoError(t, err)
	waitStarted(t, feed, "messages:chat2")
	assert.Equal(t, 1, m.Active())

	// stale handle is a no-op
	unsubscribeFirst()
	assert.Equal(t, 1, m.Active())

	// and back
	third := &statetest.Recorder{}
	unsubscribeThird, err := m.SubscribeMessages(context.Background(), third, "chat1", "u1")
	require.NoError(t, err)
	defer unsubscribeThird()
	waitStarted(t, feed, "messages:chat1")

	feed.messages("chat1") <- repository.MessageBatch{Added: []entity.Message{{ID: "m9", ChatID: "chat1"}}}
	require.Eventually(t, func() bool { return len(third.Actions()) == 1 }, 2*time.Second, 5*time.Millisecond)

	assert.Empty(t, first.Actions(), "torn-down subscription must never dispatch")
	assert.Empty(t, second.Actions())

	unsubscribeSecond()
	assert.Equal(t, 1, m.Active())
}

func TestManager_ChannelsAreIndependent(t *testing.T) {
	feed := newFakeFeed()
	m := newTestManager(feed)

	_, err := m.SubscribeChats(context.Background(), &statetest.Recorder{}, "u1")
	require.NoError(t, err)
	_, err = m.SubscribeMessages(context.Background(), &statetest.Recorder{}, "chat1", "u1")
	require.NoError(t, err)
	_, err = m.SubscribeChats(context.Background(), &statetest.Recorder{}, "u2")
	require.NoError(t, err)

	assert.Equal(t, 3, m.Active())

	m.Close()
	assert.Equal(t, 0, m.Active())

	_, err = m.SubscribeChats(context.Background(), &statetest.Recorder{}, "u1")
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestManager_SubscriptionOutlivesCallerContext(t *testing.T) {
	feed := newFakeFeed()
	m := newTestManager(feed)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	rec := &statetest.Recorder{}
	_, err := m.SubscribeChats(ctx, rec, "u1")
	require.NoError(t, err)
	waitStarted(t, feed, "chats:u1")
	cancel()

	feed.chats("u1") <- []entity.Chat{{ID: "chat1"}}
	require.Eventually(t, func() bool { return len(rec.Actions()) == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestManager_RejectsEmptyIdentity(t *testing.T) {
	m := newTestManager(newFakeFeed())

	_, err := m.SubscribeChats(context.Background(), &statetest.Recorder{}, "")
	require.Error(t, err)

	_, err = m.SubscribeMessages(context.Background(), &statetest.Recorder{}, "", "u1")
	require.Error(t, err)
}

// brokenFeed is a ChatRepository whose change feeds fail immediately.
type brokenFeed struct {
	repository.ChatRepository
}

func (brokenFeed) WatchChats(context.Context, string, func([]entity.Chat)) error {
	return errors.New("listener rejected")
}

func (brokenFeed) WatchMessages(context.Context, string, func(repository.MessageBatch)) error {
	return errors.New("listener rejected")
}

type countingObserver struct {
	mu           sync.Mutex
	subscribed   int
	unsubscribed int
}

func (o *countingObserver) Subscribed(Channel) {
	o.mu.Lock()
	o.subscribed++
	o.mu.Unlock()
}

func (o *countingObserver) Unsubscribed(Channel) {
	o.mu.Lock()
	o.unsubscribed++
	o.mu.Unlock()
}

func (o *countingObserver) balanced() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.subscribed == o.unsubscribed
}

func TestManager_FailedStreamLeavesTable(t *testing.T) {
	obs := &countingObserver{}
	m := NewManager(brokenFeed{}, slog.New(slog.NewTextHandler(io.Discard, nil)), WithObserver(obs))
	defer m.Close()

	unsubscribe, err := m.SubscribeChats(context.Background(), &statetest.Recorder{}, "u1")
	require.NoError(t, err)
	_, err = m.SubscribeMessages(context.Background(), &statetest.Recorder{}, "chat1", "u1")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return m.Active() == 0 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, obs.balanced, 2*time.Second, 5*time.Millisecond)

	// the stale handle stays harmless
	unsubscribe()
	assert.Equal(t, 0, m.Active())
}

func TestManager_StopUser(t *testing.T) {
	feed := newFakeFeed()
	m := newTestManager(feed)
	defer m.Close()

	buyer := &statetest.Recorder{}
	_, err := m.SubscribeChats(context.Background(), buyer, "u1")
	require.NoError(t, err)
	waitStarted(t, feed, "chats:u1")
	_, err = m.SubscribeMessages(context.Background(), buyer, "chat1", "u1")
	require.NoError(t, err)
	waitStarted(t, feed, "messages:chat1")
	_, err = m.SubscribeChats(context.Background(), &statetest.Recorder{}, "u2")
	require.NoError(t, err)
	waitStarted(t, feed, "chats:u2")

	m.StopUser("u1")

	assert.Equal(t, 1, m.Active())

	feed.chats("u1") <- []entity.Chat{{ID: "chat1"}}
	feed.messages("chat1") <- repository.MessageBatch{Added: []entity.Message{{ID: "m1", ChatID: "chat1"}}}
	assert.Never(t, func() bool { return len(buyer.Actions()) > 0 }, 100*time.Millisecond, 5*time.Millisecond)
}
