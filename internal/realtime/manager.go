// Package realtime bridges the gateway's change feeds into dispatched actions.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/errors"
	"harbor/internal/state"
)

// ErrManagerClosed is returned when subscribing on a closed manager.
var ErrManagerClosed = errors.New("realtime manager closed")

// Channel names a kind of subscription.
type Channel string

const (
	ChannelChats    Channel = "chats"
	ChannelMessages Channel = "messages"
)

// Unsubscribe tears a subscription down and waits until it can no longer
// dispatch. It is safe to call more than once. It must not be called from a
// store listener running on the subscription's own dispatch.
type Unsubscribe func()

// Observer is notified when subscriptions start and stop.
type Observer interface {
	Subscribed(channel Channel)
	Unsubscribed(channel Channel)
}

type key struct {
	userID  string
	channel Channel
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
	once    sync.Once
}

// dispatch forwards a unless the subscription was torn down.
func (s *subscription) dispatch(d state.Dispatcher, a state.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	d.Dispatch(a)
}

func (s *subscription) stop() {
	s.once.Do(func() {
		// Waits for an in-flight dispatch; nothing is forwarded afterwards.
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		s.cancel()
		<-s.done
	})
}

// Manager owns the realtime subscriptions of one session. At most one
// subscription per (user, channel) is active; subscribing again replaces it.
type Manager struct {
	chats    repository.ChatRepository
	logger   *slog.Logger
	observer Observer

	mu     sync.Mutex
	subs   map[key]*subscription
	closed bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithObserver reports subscription starts and stops to o.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// NewManager creates a subscription manager reading change feeds from chats.
func NewManager(chats repository.ChatRepository, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		chats:  chats,
		logger: logger.With(slog.String("component", "realtime")),
		subs:   make(map[key]*subscription),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SubscribeChats streams the user's chat list as UpdateChatRealtime actions.
func (m *Manager) SubscribeChats(ctx context.Context, d state.Dispatcher, userID string) (Unsubscribe, error) {
	if userID == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "user id is required")
	}

	return m.start(ctx, key{userID: userID, channel: ChannelChats}, func(ctx context.Context, sub *subscription) error {
		return m.chats.WatchChats(ctx, userID, func(chats []entity.Chat) {
			sub.dispatch(d, state.UpdateChatRealtime{Chats: chats})
		})
	})
}

// SubscribeMessages streams one chat's messages as seen by userID. The
// initial snapshot and modifications arrive as UpdateMessagesRealtime, each
// later addition as NewMessageReceived. Subscribing to another chat replaces
// the user's previous message subscription.
func (m *Manager) SubscribeMessages(ctx context.Context, d state.Dispatcher, chatID, userID string) (Unsubscribe, error) {
	if chatID == "" || userID == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "chat id and user id are required")
	}

	return m.start(ctx, key{userID: userID, channel: ChannelMessages}, func(ctx context.Context, sub *subscription) error {
		return m.chats.WatchMessages(ctx, chatID, func(batch repository.MessageBatch) {
			if batch.Initial {
				sub.dispatch(d, state.UpdateMessagesRealtime{ChatID: chatID, Messages: batch.Added})

				return
			}

			for _, msg := range batch.Added {
				sub.dispatch(d, state.NewMessageReceived{Message: msg, ViewerID: userID})
			}
			if len(batch.Modified) > 0 {
				sub.dispatch(d, state.UpdateMessagesRealtime{ChatID: chatID, Messages: batch.Modified})
			}
		})
	})
}

// Active returns the number of live subscriptions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.subs)
}

// StopUser tears down every subscription held for userID.
func (m *Manager) StopUser(userID string) {
	m.mu.Lock()
	var stopped []*subscription
	for k, sub := range m.subs {
		if k.userID == userID {
			stopped = append(stopped, sub)
			delete(m.subs, k)
		}
	}
	m.mu.Unlock()

	for _, sub := range stopped {
		sub.stop()
	}
}

// Close tears down every subscription. Subsequent subscribes fail.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	subs := m.subs
	m.subs = make(map[key]*subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (m *Manager) start(ctx context.Context, k key, run func(context.Context, *subscription) error) (Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}

	if prev, ok := m.subs[k]; ok {
		prev.stop()
		delete(m.subs, k)
	}

	// The subscription outlives the call that created it.
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	m.subs[k] = sub

	if m.observer != nil {
		m.observer.Subscribed(k.channel)
	}

	go func() {
		defer close(sub.done)

		if m.observer != nil {
			defer m.observer.Unsubscribed(k.channel)
		}

		if err := run(subCtx, sub); err != nil && subCtx.Err() == nil {
			m.logger.Error("Realtime subscription ended",
				slog.String("channel", string(k.channel)),
				slog.String("user_id", k.userID),
				slog.Any("error", err))
		}

		// A stream that ended on its own frees its slot.
		m.remove(k, sub)
	}()

	m.logger.Debug("Realtime subscription started",
		slog.String("channel", string(k.channel)),
		slog.String("user_id", k.userID))

	return func() {
		sub.stop()
		m.remove(k, sub)
	}, nil
}

// remove drops sub from the table unless a newer subscription took its key.
func (m *Manager) remove(k key, sub *subscription) {
	m.mu.Lock()
	if m.subs[k] == sub {
		delete(m.subs, k)
	}
	m.mu.Unlock()
}
