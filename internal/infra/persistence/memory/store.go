// Package memory implements the remote data gateway in process. It backs
// development mode and the use case tests, including change feeds.
package memory

import (
	"sync"
	"time"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/service"
)

type account struct {
	uid          string
	email        string
	passwordHash string
	revokedAt    time.Time
}

type blob struct {
	contentType string
	data        []byte
}

// Store holds every collection of the in-process gateway.
type Store struct {
	mu sync.RWMutex

	users      map[string]entity.User
	ports      []entity.Port
	categories []entity.Category
	goods      map[string]entity.Good
	orders     map[string]entity.Order
	chats      map[string]entity.Chat
	messages   map[string][]entity.Message

	accounts         map[string]*account // by email
	googleIdentities map[string]service.AuthIdentity
	blobs            map[string]blob

	hasher service.PasswordHasher
	now    func() time.Time

	watchMu  sync.Mutex
	watchers map[string]map[chan struct{}]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store. Passwords are hashed with hasher.
func NewStore(hasher service.PasswordHasher, opts ...Option) *Store {
	s := &Store{
		users:            make(map[string]entity.User),
		goods:            make(map[string]entity.Good),
		orders:           make(map[string]entity.Order),
		chats:            make(map[string]entity.Chat),
		messages:         make(map[string][]entity.Message),
		accounts:         make(map[string]*account),
		googleIdentities: make(map[string]service.AuthIdentity),
		blobs:            make(map[string]blob),
		hasher:           hasher,
		now:              time.Now,
		watchers:         make(map[string]map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// watch registers interest in topic. The returned channel receives a
// coalesced signal after every change of the topic.
func (s *Store) watch(topic string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.watchMu.Lock()
	if s.watchers[topic] == nil {
		s.watchers[topic] = make(map[chan struct{}]struct{})
	}
	s.watchers[topic][ch] = struct{}{}
	s.watchMu.Unlock()

	return ch, func() {
		s.watchMu.Lock()
		delete(s.watchers[topic], ch)
		if len(s.watchers[topic]) == 0 {
			delete(s.watchers, topic)
		}
		s.watchMu.Unlock()
	}
}

func (s *Store) notify(topics ...string) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for _, topic := range topics {
		for ch := range s.watchers[topic] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

func chatsTopic(uid string) string { return "chats/" + uid }

func messagesTopic(chatID string) string { return "messages/" + chatID }
