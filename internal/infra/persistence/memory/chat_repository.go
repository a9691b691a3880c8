package memory

import (
	"context"
	"slices"
	"strings"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
)

type chatRepository struct {
	s *Store
}

// NewChatRepository returns the in-process chat store with change feeds.
func NewChatRepository(s *Store) repository.ChatRepository {
	return &chatRepository{s: s}
}

func (repo *chatRepository) FindByMember(ctx context.Context, uid string) ([]entity.Chat, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	return repo.chatsOf(uid), nil
}

// chatsOf must be called with the read lock held.
func (repo *chatRepository) chatsOf(uid string) []entity.Chat {
	chats := make([]entity.Chat, 0)
	for _, c := range repo.s.chats {
		if c.HasMember(uid) {
			chats = append(chats, c.Clone())
		}
	}

	slices.SortFunc(chats, func(a, b entity.Chat) int {
		if c := b.LastMessageAt.Compare(a.LastMessageAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	return chats
}

func (repo *chatRepository) FindByID(ctx context.Context, id string) (*entity.Chat, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	c, ok := repo.s.chats[id]
	if !ok {
		return nil, repository.ErrChatNotFound
	}
	cp := c.Clone()

	return &cp, nil
}

func (repo *chatRepository) FindBetween(ctx context.Context, a, b string) (*entity.Chat, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	for _, c := range repo.s.chats {
		if len(c.Members) == 2 && c.HasMember(a) && c.HasMember(b) {
			cp := c.Clone()

			return &cp, nil
		}
	}

	return nil, repository.ErrChatNotFound
}

func (repo *chatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	repo.s.mu.Lock()
	repo.s.chats[chat.ID] = chat.Clone()
	repo.s.mu.Unlock()

	repo.s.notify(memberTopics(chat.Members)...)

	return nil
}

func (repo *chatRepository) Messages(ctx context.Context, chatID string) ([]entity.Message, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	if _, ok := repo.s.chats[chatID]; !ok {
		return nil, repository.ErrChatNotFound
	}

	return repo.sortedMessages(chatID), nil
}

// sortedMessages must be called with the read lock held.
func (repo *chatRepository) sortedMessages(chatID string) []entity.Message {
	msgs := slices.Clone(repo.s.messages[chatID])
	slices.SortStableFunc(msgs, func(a, b entity.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return msgs
}

func (repo *chatRepository) AddMessage(ctx context.Context, msg *entity.Message) error {
	repo.s.mu.Lock()

	chat, ok := repo.s.chats[msg.ChatID]
	if !ok {
		repo.s.mu.Unlock()

		return repository.ErrChatNotFound
	}

	repo.s.messages[msg.ChatID] = append(repo.s.messages[msg.ChatID], *msg)

	updated := chat.Clone()
	updated.LastMessage = msg.Text
	updated.LastMessageAt = msg.Timestamp
	if updated.UnreadCount == nil {
		updated.UnreadCount = make(map[string]int)
	}
	for _, member := range updated.Counterparts(msg.SenderID) {
		updated.UnreadCount[member]++
	}
	repo.s.chats[msg.ChatID] = updated
	members := slices.Clone(updated.Members)

	repo.s.mu.Unlock()

	repo.s.notify(append(memberTopics(members), messagesTopic(msg.ChatID))...)

	return nil
}

func (repo *chatRepository) MarkRead(ctx context.Context, chatID, uid string) error {
	repo.s.mu.Lock()

	chat, ok := repo.s.chats[chatID]
	if !ok {
		repo.s.mu.Unlock()

		return repository.ErrChatNotFound
	}

	updated := chat.Clone()
	if updated.UnreadCount == nil {
		updated.UnreadCount = make(map[string]int)
	}
	updated.UnreadCount[uid] = 0
	repo.s.chats[chatID] = updated

	msgs := slices.Clone(repo.s.messages[chatID])
	changed := false
	for i := range msgs {
		if msgs[i].SenderID != uid && !msgs[i].Read {
			msgs[i].Read = true
			changed = true
		}
	}
	repo.s.messages[chatID] = msgs
	members := slices.Clone(updated.Members)

	repo.s.mu.Unlock()

	topics := memberTopics(members)
	if changed {
		topics = append(topics, messagesTopic(chatID))
	}
	repo.s.notify(topics...)

	return nil
}

func (repo *chatRepository) WatchChats(ctx context.Context, uid string, fn func([]entity.Chat)) error {
	changes, stop := repo.s.watch(chatsTopic(uid))
	defer stop()

	for {
		repo.s.mu.RLock()
		chats := repo.chatsOf(uid)
		repo.s.mu.RUnlock()

		fn(chats)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
		}
	}
}

func (repo *chatRepository) WatchMessages(ctx context.Context, chatID string, fn func(repository.MessageBatch)) error {
	changes, stop := repo.s.watch(messagesTopic(chatID))
	defer stop()

	seen := make(map[string]entity.Message)
	initial := true

	for {
		repo.s.mu.RLock()
		msgs := repo.sortedMessages(chatID)
		repo.s.mu.RUnlock()

		batch := repository.MessageBatch{Initial: initial}
		for _, m := range msgs {
			prev, ok := seen[m.ID]
			switch {
			case !ok:
				batch.Added = append(batch.Added, m)
			case prev != m:
				batch.Modified = append(batch.Modified, m)
			}
			seen[m.ID] = m
		}

		if initial || len(batch.Added) > 0 || len(batch.Modified) > 0 {
			fn(batch)
		}
		initial = false

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
		}
	}
}

func memberTopics(members []string) []string {
	topics := make([]string, len(members))
	for i, m := range members {
		topics[i] = chatsTopic(m)
	}

	return topics
}
