package repository

import (
	"context"
	"errors"

	"harbor/internal/domain/entity"
)

// ErrChatNotFound is returned when a chat does not exist.
var ErrChatNotFound = errors.New("chat not found")

// MessageBatch is one change notification of a chat's message collection.
type MessageBatch struct {
	// Initial is set on the first notification, which carries the full collection in Added.
	Initial  bool
	Added    []entity.Message
	Modified []entity.Message
}

// ChatRepository defines persistence and change feeds for chats and their messages.
type ChatRepository interface {
	// FindByMember returns the chats uid takes part in, most recent first.
	FindByMember(ctx context.Context, uid string) ([]entity.Chat, error)

	// FindByID retrieves a single chat.
	FindByID(ctx context.Context, id string) (*entity.Chat, error)

	// FindBetween returns the chat whose members are exactly a and b.
	FindBetween(ctx context.Context, a, b string) (*entity.Chat, error)

	// Create stores a new chat under chat.ID.
	Create(ctx context.Context, chat *entity.Chat) error

	// Messages returns the chat's messages in timestamp order.
	Messages(ctx context.Context, chatID string) ([]entity.Message, error)

	// AddMessage appends msg, updates the chat's last message and bumps the
	// unread count of every member except the sender, atomically.
	AddMessage(ctx context.Context, msg *entity.Message) error

	// MarkRead resets uid's unread count and flags the other members' messages as read.
	MarkRead(ctx context.Context, chatID, uid string) error

	// WatchChats calls fn with the member's full chat list on every change
	// until ctx is cancelled. It blocks.
	WatchChats(ctx context.Context, uid string, fn func([]entity.Chat)) error

	// WatchMessages calls fn with every change of the chat's messages until
	// ctx is cancelled. It blocks.
	WatchMessages(ctx context.Context, chatID string, fn func(MessageBatch)) error
}
