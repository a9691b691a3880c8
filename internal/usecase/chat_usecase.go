package usecase

import (
	"context"

	"harbor/internal/domain/entity"
	"harbor/internal/state"
)

// ChatUsecase defines the chat action creators.
type ChatUsecase interface {
	FetchChats(ctx context.Context, d state.Dispatcher, uid string) ([]entity.Chat, error)

	// FetchMessages loads the chat's messages. uid must be a member of the chat.
	FetchMessages(ctx context.Context, d state.Dispatcher, chatID, uid string) ([]entity.Message, error)

	// SendMessage stores the message and notifies the other members.
	SendMessage(ctx context.Context, d state.Dispatcher, chatID, senderID, text string) (*entity.Message, error)

	// ResetUnreadCount clears uid's unread counter and marks the counterparts' messages read.
	ResetUnreadCount(ctx context.Context, d state.Dispatcher, chatID, uid string) error

	// OpenChatFromOrder finds the chat between the order's buyer and seller or creates it.
	OpenChatFromOrder(ctx context.Context, d state.Dispatcher, uid string, order entity.Order) (*entity.Chat, error)

	// SelectChat selects the chat, fetches its messages and resets uid's unread count.
	SelectChat(ctx context.Context, d state.Dispatcher, chatID, uid string) error

	// DeselectChat clears the selected chat.
	DeselectChat(d state.Dispatcher)
}
