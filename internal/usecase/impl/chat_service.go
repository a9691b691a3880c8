package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// ChatServiceParams holds dependencies for the chat action creators, injected by Fx
type ChatServiceParams struct {
	fx.In

	Chats     repository.ChatRepository
	Users     repository.UserRepository
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// chatService implements the ChatUsecase interface.
type chatService struct {
	chats     repository.ChatRepository
	users     repository.UserRepository
	publisher service.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewChatService is the constructor for chatService.
func NewChatService(params ChatServiceParams) usecase.ChatUsecase {
	return &chatService{
		chats:     params.Chats,
		users:     params.Users,
		publisher: params.Publisher,
		logger:    params.Logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (srv *chatService) FetchChats(ctx context.Context, d state.Dispatcher, uid string) ([]entity.Chat, error) {
	d.Dispatch(state.FetchChatsRequest{})

	chats, err := srv.chats.FindByMember(ctx, uid)
	if err != nil {
		d.Dispatch(state.FetchChatsFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.FetchChatsSuccess{Chats: chats})

	return chats, nil
}

func (srv *chatService) FetchMessages(ctx context.Context, d state.Dispatcher, chatID, uid string) ([]entity.Message, error) {
	d.Dispatch(state.FetchMessagesRequest{ChatID: chatID})

	msgs, err := srv.messages(ctx, chatID, uid)
	if err != nil {
		d.Dispatch(state.FetchMessagesFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.FetchMessagesSuccess{ChatID: chatID, Messages: msgs})

	return msgs, nil
}

func (srv *chatService) SendMessage(ctx context.Context, d state.Dispatcher, chatID, senderID, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.WithStack(domainerrors.ErrEmptyMessage)
	}

	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.SendMessageRequest{})

	chat, msg, err := srv.sendMessage(ctx, chatID, senderID, text)
	if err != nil {
		logger.Warn("Send message failed", slog.String("chat_id", chatID), slog.Any("error", err))
		d.Dispatch(state.SendMessageFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.SendMessageSuccess{Message: *msg})
	srv.publish(ctx, chat, msg)

	return msg, nil
}

func (srv *chatService) sendMessage(ctx context.Context, chatID, senderID, text string) (*entity.Chat, *entity.Message, error) {
	chat, err := srv.memberChat(ctx, chatID, senderID)
	if err != nil {
		return nil, nil, err
	}

	msg := &entity.Message{
		ID:        srv.newID(),
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		Timestamp: srv.now().UTC(),
	}
	if err := srv.chats.AddMessage(ctx, msg); err != nil {
		return nil, nil, domainError(err)
	}

	return chat, msg, nil
}

// publish hands the message to the notifier. Failures are logged only.
func (srv *chatService) publish(ctx context.Context, chat *entity.Chat, msg *entity.Message) {
	if srv.publisher == nil {
		return
	}

	logger := loggerFrom(ctx, srv.logger)
	event := &service.MessageEvent{
		RequestID:    deliverycontext.GetRequestIDFromContext(ctx),
		ChatID:       msg.ChatID,
		MessageID:    msg.ID,
		SenderID:     msg.SenderID,
		SenderName:   chat.MembersData[msg.SenderID].Name,
		Text:         msg.Text,
		RecipientIDs: chat.Counterparts(msg.SenderID),
	}

	if err := srv.publisher.PublishMessageEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish message event",
			slog.String("chat_id", msg.ChatID),
			slog.String("message_id", msg.ID),
			slog.Any("error", err))
	}
}

func (srv *chatService) ResetUnreadCount(ctx context.Context, d state.Dispatcher, chatID, uid string) error {
	d.Dispatch(state.MarkMessagesAsReadRequest{})

	if err := srv.markRead(ctx, chatID, uid); err != nil {
		d.Dispatch(state.MarkMessagesAsReadFailure{Failed: state.Fail(err)})

		return err
	}

	d.Dispatch(state.MarkMessagesAsReadSuccess{ChatID: chatID, UserID: uid})

	return nil
}

func (srv *chatService) OpenChatFromOrder(ctx context.Context, d state.Dispatcher, uid string, order entity.Order) (*entity.Chat, error) {
	if order.BuyerID == "" || order.SellerID == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "order buyer and seller are required")
	}
	if uid != order.BuyerID && uid != order.SellerID {
		return nil, errors.Wrap(domainerrors.ErrForbidden, "only the buyer or the seller can open the order chat")
	}

	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.OpenChatRequest{})

	chat, err := srv.findOrCreateChat(ctx, order)
	if err != nil {
		logger.Warn("Open chat failed", slog.String("order_id", order.ID), slog.Any("error", err))
		d.Dispatch(state.OpenChatFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.OpenChatSuccess{Chat: *chat})

	return chat, nil
}

func (srv *chatService) findOrCreateChat(ctx context.Context, order entity.Order) (*entity.Chat, error) {
	chat, err := srv.chats.FindBetween(ctx, order.BuyerID, order.SellerID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, repository.ErrChatNotFound) {
		return nil, err
	}

	members := []string{order.BuyerID, order.SellerID}
	chat = &entity.Chat{
		ID:            srv.newID(),
		Members:       members,
		MembersData:   make(map[string]entity.ChatMember, len(members)),
		UnreadCount:   make(map[string]int, len(members)),
		LastMessageAt: srv.now().UTC(),
		OrderID:       order.ID,
	}
	for _, id := range members {
		user, err := srv.users.FindByID(ctx, id)
		if err != nil {
			return nil, domainError(err)
		}
		chat.MembersData[id] = entity.ChatMember{Name: user.DisplayName(), Photo: user.ProfilePhoto}
		chat.UnreadCount[id] = 0
	}

	if err := srv.chats.Create(ctx, chat); err != nil {
		return nil, err
	}

	loggerFrom(ctx, srv.logger).Info("Chat created", slog.String("chat_id", chat.ID), slog.String("order_id", order.ID))

	return chat, nil
}

func (srv *chatService) SelectChat(ctx context.Context, d state.Dispatcher, chatID, uid string) error {
	if chatID == "" {
		return errors.Wrap(domainerrors.ErrValidationFailed, "chat id is required")
	}

	if _, err := srv.memberChat(ctx, chatID, uid); err != nil {
		return err
	}

	d.Dispatch(state.SetSelectedChatID{ChatID: chatID})

	// The unread reset runs even when the message load fails.
	_, fetchErr := srv.FetchMessages(ctx, d, chatID, uid)
	resetErr := srv.ResetUnreadCount(ctx, d, chatID, uid)

	return errors.Join(fetchErr, resetErr)
}

// memberChat loads the chat and rejects users outside its member list.
func (srv *chatService) memberChat(ctx context.Context, chatID, uid string) (*entity.Chat, error) {
	chat, err := srv.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, domainError(err)
	}
	if !chat.HasMember(uid) {
		return nil, errors.Wrapf(domainerrors.ErrForbidden, "user %s is not a member of chat %s", uid, chatID)
	}

	return chat, nil
}

func (srv *chatService) messages(ctx context.Context, chatID, uid string) ([]entity.Message, error) {
	if _, err := srv.memberChat(ctx, chatID, uid); err != nil {
		return nil, err
	}

	msgs, err := srv.chats.Messages(ctx, chatID)
	if err != nil {
		return nil, domainError(err)
	}

	return msgs, nil
}

func (srv *chatService) markRead(ctx context.Context, chatID, uid string) error {
	if _, err := srv.memberChat(ctx, chatID, uid); err != nil {
		return err
	}

	return domainError(srv.chats.MarkRead(ctx, chatID, uid))
}

func (srv *chatService) DeselectChat(d state.Dispatcher) {
	d.Dispatch(state.ResetSelectedChatID{})
}
