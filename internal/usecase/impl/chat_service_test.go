package impl

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/state"
	"harbor/internal/state/statetest"
)

func TestChatService_FetchChats(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}

	chats, err := env.chatService().FetchChats(context.Background(), rec, "demo-buyer")
	require.NoError(t, err)

	require.Len(t, chats, 1)
	assert.Equal(t, 1, chats[0].Unread("demo-buyer"))
	assert.Equal(t, []state.ActionType{state.TypeFetchChatsRequest, state.TypeFetchChatsSuccess}, rec.Types())
}

func TestChatService_SendMessage_PublishesEvent(t *testing.T) {
	env := newTestEnv(t)
	srv := env.chatService()
	rec := &statetest.Recorder{}
	ctx := deliverycontext.WithRequestID(context.Background(), "req-1")

	env.publisher.EXPECT().
		PublishMessageEvent(mock.Anything, mock.MatchedBy(func(e *service.MessageEvent) bool {
			return e.ChatID == "demo-chat" &&
				e.SenderID == "demo-buyer" &&
				e.SenderName == "Mara Jensen" &&
				e.RequestID == "req-1" &&
				assert.ObjectsAreEqual([]string{"demo-seller"}, e.RecipientIDs)
		})).
		Return(nil)

	msg, err := srv.SendMessage(ctx, rec, "demo-chat", "demo-buyer", "  Ready at berth 4  ")
	require.NoError(t, err)

	assert.Equal(t, "Ready at berth 4", msg.Text)
	assert.Equal(t, []state.ActionType{state.TypeSendMessageRequest, state.TypeSendMessageSuccess}, rec.Types())

	chat, err := env.gw.Chats.FindByID(ctx, "demo-chat")
	require.NoError(t, err)
	assert.Equal(t, "Ready at berth 4", chat.LastMessage)
	assert.Equal(t, 1, chat.Unread("demo-seller"))
}

func TestChatService_SendMessage_PublishFailureIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}

	env.publisher.EXPECT().
		PublishMessageEvent(mock.Anything, mock.Anything).
		Return(errors.New("broker down"))

	_, err := env.chatService().SendMessage(context.Background(), rec, "demo-chat", "demo-seller", "Confirmed")

	require.NoError(t, err)
	assert.Equal(t, state.TypeSendMessageSuccess, rec.Last().Type())
}

func TestChatService_SendMessage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		chatID     string
		senderID   string
		text       string
		want       error
		dispatched bool
	}{
		{name: "empty text", chatID: "demo-chat", senderID: "demo-buyer", text: "   ", want: domainerrors.ErrEmptyMessage},
		{name: "missing chat", chatID: "nope", senderID: "demo-buyer", text: "hi", want: domainerrors.ErrChatNotFound, dispatched: true},
		{name: "not a member", chatID: "demo-chat", senderID: "stranger", text: "hi", want: domainerrors.ErrForbidden, dispatched: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := &statetest.Recorder{}

			_, err := env.chatService().SendMessage(context.Background(), rec, tt.chatID, tt.senderID, tt.text)

			require.ErrorIs(t, err, tt.want)
			if tt.dispatched {
				assert.Equal(t, []state.ActionType{state.TypeSendMessageRequest, state.TypeSendMessageFailure}, rec.Types())
			} else {
				assert.Empty(t, rec.Actions())
			}
		})
	}
}

func TestChatService_SelectChat_FetchesAndResetsUnread(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}
	ctx := context.Background()

	require.NoError(t, env.chatService().SelectChat(ctx, rec, "demo-chat", "demo-buyer"))

	assert.Equal(t, []state.ActionType{
		state.TypeSetSelectedChatID,
		state.TypeFetchMessagesRequest,
		state.TypeFetchMessagesSuccess,
		state.TypeMarkMessagesAsReadRequest,
		state.TypeMarkMessagesAsReadSuccess,
	}, rec.Types())

	chat, err := env.gw.Chats.FindByID(ctx, "demo-chat")
	require.NoError(t, err)
	assert.Zero(t, chat.Unread("demo-buyer"))

	msgs, err := env.gw.Chats.Messages(ctx, "demo-chat")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
}

func TestChatService_SelectChat_ReducesIntoState(t *testing.T) {
	env := newTestEnv(t)
	store := state.NewStore(state.State{})
	srv := env.chatService()
	ctx := context.Background()

	_, err := srv.FetchChats(ctx, store, "demo-buyer")
	require.NoError(t, err)
	require.NoError(t, srv.SelectChat(ctx, store, "demo-chat", "demo-buyer"))

	s := store.State()
	assert.Equal(t, "demo-chat", s.Chat.SelectedChatID)
	assert.Len(t, s.Chat.Messages["demo-chat"], 1)
	assert.Zero(t, s.Chat.TotalUnread("demo-buyer"))

	srv.DeselectChat(store)
	assert.Empty(t, store.State().Chat.SelectedChatID)
}

func TestChatService_NonMemberIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	srv := env.chatService()
	ctx := context.Background()

	t.Run("select chat", func(t *testing.T) {
		rec := &statetest.Recorder{}

		err := srv.SelectChat(ctx, rec, "demo-chat", "intruder")

		require.ErrorIs(t, err, domainerrors.ErrForbidden)
		assert.Empty(t, rec.Types())
	})

	t.Run("fetch messages", func(t *testing.T) {
		rec := &statetest.Recorder{}

		msgs, err := srv.FetchMessages(ctx, rec, "demo-chat", "intruder")

		require.ErrorIs(t, err, domainerrors.ErrForbidden)
		assert.Nil(t, msgs)
		assert.Equal(t, []state.ActionType{state.TypeFetchMessagesRequest, state.TypeFetchMessagesFailure}, rec.Types())
	})

	t.Run("reset unread count", func(t *testing.T) {
		rec := &statetest.Recorder{}

		err := srv.ResetUnreadCount(ctx, rec, "demo-chat", "intruder")

		require.ErrorIs(t, err, domainerrors.ErrForbidden)
		assert.Equal(t, []state.ActionType{state.TypeMarkMessagesAsReadRequest, state.TypeMarkMessagesAsReadFailure}, rec.Types())
	})

	chat, err := env.gw.Chats.FindByID(ctx, "demo-chat")
	require.NoError(t, err)
	assert.Equal(t, 1, chat.Unread("demo-buyer"))

	msgs, err := env.gw.Chats.Messages(ctx, "demo-chat")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Read)
}

// failingMessages serves every chat call from the wrapped repository except Messages.
type failingMessages struct {
	repository.ChatRepository
}

func (failingMessages) Messages(context.Context, string) ([]entity.Message, error) {
	return nil, errors.New("messages unavailable")
}

func TestChatService_SelectChat_ResetsUnreadWhenFetchFails(t *testing.T) {
	env := newTestEnv(t)
	srv := env.chatService()
	srv.chats = failingMessages{ChatRepository: env.gw.Chats}
	rec := &statetest.Recorder{}
	ctx := context.Background()

	err := srv.SelectChat(ctx, rec, "demo-chat", "demo-buyer")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "messages unavailable")
	assert.Equal(t, []state.ActionType{
		state.TypeSetSelectedChatID,
		state.TypeFetchMessagesRequest,
		state.TypeFetchMessagesFailure,
		state.TypeMarkMessagesAsReadRequest,
		state.TypeMarkMessagesAsReadSuccess,
	}, rec.Types())

	chat, err := env.gw.Chats.FindByID(ctx, "demo-chat")
	require.NoError(t, err)
	assert.Zero(t, chat.Unread("demo-buyer"))
}

func TestChatService_OpenChatFromOrder(t *testing.T) {
	env := newTestEnv(t)
	srv := env.chatService()
	ctx := context.Background()

	order, err := env.gw.Orders.FindByID(ctx, "demo-order")
	require.NoError(t, err)

	rec := &statetest.Recorder{}
	chat, err := srv.OpenChatFromOrder(ctx, rec, "demo-buyer", *order)
	require.NoError(t, err)
	assert.Equal(t, "demo-chat", chat.ID, "existing chat is reused")
	assert.Equal(t, []state.ActionType{state.TypeOpenChatRequest, state.TypeOpenChatSuccess}, rec.Types())

	require.NoError(t, env.gw.Users.Create(ctx, &entity.User{ID: "buyer-2", FirstName: "Ola", LastName: "Nord", Role: entity.RoleBuyer}))
	second := *order
	second.ID = "order-2"
	second.BuyerID = "buyer-2"

	chat, err = srv.OpenChatFromOrder(ctx, &statetest.Recorder{}, "demo-seller", second)
	require.NoError(t, err)
	assert.NotEqual(t, "demo-chat", chat.ID)
	assert.ElementsMatch(t, []string{"buyer-2", "demo-seller"}, chat.Members)
	assert.Equal(t, "Ola Nord", chat.MembersData["buyer-2"].Name)
	assert.Equal(t, "order-2", chat.OrderID)

	_, err = srv.OpenChatFromOrder(ctx, &statetest.Recorder{}, "stranger", second)
	require.ErrorIs(t, err, domainerrors.ErrForbidden)
}
