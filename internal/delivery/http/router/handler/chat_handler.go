package handler

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	"harbor/internal/domain/entity"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// ChatHandler serves chats and messages.
type ChatHandler struct {
	uc     usecase.ChatUsecase
	logger *slog.Logger
}

// NewChatHandler is the constructor for ChatHandler, injected by Fx.
func NewChatHandler(uc usecase.ChatUsecase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{uc: uc, logger: logger}
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// openChatRequest names an order. Buyer and seller are read from the order
// in the session's order list when present, otherwise from the request.
type openChatRequest struct {
	OrderID  string `json:"orderId"`
	BuyerID  string `json:"buyerId"`
	SellerID string `json:"sellerId"`
}

type messageResponse struct {
	Message *entity.Message `json:"message,omitempty"`
	Chat    state.ChatState `json:"chat"`
}

type openChatResponse struct {
	ChatID string          `json:"chatId,omitempty"`
	Chat   state.ChatState `json:"chat"`
}

// GetChats reloads the user's chat list.
func (h *ChatHandler) GetChats(c echo.Context) error {
	sess := middleware.SessionFrom(c)

	_, err := h.uc.FetchChats(c.Request().Context(), sess.Store, middleware.UserIDFrom(c))

	return response.Slice(c, sess.State().Chat, err)
}

// GetMessages reloads one chat's messages.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	sess := middleware.SessionFrom(c)

	_, err := h.uc.FetchMessages(c.Request().Context(), sess.Store, c.Param("id"), middleware.UserIDFrom(c))

	return response.Slice(c, sess.State().Chat, err)
}

// SelectChat opens a chat: it becomes the selected chat, its messages are
// loaded and streamed, and the user's unread count is reset.
func (h *ChatHandler) SelectChat(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	uid := middleware.UserIDFrom(c)
	chatID := c.Param("id")

	err := h.uc.SelectChat(c.Request().Context(), sess.Store, chatID, uid)
	if err == nil {
		if watchErr := sess.WatchMessages(chatID, uid); watchErr != nil {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).
				Warn("Failed to watch messages", slog.String("chat_id", chatID), slog.Any("error", watchErr))
		}
	}

	return response.Slice(c, sess.State().Chat, err)
}

// DeselectChat closes the selected chat.
func (h *ChatHandler) DeselectChat(c echo.Context) error {
	sess := middleware.SessionFrom(c)

	sess.StopWatchingMessages()
	h.uc.DeselectChat(sess.Store)

	return response.Slice(c, sess.State().Chat, nil)
}

// SendMessage posts a message to a chat.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid message input")
	}

	sess := middleware.SessionFrom(c)

	msg, err := h.uc.SendMessage(c.Request().Context(), sess.Store, c.Param("id"), middleware.UserIDFrom(c), req.Text)

	return response.Slice(c, messageResponse{Message: msg, Chat: sess.State().Chat}, err)
}

// OpenChat finds or creates the chat between an order's buyer and seller.
func (h *ChatHandler) OpenChat(c echo.Context) error {
	var req openChatRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid chat input")
	}

	sess := middleware.SessionFrom(c)

	order, ok := sess.State().Orders.FindOrder(req.OrderID)
	if !ok {
		order = entity.Order{ID: req.OrderID, BuyerID: req.BuyerID, SellerID: req.SellerID}
	}

	resp := openChatResponse{}
	chat, err := h.uc.OpenChatFromOrder(c.Request().Context(), sess.Store, middleware.UserIDFrom(c), order)
	if chat != nil {
		resp.ChatID = chat.ID
	}
	resp.Chat = sess.State().Chat

	return response.Slice(c, resp, err)
}
