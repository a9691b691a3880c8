// Package state holds the application state tree, the actions that change it,
// the pure reducers that apply them and the store that serializes dispatch.
package state

import "harbor/internal/domain/entity"

// ActionType names an action kind on the wire and in logs.
type ActionType string

// Action is a tagged state transition. Only types declared in this package implement it.
type Action interface {
	Type() ActionType
	sealed()
}

type action struct{}

func (action) sealed() {}

// Failure is the common shape of every *_FAILURE action.
type Failure interface {
	Action
	FailureMessage() string
}

// Failed is the payload embedded by every *_FAILURE action.
type Failed struct {
	Message string `json:"message"`
}

// Fail builds a failure payload from err.
func Fail(err error) Failed {
	return Failed{Message: FailureMessage(err)}
}

func (f Failed) FailureMessage() string { return f.Message }

// Auth actions.
type (
	SignInRequest struct{ action }
	SignInSuccess struct {
		action
		User *entity.User `json:"user"`
	}
	SignInFailure struct {
		action
		Failed
	}

	SignUpRequest struct{ action }
	SignUpSuccess struct {
		action
		User *entity.User `json:"user"`
	}
	SignUpFailure struct {
		action
		Failed
	}

	GoogleSignInRequest struct{ action }
	// GoogleSignInSuccess carries the profile of a returning user, or the
	// prefilled identity of a new one that still has to register.
	GoogleSignInSuccess struct {
		action
		User    *entity.User     `json:"user,omitempty"`
		Pending *PendingIdentity `json:"pending,omitempty"`
	}
	GoogleSignInFailure struct {
		action
		Failed
	}

	SignOutRequest struct{ action }
	SignOutSuccess struct{ action }

	RestoreSessionRequest struct{ action }
	RestoreSessionSuccess struct {
		action
		User *entity.User `json:"user"`
	}
	RestoreSessionFailure struct {
		action
		Failed
	}
)

// Profile actions.
type (
	FetchProfileRequest struct{ action }
	FetchProfileSuccess struct {
		action
		Profile *entity.User `json:"profile"`
	}
	FetchProfileFailure struct {
		action
		Failed
	}

	UpdateProfileRequest struct{ action }
	UpdateProfileSuccess struct {
		action
		Profile *entity.User `json:"profile"`
	}
	UpdateProfileFailure struct {
		action
		Failed
	}

	UpdateProfilePhotoRequest struct{ action }
	UpdateProfilePhotoSuccess struct {
		action
		URL string `json:"url"`
	}
	UpdateProfilePhotoFailure struct {
		action
		Failed
	}
)

// Catalog actions.
type (
	FetchCategoriesRequest struct{ action }
	FetchCategoriesSuccess struct {
		action
		Categories []entity.Category `json:"categories"`
	}
	FetchCategoriesFailure struct {
		action
		Failed
	}

	FetchGoodsRequest struct {
		action
		Query GoodsQuery `json:"query"`
	}
	FetchGoodsSuccess struct {
		action
		Goods []entity.Good `json:"goods"`
	}
	FetchGoodsFailure struct {
		action
		Failed
	}

	AddGoodRequest struct{ action }
	AddGoodSuccess struct {
		action
		Good entity.Good `json:"good"`
	}
	AddGoodFailure struct {
		action
		Failed
	}

	UpdateGoodRequest struct{ action }
	UpdateGoodSuccess struct {
		action
		Good entity.Good `json:"good"`
	}
	UpdateGoodFailure struct {
		action
		Failed
	}

	DeleteGoodRequest struct{ action }
	DeleteGoodSuccess struct {
		action
		GoodID string `json:"goodId"`
	}
	DeleteGoodFailure struct {
		action
		Failed
	}
)

// Order actions.
type (
	FetchOrdersRequest struct{ action }
	FetchOrdersSuccess struct {
		action
		Orders []entity.Order `json:"orders"`
	}
	FetchOrdersFailure struct {
		action
		Failed
	}

	UpdateOrderRequest struct{ action }
	UpdateOrderSuccess struct {
		action
		Order entity.Order `json:"order"`
	}
	UpdateOrderFailure struct {
		action
		Failed
	}
)

// Chat actions.
type (
	FetchChatsRequest struct{ action }
	FetchChatsSuccess struct {
		action
		Chats []entity.Chat `json:"chats"`
	}
	FetchChatsFailure struct {
		action
		Failed
	}

	FetchMessagesRequest struct {
		action
		ChatID string `json:"chatId"`
	}
	FetchMessagesSuccess struct {
		action
		ChatID   string           `json:"chatId"`
		Messages []entity.Message `json:"messages"`
	}
	FetchMessagesFailure struct {
		action
		Failed
	}

	SendMessageRequest struct{ action }
	SendMessageSuccess struct {
		action
		Message entity.Message `json:"message"`
	}
	SendMessageFailure struct {
		action
		Failed
	}

	OpenChatRequest struct{ action }
	OpenChatSuccess struct {
		action
		Chat entity.Chat `json:"chat"`
	}
	OpenChatFailure struct {
		action
		Failed
	}

	MarkMessagesAsReadRequest struct{ action }
	MarkMessagesAsReadSuccess struct {
		action
		ChatID string `json:"chatId"`
		UserID string `json:"userId"`
	}
	MarkMessagesAsReadFailure struct {
		action
		Failed
	}

	SetSelectedChatID struct {
		action
		ChatID string `json:"chatId"`
	}
	ResetSelectedChatID struct{ action }

	// UpdateChatRealtime carries the member's full chat list from the change feed.
	UpdateChatRealtime struct {
		action
		Chats []entity.Chat `json:"chats"`
	}
	// UpdateMessagesRealtime carries changed or initial messages of one chat.
	UpdateMessagesRealtime struct {
		action
		ChatID   string           `json:"chatId"`
		Messages []entity.Message `json:"messages"`
	}
	// NewMessageReceived carries one message added after the feed started.
	NewMessageReceived struct {
		action
		Message  entity.Message `json:"message"`
		ViewerID string         `json:"viewerId"`
	}
)

// Port actions.
type (
	FetchPortsRequest struct{ action }
	FetchPortsSuccess struct {
		action
		Ports []entity.Port `json:"ports"`
	}
	FetchPortsFailure struct {
		action
		Failed
	}
)

// Action types
const (
	TypeSignInRequest         ActionType = "SIGN_IN_REQUEST"
	TypeSignInSuccess         ActionType = "SIGN_IN_SUCCESS"
	TypeSignInFailure         ActionType = "SIGN_IN_FAILURE"
	TypeSignUpRequest         ActionType = "SIGN_UP_REQUEST"
	TypeSignUpSuccess         ActionType = "SIGN_UP_SUCCESS"
	TypeSignUpFailure         ActionType = "SIGN_UP_FAILURE"
	TypeGoogleSignInRequest   ActionType = "GOOGLE_SIGN_IN_REQUEST"
	TypeGoogleSignInSuccess   ActionType = "GOOGLE_SIGN_IN_SUCCESS"
	TypeGoogleSignInFailure   ActionType = "GOOGLE_SIGN_IN_FAILURE"
	TypeSignOutRequest        ActionType = "SIGN_OUT_REQUEST"
	TypeSignOutSuccess        ActionType = "SIGN_OUT_SUCCESS"
	TypeRestoreSessionRequest ActionType = "RESTORE_SESSION_REQUEST"
	TypeRestoreSessionSuccess ActionType = "RESTORE_SESSION_SUCCESS"
	TypeRestoreSessionFailure ActionType = "RESTORE_SESSION_FAILURE"

	TypeFetchProfileRequest       ActionType = "FETCH_PROFILE_REQUEST"
	TypeFetchProfileSuccess       ActionType = "FETCH_PROFILE_SUCCESS"
	TypeFetchProfileFailure       ActionType = "FETCH_PROFILE_FAILURE"
	TypeUpdateProfileRequest      ActionType = "UPDATE_PROFILE_REQUEST"
	TypeUpdateProfileSuccess      ActionType = "UPDATE_PROFILE_SUCCESS"
	TypeUpdateProfileFailure      ActionType = "UPDATE_PROFILE_FAILURE"
	TypeUpdateProfilePhotoRequest ActionType = "UPDATE_PROFILE_PHOTO_REQUEST"
	TypeUpdateProfilePhotoSuccess ActionType = "UPDATE_PROFILE_PHOTO_SUCCESS"
	TypeUpdateProfilePhotoFailure ActionType = "UPDATE_PROFILE_PHOTO_FAILURE"

	TypeFetchCategoriesRequest ActionType = "FETCH_CATEGORIES_REQUEST"
	TypeFetchCategoriesSuccess ActionType = "FETCH_CATEGORIES_SUCCESS"
	TypeFetchCategoriesFailure ActionType = "FETCH_CATEGORIES_FAILURE"
	TypeFetchGoodsRequest      ActionType = "FETCH_GOODS_REQUEST"
	TypeFetchGoodsSuccess      ActionType = "FETCH_GOODS_SUCCESS"
	TypeFetchGoodsFailure      ActionType = "FETCH_GOODS_FAILURE"
	TypeAddGoodRequest         ActionType = "ADD_GOOD_REQUEST"
	TypeAddGoodSuccess         ActionType = "ADD_GOOD_SUCCESS"
	TypeAddGoodFailure         ActionType = "ADD_GOOD_FAILURE"
	TypeUpdateGoodRequest      ActionType = "UPDATE_GOOD_REQUEST"
	TypeUpdateGoodSuccess      ActionType = "UPDATE_GOOD_SUCCESS"
	TypeUpdateGoodFailure      ActionType = "UPDATE_GOOD_FAILURE"
	TypeDeleteGoodRequest      ActionType = "DELETE_GOOD_REQUEST"
	TypeDeleteGoodSuccess      ActionType = "DELETE_GOOD_SUCCESS"
	TypeDeleteGoodFailure      ActionType = "DELETE_GOOD_FAILURE"

	TypeFetchOrdersRequest ActionType = "FETCH_ORDERS_REQUEST"
	TypeFetchOrdersSuccess ActionType = "FETCH_ORDERS_SUCCESS"
	TypeFetchOrdersFailure ActionType = "FETCH_ORDERS_FAILURE"
	TypeUpdateOrderRequest ActionType = "UPDATE_ORDER_REQUEST"
	TypeUpdateOrderSuccess ActionType = "UPDATE_ORDER_SUCCESS"
	TypeUpdateOrderFailure ActionType = "UPDATE_ORDER_FAILURE"

	TypeFetchChatsRequest         ActionType = "FETCH_CHATS_REQUEST"
	TypeFetchChatsSuccess         ActionType = "FETCH_CHATS_SUCCESS"
	TypeFetchChatsFailure         ActionType = "FETCH_CHATS_FAILURE"
	TypeFetchMessagesRequest      ActionType = "FETCH_MESSAGES_REQUEST"
	TypeFetchMessagesSuccess      ActionType = "FETCH_MESSAGES_SUCCESS"
	TypeFetchMessagesFailure      ActionType = "FETCH_MESSAGES_FAILURE"
	TypeSendMessageRequest        ActionType = "SEND_MESSAGE_REQUEST"
	TypeSendMessageSuccess        ActionType = "SEND_MESSAGE_SUCCESS"
	TypeSendMessageFailure        ActionType = "SEND_MESSAGE_FAILURE"
	TypeOpenChatRequest           ActionType = "OPEN_CHAT_FROM_ORDERS_OR_CREATE_NEW_CHAT_REQUEST"
	TypeOpenChatSuccess           ActionType = "OPEN_CHAT_FROM_ORDERS_OR_CREATE_NEW_CHAT_SUCCESS"
	TypeOpenChatFailure           ActionType = "OPEN_CHAT_FROM_ORDERS_OR_CREATE_NEW_CHAT_FAILURE"
	TypeMarkMessagesAsReadRequest ActionType = "MARK_MESSAGES_AS_READ_REQUEST"
	TypeMarkMessagesAsReadSuccess ActionType = "MARK_MESSAGES_AS_READ"
	TypeMarkMessagesAsReadFailure ActionType = "MARK_MESSAGES_AS_READ_FAILURE"
	TypeSetSelectedChatID         ActionType = "SET_SELECTED_CHAT_ID"
	TypeResetSelectedChatID       ActionType = "RESET_SELECTED_CHAT_ID"
	TypeUpdateChatRealtime        ActionType = "UPDATE_CHAT_REALTIME"
	TypeUpdateMessagesRealtime    ActionType = "UPDATE_MESSAGES_REALTIME"
	TypeNewMessageReceived        ActionType = "NEW_MESSAGE_RECEIVED"

	TypeFetchPortsRequest ActionType = "FETCH_PORTS_REQUEST"
	TypeFetchPortsSuccess ActionType = "FETCH_PORTS_SUCCESS"
	TypeFetchPortsFailure ActionType = "FETCH_PORTS_FAILURE"
)

func (SignInRequest) Type() ActionType         { return TypeSignInRequest }
func (SignInSuccess) Type() ActionType         { return TypeSignInSuccess }
func (SignInFailure) Type() ActionType         { return TypeSignInFailure }
func (SignUpRequest) Type() ActionType         { return TypeSignUpRequest }
func (SignUpSuccess) Type() ActionType         { return TypeSignUpSuccess }
func (SignUpFailure) Type() ActionType         { return TypeSignUpFailure }
func (GoogleSignInRequest) Type() ActionType   { return TypeGoogleSignInRequest }
func (GoogleSignInSuccess) Type() ActionType   { return TypeGoogleSignInSuccess }
func (GoogleSignInFailure) Type() ActionType   { return TypeGoogleSignInFailure }
func (SignOutRequest) Type() ActionType        { return TypeSignOutRequest }
func (SignOutSuccess) Type() ActionType        { return TypeSignOutSuccess }
func (RestoreSessionRequest) Type() ActionType { return TypeRestoreSessionRequest }
func (RestoreSessionSuccess) Type() ActionType { return TypeRestoreSessionSuccess }
func (RestoreSessionFailure) Type() ActionType { return TypeRestoreSessionFailure }

func (FetchProfileRequest) Type() ActionType       { return TypeFetchProfileRequest }
func (FetchProfileSuccess) Type() ActionType       { return TypeFetchProfileSuccess }
func (FetchProfileFailure) Type() ActionType       { return TypeFetchProfileFailure }
func (UpdateProfileRequest) Type() ActionType      { return TypeUpdateProfileRequest }
func (UpdateProfileSuccess) Type() ActionType      { return TypeUpdateProfileSuccess }
func (UpdateProfileFailure) Type() ActionType      { return TypeUpdateProfileFailure }
func (UpdateProfilePhotoRequest) Type() ActionType { return TypeUpdateProfilePhotoRequest }
func (UpdateProfilePhotoSuccess) Type() ActionType { return TypeUpdateProfilePhotoSuccess }
func (UpdateProfilePhotoFailure) Type() ActionType { return TypeUpdateProfilePhotoFailure }

func (FetchCategoriesRequest) Type() ActionType { return TypeFetchCategoriesRequest }
func (FetchCategoriesSuccess) Type() ActionType { return TypeFetchCategoriesSuccess }
func (FetchCategoriesFailure) Type() ActionType { return TypeFetchCategoriesFailure }
func (FetchGoodsRequest) Type() ActionType      { return TypeFetchGoodsRequest }
func (FetchGoodsSuccess) Type() ActionType      { return TypeFetchGoodsSuccess }
func (FetchGoodsFailure) Type() ActionType      { return TypeFetchGoodsFailure }
func (AddGoodRequest) Type() ActionType         { return TypeAddGoodRequest }
func (AddGoodSuccess) Type() ActionType         { return TypeAddGoodSuccess }
func (AddGoodFailure) Type() ActionType         { return TypeAddGoodFailure }
func (UpdateGoodRequest) Type() ActionType      { return TypeUpdateGoodRequest }
func (UpdateGoodSuccess) Type() ActionType      { return TypeUpdateGoodSuccess }
func (UpdateGoodFailure) Type() ActionType      { return TypeUpdateGoodFailure }
func (DeleteGoodRequest) Type() ActionType      { return TypeDeleteGoodRequest }
func (DeleteGoodSuccess) Type() ActionType      { return TypeDeleteGoodSuccess }
func (DeleteGoodFailure) Type() ActionType      { return TypeDeleteGoodFailure }

func (FetchOrdersRequest) Type() ActionType { return TypeFetchOrdersRequest }
func (FetchOrdersSuccess) Type() ActionType { return TypeFetchOrdersSuccess }
func (FetchOrdersFailure) Type() ActionType { return TypeFetchOrdersFailure }
func (UpdateOrderRequest) Type() ActionType { return TypeUpdateOrderRequest }
func (UpdateOrderSuccess) Type() ActionType { return TypeUpdateOrderSuccess }
func (UpdateOrderFailure) Type() ActionType { return TypeUpdateOrderFailure }

func (FetchChatsRequest) Type() ActionType         { return TypeFetchChatsRequest }
func (FetchChatsSuccess) Type() ActionType         { return TypeFetchChatsSuccess }
func (FetchChatsFailure) Type() ActionType         { return TypeFetchChatsFailure }
func (FetchMessagesRequest) Type() ActionType      { return TypeFetchMessagesRequest }
func (FetchMessagesSuccess) Type() ActionType      { return TypeFetchMessagesSuccess }
func (FetchMessagesFailure) Type() ActionType      { return TypeFetchMessagesFailure }
func (SendMessageRequest) Type() ActionType        { return TypeSendMessageRequest }
func (SendMessageSuccess) Type() ActionType        { return TypeSendMessageSuccess }
func (SendMessageFailure) Type() ActionType        { return TypeSendMessageFailure }
func (OpenChatRequest) Type() ActionType           { return TypeOpenChatRequest }
func (OpenChatSuccess) Type() ActionType           { return TypeOpenChatSuccess }
func (OpenChatFailure) Type() ActionType           { return TypeOpenChatFailure }
func (MarkMessagesAsReadRequest) Type() ActionType { return TypeMarkMessagesAsReadRequest }
func (MarkMessagesAsReadSuccess) Type() ActionType { return TypeMarkMessagesAsReadSuccess }
func (MarkMessagesAsReadFailure) Type() ActionType { return TypeMarkMessagesAsReadFailure }
func (SetSelectedChatID) Type() ActionType         { return TypeSetSelectedChatID }
func (ResetSelectedChatID) Type() ActionType       { return TypeResetSelectedChatID }
func (UpdateChatRealtime) Type() ActionType        { return TypeUpdateChatRealtime }
func (UpdateMessagesRealtime) Type() ActionType    { return TypeUpdateMessagesRealtime }
func (NewMessageReceived) Type() ActionType        { return TypeNewMessageReceived }

func (FetchPortsRequest) Type() ActionType { return TypeFetchPortsRequest }
func (FetchPortsSuccess) Type() ActionType { return TypeFetchPortsSuccess }
func (FetchPortsFailure) Type() ActionType { return TypeFetchPortsFailure }
