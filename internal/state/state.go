package state

import (
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
)

// UnknownErrorMessage is the failure message used when an error carries no text.
const UnknownErrorMessage = "An unknown error occurred"

// Async is the request bookkeeping shared by every slice.
type Async struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

func requested() Async { return Async{Loading: true} }

func succeeded() Async { return Async{} }

func failed(f Failure) Async { return Async{Error: f.FailureMessage()} }

// PendingIdentity is a federated identity without a profile yet. Registration
// resumes from it with the identity fields prefilled.
type PendingIdentity struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// GoodsQuery is the catalog filter of the last goods fetch.
type GoodsQuery struct {
	PortID     string `json:"portId"`
	CategoryID string `json:"categoryId,omitempty"`
	OwnerID    string `json:"ownerId,omitempty"`
}

type UserAuthState struct {
	Async
	User            *entity.User     `json:"user,omitempty"`
	IsAuthenticated bool             `json:"isAuthenticated"`
	Pending         *PendingIdentity `json:"pending,omitempty"`
}

type ProfileState struct {
	Async
	Profile *entity.User `json:"profile,omitempty"`
}

type CatalogState struct {
	Async
	Categories []entity.Category `json:"categories"`
	Goods      []entity.Good     `json:"goods"`
	Query      GoodsQuery        `json:"query"`
}

type OrdersState struct {
	Async
	Orders []entity.Order `json:"orders"`
}

type ChatState struct {
	Async
	Chats          []entity.Chat               `json:"chats"`
	Messages       map[string][]entity.Message `json:"messages"` // keyed by chat id
	SelectedChatID string                      `json:"selectedChatId,omitempty"`
}

type PortsState struct {
	Async
	Ports []entity.Port `json:"ports"`
}

// State is the application state tree. Values reachable from a published
// State are never mutated; reducers always build new slices and maps.
type State struct {
	UserAuth UserAuthState `json:"userAuth"`
	Profile  ProfileState  `json:"profile"`
	Catalog  CatalogState  `json:"catalog"`
	Orders   OrdersState   `json:"orders"`
	Chat     ChatState     `json:"chat"`
	Ports    PortsState    `json:"ports"`
}

// FailureMessage derives the user-facing message of a failure action from err.
func FailureMessage(err error) string {
	if err == nil {
		return UnknownErrorMessage
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.Message() != "" {
		return appErr.Message()
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return UnknownErrorMessage
}
