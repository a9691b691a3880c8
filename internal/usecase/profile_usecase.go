package usecase

import (
	"context"
	"io"

	"harbor/internal/domain/entity"
	"harbor/internal/state"
)

// Upload is a file received from the client.
type Upload struct {
	FileName string
	Reader   io.Reader
}

// UpdateProfileInput carries a partial profile change. Nil fields are left untouched.
type UpdateProfileInput struct {
	FirstName  *string   `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName   *string   `json:"lastName" validate:"omitempty,min=1,max=100"`
	Phone      *string   `json:"phone" validate:"omitempty,max=32"`
	VesselIMO  *string   `json:"vesselIMO" validate:"omitempty,numeric,len=7"`
	VesselMMSI *string   `json:"vesselMMSI" validate:"omitempty,numeric,len=9"`
	PortIDs    *[]string `json:"portIds" validate:"omitempty,min=1,dive,required"`
}

// ProfileUsecase defines the profile action creators.
type ProfileUsecase interface {
	FetchProfile(ctx context.Context, d state.Dispatcher, uid string) (*entity.User, error)
	UpdateProfile(ctx context.Context, d state.Dispatcher, uid string, input UpdateProfileInput) (*entity.User, error)

	// UpdateProfilePhoto processes and uploads the photo, then stores its URL on the profile.
	UpdateProfilePhoto(ctx context.Context, d state.Dispatcher, uid string, photo Upload) (string, error)

	// RegisterPushToken adds a device token for chat notifications. It dispatches nothing.
	RegisterPushToken(ctx context.Context, uid, token string) error
}
