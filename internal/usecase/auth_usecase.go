package usecase

import (
	"context"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/service"
	"harbor/internal/state"
)

// RegistrationDetails is the profile collected by the registration wizard.
type RegistrationDetails struct {
	FirstName  string      `json:"firstName" validate:"required,max=100"`
	LastName   string      `json:"lastName" validate:"required,max=100"`
	Phone      string      `json:"phone" validate:"omitempty,max=32"`
	VesselIMO  string      `json:"vesselIMO" validate:"omitempty,numeric,len=7"`
	VesselMMSI string      `json:"vesselMMSI" validate:"omitempty,numeric,len=9"`
	Role       entity.Role `json:"role" validate:"required,oneof=BUYER SELLER"`
	PortIDs    []string    `json:"portIds" validate:"required,min=1,dive,required"`

	// FederatedUID is the UID of an already authenticated federated identity.
	// When set no email/password account is created.
	FederatedUID string `json:"-"`
}

// GoogleSignInResult tells the caller whether registration has to continue.
type GoogleSignInResult struct {
	IsNewUser bool         `json:"isNewUser"`
	Email     string       `json:"email"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	User      *entity.User `json:"user,omitempty"`
}

// AuthUsecase defines the authentication action creators of one session.
type AuthUsecase interface {
	// SignIn authenticates with email and password, loads the profile and caches it.
	SignIn(ctx context.Context, d state.Dispatcher, email, password string) (*entity.User, error)

	// SignUp creates the account and profile, then leaves the user signed in.
	SignUp(ctx context.Context, d state.Dispatcher, email, password string, details RegistrationDetails) (*entity.User, error)

	// GoogleSignIn signs in with a Google ID token. New users get a pending identity.
	GoogleSignIn(ctx context.Context, d state.Dispatcher, idToken string) (*GoogleSignInResult, error)

	// SignOut revokes the session best-effort and clears the cache.
	SignOut(ctx context.Context, d state.Dispatcher, uid string) error

	// RestoreSession reloads the cached user's profile.
	RestoreSession(ctx context.Context, d state.Dispatcher) (*entity.User, error)
}

// AuthUsecaseFactory binds the auth action creators to a session's cache.
type AuthUsecaseFactory interface {
	ForSession(cache service.LocalCache) AuthUsecase
}
