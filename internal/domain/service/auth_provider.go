// Package service defines the ports to external services used by the use cases.
package service

import (
	"context"
	"errors"
)

// Identity provider errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

// AuthIdentity is the result of a successful authentication.
type AuthIdentity struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string

	// Set by federated sign-in only.
	IsNewUser bool
	FirstName string
	LastName  string
}

// AuthProvider abstracts the hosted identity service.
type AuthProvider interface {
	// SignInWithPassword authenticates an email/password account.
	SignInWithPassword(ctx context.Context, email, password string) (*AuthIdentity, error)

	// SignInWithGoogle exchanges a Google ID token for an identity, creating the account on first use.
	SignInWithGoogle(ctx context.Context, googleIDToken string) (*AuthIdentity, error)

	// CreateUser registers an email/password account.
	CreateUser(ctx context.Context, email, password string) (*AuthIdentity, error)

	// SignOut revokes the user's refresh tokens.
	SignOut(ctx context.Context, uid string) error
}
