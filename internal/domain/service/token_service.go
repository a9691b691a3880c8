package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims defines the custom claims of a session token.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenService issues and validates client session tokens.
type TokenService interface {
	// IssueSessionToken creates a signed token for the session.
	IssueSessionToken(sessionID string) (token string, expiresAt time.Time, err error)

	// ValidateSessionToken checks the token and returns its claims.
	ValidateSessionToken(token string) (*SessionClaims, error)
}
