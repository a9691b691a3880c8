package firebase

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"

	"harbor/config"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

const googleProviderID = "google.com"

type authProvider struct {
	admin      *auth.Client
	toolkit    *identitytoolkit.Service
	requestURI string
}

// NewAuthProvider signs users in through the identity toolkit and manages
// accounts with the admin SDK.
func NewAuthProvider(c *Clients, cfg *config.Config) service.AuthProvider {
	requestURI := "http://localhost"
	if cfg.Firebase != nil && cfg.Firebase.RequestURI != "" {
		requestURI = cfg.Firebase.RequestURI
	}

	return &authProvider{admin: c.Auth, toolkit: c.Toolkit, requestURI: requestURI}
}

func (p *authProvider) SignInWithPassword(ctx context.Context, email, password string) (*service.AuthIdentity, error) {
	resp, err := p.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, toolkitError(err, "sign in with password")
	}

	return &service.AuthIdentity{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (p *authProvider) SignInWithGoogle(ctx context.Context, googleIDToken string) (*service.AuthIdentity, error) {
	body := url.Values{}
	body.Set("id_token", googleIDToken)
	body.Set("providerId", googleProviderID)

	resp, err := p.toolkit.Relyingparty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:            body.Encode(),
		RequestUri:          p.requestURI,
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, toolkitError(err, "sign in with google")
	}

	firstName, lastName := resp.FirstName, resp.LastName
	if firstName == "" && lastName == "" && resp.FullName != "" {
		firstName, lastName, _ = strings.Cut(resp.FullName, " ")
	}

	return &service.AuthIdentity{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		FirstName:    firstName,
		LastName:     lastName,
	}, nil
}

func (p *authProvider) CreateUser(ctx context.Context, email, password string) (*service.AuthIdentity, error) {
	record, err := p.admin.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if auth.IsEmailAlreadyExists(err) {
		return nil, errors.WithStack(service.ErrEmailExists)
	}
	if err != nil {
		return nil, gatewayError(err, "create auth user")
	}

	identity, err := p.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	identity.UID = record.UID

	return identity, nil
}

func (p *authProvider) SignOut(ctx context.Context, uid string) error {
	return gatewayError(p.admin.RevokeRefreshTokens(ctx, uid), "revoke refresh tokens")
}

// toolkitError maps credential rejections to ErrInvalidCredentials.
func toolkitError(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		switch {
		case strings.Contains(apiErr.Message, "EMAIL_EXISTS"):
			return errors.WithStack(service.ErrEmailExists)
		case strings.Contains(apiErr.Message, "INVALID"),
			strings.Contains(apiErr.Message, "EMAIL_NOT_FOUND"),
			strings.Contains(apiErr.Message, "USER_DISABLED"):
			return errors.Wrap(service.ErrInvalidCredentials, apiErr.Message)
		}
	}

	return gatewayError(err, op)
}
