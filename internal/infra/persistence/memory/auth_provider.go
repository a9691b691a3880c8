package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

type authProvider struct {
	s *Store
}

// NewAuthProvider returns the in-process identity provider.
func NewAuthProvider(s *Store) service.AuthProvider {
	return &authProvider{s: s}
}

func (p *authProvider) SignInWithPassword(ctx context.Context, email, password string) (*service.AuthIdentity, error) {
	p.s.mu.RLock()
	acc, ok := p.s.accounts[normalizeEmail(email)]
	p.s.mu.RUnlock()

	if !ok || !p.s.hasher.Check(password, acc.passwordHash) {
		return nil, service.ErrInvalidCredentials
	}

	return &service.AuthIdentity{
		UID:     acc.uid,
		Email:   acc.email,
		IDToken: uuid.NewString(),
	}, nil
}

func (p *authProvider) SignInWithGoogle(ctx context.Context, googleIDToken string) (*service.AuthIdentity, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	identity, ok := p.s.googleIdentities[googleIDToken]
	if !ok {
		return nil, service.ErrInvalidCredentials
	}

	email := normalizeEmail(identity.Email)
	acc, exists := p.s.accounts[email]
	if !exists {
		if identity.UID == "" {
			identity.UID = uuid.NewString()
		}
		acc = &account{uid: identity.UID, email: email}
		p.s.accounts[email] = acc
	}
	_, hasProfile := p.s.users[acc.uid]

	return &service.AuthIdentity{
		UID:       acc.uid,
		Email:     email,
		IDToken:   uuid.NewString(),
		IsNewUser: !hasProfile,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}, nil
}

func (p *authProvider) CreateUser(ctx context.Context, email, password string) (*service.AuthIdentity, error) {
	hash, err := p.s.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	email = normalizeEmail(email)

	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if _, exists := p.s.accounts[email]; exists {
		return nil, service.ErrEmailExists
	}

	acc := &account{uid: uuid.NewString(), email: email, passwordHash: hash}
	p.s.accounts[email] = acc

	return &service.AuthIdentity{UID: acc.uid, Email: email, IDToken: uuid.NewString()}, nil
}

func (p *authProvider) SignOut(ctx context.Context, uid string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for _, acc := range p.s.accounts {
		if acc.uid == uid {
			acc.revokedAt = p.s.now()

			return nil
		}
	}

	return errors.Errorf("no account for uid %s", uid)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
