package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// AuthServiceParams holds dependencies for the auth action creators, injected by Fx
type AuthServiceParams struct {
	fx.In

	Auth   service.AuthProvider
	Users  repository.UserRepository
	Ports  repository.PortRepository
	Logger *slog.Logger
}

type authServiceFactory struct {
	auth   service.AuthProvider
	users  repository.UserRepository
	ports  repository.PortRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthServiceFactory is the constructor for the per-session auth action creators.
func NewAuthServiceFactory(params AuthServiceParams) usecase.AuthUsecaseFactory {
	return &authServiceFactory{
		auth:   params.Auth,
		users:  params.Users,
		ports:  params.Ports,
		logger: params.Logger,
		now:    time.Now,
	}
}

func (f *authServiceFactory) ForSession(cache service.LocalCache) usecase.AuthUsecase {
	return &authService{authServiceFactory: f, cache: cache}
}

// authService implements the AuthUsecase interface for one session.
type authService struct {
	*authServiceFactory

	cache service.LocalCache
}

func (srv *authService) SignIn(ctx context.Context, d state.Dispatcher, email, password string) (*entity.User, error) {
	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.SignInRequest{})

	user, err := srv.signIn(ctx, email, password)
	if err != nil {
		logger.Info("Sign in failed", slog.Any("error", err))
		d.Dispatch(state.SignInFailure{Failed: state.Fail(err)})

		return nil, err
	}

	srv.cacheUser(ctx, user)
	d.Dispatch(state.SignInSuccess{User: user})

	return user, nil
}

func (srv *authService) signIn(ctx context.Context, email, password string) (*entity.User, error) {
	identity, err := srv.auth.SignInWithPassword(ctx, email, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, err.Error())
	}
	if err != nil {
		return nil, errors.Wrap(err, "sign in")
	}

	user, err := srv.users.FindByID(ctx, identity.UID)
	if err != nil {
		return nil, domainError(err)
	}

	return user, nil
}

func (srv *authService) SignUp(ctx context.Context, d state.Dispatcher, email, password string, details usecase.RegistrationDetails) (*entity.User, error) {
	if err := usecase.ValidateRegistration(email, password, details); err != nil {
		return nil, err
	}

	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.SignUpRequest{})

	user, err := srv.signUp(ctx, email, password, details)
	if err != nil {
		logger.Warn("Sign up failed", slog.String("email", email), slog.Any("error", err))
		d.Dispatch(state.SignUpFailure{Failed: state.Fail(err)})

		return nil, err
	}

	logger.Info("User registered", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
	srv.cacheUser(ctx, user)
	d.Dispatch(state.SignUpSuccess{User: user})

	return user, nil
}

func (srv *authService) signUp(ctx context.Context, email, password string, details usecase.RegistrationDetails) (*entity.User, error) {
	ports, err := resolvePorts(ctx, srv.ports, details.PortIDs)
	if err != nil {
		return nil, err
	}

	uid := details.FederatedUID
	if uid == "" {
		identity, err := srv.auth.CreateUser(ctx, email, password)
		if errors.Is(err, service.ErrEmailExists) {
			return nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, email)
		}
		if err != nil {
			return nil, errors.Wrap(err, "create account")
		}
		uid = identity.UID
	}

	user := &entity.User{
		ID:         uid,
		Email:      email,
		FirstName:  details.FirstName,
		LastName:   details.LastName,
		Phone:      details.Phone,
		VesselIMO:  details.VesselIMO,
		VesselMMSI: details.VesselMMSI,
		Role:       details.Role,
		Ports:      ports,
		CreatedAt:  srv.now().UTC(),
	}
	if err := srv.users.Create(ctx, user); err != nil {
		return nil, errors.Wrap(domainerrors.ErrUserCreationFailed, err.Error())
	}

	return user, nil
}

func (srv *authService) GoogleSignIn(ctx context.Context, d state.Dispatcher, idToken string) (*usecase.GoogleSignInResult, error) {
	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.GoogleSignInRequest{})

	identity, err := srv.auth.SignInWithGoogle(ctx, idToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			err = errors.Wrap(domainerrors.ErrFederatedSignInFailed, err.Error())
		}
		d.Dispatch(state.GoogleSignInFailure{Failed: state.Fail(err)})

		return nil, err
	}

	user, err := srv.users.FindByID(ctx, identity.UID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		// no profile yet, registration continues at the port step
		logger.Info("New federated user", slog.String("user_id", identity.UID))
		pending := &state.PendingIdentity{
			UID:       identity.UID,
			Email:     identity.Email,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
		}
		d.Dispatch(state.GoogleSignInSuccess{Pending: pending})

		return &usecase.GoogleSignInResult{
			IsNewUser: true,
			Email:     identity.Email,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
		}, nil

	case err != nil:
		d.Dispatch(state.GoogleSignInFailure{Failed: state.Fail(err)})

		return nil, err
	}

	srv.cacheUser(ctx, user)
	d.Dispatch(state.GoogleSignInSuccess{User: user})

	return &usecase.GoogleSignInResult{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		User:      user,
	}, nil
}

func (srv *authService) SignOut(ctx context.Context, d state.Dispatcher, uid string) error {
	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.SignOutRequest{})

	if uid != "" {
		if err := srv.auth.SignOut(ctx, uid); err != nil {
			logger.Warn("Sign out failed at identity provider", slog.String("user_id", uid), slog.Any("error", err))
		}
	}

	for _, key := range []service.CacheKey{service.CacheKeyCurrentUser, service.CacheKeySelectedPort} {
		if err := srv.cache.Remove(ctx, key); err != nil {
			logger.Warn("Failed to clear cache entry", slog.String("key", string(key)), slog.Any("error", err))
		}
	}

	d.Dispatch(state.SignOutSuccess{})

	return nil
}

func (srv *authService) RestoreSession(ctx context.Context, d state.Dispatcher) (*entity.User, error) {
	d.Dispatch(state.RestoreSessionRequest{})

	user, err := srv.restore(ctx)
	if err != nil {
		d.Dispatch(state.RestoreSessionFailure{Failed: state.Fail(err)})

		return nil, err
	}

	srv.cacheUser(ctx, user)
	d.Dispatch(state.RestoreSessionSuccess{User: user})

	return user, nil
}

func (srv *authService) restore(ctx context.Context) (*entity.User, error) {
	raw, err := srv.cache.Get(ctx, service.CacheKeyCurrentUser)
	if errors.Is(err, service.ErrCacheMiss) {
		return nil, errors.WithStack(domainerrors.ErrUnauthenticated)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read cached user")
	}

	var cached entity.User
	if err := json.Unmarshal([]byte(raw), &cached); err != nil || cached.ID == "" {
		return nil, errors.WithStack(domainerrors.ErrSessionInvalid)
	}

	// the cached copy may predate profile edits
	user, err := srv.users.FindByID(ctx, cached.ID)
	if err != nil {
		return nil, domainError(err)
	}

	return user, nil
}

// cacheUser stores the signed-in user. A cache failure does not fail the sign-in.
func (srv *authService) cacheUser(ctx context.Context, user *entity.User) {
	data, err := json.Marshal(user)
	if err == nil {
		err = srv.cache.Set(ctx, service.CacheKeyCurrentUser, string(data))
	}
	if err != nil {
		loggerFrom(ctx, srv.logger).Warn("Failed to cache current user", slog.Any("error", err))
	}
}
