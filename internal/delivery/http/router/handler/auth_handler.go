// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"harbor/config"
	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	"harbor/internal/domain/constants"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
	"harbor/internal/session"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// AuthHandler serves sign-in, registration and sign-out.
type AuthHandler struct {
	sessions     *session.Manager
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(sessions *session.Manager, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		secureCookie: cfg.Env.Env != constants.EnvDevelop,
		logger:       logger,
	}
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// registrationStepRequest carries step 1 or step 2 of the wizard.
type registrationStepRequest struct {
	Step int `json:"step"`
	usecase.Credentials
	usecase.PersonalDetails
}

type authResponse struct {
	Token        string                      `json:"token,omitempty"`
	ExpiresAt    *time.Time                  `json:"expiresAt,omitempty"`
	UserAuth     state.UserAuthState         `json:"userAuth"`
	Registration *usecase.RegistrationForm   `json:"registration,omitempty"`
	Google       *usecase.GoogleSignInResult `json:"google,omitempty"`
}

// issued is a session token created by this request.
type issued struct {
	token     string
	expiresAt time.Time
}

// SignIn handles email/password sign-in.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid sign-in input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sess, tok, err := h.sessionFor(c)
	if err != nil {
		return err
	}

	user, err := sess.Auth.SignIn(c.Request().Context(), sess.Store, req.Email, req.Password)
	if err == nil {
		h.watchChats(c, sess, user.ID)
	}

	return response.Slice(c, h.authResponse(sess, tok), err)
}

// GetRegistration returns the registration in progress.
func (h *AuthHandler) GetRegistration(c echo.Context) error {
	sess, tok, err := h.sessionFor(c)
	if err != nil {
		return err
	}

	resp := h.authResponse(sess, tok)
	_ = sess.Registration(func(form *usecase.RegistrationForm) error {
		snapshot := *form
		resp.Registration = &snapshot

		return nil
	})

	return response.Success(c, http.StatusOK, resp)
}

// RegisterStep submits step 1 (credentials) or step 2 (personal and vessel
// details) of the registration wizard.
func (h *AuthHandler) RegisterStep(c echo.Context) error {
	var req registrationStepRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid registration input")
	}

	sess, tok, err := h.sessionFor(c)
	if err != nil {
		return err
	}

	resp := h.authResponse(sess, tok)
	err = sess.Registration(func(form *usecase.RegistrationForm) error {
		var stepErr error
		switch req.Step {
		case usecase.StepCredentials:
			stepErr = form.SubmitCredentials(req.Credentials)
		case usecase.StepDetails:
			stepErr = form.SubmitDetails(req.PersonalDetails)
		default:
			stepErr = errors.Wrapf(domainerrors.ErrValidationFailed, "step must be %d or %d", usecase.StepCredentials, usecase.StepDetails)
		}

		snapshot := *form
		resp.Registration = &snapshot

		return stepErr
	})

	return response.Slice(c, resp, err)
}

// Register completes the wizard with the port selection and signs the new user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.PortSelection
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid registration input")
	}

	sess, tok, err := h.sessionFor(c)
	if err != nil {
		return err
	}

	var (
		email, password string
		details         usecase.RegistrationDetails
	)
	err = sess.Registration(func(form *usecase.RegistrationForm) error {
		var completeErr error
		email, password, details, completeErr = form.Complete(req)

		return completeErr
	})
	if err != nil {
		return err
	}

	user, err := sess.Auth.SignUp(c.Request().Context(), sess.Store, email, password, details)
	if err == nil {
		sess.ResetRegistration()
		h.watchChats(c, sess, user.ID)
	}

	return response.Slice(c, h.authResponse(sess, tok), err)
}

// GoogleSignIn signs in with a Google ID token. Users without a profile get
// a registration resuming at the port step with their identity prefilled.
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	var req googleSignInRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid Google sign-in input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sess, tok, err := h.sessionFor(c)
	if err != nil {
		return err
	}

	result, err := sess.Auth.GoogleSignIn(c.Request().Context(), sess.Store, req.IDToken)

	resp := h.authResponse(sess, tok)
	resp.Google = result
	if err == nil {
		if pending := resp.UserAuth.Pending; result.IsNewUser && pending != nil {
			form := *sess.ResumeRegistration(*pending)
			resp.Registration = &form
		} else if result.User != nil {
			h.watchChats(c, sess, result.User.ID)
		}
	}

	return response.Slice(c, resp, err)
}

// SignOut signs the user out and ends the session. It always succeeds.
func (h *AuthHandler) SignOut(c echo.Context) error {
	h.clearCookie(c)

	sess := middleware.SessionFrom(c)
	if sess == nil {
		return response.Success(c, http.StatusOK, authResponse{})
	}

	ctx := c.Request().Context()
	_ = sess.Auth.SignOut(ctx, sess.Store, sess.UserID())
	resp := authResponse{UserAuth: sess.State().UserAuth}
	h.sessions.End(ctx, sess)

	return response.Success(c, http.StatusOK, resp)
}

// sessionFor returns the request's session, opening one when the request has none.
func (h *AuthHandler) sessionFor(c echo.Context) (*session.Session, *issued, error) {
	if sess := middleware.SessionFrom(c); sess != nil {
		return sess, nil, nil
	}

	sess, token, expiresAt, err := h.sessions.Create()
	if err != nil {
		return nil, nil, err
	}

	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	return sess, &issued{token: token, expiresAt: expiresAt}, nil
}

func (h *AuthHandler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) authResponse(sess *session.Session, tok *issued) authResponse {
	resp := authResponse{UserAuth: sess.State().UserAuth}
	if tok != nil {
		resp.Token = tok.token
		resp.ExpiresAt = &tok.expiresAt
	}

	return resp
}

func (h *AuthHandler) watchChats(c echo.Context, sess *session.Session, uid string) {
	if err := sess.WatchChats(uid); err != nil {
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).
			Warn("Failed to watch chats", slog.String("user_id", uid), slog.Any("error", err))
	}
}
