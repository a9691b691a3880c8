package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

const photoField = "photo"

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct {
	uc     usecase.ProfileUsecase
	logger *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler, injected by Fx.
func NewProfileHandler(uc usecase.ProfileUsecase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{uc: uc, logger: logger}
}

type photoResponse struct {
	PhotoURL string             `json:"photoUrl,omitempty"`
	Profile  state.ProfileState `json:"profile"`
}

type pushTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// GetProfile reloads the profile slice.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	sess := middleware.SessionFrom(c)

	_, err := h.uc.FetchProfile(c.Request().Context(), sess.Store, middleware.UserIDFrom(c))

	return response.Slice(c, sess.State().Profile, err)
}

// UpdateProfile applies a partial profile change.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var input usecase.UpdateProfileInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid profile input")
	}

	sess := middleware.SessionFrom(c)

	_, err := h.uc.UpdateProfile(c.Request().Context(), sess.Store, middleware.UserIDFrom(c), input)

	return response.Slice(c, sess.State().Profile, err)
}

// UpdateProfilePhoto replaces the profile photo with the uploaded image.
func (h *ProfileHandler) UpdateProfilePhoto(c echo.Context) error {
	file, err := c.FormFile(photoField)
	if err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, "photo file is required")
	}

	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "open uploaded photo")
	}
	defer src.Close()

	sess := middleware.SessionFrom(c)

	url, err := h.uc.UpdateProfilePhoto(c.Request().Context(), sess.Store, middleware.UserIDFrom(c), usecase.Upload{
		FileName: file.Filename,
		Reader:   src,
	})

	return response.Slice(c, photoResponse{PhotoURL: url, Profile: sess.State().Profile}, err)
}

// RegisterPushToken stores a device token for chat notifications.
func (h *ProfileHandler) RegisterPushToken(c echo.Context) error {
	var req pushTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid push token input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.uc.RegisterPushToken(c.Request().Context(), middleware.UserIDFrom(c), req.Token); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
