package handler

import (
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"

	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// PortHandler serves the port directory. It is public so that registration
// can offer ports before the user has an account.
type PortHandler struct {
	uc     usecase.PortUsecase
	logger *slog.Logger
}

// NewPortHandler is the constructor for PortHandler, injected by Fx.
func NewPortHandler(uc usecase.PortUsecase, logger *slog.Logger) *PortHandler {
	return &PortHandler{uc: uc, logger: logger}
}

// GetPorts lists ports, nearest first when lat and lon are given.
func (h *PortHandler) GetPorts(c echo.Context) error {
	near, err := nearPoint(c.QueryParam("lat"), c.QueryParam("lon"))
	if err != nil {
		return err
	}

	var store *state.Store
	if sess := middleware.SessionFrom(c); sess != nil {
		store = sess.Store
	} else {
		store = state.NewStore(state.State{})
	}

	_, err = h.uc.FetchPorts(c.Request().Context(), store, near)

	return response.Slice(c, store.State().Ports, err)
}

func nearPoint(lat, lon string) (*orb.Point, error) {
	if lat == "" && lon == "" {
		return nil, nil
	}

	latitude, latErr := strconv.ParseFloat(lat, 64)
	longitude, lonErr := strconv.ParseFloat(lon, 64)
	if latErr != nil || lonErr != nil || latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "lat and lon must be valid coordinates")
	}

	return &orb.Point{longitude, latitude}, nil
}
