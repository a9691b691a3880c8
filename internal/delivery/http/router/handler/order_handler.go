package handler

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	"harbor/internal/domain/entity"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// OrderHandler serves the seller's orders.
type OrderHandler struct {
	uc     usecase.OrderUsecase
	logger *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler, injected by Fx.
func NewOrderHandler(uc usecase.OrderUsecase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: logger}
}

type orderResponse struct {
	Order  *entity.Order     `json:"order,omitempty"`
	Orders state.OrdersState `json:"orders"`
}

// GetOrders reloads the orders the signed-in user sells.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	sess := middleware.SessionFrom(c)

	_, err := h.uc.FetchSellerOrders(c.Request().Context(), sess.Store, middleware.UserIDFrom(c))

	return response.Slice(c, sess.State().Orders, err)
}

// UpdateOrder applies the seller's edit to one order.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	var input usecase.UpdateOrderInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid order input")
	}

	sess := middleware.SessionFrom(c)

	order, err := h.uc.UpdateOrder(c.Request().Context(), sess.Store, middleware.UserIDFrom(c), c.Param("id"), input)

	return response.Slice(c, orderResponse{Order: order, Orders: sess.State().Orders}, err)
}
