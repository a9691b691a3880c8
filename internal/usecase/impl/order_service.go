package impl

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/errors"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// OrderServiceParams holds dependencies for the order action creators, injected by Fx
type OrderServiceParams struct {
	fx.In

	Orders repository.OrderRepository
	Logger *slog.Logger
}

// orderService implements the OrderUsecase interface.
type orderService struct {
	orders repository.OrderRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		orders: params.Orders,
		logger: params.Logger,
		now:    time.Now,
	}
}

func (srv *orderService) FetchSellerOrders(ctx context.Context, d state.Dispatcher, sellerID string) ([]entity.Order, error) {
	d.Dispatch(state.FetchOrdersRequest{})

	orders, err := srv.orders.FindBySeller(ctx, sellerID)
	if err != nil {
		d.Dispatch(state.FetchOrdersFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.FetchOrdersSuccess{Orders: orders})

	return orders, nil
}

func (srv *orderService) UpdateOrder(ctx context.Context, d state.Dispatcher, sellerID, orderID string, input usecase.UpdateOrderInput) (*entity.Order, error) {
	if err := usecase.ValidateInput(input); err != nil {
		return nil, err
	}

	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.UpdateOrderRequest{})

	order, err := srv.updateOrder(ctx, sellerID, orderID, input)
	if err != nil {
		logger.Warn("Order update failed", slog.String("order_id", orderID), slog.Any("error", err))
		d.Dispatch(state.UpdateOrderFailure{Failed: state.Fail(err)})

		return nil, err
	}

	logger.Info("Order updated", slog.String("order_id", order.ID), slog.String("status", string(order.Status)))
	d.Dispatch(state.UpdateOrderSuccess{Order: *order})

	return order, nil
}

func (srv *orderService) updateOrder(ctx context.Context, sellerID, orderID string, input usecase.UpdateOrderInput) (*entity.Order, error) {
	stored, err := srv.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, domainError(err)
	}
	if stored.SellerID != sellerID {
		return nil, errors.Wrapf(domainerrors.ErrForbidden, "order %s belongs to another seller", orderID)
	}
	if stored.Status.IsFinal() {
		return nil, errors.Wrapf(domainerrors.ErrOrderFinal, "order %s is %s", orderID, stored.Status)
	}

	order, err := srv.orders.Update(ctx, orderID, repository.OrderUpdate{
		Status:          input.Status,
		Quantity:        input.Quantity,
		PriceInOrder:    input.PriceInOrder,
		CurrencyInOrder: input.CurrencyInOrder,
	}, srv.now().UTC())
	if err != nil {
		return nil, domainError(err)
	}

	return order, nil
}
