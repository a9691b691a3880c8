package impl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/state"
	"harbor/internal/state/statetest"
	"harbor/internal/usecase"
)

func createTestOrderService(env *testEnv) *orderService {
	srv := NewOrderService(OrderServiceParams{Orders: env.gw.Orders, Logger: env.logger}).(*orderService)
	srv.now = func() time.Time { return testNow }

	return srv
}

func TestOrderService_FetchSellerOrders(t *testing.T) {
	env := newTestEnv(t)
	srv := createTestOrderService(env)
	rec := &statetest.Recorder{}

	orders, err := srv.FetchSellerOrders(context.Background(), rec, "demo-seller")
	require.NoError(t, err)

	require.Len(t, orders, 1)
	assert.Equal(t, "HB-0001", orders[0].OrderNumber)
	assert.Equal(t, []state.ActionType{state.TypeFetchOrdersRequest, state.TypeFetchOrdersSuccess}, rec.Types())

	orders, err = srv.FetchSellerOrders(context.Background(), rec, "demo-buyer")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_UpdateOrder(t *testing.T) {
	env := newTestEnv(t)
	srv := createTestOrderService(env)
	rec := &statetest.Recorder{}
	status := entity.OrderStatusConfirmed
	quantity := 3

	order, err := srv.UpdateOrder(context.Background(), rec, "demo-seller", "demo-order",
		usecase.UpdateOrderInput{Status: &status, Quantity: &quantity})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusConfirmed, order.Status)
	assert.Equal(t, 3, order.Quantity)
	assert.InDelta(t, 420.0, order.PriceInOrder, 1e-9)
	assert.Equal(t, testNow, order.UpdateTimestampGMT)
	assert.Equal(t, []state.ActionType{state.TypeUpdateOrderRequest, state.TypeUpdateOrderSuccess}, rec.Types())
}

func TestOrderService_UpdateOrder_Errors(t *testing.T) {
	delivered := entity.OrderStatusDelivered
	pending := entity.OrderStatusPending
	bogus := entity.OrderStatus("LOST")

	tests := []struct {
		name       string
		sellerID   string
		orderID    string
		prepare    func(t *testing.T, srv *orderService)
		input      usecase.UpdateOrderInput
		want       error
		dispatched bool
	}{
		{name: "invalid status", sellerID: "demo-seller", orderID: "demo-order", input: usecase.UpdateOrderInput{Status: &bogus}, want: domainerrors.ErrValidationFailed},
		{name: "missing order", sellerID: "demo-seller", orderID: "nope", input: usecase.UpdateOrderInput{Status: &pending}, want: domainerrors.ErrOrderNotFound, dispatched: true},
		{name: "other seller", sellerID: "demo-buyer", orderID: "demo-order", input: usecase.UpdateOrderInput{Status: &pending}, want: domainerrors.ErrForbidden, dispatched: true},
		{
			name: "final order", sellerID: "demo-seller", orderID: "demo-order",
			prepare: func(t *testing.T, srv *orderService) {
				_, err := srv.UpdateOrder(context.Background(), &statetest.Recorder{}, "demo-seller", "demo-order", usecase.UpdateOrderInput{Status: &delivered})
				require.NoError(t, err)
			},
			input: usecase.UpdateOrderInput{Status: &pending}, want: domainerrors.ErrOrderFinal, dispatched: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := createTestOrderService(newTestEnv(t))
			if tt.prepare != nil {
				tt.prepare(t, srv)
			}
			rec := &statetest.Recorder{}

			_, err := srv.UpdateOrder(context.Background(), rec, tt.sellerID, tt.orderID, tt.input)

			require.ErrorIs(t, err, tt.want)
			if tt.dispatched {
				assert.Equal(t, []state.ActionType{state.TypeUpdateOrderRequest, state.TypeUpdateOrderFailure}, rec.Types())
			} else {
				assert.Empty(t, rec.Actions())
			}
		})
	}
}
