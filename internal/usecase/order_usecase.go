package usecase

import (
	"context"

	"harbor/internal/domain/entity"
	"harbor/internal/state"
)

// UpdateOrderInput carries a seller's order edit. Nil fields are left untouched.
type UpdateOrderInput struct {
	Status          *entity.OrderStatus `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	Quantity        *int                `json:"quantity" validate:"omitempty,gt=0"`
	PriceInOrder    *float64            `json:"priceInOrder" validate:"omitempty,gte=0"`
	CurrencyInOrder *string             `json:"currencyInOrder" validate:"omitempty,len=3,alpha"`
}

// OrderUsecase defines the seller order action creators.
type OrderUsecase interface {
	FetchSellerOrders(ctx context.Context, d state.Dispatcher, sellerID string) ([]entity.Order, error)
	UpdateOrder(ctx context.Context, d state.Dispatcher, sellerID, orderID string, input UpdateOrderInput) (*entity.Order, error)
}
