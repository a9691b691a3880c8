package repository

import (
	"context"
	"errors"
	"time"

	"harbor/internal/domain/entity"
)

// ErrOrderNotFound is returned when an order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// OrderUpdate carries a partial order change. Nil fields are left untouched.
type OrderUpdate struct {
	Status          *entity.OrderStatus
	Quantity        *int
	PriceInOrder    *float64
	CurrencyInOrder *string
}

// Apply writes the set fields onto order and stamps the update time.
func (u OrderUpdate) Apply(order *entity.Order, at time.Time) {
	if u.Status != nil {
		order.Status = *u.Status
	}
	if u.Quantity != nil {
		order.Quantity = *u.Quantity
	}
	if u.PriceInOrder != nil {
		order.PriceInOrder = *u.PriceInOrder
	}
	if u.CurrencyInOrder != nil {
		order.CurrencyInOrder = *u.CurrencyInOrder
	}
	order.UpdateTimestampGMT = at
}

// OrderRepository defines persistence for orders.
type OrderRepository interface {
	// FindBySeller returns the seller's orders, newest first.
	FindBySeller(ctx context.Context, sellerID string) ([]entity.Order, error)

	// FindByID retrieves a single order.
	FindByID(ctx context.Context, id string) (*entity.Order, error)

	// Update applies a partial change and returns the stored order.
	Update(ctx context.Context, id string, update OrderUpdate, at time.Time) (*entity.Order, error)
}
