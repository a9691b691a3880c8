package entity

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a known value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsFinal reports whether no further edits are accepted.
func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Order is a purchase of a good placed by a buyer with a seller.
type Order struct {
	ID                 string      `json:"id"`
	OrderNumber        string      `json:"orderNumber"`
	Status             OrderStatus `json:"status"`
	Quantity           int         `json:"quantity"`
	PriceInOrder       float64     `json:"priceInOrder"`
	CurrencyInOrder    string      `json:"currencyInOrder"`
	BuyerID            string      `json:"buyerId"`
	SellerID           string      `json:"sellerId"`
	GoodID             string      `json:"goodId"`
	CreateTimestampGMT time.Time   `json:"createTimestampGMT"`
	UpdateTimestampGMT time.Time   `json:"updateTimestampGMT"`
}

// TotalPrice returns quantity times the unit price captured in the order.
func (o *Order) TotalPrice() float64 {
	return float64(o.Quantity) * o.PriceInOrder
}
