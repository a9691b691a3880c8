package repository

import (
	"testing"
	"time"

	"harbor/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestGoodsFilter_Matches(t *testing.T) {
	good := &entity.Good{PortID: "p1", CategoryID: "c1", OwnerID: "u1"}

	tests := []struct {
		name   string
		filter GoodsFilter
		want   bool
	}{
		{name: "empty filter", filter: GoodsFilter{}, want: true},
		{name: "port only", filter: GoodsFilter{PortID: "p1"}, want: true},
		{name: "port and category", filter: GoodsFilter{PortID: "p1", CategoryID: "c1"}, want: true},
		{name: "all fields", filter: GoodsFilter{PortID: "p1", CategoryID: "c1", OwnerID: "u1"}, want: true},
		{name: "other port", filter: GoodsFilter{PortID: "p2"}, want: false},
		{name: "other category", filter: GoodsFilter{PortID: "p1", CategoryID: "c2"}, want: false},
		{name: "other owner", filter: GoodsFilter{OwnerID: "u2"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(good))
		})
	}
}

func TestUserUpdate_Apply(t *testing.T) {
	user := &entity.User{FirstName: "Ada", LastName: "Lovelace", Phone: "1"}
	phone := "2"
	ports := []entity.Port{{ID: "p1"}}

	update := UserUpdate{Phone: &phone, Ports: &ports}
	assert.False(t, update.IsEmpty())
	assert.True(t, UserUpdate{}.IsEmpty())

	update.Apply(user)
	ports[0].ID = "changed"

	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "2", user.Phone)
	assert.Equal(t, "p1", user.Ports[0].ID)
}

func TestOrderUpdate_Apply(t *testing.T) {
	order := &entity.Order{Status: entity.OrderStatusPending, Quantity: 1}
	status := entity.OrderStatusConfirmed
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	OrderUpdate{Status: &status}.Apply(order, at)

	assert.Equal(t, entity.OrderStatusConfirmed, order.Status)
	assert.Equal(t, 1, order.Quantity)
	assert.Equal(t, at, order.UpdateTimestampGMT)
}
