package entity

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).DisplayName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).DisplayName())
	assert.Equal(t, "ada@example.com", (&User{Email: "ada@example.com"}).DisplayName())
}

func TestUser_PrimaryPort(t *testing.T) {
	u := &User{}
	_, ok := u.PrimaryPort()
	assert.False(t, ok)

	u.Ports = []Port{{ID: "rotterdam"}, {ID: "hamburg"}}
	p, ok := u.PrimaryPort()
	assert.True(t, ok)
	assert.Equal(t, "rotterdam", p.ID)
	assert.True(t, u.HasPort("hamburg"))
	assert.False(t, u.HasPort("antwerp"))
}

func TestOrder_TotalPrice(t *testing.T) {
	o := &Order{Quantity: 3, PriceInOrder: 12.5}
	assert.InDelta(t, 37.5, o.TotalPrice(), 1e-9)
}

func TestPort_DistanceTo(t *testing.T) {
	rotterdam := Port{Location: orb.Point{4.47917, 51.9225}}
	hamburg := orb.Point{9.993682, 53.551086}

	// roughly 410 km
	assert.InDelta(t, 410_000, rotterdam.DistanceTo(hamburg), 20_000)
}
