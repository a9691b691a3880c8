package entity

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Port is a harbour where goods are listed and delivered.
type Port struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Country  string    `json:"country"`
	Location orb.Point `json:"location"` // lon, lat
}

// DistanceTo returns the great-circle distance in meters from the port to p.
func (p Port) DistanceTo(point orb.Point) float64 {
	return geo.DistanceHaversine(p.Location, point)
}
