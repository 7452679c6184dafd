package model

import (
	"math"
	"time"
)

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" koanf:"lat"`
	Lng float64 `json:"lng" koanf:"lng"`
}

// Valid reports whether p is a finite coordinate with |lat| <= 90 and
// |lng| <= 180.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return math.Abs(p.Lat) <= 90 && math.Abs(p.Lng) <= 180
}

// LocationSample is a single GPS fix reported by a field member's device.
type LocationSample struct {
	ID        string    `json:"id" koanf:"id"` // idempotency key
	UserID    string    `json:"user_id" koanf:"user_id"`
	Lat       float64   `json:"lat" koanf:"lat"`
	Lng       float64   `json:"lng" koanf:"lng"`
	Timestamp time.Time `json:"timestamp" koanf:"timestamp"`
	Activity  string    `json:"activity,omitempty" koanf:"activity"` // free-text, e.g. "Visiting customer"
	Accuracy  *float64  `json:"accuracy,omitempty" koanf:"accuracy"` // meters
}

// Point returns the sample's coordinate.
func (s LocationSample) Point() Point {
	return Point{Lat: s.Lat, Lng: s.Lng}
}
