// Package geo provides great-circle distance and geofence helpers.
package geo

import (
	"math"

	"github.com/okian/fieldforce/internal/domain/model"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

const degToRad = math.Pi / 180

// DistanceKm returns the haversine distance in kilometres between two points
// given in decimal degrees. Ranges are not validated; NaN inputs yield NaN.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*sinLon*sinLon
	// Rounding can push a just past 1 for near-antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance is DistanceKm over points.
func Distance(a, b model.Point) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// WithinGeofence reports whether point lies inside the circle of radiusKm
// around center. The boundary counts as inside.
func WithinGeofence(point, center model.Point, radiusKm float64) bool {
	return Distance(point, center) <= radiusKm
}

// Route returns the points of samples in the given order. Samples are
// expected to be sorted by timestamp already.
func Route(samples []model.LocationSample) []model.Point {
	out := make([]model.Point, len(samples))
	for i, s := range samples {
		out[i] = s.Point()
	}
	return out
}

// RouteDistanceKm sums the leg distances of a time-ordered sample sequence.
func RouteDistanceKm(samples []model.LocationSample) float64 {
	var total float64
	for i := 1; i < len(samples); i++ {
		total += Distance(samples[i-1].Point(), samples[i].Point())
	}
	return total
}
