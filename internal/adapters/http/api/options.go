package api

import "time"

type options struct {
	defaultRadiusKm float64
	now             func() time.Time
}

func defaultOptions() options {
	return options{defaultRadiusKm: 0.5, now: time.Now}
}

// Option configures NewServer.
type Option func(*options)

// WithDefaultGeofenceRadius sets the radius used when a geofence query
// omits radius_km.
func WithDefaultGeofenceRadius(km float64) Option {
	return func(o *options) {
		if km > 0 {
			o.defaultRadiusKm = km
		}
	}
}

// WithClock sets the clock used to read zone-less timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
