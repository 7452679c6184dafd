package simulate

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fieldforce/internal/domain/geo"
	"github.com/okian/fieldforce/internal/domain/model"
)

const kmPerDegreeLat = geo.EarthRadiusKm * math.Pi / 180

// Generator produces random-walk location samples.
type Generator struct {
	rng      *rand.Rand
	center   model.Point
	stepKm   float64
	interval time.Duration
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(center model.Point, stepKm float64, interval time.Duration, seed uint64) *Generator {
	return &Generator{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		center:   center,
		stepKm:   stepKm,
		interval: interval,
	}
}

// Walk returns n samples for userID ending at end, oldest first. Each leg
// moves at most stepKm in a random bearing.
func (g *Generator) Walk(userID string, n int, end time.Time) []model.LocationSample {
	out := make([]model.LocationSample, n)
	p := g.center
	for i := 0; i < n; i++ {
		p = g.step(p)
		out[i] = model.LocationSample{
			ID:        uuid.NewString(),
			UserID:    userID,
			Lat:       p.Lat,
			Lng:       p.Lng,
			Timestamp: end.Add(-time.Duration(n-1-i) * g.interval),
			Activity:  "Simulated walk",
		}
	}
	return out
}

// Generate walks every member and returns the samples interleaved by round.
func (g *Generator) Generate(members []string, n int, end time.Time) []model.LocationSample {
	walks := make([][]model.LocationSample, len(members))
	for i, m := range members {
		walks[i] = g.Walk(m, n, end)
	}
	out := make([]model.LocationSample, 0, n*len(members))
	for round := 0; round < n; round++ {
		for _, w := range walks {
			out = append(out, w[round])
		}
	}
	return out
}

func (g *Generator) step(p model.Point) model.Point {
	dist := g.rng.Float64() * g.stepKm
	bearing := g.rng.Float64() * 2 * math.Pi
	dLat := dist * math.Cos(bearing) / kmPerDegreeLat
	dLng := dist * math.Sin(bearing) / (kmPerDegreeLat * math.Cos(p.Lat*math.Pi/180))
	return model.Point{
		Lat: math.Max(-90, math.Min(90, p.Lat+dLat)),
		Lng: wrapLng(p.Lng + dLng),
	}
}

func wrapLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}
