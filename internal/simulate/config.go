package simulate

import (
	"time"

	"github.com/okian/fieldforce/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Members  []string      // User ids that post samples, each as its own caller
	Samples  int           // Samples per member
	Workers  int           // Concurrent submitters
	Timeout  time.Duration // HTTP request timeout
	Caller   string        // User id that reads the fleet summary
	Center   model.Point   // Where every walk starts
	StepKm   float64       // Largest leg of the random walk
	Interval time.Duration // Spacing between a member's sample timestamps
	Seed     uint64        // Seed for the walk; runs with equal seeds walk alike
	Settle   time.Duration // Longest wait for the service to store the samples
}

// DefaultConfig returns a run against a local server with the demo members.
func DefaultConfig() Config {
	return Config{
		BaseURL:  "http://localhost:9080",
		Members:  []string{"1", "2", "3", "5"},
		Samples:  20,
		Workers:  4,
		Timeout:  10 * time.Second,
		Caller:   "4",
		Center:   model.Point{Lat: 28.6139, Lng: 77.2090},
		StepKm:   0.2,
		Interval: 30 * time.Second,
		Seed:     1,
		Settle:   10 * time.Second,
	}
}

// Report summarizes a run.
type Report struct {
	Generated int
	Accepted  int64
	Duplicate int64
	Rejected  int64
	Duration  time.Duration
	Fleet     FleetSummary
}

// FleetSummary is the subset of the fleet view the simulator prints.
type FleetSummary struct {
	TeamSize       int `json:"team_size"`
	Tracked        int `json:"tracked"`
	Active         int `json:"active"`
	Idle           int `json:"idle"`
	Offline        int `json:"offline"`
	InField        int `json:"in_field"`
	InFieldPercent int `json:"in_field_percent"`
}
