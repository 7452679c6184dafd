// Package config defines service configuration and its loading.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/fieldforce/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory location ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize is how many recent sample ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// HistoryLimit caps the samples kept per user.
	HistoryLimit int `koanf:"history_limit"`

	// Freshness thresholds. A member is active below ActiveWithin, idle below
	// IdleWithin and offline after. InFieldWithin is the separate cutoff used
	// for the in-field headline count.
	ActiveWithin  time.Duration `koanf:"active_within"`
	IdleWithin    time.Duration `koanf:"idle_within"`
	InFieldWithin time.Duration `koanf:"in_field_within"`

	// DefaultGeofenceRadiusKm is used when /geo/geofence omits radius_km.
	DefaultGeofenceRadiusKm float64 `koanf:"default_geofence_radius_km"`

	// FixturesPath points at a YAML seed file; empty loads the demo data.
	FixturesPath string `koanf:"fixtures_path"`

	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               logger.FormatText,
		Addr:                    ":9080",
		QueueSize:               10_000,
		WorkerCount:             runtime.NumCPU() * 2,
		DedupeSize:              50_000,
		HistoryLimit:            10_000,
		ActiveWithin:            5 * time.Minute,
		IdleWithin:              30 * time.Minute,
		InFieldWithin:           30 * time.Minute,
		DefaultGeofenceRadiusKm: 0.5,
		CORSAllowedOrigins:      []string{"*"},
	}
}

// Validate reports the first setting that cannot run.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.ActiveWithin <= 0 || c.IdleWithin <= 0 || c.InFieldWithin <= 0:
		return fmt.Errorf("%w: freshness thresholds must be positive", ErrInvalidConfig)
	case c.ActiveWithin >= c.IdleWithin:
		return fmt.Errorf("%w: active_within (%s) must be below idle_within (%s)", ErrInvalidConfig, c.ActiveWithin, c.IdleWithin)
	case c.DefaultGeofenceRadiusKm < 0:
		return fmt.Errorf("%w: default_geofence_radius_km must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
