package config

import "errors"

var (
	// ErrInvalidConfig marks settings the service cannot start with.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a config file or env layer that failed to load.
	ErrLoadConfig = errors.New("load config failed")
)
