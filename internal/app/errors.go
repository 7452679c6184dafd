package service

import "errors"

// Error constants.
var (
	ErrStopped = errors.New("service stopped")
)
