package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidSample = errors.New("invalid location sample")
	ErrInvalidTask   = errors.New("invalid task")
	ErrLoadFixtures  = errors.New("failed to load fixtures")
)
