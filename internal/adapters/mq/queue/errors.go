package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueFull   = errors.New("ingestion queue full")
	ErrQueueClosed = errors.New("ingestion queue closed")
)
