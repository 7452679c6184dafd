package tasks

import (
	"errors"

	"github.com/okian/fieldforce/internal/domain/model"
)

// Sentinel kinds for task view errors.
var (
	ErrInvalidTimestamp  = model.ErrInvalidTimestamp
	ErrUnknownWindow     = errors.New("unknown due-date window")
	ErrUnknownStatus     = errors.New("unknown task status")
	ErrInvalidTransition = errors.New("invalid task status transition")
)
