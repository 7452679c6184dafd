package api

import (
	"errors"
	"net/http"

	"github.com/okian/fieldforce/internal/adapters/mq/queue"
	"github.com/okian/fieldforce/internal/adapters/repository"
	"github.com/okian/fieldforce/internal/domain/model"
	"github.com/okian/fieldforce/internal/domain/scope"
	"github.com/okian/fieldforce/internal/domain/table"
	"github.com/okian/fieldforce/internal/domain/tasks"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("missing or unknown caller")
	ErrForbidden       = errors.New("forbidden")
	ErrBackpressure    = errors.New("backpressure")
	ErrUnavailable     = errors.New("service unavailable")
)

// Error is a failed API operation. Kind classifies it for the response
// status; Err carries the cause. Both match errors.Is.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap attaches op to err and lets the cause pick the status.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind attaches op and an explicit kind to err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

type errorClass struct {
	status int
	code   string
	match  []error
}

// errorClasses is checked in order; the first match wins.
var errorClasses = []errorClass{
	{http.StatusUnauthorized, "unauthenticated", []error{ErrUnauthenticated}},
	{http.StatusForbidden, "forbidden", []error{ErrForbidden, scope.ErrScopeNotPermitted, scope.ErrUnknownRole}},
	{http.StatusBadRequest, "invalid_timestamp", []error{model.ErrInvalidTimestamp}},
	{http.StatusBadRequest, "bad_request", []error{
		ErrBadRequest, scope.ErrUnknownScope, table.ErrUnknownKey, table.ErrUnknownDirection,
		tasks.ErrUnknownWindow, tasks.ErrUnknownStatus, repository.ErrInvalidSample, repository.ErrInvalidTask,
	}},
	{http.StatusNotFound, "not_found", []error{repository.ErrNotFound}},
	{http.StatusConflict, "invalid_transition", []error{tasks.ErrInvalidTransition}},
	{http.StatusTooManyRequests, "backpressure", []error{ErrBackpressure, queue.ErrQueueFull}},
	{http.StatusServiceUnavailable, "unavailable", []error{ErrUnavailable, queue.ErrQueueClosed}},
}

// classify maps err to a response status and code.
func classify(err error) (int, string) {
	for _, c := range errorClasses {
		for _, target := range c.match {
			if errors.Is(err, target) {
				return c.status, c.code
			}
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
