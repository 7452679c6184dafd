// Package repository holds the providers the tracking core reads from: the
// user directory, metric records, location history and tasks.
package repository

import (
	"context"
	"time"

	"github.com/okian/fieldforce/internal/domain/model"
)

// UserDirectory resolves users and their reporting lines.
type UserDirectory interface {
	// Users returns every known user in directory order.
	Users(ctx context.Context) []model.User
	// User returns ErrNotFound if id is unknown.
	User(ctx context.Context, id string) (model.User, error)
}

// MetricsProvider serves per-user metric records.
type MetricsProvider interface {
	MetricsForUser(ctx context.Context, userID string) (model.MetricRecord, error)
	// TeamMetrics returns the records of the given users, in argument order.
	// Users without a record are skipped.
	TeamMetrics(ctx context.Context, userIDs []string) []model.MetricRecord
}

// LocationProvider stores and serves location samples.
type LocationProvider interface {
	// CurrentLocation returns the latest sample of a user.
	CurrentLocation(ctx context.Context, userID string) (model.LocationSample, bool)
	// LocationHistory returns samples with start <= timestamp <= end ordered
	// by time. A zero bound is open.
	LocationHistory(ctx context.Context, userID string, start, end time.Time) []model.LocationSample
	RecordLocation(ctx context.Context, s model.LocationSample) error
}

// TaskProvider stores and serves tasks.
type TaskProvider interface {
	// Tasks returns the tasks assigned to the given users in creation order.
	Tasks(ctx context.Context, userIDs []string) []model.Task
	Task(ctx context.Context, id string) (model.Task, error)
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus, now time.Time) (model.Task, error)
}

// Store is every provider in one.
type Store interface {
	UserDirectory
	MetricsProvider
	LocationProvider
	TaskProvider
}
