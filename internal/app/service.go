// Package service wires the tracking core to its providers and implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/okian/fieldforce/internal/adapters/mq/queue"
	workerpool "github.com/okian/fieldforce/internal/adapters/mq/worker"
	"github.com/okian/fieldforce/internal/adapters/repository"
	"github.com/okian/fieldforce/internal/domain/dedupe"
	"github.com/okian/fieldforce/internal/domain/freshness"
	"github.com/okian/fieldforce/internal/domain/model"
	"github.com/okian/fieldforce/internal/domain/scope"
	"github.com/okian/fieldforce/internal/domain/tasks"
	"github.com/okian/fieldforce/internal/domain/team"
	"github.com/okian/fieldforce/pkg/logger"
	"github.com/okian/fieldforce/pkg/metrics"
)

const (
	defaultQueueSize  = 10_000
	defaultDedupeSize = 50_000
)

// Service implements the API dependencies for the tracking dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	queue   *eventqueue.InMemoryQueue
	pool    *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	thresholds  freshness.Thresholds
	now         func() time.Time

	// State
	started bool
	stopped bool

	logger logger.Logger
}

// New constructs a Service over store. The deduper and queue exist from the
// start so samples can be accepted before the workers run.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		thresholds:  freshness.DefaultThresholds(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithClock(s.now),
	)
	return s
}

// Start launches the ingestion workers. It is a no-op when already running.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store,
		workerpool.WithFailureHandler(s.onIngestFailure),
		workerpool.WithClock(s.now),
	)
	s.pool.Start(ctx)
	s.started = true

	s.logger.Info(ctx, "tracking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the queue and waits for the workers to store what is left.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	s.logger.Info(ctx, "stopping tracking service...")

	var err error
	if s.pool != nil {
		err = s.pool.Shutdown(ctx)
	} else {
		err = s.queue.Close()
	}
	s.started = false

	s.logger.Info(ctx, "tracking service stopped")
	return err
}

// onIngestFailure forgets the id of a sample the store rejected so the
// device can resend it.
func (s *Service) onIngestFailure(ctx context.Context, sample model.LocationSample, err error) {
	s.deduper.Unrecord(ctx, sample.ID)
	metrics.RecordSampleRejected("storage")
	s.logger.Debug(ctx, "sample id released after storage failure",
		logger.String("sample_id", sample.ID),
		logger.Error(err),
	)
}

// Caller resolves a declared user id against the directory.
func (s *Service) Caller(ctx context.Context, userID string) (scope.Caller, error) {
	u, err := s.store.User(ctx, userID)
	if err != nil {
		return scope.Caller{}, err
	}
	return scope.Caller{ID: u.ID, Role: u.Role}, nil
}

// visible resolves the requested scope and returns the users it covers.
func (s *Service) visible(ctx context.Context, c scope.Caller, requested scope.Scope) ([]model.User, error) {
	resolved, err := scope.Resolve(c, requested)
	if err != nil {
		return nil, err
	}
	return scope.Visible(c, resolved, s.store.Users(ctx)), nil
}

// authorize checks that u lies within the widest scope c may request.
func authorize(c scope.Caller, u model.User) error {
	widest, err := scope.ForRole(c.Role)
	if err != nil {
		return err
	}
	if !scope.Covers(c, widest, u) {
		return fmt.Errorf("%w: %s %s may not act on user %s", scope.ErrScopeNotPermitted, c.Role, c.ID, u.ID)
	}
	return nil
}

// Fleet classifies the latest sample of every visible member.
func (s *Service) Fleet(ctx context.Context, c scope.Caller, requested scope.Scope) (freshness.Fleet, error) {
	users, err := s.visible(ctx, c, requested)
	if err != nil {
		return freshness.Fleet{}, err
	}
	latest := make([]model.LocationSample, 0, len(users))
	for _, u := range users {
		if sample, ok := s.store.CurrentLocation(ctx, u.ID); ok {
			latest = append(latest, sample)
		}
	}
	fleet, err := s.thresholds.Summarize(latest, len(users), s.now())
	if err != nil {
		return freshness.Fleet{}, err
	}
	metrics.UpdateFleet(fleet.Active, fleet.Idle, fleet.Offline, fleet.InFieldPercent)
	return fleet, nil
}

// TeamTotals aggregates the metric records of the visible members.
func (s *Service) TeamTotals(ctx context.Context, c scope.Caller, requested scope.Scope) (team.Totals, error) {
	users, err := s.visible(ctx, c, requested)
	if err != nil {
		return team.Totals{}, err
	}
	return team.Aggregate(s.store.TeamMetrics(ctx, scope.IDs(users))), nil
}

// TeamMembers returns one performance row per visible member in directory
// order.
func (s *Service) TeamMembers(ctx context.Context, c scope.Caller, requested scope.Scope) ([]team.MemberRow, error) {
	users, err := s.visible(ctx, c, requested)
	if err != nil {
		return nil, err
	}
	return team.JoinMembers(users, s.store.TeamMetrics(ctx, scope.IDs(users))), nil
}

// ListTasks filters the visible members' tasks by status and window.
func (s *Service) ListTasks(ctx context.Context, c scope.Caller, requested scope.Scope, status model.TaskStatus, w tasks.Window) ([]model.Task, error) {
	users, err := s.visible(ctx, c, requested)
	if err != nil {
		return nil, err
	}
	return tasks.Filter(s.store.Tasks(ctx, scope.IDs(users)), status, w, s.now())
}

// TaskBoard groups the visible members' tasks by status for a window.
func (s *Service) TaskBoard(ctx context.Context, c scope.Caller, requested scope.Scope, w tasks.Window) (tasks.Board, error) {
	users, err := s.visible(ctx, c, requested)
	if err != nil {
		return tasks.Board{}, err
	}
	return tasks.NewBoard(s.store.Tasks(ctx, scope.IDs(users)), w, s.now())
}

// CreateTask assigns t to a user the caller covers.
func (s *Service) CreateTask(ctx context.Context, c scope.Caller, t model.Task) (model.Task, error) {
	u, err := s.store.User(ctx, t.UserID)
	if err != nil {
		return model.Task{}, err
	}
	if err := authorize(c, u); err != nil {
		return model.Task{}, err
	}
	created, err := s.store.CreateTask(ctx, t)
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Info(ctx, "task created",
		logger.String("task_id", created.ID),
		logger.String("user_id", created.UserID),
		logger.String("by", c.ID),
	)
	return created, nil
}

// UpdateTaskStatus moves a task the caller covers forward in its lifecycle.
func (s *Service) UpdateTaskStatus(ctx context.Context, c scope.Caller, id string, status model.TaskStatus) (model.Task, error) {
	t, err := s.store.Task(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	u, err := s.store.User(ctx, t.UserID)
	if err != nil {
		return model.Task{}, err
	}
	if err := authorize(c, u); err != nil {
		return model.Task{}, err
	}
	return s.store.UpdateTaskStatus(ctx, id, status, s.now())
}

// LocationHistory returns the route samples of a user the caller covers.
func (s *Service) LocationHistory(ctx context.Context, c scope.Caller, userID string, start, end time.Time) ([]model.LocationSample, error) {
	u, err := s.store.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(c, u); err != nil {
		return nil, err
	}
	return s.store.LocationHistory(ctx, userID, start, end), nil
}

// SeenAndRecord atomically checks if a sample id was seen and records it if
// not. Returns true if the sample was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a sample id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of remembered sample ids.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue submits a sample for asynchronous storage.
func (s *Service) Enqueue(ctx context.Context, sample model.LocationSample) error {
	if err := s.queue.Enqueue(ctx, sample); err != nil {
		return err
	}
	s.logger.Debug(ctx, "sample enqueued",
		logger.String("sample_id", sample.ID),
		logger.String("user_id", sample.UserID),
	)
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueCapacity": s.queue.Cap(),
		"queueLength":   s.queue.Len(ctx),
		"dedupeSize":    s.dedupeSize,
		"dedupeEntries": s.deduper.Size(),
		"users":         len(s.store.Users(ctx)),
	}
	if s.pool != nil {
		stats["processed"] = s.pool.Processed()
		stats["failed"] = s.pool.Failed()
	}
	return stats
}
