package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fieldforce/internal/domain/model"
	"github.com/okian/fieldforce/internal/domain/tasks"
	"github.com/okian/fieldforce/pkg/metrics"
)

const defaultHistoryLimit = 10_000

// MemoryStore is an in-memory Store guarded by a single RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	users   []model.User
	userIdx map[string]int
	metrics map[string]model.MetricRecord
	history map[string][]model.LocationSample // sorted by Timestamp
	samples int
	tasks   []model.Task
	taskIdx map[string]int

	historyLimit int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		userIdx:      make(map[string]int),
		metrics:      make(map[string]model.MetricRecord),
		history:      make(map[string][]model.LocationSample),
		taskIdx:      make(map[string]int),
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load merges fixtures into the store. Users and metric records replace
// existing entries with the same id.
func (s *MemoryStore) Load(ctx context.Context, f Fixtures) error {
	s.mu.Lock()
	for _, u := range f.Users {
		if u.ID == "" || !u.Role.Valid() {
			s.mu.Unlock()
			return fmt.Errorf("%w: user %q has role %q", ErrLoadFixtures, u.ID, u.Role)
		}
		if i, ok := s.userIdx[u.ID]; ok {
			s.users[i] = u
			continue
		}
		s.userIdx[u.ID] = len(s.users)
		s.users = append(s.users, u)
	}
	for _, m := range f.Metrics {
		s.metrics[m.UserID] = m
	}
	s.mu.Unlock()

	for _, l := range f.Locations {
		if err := s.RecordLocation(ctx, l); err != nil {
			return fmt.Errorf("%w: %w", ErrLoadFixtures, err)
		}
	}
	for _, t := range f.Tasks {
		if _, err := s.CreateTask(ctx, t); err != nil {
			return fmt.Errorf("%w: %w", ErrLoadFixtures, err)
		}
	}
	return nil
}

func (s *MemoryStore) Users(_ context.Context) []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *MemoryStore) User(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.userIdx[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	return s.users[i], nil
}

func (s *MemoryStore) MetricsForUser(_ context.Context, userID string) (model.MetricRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.metrics[userID]
	if !ok {
		return model.MetricRecord{}, fmt.Errorf("metrics for %q: %w", userID, ErrNotFound)
	}
	return m, nil
}

func (s *MemoryStore) TeamMetrics(_ context.Context, userIDs []string) []model.MetricRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.MetricRecord, 0, len(userIDs))
	for _, id := range userIDs {
		if m, ok := s.metrics[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (s *MemoryStore) CurrentLocation(_ context.Context, userID string) (model.LocationSample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.history[userID]
	if len(h) == 0 {
		return model.LocationSample{}, false
	}
	return h[len(h)-1], true
}

func (s *MemoryStore) LocationHistory(_ context.Context, userID string, start, end time.Time) []model.LocationSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.history[userID]
	lo := 0
	if !start.IsZero() {
		lo = sort.Search(len(h), func(i int) bool { return !h[i].Timestamp.Before(start) })
	}
	hi := len(h)
	if !end.IsZero() {
		hi = sort.Search(len(h), func(i int) bool { return h[i].Timestamp.After(end) })
	}
	if lo >= hi {
		return []model.LocationSample{}
	}
	out := make([]model.LocationSample, hi-lo)
	copy(out, h[lo:hi])
	return out
}

// RecordLocation appends a sample to its user's history, keeping time order.
// Samples with equal timestamps keep arrival order.
func (s *MemoryStore) RecordLocation(_ context.Context, l model.LocationSample) error {
	if err := validateSample(l); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.userIdx[l.UserID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("user %q: %w", l.UserID, ErrNotFound)
	}
	h := s.history[l.UserID]
	if n := len(h); n == 0 || !h[n-1].Timestamp.After(l.Timestamp) {
		h = append(h, l)
	} else {
		i := sort.Search(n, func(i int) bool { return h[i].Timestamp.After(l.Timestamp) })
		h = append(h, model.LocationSample{})
		copy(h[i+1:], h[i:])
		h[i] = l
	}
	s.samples++
	if s.historyLimit > 0 && len(h) > s.historyLimit {
		drop := len(h) - s.historyLimit
		h = append(h[:0:0], h[drop:]...)
		s.samples -= drop
	}
	s.history[l.UserID] = h
	total := s.samples
	s.mu.Unlock()

	metrics.UpdateTrackedSamples(total)
	return nil
}

func validateSample(l model.LocationSample) error {
	if l.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidSample)
	}
	if l.Timestamp.IsZero() {
		return fmt.Errorf("sample for %q: %w", l.UserID, model.ErrInvalidTimestamp)
	}
	if !l.Point().Valid() {
		return fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrInvalidSample, l.Lat, l.Lng)
	}
	return nil
}

func (s *MemoryStore) Tasks(_ context.Context, userIDs []string) []model.Task {
	want := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, 0)
	for _, t := range s.tasks {
		if _, ok := want[t.UserID]; ok {
			out = append(out, t)
		}
	}
	return out
}

func (s *MemoryStore) Task(_ context.Context, id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.taskIdx[id]
	if !ok {
		return model.Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return s.tasks[i], nil
}

// CreateTask stores t, assigning an id when empty. Status defaults to
// pending and priority to medium.
func (s *MemoryStore) CreateTask(_ context.Context, t model.Task) (model.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return model.Task{}, fmt.Errorf("%w: missing title", ErrInvalidTask)
	}
	if t.DueDate.IsZero() {
		return model.Task{}, fmt.Errorf("task %q due date: %w", t.Title, model.ErrInvalidTimestamp)
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if !t.Status.Valid() {
		return model.Task{}, fmt.Errorf("%w: status %q", ErrInvalidTask, t.Status)
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !t.Priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: priority %q", ErrInvalidTask, t.Priority)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.userIdx[t.UserID]; !ok {
		return model.Task{}, fmt.Errorf("user %q: %w", t.UserID, ErrNotFound)
	}
	if _, ok := s.taskIdx[t.ID]; ok {
		return model.Task{}, fmt.Errorf("%w: duplicate id %q", ErrInvalidTask, t.ID)
	}
	s.taskIdx[t.ID] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	metrics.RecordTaskCreated()
	return t, nil
}

func (s *MemoryStore) UpdateTaskStatus(_ context.Context, id string, status model.TaskStatus, now time.Time) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.taskIdx[id]
	if !ok {
		return model.Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	t, err := tasks.Apply(s.tasks[i], status, now)
	if err != nil {
		return model.Task{}, err
	}
	s.tasks[i] = t
	metrics.RecordTaskTransition(string(status))
	return t, nil
}
