// Package tasks implements the task board projections: status and due-date
// window filtering, and lifecycle transition checks.
package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/fieldforce/internal/domain/model"
)

// Window selects tasks by due date relative to now.
type Window string

// Supported windows.
const (
	WindowAll     Window = "all"
	WindowToday   Window = "today"
	WindowWeek    Window = "week"
	WindowOverdue Window = "overdue"
)

// ParseWindow maps a query value to a Window. Empty means all.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case "", WindowAll:
		return WindowAll, nil
	case WindowToday, WindowWeek, WindowOverdue:
		return w, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
}

// ParseStatus maps a query value to a task status. Empty returns "", which
// Filter treats as any status.
func ParseStatus(s string) (model.TaskStatus, error) {
	st := model.TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return "", nil
	}
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Bounds are the fixed window edges derived from a single instant.
type Bounds struct {
	TodayStart time.Time
	TodayEnd   time.Time
	WeekEnd    time.Time
}

// NewBounds computes the window edges for now in now's location. TodayEnd is
// the last representable instant of the day.
func NewBounds(now time.Time) Bounds {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return Bounds{
		TodayStart: start,
		TodayEnd:   start.AddDate(0, 0, 1).Add(-time.Nanosecond),
		WeekEnd:    now.AddDate(0, 0, 7),
	}
}

// Contains reports whether due falls in w.
func (b Bounds) Contains(w Window, due time.Time) bool {
	switch w {
	case WindowToday:
		return !due.Before(b.TodayStart) && !due.After(b.TodayEnd)
	case WindowWeek:
		return !due.Before(b.TodayStart) && !due.After(b.WeekEnd)
	case WindowOverdue:
		return due.Before(b.TodayStart)
	default:
		return true
	}
}

// Filter keeps tasks with the given status ("" for any) whose due date falls
// in w. Window edges are computed once from now, so every element is judged
// against the same bounds.
func Filter(tasks []model.Task, status model.TaskStatus, w Window, now time.Time) ([]model.Task, error) {
	b := NewBounds(now)
	out := make([]model.Task, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if status != "" && t.Status != status {
			continue
		}
		if w != WindowAll && t.DueDate.IsZero() {
			return nil, fmt.Errorf("task %s: %w: missing due date", t.ID, ErrInvalidTimestamp)
		}
		if b.Contains(w, t.DueDate) {
			out = append(out, *t)
		}
	}
	return out, nil
}

// Board holds the three status columns of the task screen.
type Board struct {
	Window     Window       `json:"window"`
	Pending    []model.Task `json:"pending"`
	InProgress []model.Task `json:"in_progress"`
	Completed  []model.Task `json:"completed"`
}

// NewBoard filters tasks into the three status columns for w.
func NewBoard(tasks []model.Task, w Window, now time.Time) (Board, error) {
	board := Board{Window: w}
	var err error
	if board.Pending, err = Filter(tasks, model.TaskPending, w, now); err != nil {
		return Board{}, err
	}
	if board.InProgress, err = Filter(tasks, model.TaskInProgress, w, now); err != nil {
		return Board{}, err
	}
	if board.Completed, err = Filter(tasks, model.TaskCompleted, w, now); err != nil {
		return Board{}, err
	}
	return board, nil
}

// ValidateTransition rejects unknown statuses and any move backwards in the
// lifecycle. Staying in place is allowed.
func ValidateTransition(from, to model.TaskStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if !from.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if to.Stage() < from.Stage() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Apply moves t to status at now, stamping CompletedAt on completion.
func Apply(t model.Task, status model.TaskStatus, now time.Time) (model.Task, error) {
	if err := ValidateTransition(t.Status, status); err != nil {
		return model.Task{}, err
	}
	if status == model.TaskCompleted && t.Status != model.TaskCompleted {
		at := now
		t.CompletedAt = &at
	}
	t.Status = status
	return t, nil
}
