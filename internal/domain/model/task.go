package model

import "time"

// TaskStatus is a step in the task lifecycle.
type TaskStatus string

// Lifecycle steps in order.
const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// Stage returns the position of s in the lifecycle, or -1 if s is unknown.
func (s TaskStatus) Stage() int {
	switch s {
	case TaskPending:
		return 0
	case TaskInProgress:
		return 1
	case TaskCompleted:
		return 2
	}
	return -1
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool { return s.Stage() >= 0 }

// TaskPriority ranks tasks for display.
type TaskPriority string

// Known priorities.
const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of field work assigned to a user.
type Task struct {
	ID          string       `json:"id" koanf:"id"`
	UserID      string       `json:"user_id" koanf:"user_id"`
	Title       string       `json:"title" koanf:"title"`
	Status      TaskStatus   `json:"status" koanf:"status"`
	Priority    TaskPriority `json:"priority" koanf:"priority"`
	DueDate     time.Time    `json:"due_date" koanf:"due_date"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" koanf:"completed_at"`
}
