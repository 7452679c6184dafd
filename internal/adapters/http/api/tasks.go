package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/fieldforce/internal/domain/model"
	"github.com/okian/fieldforce/internal/domain/tasks"
)

// TasksHandler serves task listing and lifecycle changes.
type TasksHandler struct {
	deps TaskDependencies
	now  func() time.Time
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(deps TaskDependencies, now func() time.Time) *TasksHandler {
	return &TasksHandler{deps: deps, now: now}
}

type tasksResponse struct {
	Window tasks.Window     `json:"window"`
	Status model.TaskStatus `json:"status,omitempty"`
	Count  int              `json:"count"`
	Tasks  []model.Task     `json:"tasks"`
}

// HandleListTasks handles GET /tasks?scope=&status=&window= requests.
func (h *TasksHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_tasks"
	c, s, err := callerScope(r, h.deps, op)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	q := r.URL.Query()
	win, err := tasks.ParseWindow(q.Get("window"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	status, err := tasks.ParseStatus(q.Get("status"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	list, err := h.deps.ListTasks(r.Context(), c, s, status, win)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, tasksResponse{Window: win, Status: status, Count: len(list), Tasks: list})
}

// HandleGetBoard handles GET /tasks/board?scope=&window= requests.
func (h *TasksHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	const op = "api.task_board"
	c, s, err := callerScope(r, h.deps, op)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	win, err := tasks.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	board, err := h.deps.TaskBoard(r.Context(), c, s, win)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// createTaskRequest mirrors the OpenAPI schema for POST /tasks.
type createTaskRequest struct {
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date"`
}

func (req createTaskRequest) toTask(loc *time.Location) (model.Task, error) {
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return model.Task{}, errors.New("missing user_id")
	case strings.TrimSpace(req.Title) == "":
		return model.Task{}, errors.New("missing title")
	}
	due, err := model.ParseTimestamp(req.DueDate, loc)
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{
		UserID:   strings.TrimSpace(req.UserID),
		Title:    req.Title,
		Priority: model.TaskPriority(strings.ToLower(strings.TrimSpace(req.Priority))),
		DueDate:  due,
	}, nil
}

// HandleCreateTask handles POST /tasks requests.
func (h *TasksHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_task"
	c, err := callerFrom(r, h.deps, op)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	t, err := req.toTask(h.now().Location())
	if err != nil {
		if errors.Is(err, model.ErrInvalidTimestamp) {
			writeError(r.Context(), w, Wrap(op, err))
			return
		}
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	created, err := h.deps.CreateTask(r.Context(), c, t)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus handles POST /tasks/{id}/status requests.
func (h *TasksHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_task_status"
	c, err := callerFrom(r, h.deps, op)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	status, err := tasks.ParseStatus(req.Status)
	if err != nil || status == "" {
		if err == nil {
			err = errors.New("missing status")
		}
		writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	updated, err := h.deps.UpdateTaskStatus(r.Context(), c, r.PathValue("id"), status)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
