// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/okian/fieldforce/internal/domain/dedupe"
	"github.com/okian/fieldforce/internal/domain/freshness"
	"github.com/okian/fieldforce/internal/domain/model"
	"github.com/okian/fieldforce/internal/domain/scope"
	"github.com/okian/fieldforce/internal/domain/tasks"
	"github.com/okian/fieldforce/internal/domain/team"
	"github.com/okian/fieldforce/pkg/logger"
)

// CallerHeader carries the declared identity of the caller.
const CallerHeader = "X-User-ID"

// CallerResolver turns a declared user id into a Caller with its role.
type CallerResolver interface {
	Caller(ctx context.Context, userID string) (scope.Caller, error)
}

// FleetDependencies serve the freshness view.
type FleetDependencies interface {
	CallerResolver
	Fleet(ctx context.Context, c scope.Caller, s scope.Scope) (freshness.Fleet, error)
}

// TeamDependencies serve aggregated and per-member metrics.
type TeamDependencies interface {
	CallerResolver
	TeamTotals(ctx context.Context, c scope.Caller, s scope.Scope) (team.Totals, error)
	TeamMembers(ctx context.Context, c scope.Caller, s scope.Scope) ([]team.MemberRow, error)
}

// TaskDependencies serve task listing and lifecycle changes.
type TaskDependencies interface {
	CallerResolver
	ListTasks(ctx context.Context, c scope.Caller, s scope.Scope, status model.TaskStatus, w tasks.Window) ([]model.Task, error)
	TaskBoard(ctx context.Context, c scope.Caller, s scope.Scope, w tasks.Window) (tasks.Board, error)
	CreateTask(ctx context.Context, c scope.Caller, t model.Task) (model.Task, error)
	UpdateTaskStatus(ctx context.Context, c scope.Caller, id string, status model.TaskStatus) (model.Task, error)
}

// LocationDependencies serve location ingestion and history.
type LocationDependencies interface {
	CallerResolver
	dedupe.Deduper

	// Enqueue pushes a sample for async storage.
	Enqueue(ctx context.Context, s model.LocationSample) error
	LocationHistory(ctx context.Context, c scope.Caller, userID string, start, end time.Time) ([]model.LocationSample, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	FleetDependencies
	TeamDependencies
	TaskDependencies
	LocationDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	fleetHandler    *FleetHandler
	teamHandler     *TeamHandler
	tasksHandler    *TasksHandler
	locationHandler *LocationHandler
	geoHandler      *GeoHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider, o.now),
		fleetHandler:    NewFleetHandler(deps),
		teamHandler:     NewTeamHandler(deps),
		tasksHandler:    NewTasksHandler(deps, o.now),
		locationHandler: NewLocationHandler(deps, o.now),
		geoHandler:      NewGeoHandler(o.defaultRadiusKm),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /fleet", MetricsMiddleware(s.fleetHandler.HandleGetFleet, "fleet"))
	mux.HandleFunc("GET /team/totals", MetricsMiddleware(s.teamHandler.HandleGetTotals, "team_totals"))
	mux.HandleFunc("GET /team/members", MetricsMiddleware(s.teamHandler.HandleGetMembers, "team_members"))
	mux.HandleFunc("GET /tasks", MetricsMiddleware(s.tasksHandler.HandleListTasks, "tasks"))
	mux.HandleFunc("GET /tasks/board", MetricsMiddleware(s.tasksHandler.HandleGetBoard, "tasks_board"))
	mux.HandleFunc("POST /tasks", MetricsMiddleware(s.tasksHandler.HandleCreateTask, "tasks_create"))
	mux.HandleFunc("POST /tasks/{id}/status", MetricsMiddleware(s.tasksHandler.HandleUpdateStatus, "tasks_status"))
	mux.HandleFunc("POST /locations", MetricsMiddleware(s.locationHandler.HandlePostLocation, "locations"))
	mux.HandleFunc("GET /locations/{userId}/route", MetricsMiddleware(s.locationHandler.HandleGetRoute, "locations_route"))
	mux.HandleFunc("GET /geo/distance", MetricsMiddleware(s.geoHandler.HandleDistance, "geo_distance"))
	mux.HandleFunc("GET /geo/geofence", MetricsMiddleware(s.geoHandler.HandleGeofence, "geo_geofence"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes it. Server errors are logged.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(ctx, "request failed", logger.Int("status", status), logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// callerScope resolves the caller from the request header and the scope they
// asked for.
func callerScope(r *http.Request, deps CallerResolver, op string) (scope.Caller, scope.Scope, error) {
	c, err := callerFrom(r, deps, op)
	if err != nil {
		return scope.Caller{}, "", err
	}
	s, err := scope.Parse(r.URL.Query().Get("scope"))
	if err != nil {
		return scope.Caller{}, "", Wrap(op, err)
	}
	return c, s, nil
}

func callerFrom(r *http.Request, deps CallerResolver, op string) (scope.Caller, error) {
	id := strings.TrimSpace(r.Header.Get(CallerHeader))
	if id == "" {
		return scope.Caller{}, NewKind(op, ErrUnauthenticated)
	}
	c, err := deps.Caller(r.Context(), id)
	if err != nil {
		return scope.Caller{}, WrapKind(op, ErrUnauthenticated, err)
	}
	return c, nil
}
