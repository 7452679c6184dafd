package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/fieldforce/internal/adapters/http/api"
	"github.com/okian/fieldforce/internal/adapters/mq/queue"
	"github.com/okian/fieldforce/internal/adapters/repository"
	"github.com/okian/fieldforce/internal/domain/dedupe"
	"github.com/okian/fieldforce/internal/domain/freshness"
	"github.com/okian/fieldforce/internal/domain/model"
	"github.com/okian/fieldforce/internal/domain/scope"
	"github.com/okian/fieldforce/internal/domain/tasks"
	"github.com/okian/fieldforce/internal/domain/team"
	"github.com/okian/fieldforce/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// mockDependencies returns canned results and records what it was asked.
type mockDependencies struct {
	dedupe.Deduper

	mu         sync.Mutex
	callers    map[string]scope.Caller
	fleet      freshness.Fleet
	totals     team.Totals
	rows       []team.MemberRow
	taskList   []model.Task
	updateErr  error
	enqueueErr error
	enqueued   []model.LocationSample
	history    []model.LocationSample

	lastScope  scope.Scope
	lastStatus model.TaskStatus
	lastWindow tasks.Window
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		Deduper: dedupe.NewInMemoryDeduper(),
		callers: map[string]scope.Caller{
			"1": {ID: "1", Role: model.RoleSalesperson},
			"3": {ID: "3", Role: model.RoleManager},
			"4": {ID: "4", Role: model.RoleAdmin},
		},
	}
}

func (m *mockDependencies) Caller(_ context.Context, id string) (scope.Caller, error) {
	c, ok := m.callers[id]
	if !ok {
		return scope.Caller{}, repository.ErrNotFound
	}
	return c, nil
}

func (m *mockDependencies) resolve(c scope.Caller, s scope.Scope) error {
	resolved, err := scope.Resolve(c, s)
	m.lastScope = resolved
	return err
}

func (m *mockDependencies) Fleet(_ context.Context, c scope.Caller, s scope.Scope) (freshness.Fleet, error) {
	if err := m.resolve(c, s); err != nil {
		return freshness.Fleet{}, err
	}
	return m.fleet, nil
}

func (m *mockDependencies) TeamTotals(_ context.Context, c scope.Caller, s scope.Scope) (team.Totals, error) {
	if err := m.resolve(c, s); err != nil {
		return team.Totals{}, err
	}
	return m.totals, nil
}

func (m *mockDependencies) TeamMembers(_ context.Context, c scope.Caller, s scope.Scope) ([]team.MemberRow, error) {
	if err := m.resolve(c, s); err != nil {
		return nil, err
	}
	return m.rows, nil
}

func (m *mockDependencies) ListTasks(_ context.Context, c scope.Caller, s scope.Scope, status model.TaskStatus, w tasks.Window) ([]model.Task, error) {
	if err := m.resolve(c, s); err != nil {
		return nil, err
	}
	m.lastStatus, m.lastWindow = status, w
	return tasks.Filter(m.taskList, status, w, now)
}

func (m *mockDependencies) TaskBoard(_ context.Context, c scope.Caller, s scope.Scope, w tasks.Window) (tasks.Board, error) {
	if err := m.resolve(c, s); err != nil {
		return tasks.Board{}, err
	}
	return tasks.NewBoard(m.taskList, w, now)
}

func (m *mockDependencies) CreateTask(_ context.Context, _ scope.Caller, t model.Task) (model.Task, error) {
	t.ID = "new-task"
	t.Status = model.TaskPending
	return t, nil
}

func (m *mockDependencies) UpdateTaskStatus(_ context.Context, _ scope.Caller, id string, status model.TaskStatus) (model.Task, error) {
	if m.updateErr != nil {
		return model.Task{}, m.updateErr
	}
	return model.Task{ID: id, Status: status}, nil
}

func (m *mockDependencies) Enqueue(_ context.Context, s model.LocationSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, s)
	return nil
}

func (m *mockDependencies) LocationHistory(_ context.Context, c scope.Caller, userID string, _, _ time.Time) ([]model.LocationSample, error) {
	if c.Role == model.RoleSalesperson && userID != c.ID {
		return nil, scope.ErrScopeNotPermitted
	}
	return m.history, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	_ = logger.Init()
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"queue_len": 0}},
		api.WithClock(func() time.Time { return now }),
		api.WithDefaultGeofenceRadius(1),
	)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, target, caller, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if caller != "" {
		req.Header.Set(api.CallerHeader, caller)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(newMockDependencies())

		Convey("When scraping health", func() {
			w := do(mux, "GET", "/healthz", "", "")

			Convey("Then Prometheus exposition is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "fieldforce_tracker_")
			})
		})

		Convey("When reading stats", func() {
			w := do(mux, "GET", "/stats", "", "")

			Convey("Then the provider's stats are returned as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				So(w.Body.String(), ShouldContainSubstring, "queue_len")
				So(w.Body.String(), ShouldContainSubstring, `"uptime_seconds":0`)
			})
		})

		Convey("When using the wrong method", func() {
			w := do(mux, "DELETE", "/fleet", "4", "")

			Convey("Then the mux rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestFleetHandler(t *testing.T) {
	Convey("Given a fleet endpoint", t, func() {
		deps := newMockDependencies()
		deps.fleet = freshness.Fleet{TeamSize: 4, Active: 2, Idle: 1, Offline: 1, InField: 3, InFieldPercent: 75}
		mux := newMux(deps)

		Convey("When the caller header is missing", func() {
			w := do(mux, "GET", "/fleet", "", "")

			Convey("Then 401 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
				So(errorCode(w), ShouldEqual, "unauthenticated")
			})
		})

		Convey("When the caller is unknown", func() {
			w := do(mux, "GET", "/fleet", "99", "")

			Convey("Then 401 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When a manager asks for all", func() {
			w := do(mux, "GET", "/fleet?scope=all", "3", "")

			Convey("Then 403 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusForbidden)
				So(errorCode(w), ShouldEqual, "forbidden")
			})
		})

		Convey("When the scope is unknown", func() {
			w := do(mux, "GET", "/fleet?scope=region", "4", "")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When an admin asks with the default scope", func() {
			w := do(mux, "GET", "/fleet", "4", "")

			Convey("Then the summary is returned for all", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastScope, ShouldEqual, scope.All)
				var got freshness.Fleet
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.InFieldPercent, ShouldEqual, 75)
				So(got.Active, ShouldEqual, 2)
			})
		})
	})
}

func TestTeamHandler(t *testing.T) {
	Convey("Given team data", t, func() {
		deps := newMockDependencies()
		deps.totals = team.Totals{Members: 2, TotalSales: 130000, TotalTarget: 170000, AchievementPercent: 76}
		deps.rows = []team.MemberRow{
			{UserID: "1", Name: "Rahul", SalesValue: 45000},
			{UserID: "2", Name: "Priya", SalesValue: 52000},
			{UserID: "5", Name: "Arjun", SalesValue: 28000},
		}
		mux := newMux(deps)

		Convey("When reading totals", func() {
			w := do(mux, "GET", "/team/totals", "3", "")

			Convey("Then the aggregate is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got team.Totals
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.AchievementPercent, ShouldEqual, 76)
				So(deps.lastScope, ShouldEqual, scope.Team)
			})
		})

		Convey("When listing members with no sort", func() {
			w := do(mux, "GET", "/team/members", "3", "")

			Convey("Then sales descending is applied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got struct {
					Sort    map[string]string `json:"sort"`
					Members []team.MemberRow  `json:"members"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Sort["key"], ShouldEqual, "salesValue")
				So(got.Sort["direction"], ShouldEqual, "desc")
				So(got.Members[0].UserID, ShouldEqual, "2")
				So(got.Members[2].UserID, ShouldEqual, "5")
			})
		})

		Convey("When toggling the active sort column", func() {
			w := do(mux, "GET", "/team/members?sort=name&dir=asc&toggle=name", "3", "")

			Convey("Then the direction flips", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got struct {
					Members []team.MemberRow `json:"members"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Members[0].Name, ShouldEqual, "Rahul")
				So(got.Members[2].Name, ShouldEqual, "Arjun")
			})
		})

		Convey("When sorting on an unknown key", func() {
			w := do(mux, "GET", "/team/members?sort=mood", "3", "")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})
	})
}

func TestTasksHandler(t *testing.T) {
	Convey("Given tasks around today", t, func() {
		deps := newMockDependencies()
		deps.taskList = []model.Task{
			{ID: "a", UserID: "1", Status: model.TaskPending, DueDate: now.Add(2 * time.Hour)},
			{ID: "b", UserID: "1", Status: model.TaskCompleted, DueDate: now.Add(3 * time.Hour)},
			{ID: "c", UserID: "1", Status: model.TaskPending, DueDate: now.Add(-48 * time.Hour)},
		}
		mux := newMux(deps)

		Convey("When listing today's pending tasks", func() {
			w := do(mux, "GET", "/tasks?window=today&status=pending", "1", "")

			Convey("Then the filter is applied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got struct {
					Count int          `json:"count"`
					Tasks []model.Task `json:"tasks"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Count, ShouldEqual, 1)
				So(got.Tasks[0].ID, ShouldEqual, "a")
				So(deps.lastWindow, ShouldEqual, tasks.WindowToday)
			})
		})

		Convey("When the window is unknown", func() {
			w := do(mux, "GET", "/tasks?window=month", "1", "")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When reading the overdue board", func() {
			w := do(mux, "GET", "/tasks/board?window=overdue", "1", "")

			Convey("Then only overdue tasks appear", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got tasks.Board
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(len(got.Pending), ShouldEqual, 1)
				So(got.Pending[0].ID, ShouldEqual, "c")
				So(got.Completed, ShouldBeEmpty)
			})
		})

		Convey("When creating a task", func() {
			w := do(mux, "POST", "/tasks", "3", `{"user_id":"1","title":"Visit","priority":"high","due_date":"2024-03-16T09:00"}`)

			Convey("Then 201 and the stored task are returned", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var got model.Task
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.ID, ShouldEqual, "new-task")
				So(got.Priority, ShouldEqual, model.PriorityHigh)
				So(got.DueDate.Equal(time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})

		Convey("When creating a task with a bad due date", func() {
			w := do(mux, "POST", "/tasks", "3", `{"user_id":"1","title":"Visit","due_date":"someday"}`)

			Convey("Then 400 invalid_timestamp is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "invalid_timestamp")
			})
		})

		Convey("When creating a task without a title", func() {
			w := do(mux, "POST", "/tasks", "3", `{"user_id":"1","due_date":"2024-03-16"}`)

			Convey("Then 400 bad_request is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})

		Convey("When advancing a task", func() {
			w := do(mux, "POST", "/tasks/a/status", "1", `{"status":"in-progress"}`)

			Convey("Then the updated task is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got model.Task
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.ID, ShouldEqual, "a")
				So(got.Status, ShouldEqual, model.TaskInProgress)
			})
		})

		Convey("When a transition is rejected", func() {
			deps.updateErr = tasks.ErrInvalidTransition
			w := do(mux, "POST", "/tasks/b/status", "1", `{"status":"pending"}`)

			Convey("Then 409 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(errorCode(w), ShouldEqual, "invalid_transition")
			})
		})

		Convey("When the task does not exist", func() {
			deps.updateErr = repository.ErrNotFound
			w := do(mux, "POST", "/tasks/zzz/status", "1", `{"status":"completed"}`)

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the status is missing", func() {
			w := do(mux, "POST", "/tasks/a/status", "1", `{}`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestLocationHandler(t *testing.T) {
	const body = `{"id":"s-1","lat":28.6139,"lng":77.2090,"timestamp":"2024-03-15T09:58:00Z","activity":"Visiting customer"}`

	Convey("Given a location endpoint", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("When a new sample is posted", func() {
			w := do(mux, "POST", "/locations", "1", body)

			Convey("Then it is accepted and enqueued for the caller", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(len(deps.enqueued), ShouldEqual, 1)
				So(deps.enqueued[0].UserID, ShouldEqual, "1")
				So(deps.enqueued[0].Activity, ShouldEqual, "Visiting customer")
			})
		})

		Convey("When the same sample is posted twice", func() {
			do(mux, "POST", "/locations", "1", body)
			w := do(mux, "POST", "/locations", "1", body)

			Convey("Then the retry is acknowledged as duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				So(len(deps.enqueued), ShouldEqual, 1)
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueErr = queue.ErrQueueFull
			w := do(mux, "POST", "/locations", "1", body)

			Convey("Then 429 is returned and the id can be retried", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(errorCode(w), ShouldEqual, "backpressure")

				deps.enqueueErr = nil
				retry := do(mux, "POST", "/locations", "1", body)
				So(retry.Code, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When the queue is closed", func() {
			deps.enqueueErr = queue.ErrQueueClosed
			w := do(mux, "POST", "/locations", "1", body)

			Convey("Then 503 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the timestamp is garbage", func() {
			w := do(mux, "POST", "/locations", "1", `{"lat":1,"lng":2,"timestamp":"soon"}`)

			Convey("Then 400 invalid_timestamp is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "invalid_timestamp")
			})
		})

		Convey("When coordinates are missing", func() {
			w := do(mux, "POST", "/locations", "1", `{"timestamp":"2024-03-15T09:58:00Z"}`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When coordinates are out of range", func() {
			for _, body := range []string{
				`{"lat":123,"lng":77.2,"timestamp":"2024-03-15T09:58:00Z"}`,
				`{"lat":28.6,"lng":-180.5,"timestamp":"2024-03-15T09:58:00Z"}`,
			} {
				w := do(mux, "POST", "/locations", "1", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			}

			Convey("Then nothing is enqueued or recorded as seen", func() {
				So(deps.enqueued, ShouldBeEmpty)
				So(deps.Size(), ShouldEqual, 0)
			})
		})

		Convey("When coordinates sit on the range limits", func() {
			w := do(mux, "POST", "/locations", "1", `{"lat":-90,"lng":180,"timestamp":"2024-03-15T09:58:00Z"}`)

			Convey("Then the sample is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When posting for another user", func() {
			w := do(mux, "POST", "/locations", "1", `{"user_id":"2","lat":1,"lng":2,"timestamp":"2024-03-15T09:58:00Z"}`)

			Convey("Then 403 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusForbidden)
			})
		})

		Convey("When no id is given", func() {
			w := do(mux, "POST", "/locations", "1", `{"lat":1,"lng":2,"timestamp":"2024-03-15T09:58:00Z"}`)

			Convey("Then one is assigned", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued[0].ID, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given a recorded route", t, func() {
		deps := newMockDependencies()
		deps.history = []model.LocationSample{
			{UserID: "1", Lat: 0, Lng: 0, Timestamp: now.Add(-time.Hour)},
			{UserID: "1", Lat: 0, Lng: 1, Timestamp: now.Add(-30 * time.Minute)},
		}
		mux := newMux(deps)

		Convey("When the owner reads it", func() {
			w := do(mux, "GET", "/locations/1/route?start=2024-03-15T08:00:00Z", "1", "")

			Convey("Then points and distance are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got struct {
					Samples    int           `json:"samples"`
					DistanceKm float64       `json:"distance_km"`
					Points     []model.Point `json:"points"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Samples, ShouldEqual, 2)
				So(got.DistanceKm, ShouldAlmostEqual, 111.195, 0.001)
				So(len(got.Points), ShouldEqual, 2)
			})
		})

		Convey("When another salesperson reads it", func() {
			deps.callers["2"] = scope.Caller{ID: "2", Role: model.RoleSalesperson}
			w := do(mux, "GET", "/locations/1/route", "2", "")

			Convey("Then 403 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusForbidden)
			})
		})

		Convey("When the bounds are inverted", func() {
			w := do(mux, "GET", "/locations/1/route?start=2024-03-15T09:00:00Z&end=2024-03-15T08:00:00Z", "1", "")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestGeoHandler(t *testing.T) {
	Convey("Given the geo helpers", t, func() {
		mux := newMux(newMockDependencies())

		Convey("When measuring Delhi to Mumbai", func() {
			w := do(mux, "GET", "/geo/distance?from=28.6139,77.2090&to=19.0760,72.8777", "", "")

			Convey("Then the haversine distance is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got struct {
					DistanceKm float64 `json:"distance_km"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.DistanceKm, ShouldAlmostEqual, 1148.09, 0.01)
			})
		})

		Convey("When checking a point near the center with the default radius", func() {
			w := do(mux, "GET", "/geo/geofence?point=28.6140,77.2091&center=28.6139,77.2090", "", "")

			Convey("Then it is inside", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"inside":true`)
				So(w.Body.String(), ShouldContainSubstring, `"radius_km":1`)
			})
		})

		Convey("When a point is malformed", func() {
			bad := do(mux, "GET", "/geo/distance?from=28.6&to=19,72", "", "")
			nan := do(mux, "GET", "/geo/distance?from=NaN,1&to=19,72", "", "")
			radius := do(mux, "GET", "/geo/geofence?point=1,1&center=1,1&radius_km=-2", "", "")

			Convey("Then 400 is returned", func() {
				So(bad.Code, ShouldEqual, http.StatusBadRequest)
				So(nan.Code, ShouldEqual, http.StatusBadRequest)
				So(radius.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given the API behind CORS", t, func() {
		h := api.CORS(newMux(newMockDependencies()), []string{"http://localhost:3000"})

		Convey("When an allowed origin calls", func() {
			req := httptest.NewRequest("GET", "/geo/distance?from=1,1&to=2,2", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then the origin is echoed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:3000")
			})
		})

		Convey("When another origin calls", func() {
			req := httptest.NewRequest("GET", "/geo/distance?from=1,1&to=2,2", nil)
			req.Header.Set("Origin", "https://evil.example.com")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then no allow header is sent", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given a wrapped API error", t, func() {
		cause := repository.ErrNotFound
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then kind and cause both match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: not found")
		})

		Convey("Then Wrap of nil stays nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})

		Convey("Then NewKind has no cause", func() {
			So(api.NewKind("api.op", api.ErrBackpressure).Error(), ShouldEqual, "api.op: backpressure")
		})
	})
}
