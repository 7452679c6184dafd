package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fieldforce/internal/domain/geo"
	"github.com/okian/fieldforce/internal/domain/model"
	"github.com/okian/fieldforce/pkg/metrics"
)

// LocationHandler ingests samples and serves route history.
type LocationHandler struct {
	deps LocationDependencies
	now  func() time.Time
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(deps LocationDependencies, now func() time.Time) *LocationHandler {
	return &LocationHandler{deps: deps, now: now}
}

// locationRequest mirrors the OpenAPI schema for POST /locations.
type locationRequest struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Timestamp string   `json:"timestamp"`
	Activity  string   `json:"activity"`
	Accuracy  *float64 `json:"accuracy"`
}

// toSample validates the request for callerID. Zone-less timestamps are read
// in loc.
func (req locationRequest) toSample(callerID string, loc *time.Location) (model.LocationSample, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = callerID
	}
	if userID != callerID {
		return model.LocationSample{}, fmt.Errorf("%w: samples may only be posted for the caller", ErrForbidden)
	}
	if req.Lat == nil || req.Lng == nil {
		return model.LocationSample{}, fmt.Errorf("%w: missing lat or lng", ErrBadRequest)
	}
	if p := (model.Point{Lat: *req.Lat, Lng: *req.Lng}); !p.Valid() {
		return model.LocationSample{}, fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrBadRequest, p.Lat, p.Lng)
	}
	ts, err := model.ParseTimestamp(req.Timestamp, loc)
	if err != nil {
		return model.LocationSample{}, err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return model.LocationSample{
		ID:        id,
		UserID:    userID,
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		Timestamp: ts,
		Activity:  req.Activity,
		Accuracy:  req.Accuracy,
	}, nil
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostLocation handles POST /locations requests.
func (h *LocationHandler) HandlePostLocation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_location"
	ctx := r.Context()
	c, err := callerFrom(r, h.deps, op)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	s, err := req.toSample(c.ID, h.now().Location())
	if err != nil {
		if errors.Is(err, model.ErrInvalidTimestamp) {
			metrics.RecordInvalidTimestamp()
		}
		metrics.RecordSampleRejected("validation")
		writeError(ctx, w, Wrap(op, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(ctx, s.ID) {
		metrics.RecordSampleDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: s.ID, Duplicate: true})
		return
	}
	if err := h.deps.Enqueue(ctx, s); err != nil {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(ctx, s.ID)
		metrics.RecordSampleRejected("backpressure")
		writeError(ctx, w, Wrap(op, err))
		return
	}
	metrics.RecordSampleAccepted()
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: s.ID})
}

type routeResponse struct {
	UserID     string        `json:"user_id"`
	Samples    int           `json:"samples"`
	DistanceKm float64       `json:"distance_km"`
	Points     []model.Point `json:"points"`
}

// HandleGetRoute handles GET /locations/{userId}/route?start=&end= requests.
// Both bounds are optional and inclusive.
func (h *LocationHandler) HandleGetRoute(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_route"
	ctx := r.Context()
	c, err := callerFrom(r, h.deps, op)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	loc := h.now().Location()
	var start, end time.Time
	q := r.URL.Query()
	if raw := q.Get("start"); raw != "" {
		if start, err = model.ParseTimestamp(raw, loc); err != nil {
			writeError(ctx, w, Wrap(op, err))
			return
		}
	}
	if raw := q.Get("end"); raw != "" {
		if end, err = model.ParseTimestamp(raw, loc); err != nil {
			writeError(ctx, w, Wrap(op, err))
			return
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		writeError(ctx, w, WrapKind(op, ErrBadRequest, errors.New("end before start")))
		return
	}

	userID := r.PathValue("userId")
	history, err := h.deps.LocationHistory(ctx, c, userID, start, end)
	if err != nil {
		writeError(ctx, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{
		UserID:     userID,
		Samples:    len(history),
		DistanceKm: geo.RouteDistanceKm(history),
		Points:     geo.Route(history),
	})
}
