package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/fieldforce/internal/domain/geo"
	"github.com/okian/fieldforce/internal/domain/model"
)

// GeoHandler serves the stateless distance and geofence helpers.
type GeoHandler struct {
	defaultRadiusKm float64
}

// NewGeoHandler creates a new geo handler.
func NewGeoHandler(defaultRadiusKm float64) *GeoHandler {
	return &GeoHandler{defaultRadiusKm: defaultRadiusKm}
}

// parsePoint reads a "lat,lng" query value.
func parsePoint(name, raw string) (model.Point, error) {
	latS, lngS, ok := strings.Cut(raw, ",")
	if !ok {
		return model.Point{}, fmt.Errorf("%w: %s must be lat,lng", ErrBadRequest, name)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("%w: %s latitude: %w", ErrBadRequest, name, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngS), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("%w: %s longitude: %w", ErrBadRequest, name, err)
	}
	if !finite(lat) || !finite(lng) {
		return model.Point{}, fmt.Errorf("%w: %s must be finite", ErrBadRequest, name)
	}
	return model.Point{Lat: lat, Lng: lng}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type distanceResponse struct {
	From       model.Point `json:"from"`
	To         model.Point `json:"to"`
	DistanceKm float64     `json:"distance_km"`
}

// HandleDistance handles GET /geo/distance?from=lat,lng&to=lat,lng requests.
func (h *GeoHandler) HandleDistance(w http.ResponseWriter, r *http.Request) {
	const op = "api.geo_distance"
	q := r.URL.Query()
	from, err := parsePoint("from", q.Get("from"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	to, err := parsePoint("to", q.Get("to"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, distanceResponse{From: from, To: to, DistanceKm: geo.Distance(from, to)})
}

type geofenceResponse struct {
	Point      model.Point `json:"point"`
	Center     model.Point `json:"center"`
	RadiusKm   float64     `json:"radius_km"`
	DistanceKm float64     `json:"distance_km"`
	Inside     bool        `json:"inside"`
}

// HandleGeofence handles GET /geo/geofence?point=&center=&radius_km= requests.
func (h *GeoHandler) HandleGeofence(w http.ResponseWriter, r *http.Request) {
	const op = "api.geo_geofence"
	q := r.URL.Query()
	point, err := parsePoint("point", q.Get("point"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	center, err := parsePoint("center", q.Get("center"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	radius := h.defaultRadiusKm
	if raw := q.Get("radius_km"); raw != "" {
		if radius, err = strconv.ParseFloat(raw, 64); err != nil || radius < 0 || !finite(radius) {
			if err == nil {
				err = errors.New("radius must be a non-negative number")
			}
			writeError(r.Context(), w, WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	writeJSON(w, http.StatusOK, geofenceResponse{
		Point:      point,
		Center:     center,
		RadiusKm:   radius,
		DistanceKm: geo.Distance(point, center),
		Inside:     geo.WithinGeofence(point, center, radius),
	})
}
