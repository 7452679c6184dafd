package api

import (
	"net/http"
)

// FleetHandler serves the freshness summary.
type FleetHandler struct {
	deps FleetDependencies
}

// NewFleetHandler creates a new fleet handler.
func NewFleetHandler(deps FleetDependencies) *FleetHandler {
	return &FleetHandler{deps: deps}
}

// HandleGetFleet handles GET /fleet?scope= requests.
func (h *FleetHandler) HandleGetFleet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_fleet"
	c, s, err := callerScope(r, h.deps, op)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	fleet, err := h.deps.Fleet(r.Context(), c, s)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, fleet)
}
