package api

import (
	"net/http"

	"github.com/okian/fieldforce/internal/domain/table"
	"github.com/okian/fieldforce/internal/domain/team"
)

// TeamHandler serves team totals and the sortable member table.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleGetTotals handles GET /team/totals?scope= requests.
func (h *TeamHandler) HandleGetTotals(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team_totals"
	c, s, err := callerScope(r, h.deps, op)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	totals, err := h.deps.TeamTotals(r.Context(), c, s)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

type membersResponse struct {
	Sort    table.State      `json:"sort"`
	Members []team.MemberRow `json:"members"`
}

// HandleGetMembers handles GET /team/members?scope=&sort=&dir=&toggle=.
// toggle applies a header click to the sort given by sort and dir.
func (h *TeamHandler) HandleGetMembers(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team_members"
	c, s, err := callerScope(r, h.deps, op)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	q := r.URL.Query()
	state, err := table.ParseState(q.Get("sort"), q.Get("dir"))
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	if key := q.Get("toggle"); key != "" {
		state = state.Toggle(key)
	}

	rows, err := h.deps.TeamMembers(r.Context(), c, s)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	sorted, err := table.Sort(rows, state)
	if err != nil {
		writeError(r.Context(), w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, membersResponse{Sort: state, Members: sorted})
}
