package api

import (
	"net/http"
	"time"
)

// StatsProvider reports service statistics for GET /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves provider stats plus handler uptime.
type StatsHandler struct {
	statsProvider StatsProvider
	now           func() time.Time
	started       time.Time
}

// NewStatsHandler creates a stats handler. A nil provider serves uptime only.
func NewStatsHandler(statsProvider StatsProvider, now func() time.Time) *StatsHandler {
	if now == nil {
		now = time.Now
	}
	return &StatsHandler{statsProvider: statsProvider, now: now, started: now()}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	out := map[string]interface{}{}
	if h.statsProvider != nil {
		for k, v := range h.statsProvider.GetStats() {
			out[k] = v
		}
	}
	out["uptime_seconds"] = int64(h.now().Sub(h.started) / time.Second)
	writeJSON(w, http.StatusOK, out)
}
