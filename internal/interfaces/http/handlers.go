package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/quality/tracker"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/telemetry"
)

// Handlers serves the read-only monitoring endpoints
type Handlers struct {
	tracker *tracker.Tracker
	started time.Time
}

// NewHandlers creates handlers backed by the given tracker
func NewHandlers(qt *tracker.Tracker) *Handlers {
	return &Handlers{
		tracker: qt,
		started: time.Now().UTC(),
	}
}

// healthResponse is the operator-facing health view: silent degradation
// (sanitized input, weight fallback, neutral defaults, log drops) stays
// observable through these counters.
type healthResponse struct {
	Status    string                   `json:"status"`
	UptimeSec float64                  `json:"uptime_seconds"`
	Counters  telemetry.HealthCounters `json:"counters"`
	Tracker   trackerHealth            `json:"tracker"`
}

type trackerHealth struct {
	Written    uint64 `json:"written"`
	Drops      uint64 `json:"drops"`
	SinkErrors uint64 `json:"sink_errors"`
}

// Health reports diagnostic counters and tracker state
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		UptimeSec: time.Since(h.started).Seconds(),
		Counters:  telemetry.GetMetrics().Snapshot(),
	}
	if h.tracker != nil {
		resp.Tracker = trackerHealth{
			Written:    h.tracker.Written(),
			Drops:      h.tracker.Drops(),
			SinkErrors: h.tracker.SinkErrors(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats serves windowed aggregate statistics from the quality log.
// Query params: window (Go duration, default 24h), symbol (optional).
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil {
		writeError(w, http.StatusServiceUnavailable, "quality tracker not running")
		return
	}

	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	agg, err := h.tracker.Statistics(window, r.URL.Query().Get("symbol"))
	if err != nil {
		log.Error().Err(err).Msg("Statistics scan failed")
		writeError(w, http.StatusInternalServerError, "statistics scan failed")
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// Effectiveness serves the filtered-vs-passed comparison report
func (h *Handlers) Effectiveness(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil {
		writeError(w, http.StatusServiceUnavailable, "quality tracker not running")
		return
	}

	window, ok := parseWindow(w, r)
	if !ok {
		return
	}

	report, err := h.tracker.FilterEffectiveness(window)
	if err != nil {
		log.Error().Err(err).Msg("Effectiveness scan failed")
		writeError(w, http.StatusInternalServerError, "effectiveness scan failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func parseWindow(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return 24 * time.Hour, true
	}

	window, err := time.ParseDuration(raw)
	if err != nil || window <= 0 {
		writeError(w, http.StatusBadRequest, "invalid window, expected a positive Go duration like 24h")
		return 0, false
	}
	return window, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
