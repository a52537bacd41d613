package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/confluence"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/domain/quality"
	"github.com/virtexvirtuoso/Virtuoso-sub006/internal/quality/tracker"
)

func newTestTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	qt, err := tracker.New(tracker.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	return qt
}

func TestHealthEndpoint(t *testing.T) {
	qt := newTestTracker(t)
	defer qt.Close()

	handlers := NewHandlers(qt)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handlers.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "counters")
	assert.Contains(t, resp, "tracker")
}

func TestStatsEndpoint(t *testing.T) {
	qt := newTestTracker(t)

	qt.RecordEvaluation("BTC-USD",
		confluence.Result{Score: 60, ScoreBase: 65, Confidence: 0.6},
		quality.Decision{Filtered: false, Reason: quality.ReasonNone})
	require.NoError(t, qt.Close())

	handlers := NewHandlers(qt)
	req := httptest.NewRequest(http.MethodGet, "/stats?window=1h", nil)
	rec := httptest.NewRecorder()

	handlers.Stats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var agg tracker.Aggregate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agg))
	assert.Equal(t, 1, agg.Count)
	assert.Equal(t, time.Hour, agg.Window)
}

func TestStatsEndpoint_InvalidWindow(t *testing.T) {
	qt := newTestTracker(t)
	defer qt.Close()

	handlers := NewHandlers(qt)
	req := httptest.NewRequest(http.MethodGet, "/stats?window=banana", nil)
	rec := httptest.NewRecorder()

	handlers.Stats(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEffectivenessEndpoint(t *testing.T) {
	qt := newTestTracker(t)

	qt.RecordEvaluation("BTC-USD",
		confluence.Result{Score: 60, ScoreBase: 65, Confidence: 0.7},
		quality.Decision{Filtered: false, Reason: quality.ReasonNone})
	qt.RecordEvaluation("BTC-USD",
		confluence.Result{Score: 50.5, ScoreBase: 52, Confidence: 0.1},
		quality.Decision{Filtered: true, Reason: quality.ReasonLowConfidence})
	require.NoError(t, qt.Close())

	handlers := NewHandlers(qt)
	req := httptest.NewRequest(http.MethodGet, "/effectiveness?window=1h", nil)
	rec := httptest.NewRecorder()

	handlers.Effectiveness(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var report tracker.EffectivenessReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Passed.Count)
	assert.Equal(t, 1, report.Filtered.Count)
	assert.True(t, report.Separating)
}

func TestEndpointsWithoutTracker(t *testing.T) {
	handlers := NewHandlers(nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	handlers.Stats(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	handlers.Health(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "health stays up even without a tracker")
}
