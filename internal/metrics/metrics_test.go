package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveResolution(t *testing.T) {
	m := New()
	m.ObserveResolution("both", "ok", 2*time.Millisecond)
	m.ObserveResolution("both", "ok", time.Millisecond)
	m.ObserveResolution("right", "evaluation_error", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolutions.WithLabelValues("both", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("right", "evaluation_error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestObserveToolCall(t *testing.T) {
	m := New()
	m.ObserveToolCall("limit", false)
	m.ObserveToolCall("limit", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("limit", "true")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveResolution("both", "ok", time.Second)
		m.ObserveToolCall("parse", false)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveResolution("left", "ok", time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `golimit_resolutions_total{outcome="ok",side="left"} 1`))
}
