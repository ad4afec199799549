package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestObserveRPC(t *testing.T) {
	m := New(false)
	m.ObserveRPC("Login", "OK", 20*time.Millisecond)
	m.ObserveRPC("Login", "OK", 30*time.Millisecond)
	m.ObserveRPC("Login", "Unauthenticated", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RPCs.WithLabelValues("Login", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCs.WithLabelValues("Login", "Unauthenticated")))

	out := scrape(t, m)
	assert.Contains(t, out, "scheduler_rpc_requests_total")
	assert.Contains(t, out, "scheduler_rpc_duration_seconds_bucket")
}

func TestDomainCounters(t *testing.T) {
	m := New(false)
	m.Validations.WithLabelValues(OutcomeAccepted).Inc()
	m.Validations.WithLabelValues("CONFLICT").Inc()
	m.Saves.WithLabelValues("create").Inc()
	m.Deletes.Inc()
	m.WindowSize.Observe(12)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("CONFLICT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deletes))
	assert.Contains(t, scrape(t, m), "scheduler_appointments_window_rows_count 1")
}

func TestRuntimeCollectors(t *testing.T) {
	assert.Contains(t, scrape(t, New(true)), "go_goroutines")
}
