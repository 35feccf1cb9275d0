package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuditWritten("animals")
		m.AuditFailed("animals")
		m.ApplicationTransition("Approved", "staff")
		m.CapacityRejected()
		m.ObserveRequest("GET", "/animals", 200, time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := New()
	m.AuditWritten("animals")
	m.AuditWritten("animals")
	m.AuditFailed("adopters")
	m.ApplicationTransition("Rejected", "auto")
	m.CapacityRejected()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuditWrites("animals", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuditWrites("adopters", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Transitions("Rejected", "auto")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CapacityRejections()))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.CapacityRejected()

	ts := httptest.NewServer(m.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "sanctuary_habitat_capacity_rejections_total 1")
}
