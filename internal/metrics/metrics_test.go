package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CodeCollision()
	m.CodeCollision()
	m.URLCreated(true)
	m.URLResolved(false)
	m.LoginAttempt(false)
	m.RequestStarted()
	m.RequestFinished(http.MethodGet, "/:code", http.StatusTemporaryRedirect, 10*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.codeCollisions), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.urlCreationTotal.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.urlAccessTotal.WithLabelValues("error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.loginsTotal.WithLabelValues("error")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.httpRequestsInFlight), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/:code", "307")), 0)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CodeCollision()
		m.URLCreated(true)
		m.URLResolved(true)
		m.UserRegistered(true)
		m.LoginAttempt(true)
		m.RateLimited("/login")
		m.RequestStarted()
		m.RequestFinished(http.MethodGet, "/", http.StatusOK, time.Second)
	})
}
