// Package metrics собирает prometheus метрики HTTP слоя и предметной области.
// Все методы безопасно вызывать на nil *Metrics, тогда они ничего не делают.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	urlCreationTotal   *prometheus.CounterVec
	urlAccessTotal     *prometheus.CounterVec
	codeCollisions     prometheus.Counter
	registrationsTotal *prometheus.CounterVec
	loginsTotal        *prometheus.CounterVec
	rateLimitedTotal   *prometheus.CounterVec
}

// New создает метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		}),
		urlCreationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "url_creation_total",
			Help: "Total number of short URL creation attempts",
		}, []string{"status"}),
		urlAccessTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "url_access_total",
			Help: "Total number of short URL resolutions",
		}, []string{"status"}),
		codeCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortener_code_collisions_total",
			Help: "Total number of generated short codes that were already taken",
		}),
		registrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_registrations_total",
			Help: "Total number of registration attempts",
		}, []string{"status"}),
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_logins_total",
			Help: "Total number of login attempts",
		}, []string{"status"}),
		rateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		}, []string{"path"}),
	}
	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestsInFlight,
		m.urlCreationTotal,
		m.urlAccessTotal,
		m.codeCollisions,
		m.registrationsTotal,
		m.loginsTotal,
		m.rateLimitedTotal,
	)
	return m
}

func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.httpRequestsInFlight.Inc()
}

// RequestFinished фиксирует завершенный запрос. path - шаблон маршрута, а не реальный путь.
func (m *Metrics) RequestFinished(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	s := strconv.Itoa(status)
	m.httpRequestsInFlight.Dec()
	m.httpRequestsTotal.WithLabelValues(method, path, s).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, s).Observe(duration.Seconds())
}

func (m *Metrics) URLCreated(ok bool) {
	if m == nil {
		return
	}
	m.urlCreationTotal.WithLabelValues(statusLabel(ok)).Inc()
}

func (m *Metrics) URLResolved(ok bool) {
	if m == nil {
		return
	}
	m.urlAccessTotal.WithLabelValues(statusLabel(ok)).Inc()
}

func (m *Metrics) CodeCollision() {
	if m == nil {
		return
	}
	m.codeCollisions.Inc()
}

func (m *Metrics) UserRegistered(ok bool) {
	if m == nil {
		return
	}
	m.registrationsTotal.WithLabelValues(statusLabel(ok)).Inc()
}

func (m *Metrics) LoginAttempt(ok bool) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(statusLabel(ok)).Inc()
}

func (m *Metrics) RateLimited(path string) {
	if m == nil {
		return
	}
	m.rateLimitedTotal.WithLabelValues(path).Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
