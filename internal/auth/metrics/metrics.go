// Package metrics holds the Prometheus instruments of the auth service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeTokenInvalid       = "token_invalid"
	OutcomeTokenRevoked       = "token_revoked"
	OutcomeIdentityGone       = "identity_gone"
	OutcomeError              = "error"
)

type Metrics struct {
	reg *prometheus.Registry

	logins    *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	logouts   *prometheus.CounterVec
	storeDur  *prometheus.HistogramVec
	swept     prometheus.Counter
}

// New registers all instruments, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_auth_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_auth_refreshes_total",
			Help: "Refresh attempts by outcome.",
		}, []string{"outcome"}),
		logouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quill_auth_logouts_total",
			Help: "Logouts by whether a stored refresh token was revoked.",
		}, []string{"revoked"}),
		storeDur: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quill_auth_token_store_duration_seconds",
			Help:    "Latency of refresh token store calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "result"}),
		swept: f.NewCounter(prometheus.CounterOpts{
			Name: "quill_auth_token_store_swept_total",
			Help: "Expired entries removed by housekeeping.",
		}),
	}
}

// A nil *Metrics is valid and records nothing, so services can run without one.

func (m *Metrics) Login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Refresh(outcome string) {
	if m != nil {
		m.refreshes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Logout(revoked bool) {
	if m == nil {
		return
	}
	label := "false"
	if revoked {
		label = "true"
	}
	m.logouts.WithLabelValues(label).Inc()
}

// ObserveStore records one token store call that started at start.
func (m *Metrics) ObserveStore(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeDur.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Swept(n int) {
	if m != nil {
		m.swept.Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }
