// Package metrics provides Prometheus metrics for submissions and normalization.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the factlens collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	Failures         *prometheus.CounterVec
	ClaimsNormalized *prometheus.CounterVec
	ServiceDuration  prometheus.Histogram
	registry         *prometheus.Registry
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factlens_submissions_total",
			Help: "Total number of submissions by request kind.",
		}, []string{"kind"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factlens_submission_failures_total",
			Help: "Total number of failed submissions by error class.",
		}, []string{"class"}),
		ClaimsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factlens_claims_normalized_total",
			Help: "Total number of normalized claims by verdict category and recovery path.",
		}, []string{"category", "recovery"}),
		ServiceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "factlens_service_request_seconds",
			Help:    "Duration of fact-check backend calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}

	for _, c := range []prometheus.Collector{m.Submissions, m.Failures, m.ClaimsNormalized, m.ServiceDuration} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return m, nil
}

// MustNew is New for a fresh registry; it panics on registration errors.
func MustNew() *Metrics {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		panic(err)
	}
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Submission counts one submission of the given request kind.
func (m *Metrics) Submission(kind string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(kind).Inc()
}

// Failure counts one failed submission.
// class is one of validation, transport, service or busy.
func (m *Metrics) Failure(class string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(class).Inc()
}

// ClaimNormalized counts one normalized claim.
func (m *Metrics) ClaimNormalized(category, recovery string) {
	if m == nil {
		return
	}
	m.ClaimsNormalized.WithLabelValues(category, recovery).Inc()
}

// ObserveService records the duration of one backend call.
func (m *Metrics) ObserveService(d time.Duration) {
	if m == nil {
		return
	}
	m.ServiceDuration.Observe(d.Seconds())
}
