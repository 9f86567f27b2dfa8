// Package metrics defines the Prometheus collectors of the launch service.
//
// Metric naming follows Prometheus conventions:
//   - lti_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for ValidationsTotal.
const (
	OutcomeAccepted         = "accepted"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeInvalidNonce     = "invalid_nonce"
	OutcomeInvalidTimestamp = "invalid_timestamp"
	OutcomeNonceReused      = "nonce_reused"
	OutcomeExpired          = "timestamp_expired"
	OutcomeUnknownConsumer  = "unknown_consumer"
	OutcomeConfiguration    = "configuration"
	OutcomeStoreError       = "store_error"
)

// Metrics holds the service collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	// ValidationsTotal counts launch validations by outcome.
	ValidationsTotal *prometheus.CounterVec
	// ValidationDuration observes the time spent validating a launch.
	ValidationDuration prometheus.Histogram
	// NoncesPurgedTotal counts rows removed by the retention sweeper.
	NoncesPurgedTotal prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lti_launch_validations_total",
				Help: "Total LTI launch validations by outcome.",
			},
			[]string{"outcome"},
		),
		ValidationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lti_launch_validation_duration_seconds",
				Help:    "Duration of LTI launch validation in seconds.",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		NoncesPurgedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lti_nonces_purged_total",
				Help: "Total nonce rows removed by the retention sweeper.",
			},
		),
	}

	m.registry.MustRegister(
		m.ValidationsTotal,
		m.ValidationDuration,
		m.NoncesPurgedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveValidation records one validation result.
func (m *Metrics) ObserveValidation(outcome string, elapsed time.Duration) {
	m.ValidationsTotal.WithLabelValues(outcome).Inc()
	m.ValidationDuration.Observe(elapsed.Seconds())
}

// Outcome classifies a validation error into an outcome label.
// A nil error is OutcomeAccepted; errors outside the oauth1 taxonomy are
// OutcomeStoreError.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, oauth1.ErrInvalidSignature):
		return OutcomeInvalidSignature
	case errors.Is(err, oauth1.ErrInvalidNonce):
		return OutcomeInvalidNonce
	case errors.Is(err, oauth1.ErrInvalidTimestamp):
		return OutcomeInvalidTimestamp
	case errors.Is(err, oauth1.ErrNonceReused):
		return OutcomeNonceReused
	case errors.Is(err, oauth1.ErrTimestampExpired):
		return OutcomeExpired
	case errors.Is(err, oauth1.ErrConfiguration):
		return OutcomeConfiguration
	}
	return OutcomeStoreError
}
