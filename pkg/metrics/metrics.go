// Package metrics provides Prometheus instrumentation for gatekeep components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gatekeep components.
type Registry struct {
	// Admission decision metrics
	AdmissionRequests *prometheus.CounterVec
	AdmissionAllowed  *prometheus.CounterVec
	AdmissionDenied   *prometheus.CounterVec

	// Limiter state metrics
	TokensAvailable *prometheus.GaugeVec
	QueueDepth      *prometheus.GaugeVec
	TrackedKeys     *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by gatekeep components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		AdmissionRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gatekeep",
				Subsystem: "admission",
				Name:      "requests_total",
				Help:      "Total number of admission requests",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		AdmissionAllowed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gatekeep",
				Subsystem: "admission",
				Name:      "allowed_total",
				Help:      "Total number of allowed requests",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		AdmissionDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gatekeep",
				Subsystem: "admission",
				Name:      "denied_total",
				Help:      "Total number of denied requests",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		TokensAvailable: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gatekeep",
				Subsystem: "admission",
				Name:      "tokens_available",
				Help:      "Number of tokens currently available",
			},
			[]string{"limiter_type", "limiter_name"},
		),

		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gatekeep",
				Subsystem: "admission",
				Name:      "queue_depth",
				Help:      "Number of admitted requests waiting to be drained",
			},
			[]string{"limiter_name"},
		),

		TrackedKeys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gatekeep",
				Subsystem: "admission",
				Name:      "tracked_keys",
				Help:      "Number of per-key limiters currently tracked",
			},
			[]string{"limiter_name"},
		),
	}
}
