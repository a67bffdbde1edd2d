package leakybucket

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smalhotra/gatekeep/pkg/metrics"
)

const limiterType = "leaky_bucket"

// MetricsLimiter wraps a Limiter with Prometheus metrics collection.
type MetricsLimiter struct {
	limiter  Limiter
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a new leaky bucket limiter with metrics enabled.
func NewWithMetrics(capacity, leakRate int, name string) (Limiter, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{
		Capacity: capacity,
		LeakRate: leakRate,
	}, name, config)
}

// NewWithConfigAndMetrics creates a new leaky bucket limiter with custom config and metrics.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Limiter, error) {
	baseLimiter, err := NewWithConfigSafe(config)
	if err != nil {
		return nil, err
	}

	if !metricsConfig.Enabled {
		return baseLimiter, nil
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	return &MetricsLimiter{
		limiter:  baseLimiter,
		name:     name,
		registry: registry,
		enabled:  true,
	}, nil
}

// Allow reports whether one request may be admitted now.
func (ml *MetricsLimiter) Allow() bool {
	return ml.AllowN(1)
}

// AllowN reports whether n requests may be admitted now.
func (ml *MetricsLimiter) AllowN(n int) bool {
	if ml.enabled {
		ml.registry.AdmissionRequests.WithLabelValues(limiterType, ml.name).Add(float64(n))
	}

	allowed := ml.limiter.AllowN(n)

	if ml.enabled {
		if allowed {
			ml.registry.AdmissionAllowed.WithLabelValues(limiterType, ml.name).Add(float64(n))
		} else {
			ml.registry.AdmissionDenied.WithLabelValues(limiterType, ml.name).Add(float64(n))
		}
		ml.registry.QueueDepth.WithLabelValues(ml.name).Set(float64(ml.limiter.Len()))
	}

	return allowed
}

// Len returns the number of admitted requests waiting to be drained.
func (ml *MetricsLimiter) Len() int {
	depth := ml.limiter.Len()

	if ml.enabled {
		ml.registry.QueueDepth.WithLabelValues(ml.name).Set(float64(depth))
	}

	return depth
}

// Capacity returns the maximum queue length.
func (ml *MetricsLimiter) Capacity() int {
	return ml.limiter.Capacity()
}

// LeakRate returns the drain rate in requests per second.
func (ml *MetricsLimiter) LeakRate() int {
	return ml.limiter.LeakRate()
}

// OldestWaiting returns the admission time of the oldest queued request.
func (ml *MetricsLimiter) OldestWaiting() (time.Time, bool) {
	return ml.limiter.OldestWaiting()
}

// Stop cancels the background drain.
func (ml *MetricsLimiter) Stop() <-chan struct{} {
	return ml.limiter.Stop()
}

// EnableMetrics enables metrics collection.
func (ml *MetricsLimiter) EnableMetrics(config metrics.Config) error {
	ml.enabled = config.Enabled

	if config.Registry != nil {
		ml.registry = metrics.NewRegistry(config.Registry)
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (ml *MetricsLimiter) DisableMetrics() {
	ml.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (ml *MetricsLimiter) MetricsEnabled() bool {
	return ml.enabled
}
