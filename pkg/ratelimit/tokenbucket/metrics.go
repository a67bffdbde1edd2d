package tokenbucket

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smalhotra/gatekeep/pkg/metrics"
)

const limiterType = "token_bucket"

// MetricsLimiter wraps a Limiter with Prometheus metrics collection.
type MetricsLimiter struct {
	limiter  Limiter
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a new token bucket limiter with metrics enabled.
func NewWithMetrics(capacity, refillRate int, name string) (Limiter, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{
		Capacity:      capacity,
		RefillRate:    refillRate,
		Clock:         SystemClock{},
		InitialTokens: -1,
	}, name, config)
}

// NewWithConfigAndMetrics creates a new token bucket limiter with custom config and metrics.
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

// Allow reports whether one request may proceed now.
func (ml *MetricsLimiter) Allow() bool {
	return ml.AllowN(1)
}

// AllowN reports whether n requests may proceed now.
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
		ml.registry.TokensAvailable.WithLabelValues(limiterType, ml.name).Set(float64(ml.limiter.Tokens()))
	}

	return allowed
}

// Wait blocks until one request can proceed.
func (ml *MetricsLimiter) Wait(ctx context.Context) error {
	return ml.WaitN(ctx, 1)
}

// WaitN blocks until n requests can proceed.
func (ml *MetricsLimiter) WaitN(ctx context.Context, n int) error {
	if ml.enabled {
		ml.registry.AdmissionRequests.WithLabelValues(limiterType, ml.name).Add(float64(n))
	}

	err := ml.limiter.WaitN(ctx, n)

	if ml.enabled {
		if err == nil {
			ml.registry.AdmissionAllowed.WithLabelValues(limiterType, ml.name).Add(float64(n))
		} else {
			ml.registry.AdmissionDenied.WithLabelValues(limiterType, ml.name).Add(float64(n))
		}
		ml.registry.TokensAvailable.WithLabelValues(limiterType, ml.name).Set(float64(ml.limiter.Tokens()))
	}

	return err
}

// Tokens returns the number of tokens currently available.
func (ml *MetricsLimiter) Tokens() int {
	tokens := ml.limiter.Tokens()

	if ml.enabled {
		ml.registry.TokensAvailable.WithLabelValues(limiterType, ml.name).Set(float64(tokens))
	}

	return tokens
}

// Capacity returns the bucket capacity.
func (ml *MetricsLimiter) Capacity() int {
	return ml.limiter.Capacity()
}

// Rate returns the refill rate in tokens per second.
func (ml *MetricsLimiter) Rate() int {
	return ml.limiter.Rate()
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
