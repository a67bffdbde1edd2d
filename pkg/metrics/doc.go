/*
Package metrics provides optional Prometheus instrumentation for gatekeep
limiters.

The core admission path is metrics-free; instrumentation is opt-in through
the NewWithMetrics constructors in the limiter packages, which wrap a plain
limiter and publish counters and gauges to a Registry.

Basic usage:

	limiter, err := tokenbucket.NewWithMetrics(10, 5, "api")
	// gatekeep_admission_requests_total{limiter_type="token_bucket",limiter_name="api"}

Custom registries keep metrics out of the default Prometheus registerer:

	reg := prometheus.NewRegistry()
	registry := metrics.NewRegistry(reg)
	_ = registry
*/
package metrics
