/*
Package gatekeep provides in-process request admission control for Go
applications: ask "may this request proceed right now?" and get an immediate
boolean answer.

Rate Limiting (pkg/ratelimit):
  - tokenbucket: Burst-tolerant token bucket with lazy time-based refill
  - leakybucket: Strict constant-rate admission via a bounded queue and a
    periodic background drain
  - tiered: Two-tier composition of a global bucket with lazily created
    per-key buckets

Task Scheduling (pkg/scheduling):
  - workerpool: Background task processing
  - scheduler: Cron and interval-based scheduling (drives the leaky-bucket
    drain)

Example usage:

	import (
		"github.com/smalhotra/gatekeep/pkg/ratelimit/tokenbucket"
		"github.com/smalhotra/gatekeep/pkg/ratelimit/tiered"
	)

	limiter, _ := tokenbucket.NewSafe(10, 5) // capacity 10, 5 tokens/sec
	if limiter.Allow() {
		// handle request
	}

	gate, _ := tiered.NewSafe(25, 15, 3, 1)
	if gate.Allow("user-42") {
		// handle request for this user
	}
*/
package gatekeep
