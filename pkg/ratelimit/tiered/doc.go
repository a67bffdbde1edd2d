/*
Package tiered provides two-tier admission control: a shared global token
bucket layered over lazily created per-key token buckets.

The decision protocol is strictly ordered. The global bucket is checked
first; if it denies, the request fails immediately and no per-key state is
consulted or created. If it admits, its token is spent for good, and the
key's own bucket makes the final call. A per-key denial therefore still
costs one global token: the global tier protects total throughput while
the per-key tier only further restricts individual callers.

Basic usage:

	// 25 global tokens refilled at 15/sec; 3 tokens per user at 1/sec
	limiter, err := tiered.NewSafe(25, 15, 3, 1)
	if err != nil {
		// invalid configuration
	}

	if limiter.Allow("user-42") {
		// handle request
	}

Per-key buckets are created on first use and never evicted; Keys() exposes
how many exist. Callers with unbounded key spaces should account for that
growth themselves.

All operations are safe for concurrent use. Concurrent first-time requests
for one key produce exactly one bucket for it, and requests for distinct
keys never block each other.
*/
package tiered
