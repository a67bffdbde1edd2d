/*
Package ratelimit provides request admission primitives for Go applications.

This package offers three main types of limiters:

  - tokenbucket: Token bucket limiter allowing burst traffic up to capacity
  - leakybucket: Leaky bucket limiter bounding how many admissions wait in a queue
  - tiered: Two-tier limiter combining a global bucket with per-key buckets

Token Bucket vs Leaky Bucket:

Token bucket allows controlled bursts and is ideal for interactive applications:

	limiter, err := tokenbucket.NewSafe(10, 5) // capacity 10, 5 tokens/sec
	if limiter.Allow() {
		// Process request (allows immediate burst)
	}

Leaky bucket caps admitted-but-unprocessed work and drains it at a fixed pace:

	limiter, err := leakybucket.NewSafe(10, 5) // capacity 10, drains 5/sec
	if limiter.Allow() {
		// Process request (queue depth bounded at 10)
	}

Tiered limiting protects total throughput while keeping individual callers fair:

	limiter, err := tiered.NewSafe(25, 15, 3, 1) // global 25@15/s, per key 3@1/s
	if limiter.Allow("user-42") {
		// Process request
	}

The token bucket additionally supports context-aware blocking admission
(Wait/WaitN), and every limiter exposes state inspection accessors and an
optional Prometheus metrics wrapper.

All limiters are safe for concurrent use.
*/
package ratelimit
