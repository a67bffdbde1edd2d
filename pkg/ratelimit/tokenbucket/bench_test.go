package tokenbucket

import (
	"testing"
)

// mustNewSafe creates a new limiter or panics on error (for benchmarks only)
func mustNewSafe(capacity, refillRate int) Limiter {
	limiter, err := NewSafe(capacity, refillRate)
	if err != nil {
		panic(err)
	}
	return limiter
}

// BenchmarkAllow measures the performance of Allow calls
func BenchmarkAllow(b *testing.B) {
	limiter := mustNewSafe(1000, 1000000) // High rate to avoid exhaustion

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			limiter.Allow()
		}
	})
}

// BenchmarkAllowN measures the performance of AllowN calls
func BenchmarkAllowN(b *testing.B) {
	limiter := mustNewSafe(1000, 1000000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			limiter.AllowN(1)
		}
	})
}

// BenchmarkTokens measures the performance of state inspection
func BenchmarkTokens(b *testing.B) {
	limiter := mustNewSafe(1000, 1000000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Tokens()
	}
}
