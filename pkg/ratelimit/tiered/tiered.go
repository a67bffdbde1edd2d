package tiered

import (
	"github.com/smalhotra/gatekeep/pkg/ratelimit/tokenbucket"
)

// Allow reports whether a request for the given key may proceed now.
//
// The global bucket is consulted first and its token is consumed before
// the per-key bucket is even looked up. A per-key denial does not refund
// the global token, and a global denial creates no per-key state.
func (tl *tieredLimiter) Allow(key string) bool {
	if !tl.global.Allow() {
		return false
	}
	return tl.keyLimiter(key).Allow()
}

// GlobalTokens returns the tokens currently available in the global bucket.
func (tl *tieredLimiter) GlobalTokens() int {
	return tl.global.Tokens()
}

// Keys returns the number of per-key buckets created so far.
func (tl *tieredLimiter) Keys() int {
	return int(tl.keyCount.Load())
}

// keyLimiter returns the bucket for key, creating it on first use with
// insert-if-absent semantics.
func (tl *tieredLimiter) keyLimiter(key string) tokenbucket.Limiter {
	if existing, ok := tl.keys.Load(key); ok {
		return existing.(tokenbucket.Limiter)
	}

	fresh, err := tokenbucket.NewWithConfigSafe(tl.keyConfig)
	if err != nil {
		// keyConfig was validated at construction; failing here is a
		// programming error.
		panic(err)
	}

	actual, loaded := tl.keys.LoadOrStore(key, fresh)
	if !loaded {
		tl.keyCount.Add(1)
	}
	return actual.(tokenbucket.Limiter)
}
