package tiered

import (
	"sync"
	"sync/atomic"

	"github.com/smalhotra/gatekeep/pkg/ratelimit/tokenbucket"
)

// Limiter composes a shared global token bucket with one lazily created
// token bucket per identity key. A request is admitted only when both the
// global bucket and the key's bucket admit it, checked in that order: the
// global bucket is a hard ceiling protecting total throughput, the per-key
// bucket enforces individual fairness on top of it.
type Limiter interface {
	// Allow reports whether a request for the given key may proceed now.
	// It does not block.
	Allow(key string) bool

	// GlobalTokens returns the tokens currently available in the global
	// bucket, after applying any refill earned since the last observation.
	GlobalTokens() int

	// Keys returns the number of per-key buckets created so far. Buckets
	// are never evicted, so this only grows.
	Keys() int
}

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// GlobalCapacity is the shared bucket's maximum token count.
	GlobalCapacity int

	// GlobalRefillRate is the shared bucket's refill rate in tokens per second.
	GlobalRefillRate int

	// KeyCapacity is the maximum token count of each per-key bucket.
	KeyCapacity int

	// KeyRefillRate is the refill rate of each per-key bucket in tokens
	// per second. Both per-key values are captured at construction and
	// apply to every key.
	KeyRefillRate int

	// Clock provides the current time to every bucket. If nil, SystemClock
	// is used.
	Clock tokenbucket.Clock
}

// tieredLimiter implements the Limiter interface. Per-key buckets live in
// a sync.Map so first-time requests for distinct keys never block each
// other; LoadOrStore gives insert-if-absent semantics, and a bucket built
// by a losing racer is discarded before any token is drawn from it.
type tieredLimiter struct {
	keyConfig tokenbucket.Config
	global    tokenbucket.Limiter
	keys      sync.Map // string -> tokenbucket.Limiter
	keyCount  atomic.Int64
}

// NewSafe creates a new two-tier limiter. The global bucket and every
// per-key bucket start full.
func NewSafe(globalCapacity, globalRefillRate, keyCapacity, keyRefillRate int) (Limiter, error) {
	return NewWithConfigSafe(Config{
		GlobalCapacity:   globalCapacity,
		GlobalRefillRate: globalRefillRate,
		KeyCapacity:      keyCapacity,
		KeyRefillRate:    keyRefillRate,
		Clock:            tokenbucket.SystemClock{},
	})
}

// NewWithConfigSafe creates a new two-tier limiter from the given
// configuration, validating it first.
func NewWithConfigSafe(config Config) (Limiter, error) {
	if config.Clock == nil {
		config.Clock = tokenbucket.SystemClock{}
	}

	global, err := tokenbucket.NewWithConfigSafe(tokenbucket.Config{
		Capacity:      config.GlobalCapacity,
		RefillRate:    config.GlobalRefillRate,
		Clock:         config.Clock,
		InitialTokens: -1,
	})
	if err != nil {
		return nil, err
	}

	keyConfig := tokenbucket.Config{
		Capacity:      config.KeyCapacity,
		RefillRate:    config.KeyRefillRate,
		Clock:         config.Clock,
		InitialTokens: -1,
	}
	// Validate the per-key parameters up front so Allow never has to.
	if _, err := tokenbucket.NewWithConfigSafe(keyConfig); err != nil {
		return nil, err
	}

	return &tieredLimiter{
		keyConfig: keyConfig,
		global:    global,
	}, nil
}
