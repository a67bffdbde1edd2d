package tokenbucket

import (
	"context"
	"sync"
	"time"

	"github.com/smalhotra/gatekeep/pkg/common/validation"
)

// Limiter controls how frequently requests are admitted using a token
// bucket algorithm. The bucket holds whole tokens up to a fixed capacity
// and refills at a fixed whole-token rate, so bursts up to capacity are
// allowed while the long-term admission rate stays bounded.
type Limiter interface {
	// Allow reports whether one request may proceed now. It does not block.
	Allow() bool

	// AllowN reports whether n requests may proceed now. It does not block.
	AllowN(n int) bool

	// Wait blocks until one request can proceed. It returns an error
	// if the context is canceled or the deadline is exceeded.
	Wait(ctx context.Context) error

	// WaitN blocks until n requests can proceed. It returns an error
	// if the context is canceled, the deadline is exceeded, or n exceeds
	// the bucket capacity.
	WaitN(ctx context.Context, n int) error

	// Tokens returns the number of tokens currently available,
	// after applying any refill earned since the last observation.
	Tokens() int

	// Capacity returns the bucket capacity.
	Capacity() int

	// Rate returns the refill rate in tokens per second.
	Rate() int
}

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// Capacity is the maximum number of tokens the bucket can hold.
	Capacity int

	// RefillRate is the number of tokens added per second of elapsed time.
	RefillRate int

	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock

	// InitialTokens is the number of tokens to start with.
	// If negative, starts with full capacity.
	InitialTokens int
}

// tokenBucket implements the Limiter interface. The token count and the
// refill timestamp are coupled state, so both live under one mutex:
// refill and consume always happen as a single atomic unit.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   int
	rate       int
	tokens     int
	lastRefill time.Time
	clock      Clock
}

// NewSafe creates a new token bucket limiter with the given capacity and
// refill rate in tokens per second. The bucket starts full, permitting an
// initial burst of up to capacity requests.
func NewSafe(capacity, refillRate int) (Limiter, error) {
	return NewWithConfigSafe(Config{
		Capacity:      capacity,
		RefillRate:    refillRate,
		Clock:         SystemClock{},
		InitialTokens: -1, // Start with full capacity
	})
}

// NewWithConfigSafe creates a new token bucket limiter from the given
// configuration, validating it first.
func NewWithConfigSafe(config Config) (Limiter, error) {
	if err := validation.ValidatePositive("tokenbucket", "capacity", config.Capacity); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive("tokenbucket", "refillRate", config.RefillRate); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}

	initialTokens := config.InitialTokens
	if initialTokens < 0 || initialTokens > config.Capacity {
		initialTokens = config.Capacity
	}

	return &tokenBucket{
		capacity:   config.Capacity,
		rate:       config.RefillRate,
		tokens:     initialTokens,
		lastRefill: config.Clock.Now(),
		clock:      config.Clock,
	}, nil
}
