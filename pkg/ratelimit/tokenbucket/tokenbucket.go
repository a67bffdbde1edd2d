package tokenbucket

import (
	"context"
	"time"

	gkerrors "github.com/smalhotra/gatekeep/pkg/common/errors"
)

// Allow reports whether one request may proceed now.
func (tb *tokenBucket) Allow() bool {
	return tb.AllowN(1)
}

// AllowN reports whether n requests may proceed now.
func (tb *tokenBucket) AllowN(n int) bool {
	if n <= 0 {
		return true
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

// Wait blocks until one request can proceed.
func (tb *tokenBucket) Wait(ctx context.Context) error {
	return tb.WaitN(ctx, 1)
}

// WaitN blocks until n requests can proceed.
func (tb *tokenBucket) WaitN(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	tb.mu.Lock()
	capacity := tb.capacity
	tb.mu.Unlock()

	if n > capacity {
		// Can never be satisfied in a single grant.
		return gkerrors.NewOperationError("tokenbucket", "WaitN", gkerrors.ErrCapacityExceeded).
			WithContext("requested tokens exceed bucket capacity")
	}

	// Check if context is already canceled
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for {
		tb.mu.Lock()
		now := tb.clock.Now()
		tb.refill(now)
		if tb.tokens >= n {
			tb.tokens -= n
			tb.mu.Unlock()
			return nil
		}
		delay := tb.nextAccrual(now, n-tb.tokens)
		tb.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Tokens returns the number of tokens currently available.
func (tb *tokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	return tb.tokens
}

// Capacity returns the bucket capacity.
func (tb *tokenBucket) Capacity() int {
	return tb.capacity
}

// Rate returns the refill rate in tokens per second.
func (tb *tokenBucket) Rate() int {
	return tb.rate
}

// refill adds the whole tokens earned since the last refill, capped at
// capacity. The caller must hold tb.mu.
//
// The timestamp only advances when at least one whole token accrued;
// otherwise fractional-second progress toward the next token would be
// discarded on every call. A non-positive elapsed time (non-monotonic
// clock) yields no refill rather than negative tokens.
func (tb *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return
	}

	// An idle period of capacity/rate (+1) whole seconds already earns a
	// full bucket; saturate directly, since the nanosecond product below
	// overflows for very long gaps.
	if secs := int64(elapsed / time.Second); secs >= int64(tb.capacity)/int64(tb.rate)+1 {
		tb.tokens = tb.capacity
		tb.lastRefill = now
		return
	}

	tokensToAdd := int(elapsed.Nanoseconds() * int64(tb.rate) / int64(time.Second))
	if tokensToAdd <= 0 {
		return
	}

	tb.tokens += tokensToAdd
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

// nextAccrual returns how long to wait from now until `deficit` more whole
// tokens will have accrued. The caller must hold tb.mu and must have called
// refill(now) first.
func (tb *tokenBucket) nextAccrual(now time.Time, deficit int) time.Duration {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed < 0 {
		elapsed = 0
	}

	// Smallest e with floor(e * rate / 1s) >= deficit.
	required := time.Duration((int64(deficit)*int64(time.Second) + int64(tb.rate) - 1) / int64(tb.rate))
	delay := required - elapsed
	if delay <= 0 {
		delay = time.Millisecond
	}
	return delay
}
