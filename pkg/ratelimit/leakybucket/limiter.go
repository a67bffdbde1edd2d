package leakybucket

import (
	"fmt"
	"sync"
	"time"

	"github.com/smalhotra/gatekeep/pkg/common/validation"
	"github.com/smalhotra/gatekeep/pkg/ratelimit/tokenbucket"
	"github.com/smalhotra/gatekeep/pkg/scheduling/scheduler"
)

// Limiter controls the rate at which requests are admitted using a leaky
// bucket algorithm. Admitted requests enter a bounded FIFO queue; a
// background task drains one entry per leak interval, so the output rate
// is strictly periodic regardless of arrival pattern. Unlike the token
// bucket, the leaky bucket never permits bursts beyond its capacity.
type Limiter interface {
	// Allow reports whether one request may be admitted now. It does not block.
	Allow() bool

	// AllowN reports whether n requests may be admitted now. It does not block.
	AllowN(n int) bool

	// Len returns the number of admitted requests waiting to be drained.
	Len() int

	// Capacity returns the maximum queue length.
	Capacity() int

	// LeakRate returns the drain rate in requests per second.
	LeakRate() int

	// OldestWaiting returns the admission time of the oldest queued
	// request and whether the queue is non-empty.
	OldestWaiting() (time.Time, bool)

	// Stop cancels the background drain. The returned channel closes once
	// any limiter-owned scheduling resources have shut down. The limiter
	// still accepts Allow calls afterwards, but nothing drains the queue.
	Stop() <-chan struct{}
}

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// Capacity is the maximum number of admitted requests the queue can hold.
	Capacity int

	// LeakRate is the number of drain events per second. The drain interval
	// is one second divided by this rate.
	LeakRate int

	// Clock provides the current time. If nil, SystemClock is used.
	Clock tokenbucket.Clock

	// Scheduler runs the periodic drain task. If nil, the limiter owns a
	// dedicated scheduler and shuts it down on Stop. An injected scheduler
	// must already be started by the caller.
	Scheduler scheduler.Scheduler
}

// leakyBucket implements the Limiter interface. The queue is shared
// between caller goroutines (enqueue) and the drain task (dequeue), so
// every mutation happens under one mutex held only for the queue
// operation itself.
type leakyBucket struct {
	mu       sync.Mutex
	capacity int
	leakRate int
	queue    []time.Time
	clock    tokenbucket.Clock

	sched    scheduler.Scheduler
	ownSched bool
	drainID  string
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewSafe creates a new leaky bucket limiter with the given queue capacity
// and leak rate in requests per second, and starts its background drain.
func NewSafe(capacity, leakRate int) (Limiter, error) {
	return NewWithConfigSafe(Config{
		Capacity: capacity,
		LeakRate: leakRate,
		Clock:    tokenbucket.SystemClock{},
	})
}

// NewWithConfigSafe creates a new leaky bucket limiter from the given
// configuration, validating it first. The drain task is registered before
// the constructor returns.
func NewWithConfigSafe(config Config) (Limiter, error) {
	if err := validation.ValidatePositive("leakybucket", "capacity", config.Capacity); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive("leakybucket", "leakRate", config.LeakRate); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = tokenbucket.SystemClock{}
	}

	interval := time.Second / time.Duration(config.LeakRate)

	lb := &leakyBucket{
		capacity: config.Capacity,
		leakRate: config.LeakRate,
		clock:    config.Clock,
		stopped:  make(chan struct{}),
	}
	lb.drainID = fmt.Sprintf("leakybucket/drain/%p", lb)

	if config.Scheduler != nil {
		lb.sched = config.Scheduler
	} else {
		tick := interval / 2
		if tick > 50*time.Millisecond {
			tick = 50 * time.Millisecond
		}
		if tick < time.Millisecond {
			tick = time.Millisecond
		}
		lb.sched = scheduler.NewWithConfig(scheduler.Config{TickInterval: tick})
		lb.ownSched = true
		if err := lb.sched.Start(); err != nil {
			return nil, err
		}
	}

	if err := lb.sched.ScheduleRepeating(lb.drainID, lb.drainTask(), interval); err != nil {
		if lb.ownSched {
			<-lb.sched.Stop()
		}
		return nil, err
	}

	return lb, nil
}
