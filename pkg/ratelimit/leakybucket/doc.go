/*
Package leakybucket provides leaky bucket admission control.

Admitted requests enter a bounded FIFO queue and a background task drains
one entry per leak interval (one second divided by the leak rate). The
output rate is therefore strictly periodic no matter how bursty arrivals
are, which is the defining difference from the token bucket: a token
bucket spends accumulated credit instantly, a leaky bucket never does.

Basic usage:

	limiter, err := leakybucket.NewSafe(5, 1) // capacity 5, 1 drain/sec
	if err != nil {
		// invalid configuration
	}
	defer limiter.Stop()

	if limiter.Allow() {
		// request admitted; it occupies a queue slot until drained
	}

The drain is registered at construction, first fires one leak interval
later, and runs for the limiter's whole lifetime. By default each limiter owns a small scheduler;
callers running many limiters can share one:

	s := scheduler.New()
	_ = s.Start()
	limiter, err = leakybucket.NewWithConfigSafe(leakybucket.Config{
		Capacity:  10,
		LeakRate:  20,
		Scheduler: s,
	})

State inspection:

	limiter.Len()           // queued requests
	limiter.OldestWaiting() // admission time of the head entry

All operations are safe for concurrent use; callers enqueue and the drain
task dequeues under one per-limiter mutex.
*/
package leakybucket
