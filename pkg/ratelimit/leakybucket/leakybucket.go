package leakybucket

import (
	"context"
	"time"

	"github.com/smalhotra/gatekeep/pkg/scheduling/workerpool"
)

// Allow reports whether one request may be admitted now.
func (lb *leakyBucket) Allow() bool {
	return lb.AllowN(1)
}

// AllowN reports whether n requests may be admitted now. Admission only
// checks queue space; no leaking happens inline, so a full queue stays
// full until the background drain fires.
func (lb *leakyBucket) AllowN(n int) bool {
	if n <= 0 {
		return true
	}

	now := lb.clock.Now()

	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.queue)+n > lb.capacity {
		return false
	}
	for i := 0; i < n; i++ {
		lb.queue = append(lb.queue, now)
	}
	return true
}

// Len returns the number of admitted requests waiting to be drained.
func (lb *leakyBucket) Len() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.queue)
}

// Capacity returns the maximum queue length.
func (lb *leakyBucket) Capacity() int {
	return lb.capacity
}

// LeakRate returns the drain rate in requests per second.
func (lb *leakyBucket) LeakRate() int {
	return lb.leakRate
}

// OldestWaiting returns the admission time of the oldest queued request.
func (lb *leakyBucket) OldestWaiting() (time.Time, bool) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.queue) == 0 {
		return time.Time{}, false
	}
	return lb.queue[0], true
}

// Stop cancels the background drain.
func (lb *leakyBucket) Stop() <-chan struct{} {
	lb.stopOnce.Do(func() {
		lb.sched.Cancel(lb.drainID)
		if lb.ownSched {
			go func() {
				<-lb.sched.Stop()
				close(lb.stopped)
			}()
		} else {
			close(lb.stopped)
		}
	})
	return lb.stopped
}

// drainTask returns the repeating task that leaks one queue entry per firing.
func (lb *leakyBucket) drainTask() workerpool.Task {
	return workerpool.TaskFunc(func(ctx context.Context) error {
		lb.drainOne()
		return nil
	})
}

// drainOne removes the oldest queued entry, if any. FIFO order is part of
// the limiter's contract.
func (lb *leakyBucket) drainOne() {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.queue) == 0 {
		return
	}
	lb.queue = lb.queue[1:]
	if len(lb.queue) == 0 {
		lb.queue = nil
	}
}
