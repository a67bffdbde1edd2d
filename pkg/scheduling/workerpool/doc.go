/*
Package workerpool provides a fixed-size pool of background workers for
executing tasks concurrently.

Within gatekeep the pool's main consumer is the scheduler, which submits
ready tasks (including the leaky bucket's periodic drain) for execution off
the scheduling tick loop.

Basic usage:

	pool := workerpool.New(4, 100) // 4 workers, queue size 100
	defer pool.Shutdown()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	})

	if err := pool.Submit(task); err != nil {
		// Pool shut down or queue unavailable
	}

Task panics are recovered and reported as errors on the Results channel
rather than crashing a worker.
*/
package workerpool
