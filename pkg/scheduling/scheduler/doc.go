/*
Package scheduler provides time-based task execution: one-time, repeating
interval, and cron-expression schedules, executed on a worker pool.

The scheduler runs a tick loop (default 50ms) that submits ready tasks to
its pool. Repeating tasks reschedule relative to the tick that fired them,
so intervals are a floor, not an exact period. Cron expressions use the
six-field form with a leading seconds field, plus descriptors like @hourly.

Within gatekeep the scheduler's main job is driving the leaky bucket's
periodic drain, one firing per leak interval.

Basic usage:

	s := scheduler.New()
	if err := s.Start(); err != nil {
		// already running
	}
	defer func() { <-s.Stop() }()

	err := s.ScheduleRepeating("cleanup", workerpool.TaskFunc(func(ctx context.Context) error {
		// periodic work
		return nil
	}), time.Minute)
	_ = err

	err = s.ScheduleCron("nightly", "0 0 2 * * *", task) // 02:00:00 daily
	_ = err
*/
package scheduler
