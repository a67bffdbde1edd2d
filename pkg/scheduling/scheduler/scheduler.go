package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	gkerrors "github.com/smalhotra/gatekeep/pkg/common/errors"
	"github.com/smalhotra/gatekeep/pkg/common/validation"
	"github.com/smalhotra/gatekeep/pkg/scheduling/workerpool"
)

// Task describes a scheduled task for inspection via List.
type Task struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // Zero for one-time and cron tasks
	Created  time.Time
}

// Scheduler provides time-based task execution with interval and cron
// support. Within gatekeep it drives the leaky bucket's periodic drain.
type Scheduler interface {
	// Schedule runs task once at runAt.
	Schedule(id string, task workerpool.Task, runAt time.Time) error

	// ScheduleAfter runs task once after the given delay.
	ScheduleAfter(id string, task workerpool.Task, delay time.Duration) error

	// ScheduleRepeating runs task every interval, with the first run one
	// interval after registration.
	ScheduleRepeating(id string, task workerpool.Task, interval time.Duration) error

	// ScheduleCron runs task on a cron schedule. The expression uses the
	// six-field form with a leading seconds field.
	ScheduleCron(id string, cronExpr string, task workerpool.Task) error

	// Cancel removes a scheduled task. It reports whether the task existed.
	Cancel(id string) bool

	// CancelAll removes every scheduled task.
	CancelAll()

	// List returns the scheduled tasks ordered by next run time.
	List() []Task

	// Start begins the scheduling loop.
	Start() error

	// Stop halts scheduling. The returned channel closes once the
	// scheduler's own worker pool (if any) has shut down. A stopped
	// scheduler cannot be restarted.
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	// WorkerPool executes ready tasks. If nil, the scheduler owns a small
	// pool, discards its results, and shuts it down on Stop. Callers
	// providing a pool must consume its Results channel themselves or
	// workers will stall on result delivery.
	WorkerPool workerpool.Pool

	// Location is the timezone for cron evaluation. Defaults to time.Local.
	Location *time.Location

	// TickInterval is how often the loop checks for ready tasks.
	// Defaults to 50ms.
	TickInterval time.Duration

	// MaxTasks bounds the number of scheduled tasks. Defaults to 10000.
	MaxTasks int
}

type scheduledTask struct {
	id           string
	task         workerpool.Task
	runAt        time.Time
	interval     time.Duration
	cronSchedule cron.Schedule
	created      time.Time
}

type scheduler struct {
	pool         workerpool.Pool
	ownPool      bool
	location     *time.Location
	tickInterval time.Duration
	maxTasks     int
	cronParser   cron.Parser

	mu      sync.RWMutex
	tasks   map[string]*scheduledTask
	ticker  *time.Ticker
	done    chan struct{}
	running bool
	stopped chan struct{}
}

// New creates a scheduler with default configuration.
func New() Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) Scheduler {
	pool := cfg.WorkerPool
	ownPool := false
	if pool == nil {
		pool = workerpool.New(2, 64)
		ownPool = true
		// Nothing reads the owned pool's results; discard them so
		// workers never stall on result delivery. The goroutine exits
		// when Stop shuts the pool down and the channel closes.
		go func(results <-chan workerpool.Result) {
			for range results {
			}
		}(pool.Results())
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}

	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10000
	}

	return &scheduler{
		pool:         pool,
		ownPool:      ownPool,
		location:     location,
		tickInterval: tickInterval,
		maxTasks:     maxTasks,
		cronParser:   cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		tasks:        make(map[string]*scheduledTask),
		done:         make(chan struct{}),
	}
}

// validateTask checks the common Schedule* argument constraints.
func (s *scheduler) validateTask(id string, task workerpool.Task) error {
	if err := validation.ValidateNotEmpty("scheduler", "id", id); err != nil {
		return err
	}
	if len(id) > 255 {
		return gkerrors.NewValidationError("scheduler", "id", id, "too long").
			WithHint("task IDs are limited to 255 characters")
	}
	if task == nil {
		return validation.ValidateNotNil("scheduler", "task", nil)
	}
	return nil
}

// add registers a task under the scheduler lock, enforcing uniqueness and
// the task bound.
func (s *scheduler) add(st *scheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[st.id]; exists {
		return gkerrors.NewValidationError("scheduler", "id", st.id, "already scheduled").
			WithHint("cancel the existing task first or use a different ID")
	}
	if len(s.tasks) >= s.maxTasks {
		return gkerrors.NewOperationError("scheduler", "Schedule", gkerrors.ErrCapacityExceeded).
			WithContext("maximum number of scheduled tasks reached")
	}

	s.tasks[st.id] = st
	return nil
}

func (s *scheduler) Schedule(id string, task workerpool.Task, runAt time.Time) error {
	if err := s.validateTask(id, task); err != nil {
		return err
	}
	if runAt.IsZero() {
		return gkerrors.NewValidationError("scheduler", "runAt", runAt, "cannot be zero")
	}

	return s.add(&scheduledTask{
		id:      id,
		task:    task,
		runAt:   runAt,
		created: time.Now(),
	})
}

func (s *scheduler) ScheduleAfter(id string, task workerpool.Task, delay time.Duration) error {
	return s.Schedule(id, task, time.Now().Add(delay))
}

func (s *scheduler) ScheduleRepeating(id string, task workerpool.Task, interval time.Duration) error {
	if err := s.validateTask(id, task); err != nil {
		return err
	}
	if interval <= 0 {
		return gkerrors.NewValidationError("scheduler", "interval", interval, "must be positive")
	}

	now := time.Now()
	return s.add(&scheduledTask{
		id:       id,
		task:     task,
		runAt:    now.Add(interval),
		interval: interval,
		created:  now,
	})
}

func (s *scheduler) ScheduleCron(id string, cronExpr string, task workerpool.Task) error {
	if err := s.validateTask(id, task); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty("scheduler", "cron", cronExpr); err != nil {
		return err
	}

	schedule, err := s.cronParser.Parse(cronExpr)
	if err != nil {
		return gkerrors.NewValidationError("scheduler", "cron", cronExpr, "invalid expression").
			WithHint(err.Error())
	}

	now := time.Now().In(s.location)
	return s.add(&scheduledTask{
		id:           id,
		task:         task,
		runAt:        schedule.Next(now),
		cronSchedule: schedule,
		created:      time.Now(),
	})
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; exists {
		delete(s.tasks, id)
		return true
	}
	return false
}

func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[string]*scheduledTask)
}

func (s *scheduler) List() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, Task{
			ID:       t.id,
			RunAt:    t.runAt,
			Interval: t.interval,
			Created:  t.created,
		})
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].RunAt.Before(tasks[j].RunAt)
	})

	return tasks
}

func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return gkerrors.NewOperationError("scheduler", "Start", gkerrors.ErrInvalidConfiguration).
			WithContext("scheduler already running")
	}
	if s.stopped != nil {
		return gkerrors.NewOperationError("scheduler", "Start", gkerrors.ErrClosed).
			WithContext("scheduler cannot be restarted after Stop")
	}

	s.running = true
	s.ticker = time.NewTicker(s.tickInterval)
	s.done = make(chan struct{})

	go s.run(s.done, s.ticker)
	return nil
}

func (s *scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.running = false
		close(s.done)
		s.ticker.Stop()
	}

	if s.stopped == nil {
		stopped := make(chan struct{})
		s.stopped = stopped
		go func() {
			defer close(stopped)
			if s.ownPool {
				<-s.pool.Shutdown()
			}
		}()
	}

	return s.stopped
}

func (s *scheduler) run(done <-chan struct{}, ticker *time.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.processReadyTasks()
		}
	}
}

func (s *scheduler) processReadyTasks() {
	now := time.Now()

	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return
	}

	readyTasks := make([]*scheduledTask, 0, len(s.tasks))

	for id, task := range s.tasks {
		if !task.runAt.After(now) {
			readyTasks = append(readyTasks, task)

			switch {
			case task.interval > 0:
				task.runAt = now.Add(task.interval)
			case task.cronSchedule != nil:
				task.runAt = task.cronSchedule.Next(now.In(s.location))
			default:
				delete(s.tasks, id)
			}
		}
	}
	s.mu.Unlock()

	for _, task := range readyTasks {
		if err := s.pool.Submit(task.task); err != nil {
			// Submission failed (pool shutting down); keep processing others.
			continue
		}
	}
}
