package workerpool

import (
	"context"
	"sync"
	"time"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context.
	// It should respect context cancellation and return any error encountered.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Result represents the result of a task execution.
type Result struct {
	// Task is the original task that was executed
	Task Task

	// Error is any error that occurred during task execution
	Error error

	// Duration is how long the task took to execute
	Duration time.Duration

	// WorkerID identifies which worker executed the task
	WorkerID int
}

// Pool represents a worker pool that can execute tasks concurrently.
type Pool interface {
	// Submit adds a task to the pool for execution.
	// Returns an error if the pool is shut down or if the task cannot be queued.
	Submit(task Task) error

	// SubmitWithContext submits a task with a context for cancellation.
	// The context applies both to queuing and to the task's execution.
	SubmitWithContext(ctx context.Context, task Task) error

	// Results returns a channel of task results.
	// The channel is closed when the pool is shut down and all tasks are complete.
	Results() <-chan Result

	// Shutdown initiates a graceful shutdown of the pool.
	// No new tasks will be accepted, but queued tasks will be completed.
	// Returns a channel that closes when shutdown is complete.
	Shutdown() <-chan struct{}

	// Size returns the number of workers in the pool.
	Size() int

	// QueueSize returns the current number of queued tasks waiting for execution.
	QueueSize() int
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// WorkerCount is the number of workers in the pool.
	// Must be greater than 0.
	WorkerCount int

	// QueueSize is the maximum number of tasks that can be queued.
	// If 0, tasks are handed directly to an idle worker.
	QueueSize int

	// TaskTimeout is the default timeout for individual task execution.
	// Zero means no timeout.
	TaskTimeout time.Duration

	// BufferedResults determines if results should be buffered.
	// If true, results are sent to a buffered channel to prevent blocking.
	// Buffer size equals worker count.
	BufferedResults bool
}

// workerPool implements the Pool interface.
type workerPool struct {
	config Config

	workers      []worker
	taskQueue    chan taskWithContext
	resultQueue  chan Result
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	mu         sync.RWMutex
	isShutdown bool

	workerWg sync.WaitGroup
}

// taskWithContext pairs a task with the context it was submitted under.
type taskWithContext struct {
	task Task
	ctx  context.Context
}

// worker represents a single worker in the pool.
type worker struct {
	id      int
	pool    *workerPool
	stopCh  chan struct{}
	stopped chan struct{}
}

// New creates a new worker pool with the specified number of workers and queue size.
func New(workerCount, queueSize int) Pool {
	return NewWithConfig(Config{
		WorkerCount: workerCount,
		QueueSize:   queueSize,
	})
}

// NewWithConfig creates a new worker pool with the specified configuration.
func NewWithConfig(config Config) Pool {
	if config.WorkerCount <= 0 {
		panic("worker count must be positive")
	}
	if config.QueueSize < 0 {
		panic("queue size cannot be negative")
	}

	taskQueue := make(chan taskWithContext, config.QueueSize)

	var resultQueue chan Result
	if config.BufferedResults {
		resultQueue = make(chan Result, config.WorkerCount)
	} else {
		resultQueue = make(chan Result)
	}

	pool := &workerPool{
		config:      config,
		taskQueue:   taskQueue,
		resultQueue: resultQueue,
		shutdownCh:  make(chan struct{}),
	}

	pool.workers = make([]worker, config.WorkerCount)
	for i := 0; i < config.WorkerCount; i++ {
		pool.workers[i] = worker{
			id:      i,
			pool:    pool,
			stopCh:  make(chan struct{}),
			stopped: make(chan struct{}),
		}
		pool.workerWg.Add(1)
		go pool.workers[i].run()
	}

	return pool
}
