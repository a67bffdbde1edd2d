package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smalhotra/gatekeep/internal/testutil"
	gkerrors "github.com/smalhotra/gatekeep/pkg/common/errors"
	"github.com/smalhotra/gatekeep/pkg/scheduling/workerpool"
)

func noopTask() workerpool.Task {
	return workerpool.TaskFunc(func(ctx context.Context) error { return nil })
}

func TestScheduleValidation(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		call func() error
	}{
		{"empty id", func() error {
			return s.Schedule("", noopTask(), time.Now().Add(time.Hour))
		}},
		{"nil task", func() error {
			return s.Schedule("a", nil, time.Now().Add(time.Hour))
		}},
		{"zero run time", func() error {
			return s.Schedule("a", noopTask(), time.Time{})
		}},
		{"non-positive interval", func() error {
			return s.ScheduleRepeating("a", noopTask(), 0)
		}},
		{"empty cron", func() error {
			return s.ScheduleCron("a", "", noopTask())
		}},
		{"bad cron", func() error {
			return s.ScheduleCron("a", "not a cron", noopTask())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !gkerrors.IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDuplicateID(t *testing.T) {
	s := New()

	testutil.AssertNoError(t, s.ScheduleAfter("dup", noopTask(), time.Hour))
	if err := s.ScheduleAfter("dup", noopTask(), time.Hour); err == nil {
		t.Error("expected error for duplicate task ID")
	}
}

func TestMaxTasks(t *testing.T) {
	s := NewWithConfig(Config{MaxTasks: 1})

	testutil.AssertNoError(t, s.ScheduleAfter("one", noopTask(), time.Hour))
	err := s.ScheduleAfter("two", noopTask(), time.Hour)
	if err == nil {
		t.Fatal("expected error at task limit")
	}
}

func TestCancel(t *testing.T) {
	s := New()

	testutil.AssertNoError(t, s.ScheduleAfter("a", noopTask(), time.Hour))
	testutil.AssertEqual(t, s.Cancel("a"), true)
	testutil.AssertEqual(t, s.Cancel("a"), false)
	testutil.AssertEqual(t, len(s.List()), 0)
}

func TestCancelAll(t *testing.T) {
	s := New()

	testutil.AssertNoError(t, s.ScheduleAfter("a", noopTask(), time.Hour))
	testutil.AssertNoError(t, s.ScheduleAfter("b", noopTask(), time.Hour))
	testutil.AssertEqual(t, len(s.List()), 2)

	s.CancelAll()
	testutil.AssertEqual(t, len(s.List()), 0)
}

func TestListOrdered(t *testing.T) {
	s := New()
	now := time.Now()

	testutil.AssertNoError(t, s.Schedule("later", noopTask(), now.Add(2*time.Hour)))
	testutil.AssertNoError(t, s.Schedule("sooner", noopTask(), now.Add(time.Hour)))

	tasks := s.List()
	testutil.AssertEqual(t, len(tasks), 2)
	testutil.AssertEqual(t, tasks[0].ID, "sooner")
	testutil.AssertEqual(t, tasks[1].ID, "later")
}

func TestOneTimeExecution(t *testing.T) {
	s := NewWithConfig(Config{TickInterval: 5 * time.Millisecond})
	testutil.AssertNoError(t, s.Start())
	defer func() { <-s.Stop() }()

	var fired atomic.Int64
	err := s.ScheduleAfter("once", workerpool.TaskFunc(func(ctx context.Context) error {
		fired.Add(1)
		return nil
	}), 10*time.Millisecond)
	testutil.AssertNoError(t, err)

	testutil.Eventually(t, time.Second, func() bool {
		return fired.Load() == 1
	})

	// One-time tasks are removed after firing.
	testutil.Eventually(t, time.Second, func() bool {
		return len(s.List()) == 0
	})
}

func TestRepeatingExecution(t *testing.T) {
	s := NewWithConfig(Config{TickInterval: 5 * time.Millisecond})
	testutil.AssertNoError(t, s.Start())
	defer func() { <-s.Stop() }()

	var fired atomic.Int64
	err := s.ScheduleRepeating("tick", workerpool.TaskFunc(func(ctx context.Context) error {
		fired.Add(1)
		return nil
	}), 20*time.Millisecond)
	testutil.AssertNoError(t, err)

	testutil.Eventually(t, 2*time.Second, func() bool {
		return fired.Load() >= 3
	})

	// Repeating tasks stay scheduled.
	testutil.AssertEqual(t, len(s.List()), 1)
}

func TestRepeatingHighFrequency(t *testing.T) {
	s := NewWithConfig(Config{TickInterval: time.Millisecond})
	testutil.AssertNoError(t, s.Start())
	defer func() { <-s.Stop() }()

	var fired atomic.Int64
	err := s.ScheduleRepeating("fast", workerpool.TaskFunc(func(ctx context.Context) error {
		fired.Add(1)
		return nil
	}), 2*time.Millisecond)
	testutil.AssertNoError(t, err)

	// A 2ms interval means hundreds of executions per second, which only
	// happens when workers finish tasks without stalling on result
	// delivery from the scheduler's owned pool.
	testutil.Eventually(t, 2*time.Second, func() bool {
		return fired.Load() >= 100
	})
}

func TestRepeatingFirstRunDelayed(t *testing.T) {
	s := NewWithConfig(Config{TickInterval: 5 * time.Millisecond})
	testutil.AssertNoError(t, s.Start())
	defer func() { <-s.Stop() }()

	var fired atomic.Int64
	err := s.ScheduleRepeating("later", workerpool.TaskFunc(func(ctx context.Context) error {
		fired.Add(1)
		return nil
	}), 300*time.Millisecond)
	testutil.AssertNoError(t, err)

	// The first run lands one interval after registration, not on the
	// next tick.
	time.Sleep(100 * time.Millisecond)
	testutil.AssertEqual(t, fired.Load(), int64(0))

	testutil.Eventually(t, 2*time.Second, func() bool {
		return fired.Load() >= 1
	})
}

func TestStartTwice(t *testing.T) {
	s := New()
	testutil.AssertNoError(t, s.Start())
	defer func() { <-s.Stop() }()

	if err := s.Start(); err == nil {
		t.Error("expected error when starting a running scheduler")
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := New()
	select {
	case <-s.Stop():
	case <-time.After(testutil.TestTimeout):
		t.Fatal("Stop should complete even if Start was never called")
	}
}

func TestCronScheduling(t *testing.T) {
	s := New()

	// Every second, six-field form.
	testutil.AssertNoError(t, s.ScheduleCron("everysec", "* * * * * *", noopTask()))
	testutil.AssertNoError(t, s.ScheduleCron("hourly", "@hourly", noopTask()))

	tasks := s.List()
	testutil.AssertEqual(t, len(tasks), 2)
	for _, task := range tasks {
		if task.RunAt.IsZero() {
			t.Errorf("cron task %q has no next run time", task.ID)
		}
	}
}
