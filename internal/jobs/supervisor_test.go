package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeLocker считает вызовы и по желанию отказывает в захвате.
type fakeLocker struct {
	denied bool
	calls  atomic.Int64
	names  chan string
}

func (l *fakeLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) (bool, error) {
	l.calls.Add(1)
	if l.names != nil {
		select {
		case l.names <- name:
		default:
		}
	}
	if l.denied {
		return false, nil
	}
	return true, fn(ctx)
}

func TestSupervisor_RunsJobUnderLock(t *testing.T) {
	locker := &fakeLocker{names: make(chan string, 16)}
	var ticks atomic.Int64
	done := make(chan struct{}, 16)

	sup := New(locker, nil, Job{
		Name:     "reminder-detector",
		Interval: 10 * time.Millisecond,
		Task: func(context.Context) error {
			ticks.Add(1)
			done <- struct{}{}
			return nil
		},
	})
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ticked")
	}
	sup.Stop()

	if ticks.Load() == 0 {
		t.Error("expected at least one tick")
	}
	if got := <-locker.names; got != "jobs:reminder-detector" {
		t.Errorf("expected lock name jobs:reminder-detector, got %q", got)
	}
}

func TestSupervisor_LockDeniedSkipsTask(t *testing.T) {
	locker := &fakeLocker{denied: true}
	var ticks atomic.Int64

	sup := New(locker, nil, Job{
		Name:     "outbox-processor",
		Interval: 10 * time.Millisecond,
		Task: func(context.Context) error {
			ticks.Add(1)
			return nil
		},
	})
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ждём несколько попыток захвата.
	deadline := time.Now().Add(2 * time.Second)
	for locker.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	sup.Stop()

	if locker.calls.Load() < 3 {
		t.Fatalf("expected at least 3 lock attempts, got %d", locker.calls.Load())
	}
	if ticks.Load() != 0 {
		t.Errorf("task must not run without the lock, ran %d times", ticks.Load())
	}
}

func TestSupervisor_TaskErrorDoesNotStopTimer(t *testing.T) {
	locker := &fakeLocker{}
	var ticks atomic.Int64
	done := make(chan struct{})

	sup := New(locker, nil, Job{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Task: func(context.Context) error {
			if ticks.Add(1) >= 3 {
				select {
				case done <- struct{}{}:
				default:
				}
			}
			return errors.New("db gone")
		},
	})
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer stopped after error, got %d ticks", ticks.Load())
	}
	sup.Stop()
}

func TestSupervisor_StartRejectsNonPositiveInterval(t *testing.T) {
	sup := New(&fakeLocker{}, nil, Job{
		Name: "misconfigured",
		Task: func(context.Context) error { return nil },
	})
	if err := sup.Start(context.Background()); err == nil {
		t.Fatal("expected error for zero interval without cron expression")
	}
	sup.Stop()
}

// Записи тиков несут атрибут job — по нему логи разных job'ов различимы.
func TestSupervisor_TickLogsCarryJobName(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	done := make(chan struct{}, 1)

	sup := New(&fakeLocker{}, logger, Job{
		Name:     "reminder-detector",
		Interval: 10 * time.Millisecond,
		Task: func(context.Context) error {
			select {
			case done <- struct{}{}:
			default:
			}
			return errors.New("db gone")
		},
	})
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ticked")
	}
	sup.Stop()

	out := buf.String()
	if !strings.Contains(out, "job tick failed") {
		t.Error("expected tick failure to be logged")
	}
	if !strings.Contains(out, `"job":"reminder-detector"`) {
		t.Errorf("expected log records to carry the job attribute, got:\n%s", out)
	}
}

func TestSupervisor_StartRejectsBadCron(t *testing.T) {
	sup := New(&fakeLocker{}, nil, Job{
		Name:     "broken",
		CronExpr: "not a cron",
		Task:     func(context.Context) error { return nil },
	})
	if err := sup.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	sup.Stop()
}

func TestSupervisor_StopWaitsForJobs(t *testing.T) {
	locker := &fakeLocker{}
	started := make(chan struct{})
	var startOnce sync.Once
	var finished atomic.Bool

	sup := New(locker, nil, Job{
		Name:     "slow",
		Interval: 10 * time.Millisecond,
		Task: func(context.Context) error {
			startOnce.Do(func() { close(started) })
			time.Sleep(50 * time.Millisecond)
			finished.Store(true)
			return nil
		},
	})
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	<-started
	sup.Stop()

	if !finished.Load() {
		t.Error("Stop must wait for the in-flight tick to finish")
	}
}
