package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dkoval/kadrovik/internal/telemetry"
)

// Locker — межпроцессная блокировка тика. Реализуется dblock.Mutex.
type Locker interface {
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) (bool, error)
}

// Job — именованная периодическая задача.
type Job struct {
	// Name — имя job'а; оно же имя advisory lock.
	Name string

	// Interval — фиксированный интервал между запусками.
	Interval time.Duration

	// CronExpr — cron-выражение; если задано, имеет приоритет над Interval.
	CronExpr string

	// Task — тело тика.
	Task func(ctx context.Context) error
}

// Supervisor запускает и останавливает набор job'ов как единое целое.
type Supervisor struct {
	mutex  Locker
	logger *slog.Logger
	jobs   []Job

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New создаёт новый Supervisor.
func New(mutex Locker, logger *slog.Logger, jobs ...Job) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		mutex:  mutex,
		logger: logger,
		jobs:   jobs,
	}
}

// Start запускает по горутине на каждый job и сразу возвращается.
func (s *Supervisor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := range s.jobs {
		job := s.jobs[i]

		if job.CronExpr != "" {
			if err := ValidateCronExpr(job.CronExpr); err != nil {
				cancel()
				return err
			}
		} else if job.Interval <= 0 {
			cancel()
			return fmt.Errorf("job %s: non-positive interval %v", job.Name, job.Interval)
		}

		logger := telemetry.WithJob(s.logger, job.Name)
		logger.Info("starting job",
			"interval", job.Interval,
			"cron", job.CronExpr,
		)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run(ctx, job, logger)
		}()
	}
	return nil
}

// Stop отменяет таймеры и дожидается завершения текущих тиков.
// Тик, начавшийся до Stop, доводится до конца.
func (s *Supervisor) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("all jobs stopped")
}

// run крутит таймер одного job'а до отмены контекста.
func (s *Supervisor) run(ctx context.Context, job Job, logger *slog.Logger) {
	if job.CronExpr != "" {
		s.runCron(ctx, job, logger)
		return
	}

	tk := time.NewTicker(job.Interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			s.runOnce(ctx, job, logger)
		}
	}
}

// runCron запускает job по cron-выражению.
func (s *Supervisor) runCron(ctx context.Context, job Job, logger *slog.Logger) {
	for {
		next, err := NextCron(job.CronExpr, time.Now())
		if err != nil {
			// Выражение проверено в Start; сюда попадать не должны.
			logger.Error("cron parse failed, job stopped", "error", err)
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.runOnce(ctx, job, logger)
		}
	}
}

// runOnce выполняет одну итерацию: advisory lock + задача + учёт.
// Ошибка тика логируется и не останавливает таймер.
func (s *Supervisor) runOnce(ctx context.Context, job Job, logger *slog.Logger) {
	start := time.Now()

	acquired, err := s.mutex.WithLock(ctx, "jobs:"+job.Name, job.Task)
	if !acquired && err == nil {
		// Не ошибка: тик выполняет другой экземпляр сервиса.
		telemetry.LockSkips.WithLabelValues(job.Name).Inc()
		return
	}

	telemetry.TickDuration.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		telemetry.TickErrors.WithLabelValues(job.Name).Inc()
		logger.Error("job tick failed", "error", err)
	}
}
