package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dkoval/kadrovik/internal/domain"
	"github.com/dkoval/kadrovik/internal/telemetry"
)

// Параметры обработчика по умолчанию.
const (
	defaultBatchSize    = 50
	defaultReclaimAfter = 10 * time.Minute
)

// Store — хранилище outbox-записей. Реализуется repo.OutboxRepo.
type Store interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.OutboxEntry, error)
	Lease(ctx context.Context, id uuid.UUID) (bool, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, nextAttempt time.Time, errText string) error
	ReclaimStuck(ctx context.Context, olderThan time.Time) (int64, error)
}

// Processor — обработчик очереди доставки.
type Processor struct {
	store     Store
	deliverer Deliverer
	logger    *slog.Logger

	batchSize    int
	reclaimAfter time.Duration

	// now подменяется в тестах.
	now func() time.Time
}

// Config — конфигурация Processor.
type Config struct {
	Store     Store
	Deliverer Deliverer
	Logger    *slog.Logger

	// BatchSize — записей за тик (default: 50).
	BatchSize int

	// ReclaimAfter — через сколько SENDING считается зависшим (default: 10m).
	ReclaimAfter time.Duration
}

// New создаёт новый Processor.
func New(cfg Config) *Processor {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	reclaimAfter := cfg.ReclaimAfter
	if reclaimAfter <= 0 {
		reclaimAfter = defaultReclaimAfter
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{
		store:        cfg.Store,
		deliverer:    cfg.Deliverer,
		logger:       logger,
		batchSize:    batchSize,
		reclaimAfter: reclaimAfter,
		now:          time.Now,
	}
}

// Tick выполняет один проход обработчика.
//
// 1. Возвращает в PENDING записи, зависшие в SENDING (упавший воркер).
// 2. Выбирает партию готовых записей (PENDING/FAILED, срок наступил),
//    старые дедлайны первыми.
// 3. Каждую запись захватывает условным UPDATE; проигранный захват —
//    не ошибка, запись уже у другого процесса.
// 4. Доставляет; успех — SENT, ошибка — attempts+1, backoff, FAILED.
//
// Ошибка доставки одной записи никогда не роняет партию.
func (p *Processor) Tick(ctx context.Context) error {
	now := p.now()

	reclaimed, err := p.store.ReclaimStuck(ctx, now.Add(-p.reclaimAfter))
	if err != nil {
		return fmt.Errorf("reclaim stuck entries: %w", err)
	}
	if reclaimed > 0 {
		telemetry.OutboxReclaimed.Add(float64(reclaimed))
		p.logger.Warn("reclaimed stuck SENDING entries", "count", reclaimed)
	}

	entries, err := p.store.ListDue(ctx, now, p.batchSize)
	if err != nil {
		return fmt.Errorf("list due entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	var sent, failed, skipped int
	for i := range entries {
		entry := &entries[i]

		switch p.processEntry(ctx, entry, now) {
		case entrySent:
			sent++
		case entryFailed:
			failed++
		case entrySkipped:
			skipped++
		}
	}

	p.logger.Info("outbox tick completed",
		"due", len(entries),
		"sent", sent,
		"failed", failed,
		"skipped", skipped,
	)
	return nil
}

type entryOutcome int

const (
	entrySkipped entryOutcome = iota
	entrySent
	entryFailed
)

// processEntry обрабатывает одну запись: lease → доставка → статус.
func (p *Processor) processEntry(ctx context.Context, entry *domain.OutboxEntry, now time.Time) entryOutcome {
	leased, err := p.store.Lease(ctx, entry.ID)
	if err != nil {
		p.logger.Error("failed to lease entry", "key", entry.Key, "error", err)
		return entrySkipped
	}
	if !leased {
		// Запись уже захвачена другим процессом.
		telemetry.OutboxLeaseLost.Inc()
		return entrySkipped
	}

	if err := p.deliverer.Deliver(ctx, entry); err != nil {
		attempts := entry.Attempts + 1
		nextAttempt := now.Add(Backoff(attempts))

		if markErr := p.store.MarkFailed(ctx, entry.ID, attempts, nextAttempt, err.Error()); markErr != nil {
			p.logger.Error("failed to mark entry failed", "key", entry.Key, "error", markErr)
			return entrySkipped
		}

		telemetry.OutboxFailed.Inc()
		p.logger.Warn("delivery failed, rescheduled",
			"key", entry.Key,
			"attempts", attempts,
			"next_attempt_at", nextAttempt,
			"error", err,
		)
		return entryFailed
	}

	if err := p.store.MarkSent(ctx, entry.ID); err != nil {
		// Уведомление уже создано; запись вернётся через reclaim
		// и доставится повторно — дубликат на стороне отображения
		// предпочтительнее потери.
		p.logger.Error("failed to mark entry sent", "key", entry.Key, "error", err)
		return entrySkipped
	}

	telemetry.OutboxDelivered.Inc()
	p.logger.Debug("entry delivered", "key", entry.Key, "recipient", entry.RecipientID)
	return entrySent
}
