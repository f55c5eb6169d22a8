package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkoval/kadrovik/internal/domain"
)

// OutboxRepo — репозиторий для работы с outbox.
type OutboxRepo struct {
	pool *pgxpool.Pool
}

// NewOutboxRepo создаёт новый OutboxRepo.
func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// Enqueue ставит уведомление в очередь доставки.
//
// Conflict-safe insert по уникальному ключу пары (напоминание, получатель):
// повторный fan-out того же напоминания — no-op без ошибки.
func (r *OutboxRepo) Enqueue(ctx context.Context, entry *domain.OutboxEntry) error {
	payloadJSON, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query := `
		INSERT INTO outbox (id, idempotency_key, recipient_id, payload, status,
		                    attempts, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (idempotency_key) DO NOTHING
	`
	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.Key,
		entry.RecipientID,
		payloadJSON,
		entry.Status,
		entry.Attempts,
		entry.NextAttemptAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue outbox entry: %w", err)
	}
	return nil
}

// ListDue возвращает записи, готовые к доставке: статус PENDING или FAILED
// и next_attempt_at не позже now. Старые дедлайны первыми.
func (r *OutboxRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.OutboxEntry, error) {
	query := `
		SELECT id, idempotency_key, recipient_id, payload, status,
		       attempts, next_attempt_at, last_error, created_at, updated_at
		FROM outbox
		WHERE status IN ('PENDING', 'FAILED')
		  AND next_attempt_at <= $1
		ORDER BY next_attempt_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due outbox entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Lease пытается захватить запись для доставки.
//
// Условный UPDATE — единственный механизм конкурентной безопасности
// обработчика: статус переходит в SENDING только если на момент обновления
// запись всё ещё PENDING/FAILED. Ноль затронутых строк — запись уже
// захвачена другим процессом, вызывающий молча пропускает её.
func (r *OutboxRepo) Lease(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE outbox
		SET status = 'SENDING', updated_at = NOW()
		WHERE id = $1 AND status IN ('PENDING', 'FAILED')
	`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("lease outbox entry: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// MarkSent переводит запись в финальный статус SENT.
func (r *OutboxRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE outbox SET status = 'SENT', last_error = NULL, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed фиксирует неуспешную попытку и время следующей.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, nextAttempt time.Time, errText string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE outbox
		SET status = 'FAILED', attempts = $2, next_attempt_at = $3,
		    last_error = $4, updated_at = NOW()
		WHERE id = $1
	`, id, attempts, nextAttempt, errText)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReclaimStuck возвращает в PENDING записи, зависшие в SENDING дольше
// cutoff: воркер, захвативший их, упал, не завершив доставку.
// Возвращает число возвращённых записей.
func (r *OutboxRepo) ReclaimStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE outbox
		SET status = 'PENDING', updated_at = NOW()
		WHERE status = 'SENDING' AND updated_at < $1
	`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("reclaim stuck entries: %w", err)
	}
	return result.RowsAffected(), nil
}

// Requeue принудительно возвращает запись в PENDING с немедленной
// готовностью. Используется операторской CLI.
func (r *OutboxRepo) Requeue(ctx context.Context, key string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE outbox
		SET status = 'PENDING', next_attempt_at = NOW(), updated_at = NOW()
		WHERE idempotency_key = $1 AND status <> 'SENT'
	`, key)
	if err != nil {
		return fmt.Errorf("requeue outbox entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List возвращает записи с фильтрацией по статусу (новые первыми).
func (r *OutboxRepo) List(ctx context.Context, filter OutboxFilter) ([]domain.OutboxEntry, error) {
	query := `
		SELECT id, idempotency_key, recipient_id, payload, status,
		       attempts, next_attempt_at, last_error, created_at, updated_at
		FROM outbox
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	var status *string
	if filter.Status != "" {
		s := string(filter.Status)
		status = &s
	}

	rows, err := r.pool.Query(ctx, query, status, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list outbox entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Stats возвращает количество записей по статусам.
func (r *OutboxRepo) Stats(ctx context.Context) (map[domain.OutboxStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("outbox stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[domain.OutboxStatus]int64)
	for rows.Next() {
		var status domain.OutboxStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// --- Helpers ---

// OutboxFilter — параметры фильтрации outbox-записей.
type OutboxFilter struct {
	Status domain.OutboxStatus
	Limit  int
}

func scanEntries(rows pgx.Rows) ([]domain.OutboxEntry, error) {
	var entries []domain.OutboxEntry
	for rows.Next() {
		var e domain.OutboxEntry
		var payloadJSON []byte
		var lastError *string

		err := rows.Scan(
			&e.ID,
			&e.Key,
			&e.RecipientID,
			&payloadJSON,
			&e.Status,
			&e.Attempts,
			&e.NextAttemptAt,
			&lastError,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}

		if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		if lastError != nil {
			e.LastError = *lastError
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
