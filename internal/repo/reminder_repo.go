package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkoval/kadrovik/internal/domain"
)

// ReminderRepo — репозиторий для работы с reminders.
type ReminderRepo struct {
	pool *pgxpool.Pool
}

// NewReminderRepo создаёт новый ReminderRepo.
func NewReminderRepo(pool *pgxpool.Pool) *ReminderRepo {
	return &ReminderRepo{pool: pool}
}

// Claim пытается зафиксировать факт выдачи напоминания.
//
// Conflict-safe insert по уникальному idempotency key: из нескольких
// конкурирующих процессов вставка удастся ровно одному. Возвращает true,
// если строка создана этим вызовом — только тогда вызывающий делает
// fan-out уведомлений. false без ошибки означает «уже выдано».
func (r *ReminderRepo) Claim(ctx context.Context, rem *domain.Reminder) (bool, error) {
	query := `
		INSERT INTO reminders (idempotency_key, entity_id, category, lane, item_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (idempotency_key) DO NOTHING
	`
	result, err := r.pool.Exec(ctx, query,
		rem.Key,
		rem.EntityID,
		rem.Category,
		nullString(rem.Lane),
		rem.ItemID,
		rem.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("claim reminder: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// ListSince возвращает напоминания, выданные после since (новые первыми).
// Используется операторской CLI.
func (r *ReminderRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]domain.Reminder, error) {
	query := `
		SELECT id, idempotency_key, entity_id, category, lane, item_id, created_at
		FROM reminders
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []domain.Reminder
	for rows.Next() {
		var rem domain.Reminder
		var lane *string
		if err := rows.Scan(&rem.ID, &rem.Key, &rem.EntityID, &rem.Category, &lane, &rem.ItemID, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		if lane != nil {
			rem.Lane = *lane
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
