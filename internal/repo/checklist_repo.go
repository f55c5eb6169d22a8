package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkoval/kadrovik/internal/domain"
)

// ChecklistRepo — read-only доступ к пунктам обходных листов.
// Таблицами владеет CRUD-часть системы.
type ChecklistRepo struct {
	pool *pgxpool.Pool
}

// NewChecklistRepo создаёт новый ChecklistRepo.
func NewChecklistRepo(pool *pgxpool.Pool) *ChecklistRepo {
	return &ChecklistRepo{pool: pool}
}

// ListOpen возвращает обязательные незакрытые пункты с назначенным
// дедлайном не дальше horizon от now, у которых родительская заявка
// в фазе обходного листа. Ближайшие дедлайны первыми.
//
// Пункты без due_at отсекаются в SQL: нет дедлайна — нет сигнала.
func (r *ChecklistRepo) ListOpen(ctx context.Context, now time.Time, horizon time.Duration, limit int) ([]domain.ChecklistItem, error) {
	query := `
		SELECT i.id, i.request_id, i.title, i.lane, i.required, i.status, i.due_at
		FROM checklist_items i
		JOIN offboarding_requests o ON o.id = i.request_id
		WHERE i.required = true
		  AND i.status = 'PENDING'
		  AND i.due_at IS NOT NULL
		  AND i.due_at <= $1
		  AND o.status = 'CLEARANCE_IN_PROGRESS'
		ORDER BY i.due_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now.Add(horizon), limit)
	if err != nil {
		return nil, fmt.Errorf("list open checklist items: %w", err)
	}
	defer rows.Close()

	var items []domain.ChecklistItem
	for rows.Next() {
		var it domain.ChecklistItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.Title, &it.Lane, &it.Required, &it.Status, &it.DueAt); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
