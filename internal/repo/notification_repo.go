package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkoval/kadrovik/internal/domain"
)

// NotificationRepo — репозиторий для записи уведомлений.
//
// Таблицей владеет подсистема отображения; здесь только запись
// как результат доставки outbox-записи.
type NotificationRepo struct {
	pool *pgxpool.Pool
}

// NewNotificationRepo создаёт новый NotificationRepo.
func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

// Create создаёт уведомление для пользователя.
func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, body, link, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Body,
		nullString(n.Link),
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
