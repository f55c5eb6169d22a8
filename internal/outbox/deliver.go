package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dkoval/kadrovik/internal/domain"
	"github.com/dkoval/kadrovik/internal/mq"
)

// Deliverer выполняет собственно доставку одной outbox-записи.
type Deliverer interface {
	Deliver(ctx context.Context, entry *domain.OutboxEntry) error
}

// NotificationWriter — запись готовых уведомлений.
// Реализуется repo.NotificationRepo.
type NotificationWriter interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// NotificationDeliverer материализует уведомление в БД и, если настроен
// publisher, объявляет о нём подсистеме отображения через RabbitMQ.
type NotificationDeliverer struct {
	notifications NotificationWriter
	publisher     *mq.Publisher
	logger        *slog.Logger
}

// NewNotificationDeliverer создаёт новый NotificationDeliverer.
// publisher может быть nil — тогда доставка ограничивается записью в БД.
func NewNotificationDeliverer(notifications NotificationWriter, publisher *mq.Publisher, logger *slog.Logger) *NotificationDeliverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationDeliverer{
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// Deliver создаёт уведомление для получателя записи.
func (d *NotificationDeliverer) Deliver(ctx context.Context, entry *domain.OutboxEntry) error {
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    entry.RecipientID,
		Type:      entry.Payload.Type,
		Title:     entry.Payload.Title,
		Body:      entry.Payload.Body,
		Link:      entry.Payload.Link,
		CreatedAt: time.Now(),
	}

	if err := d.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	// Публикация не влияет на судьбу записи: уведомление уже в БД,
	// подсистема отображения дочитает его и без события.
	if d.publisher != nil {
		if err := d.publisher.PublishNotificationCreated(ctx, n.ID, n.UserID); err != nil {
			d.logger.Warn("failed to publish notification.created",
				"notification_id", n.ID,
				"error", err,
			)
		}
	}

	return nil
}
