package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPayload — содержимое будущего уведомления.
// Хранится в outbox как jsonb и переносится в notification при доставке.
type NotificationPayload struct {
	// Type — машинный тип уведомления (совпадает с ReminderCategory).
	Type string `json:"type"`

	// Title — заголовок.
	Title string `json:"title"`

	// Body — текст.
	Body string `json:"body"`

	// Link — относительная ссылка на экран сущности, опционально.
	Link string `json:"link,omitempty"`
}

// OutboxEntry — единица отложенной доставки: одно уведомление
// одному получателю.
//
// Создаётся детектором в статусе PENDING при fan-out напоминания.
// Уникальный Key (производный от ключа напоминания и получателя)
// делает повторный fan-out no-op'ом.
type OutboxEntry struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// Key — idempotency key пары (напоминание, получатель).
	Key string `json:"key"`

	// RecipientID — пользователь-получатель.
	RecipientID int64 `json:"recipient_id"`

	// Payload — содержимое уведомления.
	Payload NotificationPayload `json:"payload"`

	// Status — текущий статус доставки.
	Status OutboxStatus `json:"status"`

	// Attempts — число неуспешных попыток доставки.
	Attempts int `json:"attempts"`

	// NextAttemptAt — раньше этого времени запись не берётся в работу.
	NextAttemptAt time.Time `json:"next_attempt_at"`

	// LastError — текст последней ошибки доставки.
	LastError string `json:"last_error,omitempty"`

	// CreatedAt — время постановки в очередь.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего перехода статуса.
	UpdatedAt time.Time `json:"updated_at"`
}

// MarkSent переводит запись в финальный статус SENT.
func (e *OutboxEntry) MarkSent() {
	e.Status = OutboxStatusSent
	e.UpdatedAt = time.Now()
}

// MarkFailed фиксирует неуспешную попытку и время следующей.
func (e *OutboxEntry) MarkFailed(errText string, nextAttempt time.Time) {
	e.Status = OutboxStatusFailed
	e.Attempts++
	e.LastError = errText
	e.NextAttemptAt = nextAttempt
	e.UpdatedAt = time.Now()
}
