package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification — видимое пользователю уведомление.
//
// Принадлежит подсистеме отображения уведомлений; фоновые job'ы
// только создают записи при успешной доставке outbox-записи.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
