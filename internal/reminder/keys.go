package reminder

import (
	"fmt"
	"time"

	"github.com/dkoval/kadrovik/internal/domain"
)

// Idempotency keys — чистые функции: одинаковые аргументы всегда дают
// одинаковую строку, любой отличающийся дискриминатор (включая дату) —
// другую. Ключи человекочитаемы и стабильны между рестартами
// и горизонтально масштабированными экземплярами.

// DateKey возвращает датовую часть ключа: UTC-день, когда условие
// проверялось. Смена дня делает условие «новым».
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ApprovalKey строит ключ напоминания о зависшей заявке на согласование.
// Дискриминатор — текущий статус: переход заявки на следующий шаг
// согласования даёт новое напоминание в тот же день.
func ApprovalKey(date time.Time, entityID int64, status domain.ApprovalStatus) string {
	return fmt.Sprintf("approval:%s:%d:%s", DateKey(date), entityID, status)
}

// ItemKey строит ключ напоминания о пункте обходного листа.
// Дискриминаторы — сам пункт и тип напоминания: due-soon и overdue
// по одному пункту — разные напоминания.
func ItemKey(date time.Time, entityID, itemID int64, category domain.ReminderCategory) string {
	return fmt.Sprintf("item:%s:%d:%d:%s", DateKey(date), entityID, itemID, category)
}

// OutboxKey строит ключ outbox-записи из ключа напоминания и получателя.
// Для фиксированного reminderKey инъективен по userID.
func OutboxKey(reminderKey string, userID int64) string {
	return fmt.Sprintf("%s:%d", reminderKey, userID)
}
