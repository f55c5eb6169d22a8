package domain

import "time"

// ReminderCategory — тип условия, по которому выдано напоминание.
type ReminderCategory string

const (
	// CategoryApprovalAging — заявка на согласование висит без решения
	// дольше порога.
	CategoryApprovalAging ReminderCategory = "APPROVAL_AGING"

	// CategoryItemDueSoon — дедлайн пункта чек-листа внутри окна предпросмотра.
	CategoryItemDueSoon ReminderCategory = "ITEM_DUE_SOON"

	// CategoryItemOverdue — дедлайн пункта чек-листа уже прошёл.
	CategoryItemOverdue ReminderCategory = "ITEM_OVERDUE"
)

// Reminder — факт «напоминание по этому условию сегодня уже выдано».
//
// Запись создаётся детектором через conflict-safe insert по уникальному
// idempotency key и после этого никогда не изменяется и не удаляется:
// таблица служит append-only журналом выданных напоминаний.
// Уникальность ключа — единственный механизм «не чаще раза в день».
type Reminder struct {
	// ID — суррогатный идентификатор строки.
	ID int64 `json:"id"`

	// Key — детерминированный idempotency key условия.
	// Например: "approval:2026-08-30:417:PENDING_MANAGER".
	Key string `json:"key"`

	// EntityID — идентификатор сущности, породившей напоминание
	// (заявка на согласование или заявка на увольнение).
	EntityID int64 `json:"entity_id"`

	// Category — тип условия.
	Category ReminderCategory `json:"category"`

	// Lane — отдел-адресат, если применимо.
	Lane string `json:"lane,omitempty"`

	// ItemID — пункт чек-листа, если напоминание о пункте.
	ItemID *int64 `json:"item_id,omitempty"`

	// CreatedAt — время выдачи напоминания.
	CreatedAt time.Time `json:"created_at"`
}
