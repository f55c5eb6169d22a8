package domain

import "time"

// ChecklistItem — пункт обходного листа при увольнении
// (сдать технику, закрыть доступы, подписать обходной).
//
// Таблицей владеет CRUD-часть системы; фоновые job'ы её только читают.
type ChecklistItem struct {
	// ID — идентификатор пункта.
	ID int64 `json:"id"`

	// RequestID — родительская заявка на увольнение.
	RequestID int64 `json:"request_id"`

	// Title — название пункта.
	Title string `json:"title"`

	// Lane — отдел, отвечающий за закрытие пункта.
	Lane string `json:"lane"`

	// Required — обязателен ли пункт. Необязательные не сканируются.
	Required bool `json:"required"`

	// Status — текущий статус пункта.
	Status ItemStatus `json:"status"`

	// DueAt — дедлайн. Nil — дедлайн не назначен, пункт не даёт сигнала.
	DueAt *time.Time `json:"due_at,omitempty"`
}
