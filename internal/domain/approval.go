package domain

import "time"

// ApprovalRequest — заявка на согласование (отпуск, командировка,
// компенсация и т.п.).
//
// Таблицей владеет CRUD-часть системы; фоновые job'ы её только читают.
type ApprovalRequest struct {
	// ID — идентификатор заявки.
	ID int64 `json:"id"`

	// Title — человекочитаемый заголовок ("Командировка в Казань").
	Title string `json:"title"`

	// Status — текущий шаг согласования.
	Status ApprovalStatus `json:"status"`

	// ApproverLane — отдел текущего согласующего.
	ApproverLane string `json:"approver_lane"`

	// ApproverRole — роль текущего согласующего (fallback,
	// если у отдела нет явного состава).
	ApproverRole string `json:"approver_role"`

	// CreatedAt — время подачи заявки. По нему считается возраст.
	CreatedAt time.Time `json:"created_at"`
}

// Age возвращает возраст заявки относительно now.
func (a *ApprovalRequest) Age(now time.Time) time.Duration {
	return now.Sub(a.CreatedAt)
}
