package domain

// OutboxStatus — статус записи outbox.
//
// Жизненный цикл:
//
//	PENDING → SENDING → SENT
//	                  ↘ FAILED (после backoff снова кандидат на отправку)
//	FAILED  → SENDING (после наступления next_attempt_at)
//
// SENDING — не «состояние покоя»: запись либо прямо сейчас доставляется,
// либо воркер упал, не завершив обновление.
type OutboxStatus string

const (
	// OutboxStatusPending — запись создана, ожидает доставки.
	OutboxStatusPending OutboxStatus = "PENDING"

	// OutboxStatusSending — запись захвачена (lease) обработчиком.
	OutboxStatusSending OutboxStatus = "SENDING"

	// OutboxStatusSent — доставка успешно завершена.
	OutboxStatusSent OutboxStatus = "SENT"

	// OutboxStatusFailed — последняя попытка неуспешна,
	// повтор после next_attempt_at.
	OutboxStatusFailed OutboxStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
// Финальный статус только один: FAILED-записи повторяются бессрочно.
func (s OutboxStatus) IsTerminal() bool {
	return s == OutboxStatusSent
}

// Leasable возвращает true, если запись в этом статусе можно захватить.
func (s OutboxStatus) Leasable() bool {
	return s == OutboxStatusPending || s == OutboxStatusFailed
}

// ApprovalStatus — статус заявки на согласование.
//
// Сканер напоминаний интересуется только «ожидающими» статусами;
// финальные статусы ведёт CRUD-часть системы.
type ApprovalStatus string

const (
	// ApprovalStatusPendingManager — ждёт решения руководителя.
	ApprovalStatusPendingManager ApprovalStatus = "PENDING_MANAGER"

	// ApprovalStatusPendingHR — ждёт решения HR.
	ApprovalStatusPendingHR ApprovalStatus = "PENDING_HR"

	// ApprovalStatusPendingFinance — ждёт решения финансового отдела.
	ApprovalStatusPendingFinance ApprovalStatus = "PENDING_FINANCE"

	// ApprovalStatusApproved — согласована.
	ApprovalStatusApproved ApprovalStatus = "APPROVED"

	// ApprovalStatusRejected — отклонена.
	ApprovalStatusRejected ApprovalStatus = "REJECTED"

	// ApprovalStatusCancelled — отозвана автором.
	ApprovalStatusCancelled ApprovalStatus = "CANCELLED"
)

// PendingApprovalStatuses — статусы, по которым работает approval-aging скан.
var PendingApprovalStatuses = []ApprovalStatus{
	ApprovalStatusPendingManager,
	ApprovalStatusPendingHR,
	ApprovalStatusPendingFinance,
}

// IsPending возвращает true, если заявка ждёт чьего-то решения.
func (s ApprovalStatus) IsPending() bool {
	switch s {
	case ApprovalStatusPendingManager, ApprovalStatusPendingHR, ApprovalStatusPendingFinance:
		return true
	default:
		return false
	}
}

// ItemStatus — статус пункта чек-листа обходного листа.
type ItemStatus string

const (
	// ItemStatusPending — пункт ещё не закрыт.
	ItemStatusPending ItemStatus = "PENDING"

	// ItemStatusDone — пункт закрыт ответственным отделом.
	ItemStatusDone ItemStatus = "DONE"

	// ItemStatusSkipped — пункт отменён (не требуется для этого сотрудника).
	ItemStatusSkipped ItemStatus = "SKIPPED"
)

// OffboardingStatus — статус заявки на увольнение (родитель чек-листа).
type OffboardingStatus string

const (
	// OffboardingStatusDraft — заявка создана, обходной лист не запущен.
	OffboardingStatusDraft OffboardingStatus = "DRAFT"

	// OffboardingStatusClearance — обходной лист в работе.
	// Только в этой фазе пункты чек-листа сканируются на дедлайны.
	OffboardingStatusClearance OffboardingStatus = "CLEARANCE_IN_PROGRESS"

	// OffboardingStatusCompleted — обходной лист закрыт.
	OffboardingStatusCompleted OffboardingStatus = "COMPLETED"
)
