package reminder

import "time"

// DueLookahead — окно предпросмотра дедлайнов чек-листа.
const DueLookahead = 48 * time.Hour

// DueState — классификация дедлайна пункта относительно «сейчас».
type DueState int

const (
	// DueStateNone — дедлайн не назначен или ещё далеко. Сигнала нет.
	DueStateNone DueState = iota

	// DueStateDueSoon — дедлайн внутри окна предпросмотра.
	DueStateDueSoon

	// DueStateOverdue — дедлайн уже прошёл.
	DueStateOverdue
)

// ClassifyDue классифицирует дедлайн.
// nil — пункт без дедлайна: не «скоро», не «просрочен», просто тишина.
func ClassifyDue(dueAt *time.Time, now time.Time) DueState {
	if dueAt == nil {
		return DueStateNone
	}
	if dueAt.Before(now) {
		return DueStateOverdue
	}
	if dueAt.Sub(now) <= DueLookahead {
		return DueStateDueSoon
	}
	return DueStateNone
}
