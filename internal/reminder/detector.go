package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dkoval/kadrovik/internal/domain"
	"github.com/dkoval/kadrovik/internal/telemetry"
)

// Параметры сканов по умолчанию.
const (
	// defaultApprovalAge — порог возраста заявки без решения.
	defaultApprovalAge = 24 * time.Hour

	// defaultScanLimit — потолок выборки одного скана.
	defaultScanLimit = 200
)

// ApprovalSource — источник зависших заявок. Реализуется repo.ApprovalRepo.
type ApprovalSource interface {
	ListAging(ctx context.Context, now time.Time, olderThan time.Duration, limit int) ([]domain.ApprovalRequest, error)
}

// ChecklistSource — источник открытых пунктов чек-листов.
// Реализуется repo.ChecklistRepo.
type ChecklistSource interface {
	ListOpen(ctx context.Context, now time.Time, horizon time.Duration, limit int) ([]domain.ChecklistItem, error)
}

// ReminderStore — журнал выданных напоминаний. Реализуется repo.ReminderRepo.
type ReminderStore interface {
	Claim(ctx context.Context, rem *domain.Reminder) (bool, error)
}

// Enqueuer — постановка уведомлений в outbox. Реализуется repo.OutboxRepo.
type Enqueuer interface {
	Enqueue(ctx context.Context, entry *domain.OutboxEntry) error
}

// Detector — детектор условий, требующих напоминания.
type Detector struct {
	approvals ApprovalSource
	items     ChecklistSource
	reminders ReminderStore
	outbox    Enqueuer
	resolver  *Resolver
	logger    *slog.Logger

	approvalAge time.Duration
	scanLimit   int

	// now подменяется в тестах.
	now func() time.Time
}

// Config — конфигурация Detector.
type Config struct {
	Approvals ApprovalSource
	Items     ChecklistSource
	Reminders ReminderStore
	Outbox    Enqueuer
	Resolver  *Resolver
	Logger    *slog.Logger

	// ApprovalAge — порог возраста заявки (default: 24h).
	ApprovalAge time.Duration

	// ScanLimit — потолок выборки одного скана (default: 200).
	ScanLimit int
}

// New создаёт новый Detector.
func New(cfg Config) *Detector {
	approvalAge := cfg.ApprovalAge
	if approvalAge <= 0 {
		approvalAge = defaultApprovalAge
	}

	scanLimit := cfg.ScanLimit
	if scanLimit <= 0 {
		scanLimit = defaultScanLimit
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Detector{
		approvals:   cfg.Approvals,
		items:       cfg.Items,
		reminders:   cfg.Reminders,
		outbox:      cfg.Outbox,
		resolver:    cfg.Resolver,
		logger:      logger,
		approvalAge: approvalAge,
		scanLimit:   scanLimit,
		now:         time.Now,
	}
}

// Tick выполняет оба скана.
//
// Ошибка выборки одного скана не мешает второму; ошибки кандидатов
// логируются и не прерывают обход. Все записи внутри тика идемпотентны,
// поэтому упавший тик безопасно повторяется на следующем интервале.
func (d *Detector) Tick(ctx context.Context) error {
	return errors.Join(
		d.scanApprovals(ctx),
		d.scanChecklists(ctx),
	)
}

// scanApprovals — approval-aging скан: заявки в «ожидающих» статусах
// старше порога.
func (d *Detector) scanApprovals(ctx context.Context) error {
	now := d.now()

	requests, err := d.approvals.ListAging(ctx, now, d.approvalAge, d.scanLimit)
	if err != nil {
		return fmt.Errorf("list aging approvals: %w", err)
	}

	var issued int
	for i := range requests {
		req := &requests[i]

		ok, err := d.processApproval(ctx, req, now)
		if err != nil {
			d.logger.Error("failed to process aging approval",
				"approval_id", req.ID,
				"status", req.Status,
				"error", err,
			)
			continue
		}
		if ok {
			issued++
		}
	}

	if len(requests) > 0 {
		d.logger.Info("approval scan completed",
			"candidates", len(requests),
			"issued", issued,
		)
	}
	return nil
}

// processApproval обрабатывает одну зависшую заявку.
// Возвращает true, если напоминание выдано этим вызовом.
func (d *Detector) processApproval(ctx context.Context, req *domain.ApprovalRequest, now time.Time) (bool, error) {
	key := ApprovalKey(now, req.ID, req.Status)

	created, err := d.reminders.Claim(ctx, &domain.Reminder{
		Key:       key,
		EntityID:  req.ID,
		Category:  domain.CategoryApprovalAging,
		Lane:      req.ApproverLane,
		CreatedAt: now,
	})
	if err != nil {
		return false, fmt.Errorf("claim reminder: %w", err)
	}
	if !created {
		// Сегодня уже выдано (этим или другим процессом).
		return false, nil
	}

	payload := domain.NotificationPayload{
		Type:  string(domain.CategoryApprovalAging),
		Title: "Заявка ждёт согласования",
		Body:  fmt.Sprintf("Заявка «%s» ждёт решения больше суток.", req.Title),
		Link:  fmt.Sprintf("/approvals/%d", req.ID),
	}

	if err := d.fanOut(ctx, key, Target{Lane: req.ApproverLane, Role: req.ApproverRole}, payload, now); err != nil {
		return true, err
	}

	telemetry.RemindersIssued.WithLabelValues(string(domain.CategoryApprovalAging)).Inc()
	d.logger.Info("issued approval reminder",
		"key", key,
		"approval_id", req.ID,
		"status", req.Status,
	)
	return true, nil
}

// scanChecklists — checklist-due скан: обязательные пункты с дедлайном
// в окне предпросмотра или уже просроченные.
func (d *Detector) scanChecklists(ctx context.Context) error {
	now := d.now()

	items, err := d.items.ListOpen(ctx, now, DueLookahead, d.scanLimit)
	if err != nil {
		return fmt.Errorf("list open checklist items: %w", err)
	}

	var issued int
	for i := range items {
		it := &items[i]

		category, ok := categoryFor(ClassifyDue(it.DueAt, now))
		if !ok {
			continue
		}

		done, err := d.processItem(ctx, it, category, now)
		if err != nil {
			d.logger.Error("failed to process checklist item",
				"item_id", it.ID,
				"request_id", it.RequestID,
				"error", err,
			)
			continue
		}
		if done {
			issued++
		}
	}

	if len(items) > 0 {
		d.logger.Info("checklist scan completed",
			"candidates", len(items),
			"issued", issued,
		)
	}
	return nil
}

// processItem обрабатывает один пункт чек-листа.
// Возвращает true, если напоминание выдано этим вызовом.
func (d *Detector) processItem(ctx context.Context, it *domain.ChecklistItem, category domain.ReminderCategory, now time.Time) (bool, error) {
	key := ItemKey(now, it.RequestID, it.ID, category)

	itemID := it.ID
	created, err := d.reminders.Claim(ctx, &domain.Reminder{
		Key:       key,
		EntityID:  it.RequestID,
		Category:  category,
		Lane:      it.Lane,
		ItemID:    &itemID,
		CreatedAt: now,
	})
	if err != nil {
		return false, fmt.Errorf("claim reminder: %w", err)
	}
	if !created {
		return false, nil
	}

	payload := itemPayload(it, category)

	if err := d.fanOut(ctx, key, Target{Lane: it.Lane, Role: "HR"}, payload, now); err != nil {
		return true, err
	}

	telemetry.RemindersIssued.WithLabelValues(string(category)).Inc()
	d.logger.Info("issued checklist reminder",
		"key", key,
		"item_id", it.ID,
		"request_id", it.RequestID,
		"category", category,
	)
	return true, nil
}

// fanOut ставит в outbox по записи на каждого получателя.
func (d *Detector) fanOut(ctx context.Context, reminderKey string, target Target, payload domain.NotificationPayload, now time.Time) error {
	recipients, err := d.resolver.Resolve(ctx, target)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		d.logger.Warn("no recipients resolved, reminder recorded without fan-out",
			"key", reminderKey,
			"lane", target.Lane,
			"role", target.Role,
		)
		return nil
	}

	for _, userID := range recipients {
		entry := &domain.OutboxEntry{
			ID:            uuid.New(),
			Key:           OutboxKey(reminderKey, userID),
			RecipientID:   userID,
			Payload:       payload,
			Status:        domain.OutboxStatusPending,
			NextAttemptAt: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := d.outbox.Enqueue(ctx, entry); err != nil {
			return fmt.Errorf("enqueue for user %d: %w", userID, err)
		}
	}
	return nil
}

// categoryFor сопоставляет классификацию дедлайна типу напоминания.
func categoryFor(state DueState) (domain.ReminderCategory, bool) {
	switch state {
	case DueStateOverdue:
		return domain.CategoryItemOverdue, true
	case DueStateDueSoon:
		return domain.CategoryItemDueSoon, true
	default:
		return "", false
	}
}

func itemPayload(it *domain.ChecklistItem, category domain.ReminderCategory) domain.NotificationPayload {
	link := fmt.Sprintf("/offboarding/%d", it.RequestID)

	if category == domain.CategoryItemOverdue {
		return domain.NotificationPayload{
			Type:  string(category),
			Title: "Просрочен пункт обходного листа",
			Body:  fmt.Sprintf("Пункт «%s» должен был быть закрыт %s.", it.Title, it.DueAt.Format("02.01.2006 15:04")),
			Link:  link,
		}
	}
	return domain.NotificationPayload{
		Type:  string(category),
		Title: "Приближается срок по обходному листу",
		Body:  fmt.Sprintf("Пункт «%s» нужно закрыть до %s.", it.Title, it.DueAt.Format("02.01.2006 15:04")),
		Link:  link,
	}
}
