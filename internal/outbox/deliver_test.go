package outbox

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/dkoval/kadrovik/internal/domain"
	"github.com/dkoval/kadrovik/internal/mq"
)

// fakeNotifications накапливает созданные уведомления в памяти.
type fakeNotifications struct {
	created []domain.Notification
	err     error
}

func (f *fakeNotifications) Create(_ context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *n)
	return nil
}

func TestNotificationDeliverer_CreatesNotification(t *testing.T) {
	entry := pendingEntry("approval:2026-08-30:417:PENDING_MANAGER:42")
	entry.RecipientID = 42
	entry.Payload = domain.NotificationPayload{
		Type:  string(domain.CategoryApprovalAging),
		Title: "Заявка ждёт согласования",
		Body:  "Заявка «Командировка в Казань» ждёт решения больше суток.",
		Link:  "/approvals/417",
	}

	writer := &fakeNotifications{}
	d := NewNotificationDeliverer(writer, nil, nil)

	if err := d.Deliver(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(writer.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(writer.created))
	}

	n := writer.created[0]
	if n.ID == uuid.Nil {
		t.Error("notification must get a fresh id")
	}
	if n.UserID != entry.RecipientID {
		t.Errorf("expected user %d, got %d", entry.RecipientID, n.UserID)
	}
	if n.Type != entry.Payload.Type {
		t.Errorf("expected type %q, got %q", entry.Payload.Type, n.Type)
	}
	if n.Title != entry.Payload.Title {
		t.Errorf("expected title %q, got %q", entry.Payload.Title, n.Title)
	}
	if n.Body != entry.Payload.Body {
		t.Errorf("expected body %q, got %q", entry.Payload.Body, n.Body)
	}
	if n.Link != entry.Payload.Link {
		t.Errorf("expected link %q, got %q", entry.Payload.Link, n.Link)
	}
	if n.Read {
		t.Error("new notification must be unread")
	}
	if n.CreatedAt.IsZero() {
		t.Error("created_at must be set")
	}
}

func TestNotificationDeliverer_WriterErrorPropagates(t *testing.T) {
	writer := &fakeNotifications{err: errors.New("db gone")}
	d := NewNotificationDeliverer(writer, nil, nil)

	if err := d.Deliver(context.Background(), pendingEntry("k:werr")); err == nil {
		t.Fatal("expected error when the notification insert fails")
	}
}

// Ошибка публикации события не роняет доставку: уведомление уже в БД,
// подсистема отображения дочитает его и без события.
func TestNotificationDeliverer_PublishFailureDoesNotFailDelivery(t *testing.T) {
	// Соединение без открытого канала: публикация гарантированно падает.
	publisher := mq.NewPublisher(&mq.Connection{}, slog.Default())

	writer := &fakeNotifications{}
	d := NewNotificationDeliverer(writer, publisher, slog.Default())

	if err := d.Deliver(context.Background(), pendingEntry("k:pub")); err != nil {
		t.Fatalf("publish failure must not fail delivery: %v", err)
	}
	if len(writer.created) != 1 {
		t.Errorf("expected 1 notification, got %d", len(writer.created))
	}
}

// Полный путь доставки: processor с настоящим NotificationDeliverer —
// из PENDING-записи получается ровно одно уведомление получателю.
func TestProcessor_MaterializesNotification(t *testing.T) {
	entry := pendingEntry("item:2026-08-30:7:3:ITEM_DUE_SOON:9")
	entry.RecipientID = 9
	entry.Payload = domain.NotificationPayload{
		Type:  string(domain.CategoryItemDueSoon),
		Title: "Приближается срок по обходному листу",
		Body:  "Пункт «Сдать технику» нужно закрыть до 01.09.2026 12:00.",
		Link:  "/offboarding/7",
	}

	store := newFakeStore(entry)
	writer := &fakeNotifications{}

	p := newTestProcessor(store, NewNotificationDeliverer(writer, nil, nil), processorNow)
	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Status != domain.OutboxStatusSent {
		t.Errorf("expected SENT, got %s", entry.Status)
	}
	if len(writer.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(writer.created))
	}
	if writer.created[0].UserID != 9 {
		t.Errorf("expected notification for user 9, got %d", writer.created[0].UserID)
	}
}
