package outbox

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dkoval/kadrovik/internal/domain"
)

// --- Fakes ---

// fakeStore повторяет семантику OutboxRepo в памяти, включая условный
// lease: захват удаётся только из PENDING/FAILED.
type fakeStore struct {
	entries map[uuid.UUID]*domain.OutboxEntry
}

func newFakeStore(entries ...*domain.OutboxEntry) *fakeStore {
	s := &fakeStore{entries: make(map[uuid.UUID]*domain.OutboxEntry)}
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return s
}

func (s *fakeStore) ListDue(_ context.Context, now time.Time, limit int) ([]domain.OutboxEntry, error) {
	var due []domain.OutboxEntry
	for _, e := range s.entries {
		if e.Status.Leasable() && !e.NextAttemptAt.After(now) {
			due = append(due, *e)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *fakeStore) Lease(_ context.Context, id uuid.UUID) (bool, error) {
	e, ok := s.entries[id]
	if !ok || !e.Status.Leasable() {
		return false, nil
	}
	e.Status = domain.OutboxStatusSending
	return true, nil
}

func (s *fakeStore) MarkSent(_ context.Context, id uuid.UUID) error {
	s.entries[id].Status = domain.OutboxStatusSent
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id uuid.UUID, attempts int, nextAttempt time.Time, errText string) error {
	e := s.entries[id]
	e.Status = domain.OutboxStatusFailed
	e.Attempts = attempts
	e.NextAttemptAt = nextAttempt
	e.LastError = errText
	return nil
}

func (s *fakeStore) ReclaimStuck(_ context.Context, olderThan time.Time) (int64, error) {
	var n int64
	for _, e := range s.entries {
		if e.Status == domain.OutboxStatusSending && e.UpdatedAt.Before(olderThan) {
			e.Status = domain.OutboxStatusPending
			n++
		}
	}
	return n, nil
}

// fakeDeliverer падает заданное число раз, затем доставляет.
type fakeDeliverer struct {
	failures  int
	delivered []string
}

func (d *fakeDeliverer) Deliver(_ context.Context, entry *domain.OutboxEntry) error {
	if d.failures > 0 {
		d.failures--
		return errors.New("smtp timeout")
	}
	d.delivered = append(d.delivered, entry.Key)
	return nil
}

// --- Helpers ---

var processorNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func pendingEntry(key string) *domain.OutboxEntry {
	return &domain.OutboxEntry{
		ID:            uuid.New(),
		Key:           key,
		RecipientID:   1,
		Status:        domain.OutboxStatusPending,
		NextAttemptAt: processorNow.Add(-time.Second),
		CreatedAt:     processorNow.Add(-time.Minute),
		UpdatedAt:     processorNow.Add(-time.Minute),
	}
}

func newTestProcessor(store Store, deliverer Deliverer, now time.Time) *Processor {
	p := New(Config{Store: store, Deliverer: deliverer})
	p.now = func() time.Time { return now }
	return p
}

// --- Tests ---

func TestProcessor_DeliversPendingEntry(t *testing.T) {
	entry := pendingEntry("k:1")
	store := newFakeStore(entry)
	deliverer := &fakeDeliverer{}

	p := newTestProcessor(store, deliverer, processorNow)
	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Status != domain.OutboxStatusSent {
		t.Errorf("expected SENT, got %s", entry.Status)
	}
	if len(deliverer.delivered) != 1 {
		t.Errorf("expected 1 delivery, got %d", len(deliverer.delivered))
	}
}

// Сценарий: доставка падает один раз, затем успевает на следующем
// подходящем тике — финальный статус SENT, в attempts ровно одна неудача.
func TestProcessor_RetryAfterBackoff(t *testing.T) {
	entry := pendingEntry("k:retry")
	store := newFakeStore(entry)
	deliverer := &fakeDeliverer{failures: 1}

	p := newTestProcessor(store, deliverer, processorNow)
	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Status != domain.OutboxStatusFailed {
		t.Fatalf("expected FAILED after first tick, got %s", entry.Status)
	}
	if entry.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", entry.Attempts)
	}
	wantNext := processorNow.Add(Backoff(1))
	if !entry.NextAttemptAt.Equal(wantNext) {
		t.Errorf("expected next attempt at %v, got %v", wantNext, entry.NextAttemptAt)
	}
	if entry.LastError == "" {
		t.Error("expected last error recorded")
	}

	// До истечения backoff запись не берётся.
	p2 := newTestProcessor(store, deliverer, processorNow.Add(10*time.Second))
	if err := p2.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.OutboxStatusFailed {
		t.Fatalf("entry must stay FAILED before backoff elapses, got %s", entry.Status)
	}

	// После истечения — доставляется.
	p3 := newTestProcessor(store, deliverer, processorNow.Add(Backoff(1)+time.Second))
	if err := p3.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.OutboxStatusSent {
		t.Errorf("expected SENT, got %s", entry.Status)
	}
	if entry.Attempts != 1 {
		t.Errorf("attempts must reflect exactly one failure, got %d", entry.Attempts)
	}
}

// Из двух попыток захвата одной записи выигрывает ровно одна.
func TestProcessor_LeaseSingleWinner(t *testing.T) {
	entry := pendingEntry("k:race")
	store := newFakeStore(entry)

	ok1, err := store.Lease(context.Background(), entry.ID)
	if err != nil || !ok1 {
		t.Fatalf("first lease must win: ok=%v err=%v", ok1, err)
	}
	ok2, err := store.Lease(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok2 {
		t.Error("second lease must observe zero rows affected")
	}
}

// Запись, захваченная другим процессом между выборкой и lease,
// молча пропускается.
func TestProcessor_SkipsConcurrentlyLeasedEntry(t *testing.T) {
	entry := pendingEntry("k:taken")
	store := newFakeStore(entry)
	deliverer := &fakeDeliverer{}

	// Другой процесс успел первым.
	if ok, _ := store.Lease(context.Background(), entry.ID); !ok {
		t.Fatal("setup lease failed")
	}
	// Но в нашей уже полученной партии запись ещё числится.
	stale := *entry
	stale.Status = domain.OutboxStatusPending

	p := newTestProcessor(store, deliverer, processorNow)
	if got := p.processEntry(context.Background(), &stale, processorNow); got != entrySkipped {
		t.Errorf("expected entrySkipped, got %v", got)
	}
	if len(deliverer.delivered) != 0 {
		t.Error("skipped entry must not be delivered")
	}
}

// Ошибка доставки одной записи не мешает остальным в партии.
func TestProcessor_RowFailureDoesNotStopBatch(t *testing.T) {
	bad := pendingEntry("k:bad")
	bad.NextAttemptAt = processorNow.Add(-2 * time.Second) // раньше в партии
	good := pendingEntry("k:good")

	store := newFakeStore(bad, good)
	deliverer := &fakeDeliverer{failures: 1}

	p := newTestProcessor(store, deliverer, processorNow)
	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bad.Status != domain.OutboxStatusFailed {
		t.Errorf("expected bad entry FAILED, got %s", bad.Status)
	}
	if good.Status != domain.OutboxStatusSent {
		t.Errorf("expected good entry SENT, got %s", good.Status)
	}
}

// Зависшие в SENDING записи возвращаются в оборот и доставляются.
func TestProcessor_ReclaimsStuckSending(t *testing.T) {
	entry := pendingEntry("k:stuck")
	entry.Status = domain.OutboxStatusSending
	entry.UpdatedAt = processorNow.Add(-time.Hour)

	store := newFakeStore(entry)
	deliverer := &fakeDeliverer{}

	p := newTestProcessor(store, deliverer, processorNow)
	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.Status != domain.OutboxStatusSent {
		t.Errorf("reclaimed entry must be delivered, got %s", entry.Status)
	}
}

// Свежий SENDING (работа в полёте) не трогается.
func TestProcessor_LeavesFreshSendingAlone(t *testing.T) {
	entry := pendingEntry("k:inflight")
	entry.Status = domain.OutboxStatusSending
	entry.UpdatedAt = processorNow.Add(-time.Minute)

	store := newFakeStore(entry)
	p := newTestProcessor(store, &fakeDeliverer{}, processorNow)

	if err := p.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.OutboxStatusSending {
		t.Errorf("in-flight entry must stay SENDING, got %s", entry.Status)
	}
}
