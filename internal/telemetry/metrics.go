package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики фоновых job'ов. Регистрируются в default registry,
// отдаются promhttp.Handler'ом на /metrics.
var (
	// RemindersIssued — выданные напоминания по типу условия.
	RemindersIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kadrovik_reminders_issued_total",
		Help: "Reminders issued by the detector, by category.",
	}, []string{"category"})

	// OutboxDelivered — успешно доставленные outbox-записи.
	OutboxDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kadrovik_outbox_delivered_total",
		Help: "Outbox entries delivered successfully.",
	})

	// OutboxFailed — неуспешные попытки доставки.
	OutboxFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kadrovik_outbox_failed_total",
		Help: "Outbox delivery attempts that failed and were rescheduled.",
	})

	// OutboxLeaseLost — проигранные гонки захвата записи.
	OutboxLeaseLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kadrovik_outbox_lease_lost_total",
		Help: "Lease attempts lost to a concurrent process.",
	})

	// OutboxReclaimed — записи, возвращённые из зависшего SENDING.
	OutboxReclaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kadrovik_outbox_reclaimed_total",
		Help: "Entries reclaimed from stuck SENDING state.",
	})

	// LockSkips — тики, пропущенные из-за занятой блокировки.
	LockSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kadrovik_lock_skips_total",
		Help: "Job ticks skipped because another process held the lock.",
	}, []string{"job"})

	// TickDuration — длительность тиков job'ов.
	TickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kadrovik_tick_duration_seconds",
		Help:    "Duration of job ticks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	// TickErrors — тики, завершившиеся ошибкой.
	TickErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kadrovik_tick_errors_total",
		Help: "Job ticks that returned an error.",
	}, []string{"job"})
)
