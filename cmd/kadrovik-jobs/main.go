// Kadrovik Jobs — фоновые задачи HR-системы.
//
// Сервис:
//   - раз в минуту ищет условия, требующие напоминания
//     (зависшие согласования, дедлайны обходных листов)
//   - раз в 5 секунд доставляет уведомления из outbox с retry
//
// Экземпляры масштабируются горизонтально: advisory locks в Postgres
// не дают двум процессам выполнять один job одновременно, а уникальные
// idempotency keys гарантируют корректность даже без блокировки.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkoval/kadrovik/internal/dblock"
	"github.com/dkoval/kadrovik/internal/jobs"
	"github.com/dkoval/kadrovik/internal/mq"
	"github.com/dkoval/kadrovik/internal/outbox"
	"github.com/dkoval/kadrovik/internal/reminder"
	"github.com/dkoval/kadrovik/internal/repo"
	"github.com/dkoval/kadrovik/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting kadrovik-jobs")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Репозитории
	reminderRepo := repo.NewReminderRepo(pool)
	outboxRepo := repo.NewOutboxRepo(pool)
	notificationRepo := repo.NewNotificationRepo(pool)
	approvalRepo := repo.NewApprovalRepo(pool)
	checklistRepo := repo.NewChecklistRepo(pool)
	memberRepo := repo.NewMemberRepo(pool)

	// RabbitMQ (опционально: без него работаем в режиме «только БД»)
	var publisher *mq.Publisher
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, notifications will be DB-only", "error", err)
	} else {
		defer mqConn.Close()
		if err := mq.SetupTopology(mqConn); err != nil {
			logger.Error("failed to set up MQ topology", "error", err)
			os.Exit(1)
		}
		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Компоненты
	detector := reminder.New(reminder.Config{
		Approvals: approvalRepo,
		Items:     checklistRepo,
		Reminders: reminderRepo,
		Outbox:    outboxRepo,
		Resolver:  reminder.NewResolver(memberRepo, logger),
		Logger:    logger,
	})

	processor := outbox.New(outbox.Config{
		Store:     outboxRepo,
		Deliverer: outbox.NewNotificationDeliverer(notificationRepo, publisher, logger),
		Logger:    logger,
	})

	// Supervisor
	supervisor := jobs.New(dblock.New(pool), logger,
		jobs.Job{
			Name:     "reminder-detector",
			Interval: envDuration("REMINDER_INTERVAL", time.Minute),
			CronExpr: os.Getenv("REMINDER_CRON"),
			Task:     detector.Tick,
		},
		jobs.Job{
			Name:     "outbox-processor",
			Interval: envDuration("OUTBOX_INTERVAL", 5*time.Second),
			Task:     processor.Tick,
		},
	)

	if err := supervisor.Start(ctx); err != nil {
		logger.Error("failed to start jobs", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("JOBS_PORT"); v != "" {
		port = ":" + v
	}

	server := &http.Server{Addr: port, Handler: mux}
	go func() {
		logger.Info("listening", "addr", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	supervisor.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	logger.Info("kadrovik-jobs stopped")
}

// envDuration читает длительность из переменной окружения.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
