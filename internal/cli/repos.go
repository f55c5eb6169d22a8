package cli

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkoval/kadrovik/internal/repo"
)

// Repos — набор репозиториев CLI и владеющий ими пул соединений.
type Repos struct {
	Outbox    *repo.OutboxRepo
	Reminders *repo.ReminderRepo

	pool *pgxpool.Pool
}

// NewRepos подключается к базе (DB_URL) и создаёт репозитории.
func NewRepos(ctx context.Context) (*Repos, error) {
	pool, err := repo.NewPool(ctx)
	if err != nil {
		return nil, err
	}
	return &Repos{
		Outbox:    repo.NewOutboxRepo(pool),
		Reminders: repo.NewReminderRepo(pool),
		pool:      pool,
	}, nil
}

// Close закрывает пул соединений.
func (r *Repos) Close() {
	r.pool.Close()
}
