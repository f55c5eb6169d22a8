// Package dblock реализует межпроцессную взаимоисключающую блокировку
// поверх advisory locks PostgreSQL.
//
// Несколько экземпляров сервиса могут работать одновременно; advisory lock
// гарантирует, что именованную периодическую задачу в каждый момент
// выполняет не более одного процесса. Захват неблокирующий: если блокировка
// занята, вызов молча пропускается — без очереди и повторов.
//
// Блокировка привязана к сессии, поэтому захват и освобождение обязаны
// происходить на одном и том же соединении: на время работы fn соединение
// закрепляется из пула.
package dblock

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Mutex — фабрика именованных блокировок поверх пула соединений.
type Mutex struct {
	pool *pgxpool.Pool
}

// New создаёт новый Mutex.
func New(pool *pgxpool.Pool) *Mutex {
	return &Mutex{pool: pool}
}

// Key возвращает стабильный 64-битный ключ advisory lock для имени.
func Key(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

// WithLock выполняет fn под именованной блокировкой.
//
// Возвращает (false, nil), если блокировку держит другой процесс —
// это штатный пропуск, не ошибка. Блокировка освобождается на любом
// пути выхода, включая ошибку fn; ошибка fn пробрасывается вызывающему.
func (m *Mutex) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) (bool, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	key := Key(name)

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&locked); err != nil {
		return false, fmt.Errorf("try advisory lock %q: %w", name, err)
	}
	if !locked {
		return false, nil
	}

	defer func() {
		// Фоновый контекст: блокировку надо снять даже при отменённом ctx.
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", key)
	}()

	if err := fn(ctx); err != nil {
		return true, err
	}
	return true, nil
}
