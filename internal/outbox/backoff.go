package outbox

import "time"

// Параметры backoff.
const (
	backoffBase    = 30 * time.Second
	backoffCeiling = time.Hour
	backoffMaxExp  = 8
)

// Backoff возвращает задержку перед следующей попыткой доставки:
// min(3600, 30 * 2^min(8, attempts)) секунд.
//
// Показатель ограничен, чтобы не переполняться на больших attempts;
// потолок в час держит бесконечные повторы редкими, но живыми.
func Backoff(attempts int) time.Duration {
	exp := attempts
	if exp > backoffMaxExp {
		exp = backoffMaxExp
	}
	if exp < 0 {
		exp = 0
	}

	d := backoffBase * (1 << uint(exp))
	if d > backoffCeiling {
		return backoffCeiling
	}
	return d
}
