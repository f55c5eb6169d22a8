// Package outbox реализует доставку отложенных уведомлений.
//
// Обработчик работает по transactional-outbox схеме: детектор пишет
// намерение отправить уведомление как durable-запись, а отдельный job
// с коротким интервалом забирает готовые записи и доставляет их.
//
// Конкурентная безопасность держится на lease: условный UPDATE переводит
// запись в SENDING только если она всё ещё PENDING/FAILED — из нескольких
// процессов захват удаётся ровно одному, остальные молча пропускают.
// Неуспешная доставка планирует повтор с экспоненциальным backoff
// (потолок — час); числа попыток сверху не ограничены, dead-letter
// состояния нет. Записи, зависшие в SENDING из-за упавшего воркера,
// возвращаются в PENDING по таймауту в начале тика.
package outbox
