// Package reminder реализует детектор условий, требующих напоминания.
//
// Детектор состоит из двух независимых сканов, работающих от одного тика:
//   - approval-aging — заявки на согласование, висящие без решения
//     дольше суток;
//   - checklist-due — обязательные пункты обходных листов, у которых
//     дедлайн просрочен или попадает в 48-часовое окно.
//
// Для каждого кандидата строится детерминированный idempotency key
// (scope + дата + сущность + дискриминаторы условия) и выполняется
// conflict-safe insert в reminders. Fan-out уведомлений в outbox делает
// только тот вызов, чья вставка реально создала строку — это граница
// «не чаще раза в день», работающая и при гонке нескольких процессов.
// Внешний advisory lock лишь экономит повторное сканирование.
//
// Получатели определяются Resolver'ом: явный состав отдела, а при его
// отсутствии — ограниченный по размеру список носителей роли.
package reminder
