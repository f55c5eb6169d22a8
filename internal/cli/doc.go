// Package cli реализует операторскую утилиту kadrovik.
//
// В отличие от пользовательских экранов HR-системы, утилита работает
// напрямую с базой через репозитории: у подсистемы фоновых job'ов нет
// своего сетевого API, её граница — общая база.
//
// Команды организованы по ресурсам:
//   - outbox: list, stats, requeue
//   - reminder: list
//
// Вывод — таблицы (text/tabwriter) или JSON с флагом --json; данные
// идут в stdout, сообщения — в stderr, так что пайпы вида
// `kadrovik outbox list --json | jq .` работают.
package cli
