// Package jobs управляет жизненным циклом периодических фоновых задач.
//
// Supervisor владеет набором именованных job'ов и по одному таймеру
// на каждый: детектор напоминаний на грубом интервале (раз в минуту,
// либо по cron-выражению) и обработчик outbox на коротком (раз в 5 секунд).
//
// Каждая итерация оборачивается в advisory lock (dblock) и логирование
// ошибок: занятая блокировка — штатный пропуск (задачу выполняет другой
// процесс), ошибка тика логируется и не останавливает таймер. Supervisor
// создаётся явно на старте процесса и останавливается на shutdown —
// глобального состояния у пакета нет.
package jobs
