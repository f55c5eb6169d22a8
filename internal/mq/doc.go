// Package mq — публикация событий в RabbitMQ.
//
// Фоновые job'ы только публикуют: событие notification.created сообщает
// подсистеме отображения (websocket-push, счётчики непрочитанного),
// что появилось новое уведомление. Потребители живут вне этого сервиса.
//
// RabbitMQ необязателен: без него доставка ограничивается записью
// уведомления в БД, и подсистема отображения дочитывает его сама.
package mq
