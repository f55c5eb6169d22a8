package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Топология уведомлений.
const (
	ExchangeNotifications Exchange = "kadrovik.notifications"

	QueueNotificationsCreated Queue = "notifications.created"

	RoutingKeyCreated RoutingKey = "created"
)

// SetupTopology создаёт обменник и очередь событий уведомлений
// и связывает их. Идемпотентно.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeNotifications), // name
			"direct",                      // type
			true,                          // durable
			false,                         // auto-deleted
			false,                         // internal
			false,                         // no-wait
			nil,                           // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeNotifications, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueNotificationsCreated), // name
			true,                              // durable
			false,                             // delete when unused
			false,                             // exclusive
			false,                             // no-wait
			nil,                               // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueNotificationsCreated, err)
		}

		err = ch.QueueBind(
			string(QueueNotificationsCreated),
			string(RoutingKeyCreated),
			string(ExchangeNotifications),
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", QueueNotificationsCreated, err)
		}

		return nil
	})
}
