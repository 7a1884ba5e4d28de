// Package rabbitmq содержит подключение к брокеру и публикацию доменных событий.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// ExchangeEvents имя exchange для доменных событий приложения.
const ExchangeEvents = "events"

// RoutingKeyUserRegistered ключ маршрутизации события регистрации пользователя.
const RoutingKeyUserRegistered = "user.registered"

// Connect подключается к RabbitMQ с повторными попытками.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for i := 0; i < retries; i++ {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал и объявляет exchange и очередь событий.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		ExchangeEvents, // exchange
		"direct",       // тип
		true,           // durable
		false,          // auto-delete
		false,          // internal
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, err := ch.QueueDeclare(RoutingKeyUserRegistered, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.QueueBind(q.Name, RoutingKeyUserRegistered, ExchangeEvents, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}
