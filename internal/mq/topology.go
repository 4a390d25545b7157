package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

const (
	ExchangeEvents Exchange = "todos.events"
	ExchangeDLQ    Exchange = "todos.dlq"
)

const (
	QueueAudit Queue = "todos.audit"
	QueueDLQ   Queue = "dlq.todos"
)

// Ключи привязки. Для topic exchange "#" — любое количество слов.
const (
	bindingAllTodoEvents = "todo.#"
	bindingDLQ           = "todos"
)

// SetupTopology объявляет обменники и очереди. Операции идемпотентны.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := ch.ExchangeDeclare(string(ExchangeEvents), "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}
		if err := ch.ExchangeDeclare(string(ExchangeDLQ), "direct", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeDLQ, err)
		}

		auditArgs := amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": bindingDLQ,
		}

		queues := []struct {
			name Queue
			args amqp.Table
		}{
			{QueueAudit, auditArgs},
			{QueueDLQ, nil},
		}
		for _, q := range queues {
			if _, err := ch.QueueDeclare(string(q.name), true, false, false, false, q.args); err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
		}

		bindings := []struct {
			queue    Queue
			key      string
			exchange Exchange
		}{
			{QueueAudit, bindingAllTodoEvents, ExchangeEvents},
			{QueueDLQ, bindingDLQ, ExchangeDLQ},
		}
		for _, b := range bindings {
			if err := ch.QueueBind(string(b.queue), b.key, string(b.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}

		return nil
	})
}
