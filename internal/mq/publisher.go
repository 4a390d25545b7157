package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/todos/internal/domain"
	"github.com/shaiso/todos/internal/telemetry"
)

// EventType — тип события. Используется и как routing key.
type EventType string

// Типы событий.
const (
	EventTodoCreated EventType = "todo.created"
	EventTodoUpdated EventType = "todo.updated"
	EventTodoDeleted EventType = "todo.deleted"
	EventTodoCleared EventType = "todo.cleared"
	EventTodoPurged  EventType = "todo.purged"
)

// Message — конверт события.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип события.
	Type EventType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// TodoEventPayload — payload событий todo.
// Для created/updated/deleted заполнен Todo, для cleared/purged — Count (всегда > 0:
// пустая очистка события не порождает).
type TodoEventPayload struct {
	Todo  *domain.Todo `json:"todo,omitempty"`
	Count int64        `json:"count,omitempty"`
}

// NewMessage создаёт сообщение с новым ID и текущим временем.
func NewMessage(eventType EventType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher публикует события в todos.events.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение; routing key равен типу события.
func (p *Publisher) Publish(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		return ch.PublishWithContext(
			ctx,
			string(ExchangeEvents),
			string(msg.Type),
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Type:         string(msg.Type),
				Body:         body,
			},
		)
	})
	if err != nil {
		telemetry.EventsPublished.WithLabelValues(string(msg.Type), "error").Inc()
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}

	telemetry.EventsPublished.WithLabelValues(string(msg.Type), "ok").Inc()
	p.logger.Debug("published message",
		"exchange", ExchangeEvents,
		"type", msg.Type,
		"message_id", msg.ID,
	)
	return nil
}

// PublishTodoEvent публикует событие todo.
func (p *Publisher) PublishTodoEvent(ctx context.Context, eventType EventType, payload TodoEventPayload) error {
	return p.Publish(ctx, NewMessage(eventType, payload))
}
