// Package audit обрабатывает события todo из очереди todos.audit.
//
// Auditor пишет каждое событие в лог, считает события по типам
// и отдаёт счётчики через HTTP (/stats).
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/shaiso/todos/internal/mq"
	"github.com/shaiso/todos/internal/telemetry"
)

// Auditor — обработчик событий todo.
type Auditor struct {
	logger *slog.Logger

	mu     sync.Mutex
	counts map[mq.EventType]int64
}

// New создаёт Auditor.
func New(logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger: logger,
		counts: make(map[mq.EventType]int64),
	}
}

// Handle обрабатывает одно событие. Подходит как mq.Handler.
//
// Некорректный payload и неизвестный тип логируются и подтверждаются:
// повторная доставка их не исправит.
func (a *Auditor) Handle(_ context.Context, msg *mq.Message) error {
	payload, err := mq.ParsePayload[mq.TodoEventPayload](msg)
	if err != nil {
		a.logger.Error("invalid event payload", "type", msg.Type, "message_id", msg.ID, "error", err)
		return nil
	}

	if !knownEvent(msg.Type) {
		a.logger.Warn("unknown event type", "type", msg.Type, "message_id", msg.ID)
		return nil
	}

	a.mu.Lock()
	a.counts[msg.Type]++
	a.mu.Unlock()
	telemetry.EventsConsumed.WithLabelValues(string(msg.Type)).Inc()

	attrs := []any{
		"type", msg.Type,
		"message_id", msg.ID,
		"timestamp", msg.Timestamp,
	}
	if payload.Todo != nil {
		attrs = append(attrs,
			"todo_id", payload.Todo.ID,
			"title", payload.Todo.Title,
			"completed", payload.Todo.Completed,
		)
	}
	if payload.Count > 0 {
		attrs = append(attrs, "count", payload.Count)
	}
	a.logger.Info("todo event", attrs...)

	return nil
}

// Counts возвращает копию счётчиков по типам событий.
func (a *Auditor) Counts() map[mq.EventType]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[mq.EventType]int64, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}

// ServeStats отдаёт счётчики в JSON.
// GET /stats
func (a *Auditor) ServeStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a.Counts())
}

func knownEvent(t mq.EventType) bool {
	switch t {
	case mq.EventTodoCreated, mq.EventTodoUpdated, mq.EventTodoDeleted,
		mq.EventTodoCleared, mq.EventTodoPurged:
		return true
	}
	return false
}
