package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/todos/internal/domain"
	"github.com/shaiso/todos/internal/mq"
)

// TodoStore — операции хранилища, которые использует Handler.
// Реализуется repo.MemoryRepo, repo.TodoRepo и repo.SQLiteRepo.
type TodoStore interface {
	GetAll(ctx context.Context) ([]domain.Todo, error)
	FindByID(ctx context.Context, id int64) (*domain.Todo, error)
	Add(ctx context.Context, todo domain.Todo) (*domain.Todo, error)
	Update(ctx context.Context, id int64, todo domain.Todo) (*domain.Todo, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

// EventPublisher — публикация событий todo. Реализуется mq.Publisher.
type EventPublisher interface {
	PublishTodoEvent(ctx context.Context, eventType mq.EventType, payload mq.TodoEventPayload) error
}

// Handler — обработчик API с зависимостями.
// Не хранит состояния между запросами.
type Handler struct {
	store     TodoStore
	publisher EventPublisher
	logger    *slog.Logger
}

// Config — зависимости для создания Handler.
type Config struct {
	Store     TodoStore
	Publisher EventPublisher // опционально
	Logger    *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		logger:    logger,
	}
}

// publish отправляет событие, если publisher настроен.
// Ошибка публикации не влияет на ответ клиенту.
func (h *Handler) publish(ctx context.Context, eventType mq.EventType, payload mq.TodoEventPayload) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishTodoEvent(ctx, eventType, payload); err != nil {
		h.logger.Warn("failed to publish event", "type", eventType, "error", err)
	}
}
