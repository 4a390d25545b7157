package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/todos/internal/config"
	"github.com/shaiso/todos/internal/mq"
	"github.com/shaiso/todos/internal/telemetry"
)

// Purger — хранилище, умеющее удалять выполненные todo.
type Purger interface {
	DeleteCompleted(ctx context.Context) (int64, error)
}

// EventPublisher — публикация события todo.purged.
type EventPublisher interface {
	PublishTodoEvent(ctx context.Context, eventType mq.EventType, payload mq.TodoEventPayload) error
}

// Janitor периодически удаляет выполненные todo.
type Janitor struct {
	store     Purger
	publisher EventPublisher
	logger    *slog.Logger
	schedule  cron.Schedule

	// now подменяется в тестах
	now func() time.Time
}

// Config — конфигурация Janitor.
type Config struct {
	Store     Purger
	Publisher EventPublisher // опционально
	Logger    *slog.Logger
	Cron      string
}

// New создаёт Janitor. Возвращает ошибку, если cron-выражение некорректно.
func New(cfg Config) (*Janitor, error) {
	sched, err := ParseSchedule(cfg.Cron)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Janitor{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		logger:    logger,
		schedule:  sched,
		now:       time.Now,
	}, nil
}

// Tick выполняет одну очистку и возвращает количество удалённых todo.
func (j *Janitor) Tick(ctx context.Context) (int64, error) {
	n, err := j.store.DeleteCompleted(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete completed todos: %w", err)
	}

	telemetry.JanitorPurged.Add(float64(n))
	j.logger.Info("janitor tick completed", "purged", n)

	if n > 0 && j.publisher != nil {
		if err := j.publisher.PublishTodoEvent(ctx, mq.EventTodoPurged, mq.TodoEventPayload{Count: n}); err != nil {
			j.logger.Warn("failed to publish todo.purged", "error", err)
		}
	}

	return n, nil
}

// Next возвращает время следующего запуска.
func (j *Janitor) Next() time.Time {
	return NextRun(j.schedule, j.now())
}

// Run ждёт очередного срабатывания расписания и вызывает Tick до отмены ctx.
// Ошибки Tick логируются и не прерывают цикл. Если у расписания не осталось
// срабатываний, Run возвращает config.ErrCronNeverFires.
func (j *Janitor) Run(ctx context.Context) error {
	for {
		next := j.Next()
		if next.IsZero() {
			return fmt.Errorf("janitor schedule: %w", config.ErrCronNeverFires)
		}
		j.logger.Debug("janitor waiting", "next_run", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := j.Tick(ctx); err != nil {
			j.logger.Error("janitor tick failed", "error", err)
		}
	}
}
