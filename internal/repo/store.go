package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/todos/internal/config"
	"github.com/shaiso/todos/internal/domain"
)

// Store — хранилище todo. Реализации: MemoryRepo, TodoRepo (PostgreSQL), SQLiteRepo.
//
// Все реализации возвращают GetAll в одном порядке: order ASC, id ASC.
// ID назначает хранилище и никогда не переиспользует.
type Store interface {
	GetAll(ctx context.Context) ([]domain.Todo, error)
	FindByID(ctx context.Context, id int64) (*domain.Todo, error)
	Add(ctx context.Context, todo domain.Todo) (*domain.Todo, error)
	Update(ctx context.Context, id int64, todo domain.Todo) (*domain.Todo, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	DeleteCompleted(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open создаёт хранилище по конфигурации.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Info("using in-memory store")
		return NewMemoryRepo(), nil

	case config.DriverPostgres:
		pool, err := NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		r := NewTodoRepo(pool)
		if err := r.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("connected to database", "driver", cfg.Driver)
		return r, nil

	case config.DriverSQLite:
		r, err := NewSQLiteRepo(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("opened sqlite database", "path", cfg.SQLitePath)
		return r, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}
