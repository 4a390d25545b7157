package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/todos/internal/domain"
)

// TodoRepo — репозиторий todo в PostgreSQL.
type TodoRepo struct {
	pool *pgxpool.Pool
}

// NewTodoRepo создаёт новый TodoRepo.
func NewTodoRepo(pool *pgxpool.Pool) *TodoRepo {
	return &TodoRepo{pool: pool}
}

// pgSchema — схема таблицы todos.
// "order" — зарезервированное слово SQL, поэтому колонка называется sort_order.
const pgSchema = `
	CREATE TABLE IF NOT EXISTS todos (
		id         BIGSERIAL PRIMARY KEY,
		title      TEXT        NOT NULL,
		completed  BOOLEAN     NOT NULL DEFAULT FALSE,
		sort_order BIGINT      NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// EnsureSchema создаёт таблицу, если её нет.
func (r *TodoRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	// Ранние версии схемы хранили sort_order как INTEGER.
	if _, err := r.pool.Exec(ctx, `ALTER TABLE todos ALTER COLUMN sort_order TYPE BIGINT`); err != nil {
		return fmt.Errorf("migrate sort_order column: %w", err)
	}
	return nil
}

// GetAll возвращает все todo.
func (r *TodoRepo) GetAll(ctx context.Context) ([]domain.Todo, error) {
	query := `
		SELECT id, title, completed, sort_order
		FROM todos
		ORDER BY sort_order, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.Order); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// FindByID возвращает todo по ID.
func (r *TodoRepo) FindByID(ctx context.Context, id int64) (*domain.Todo, error) {
	query := `
		SELECT id, title, completed, sort_order
		FROM todos
		WHERE id = $1
	`
	var t domain.Todo
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Title, &t.Completed, &t.Order)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo by id: %w", err)
	}
	return &t, nil
}

// Add создаёт todo; ID выдаёт последовательность БД.
func (r *TodoRepo) Add(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	query := `
		INSERT INTO todos (title, completed, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query, todo.Title, todo.Completed, todo.Order).Scan(&todo.ID)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return &todo, nil
}

// Update заменяет title, completed и order.
func (r *TodoRepo) Update(ctx context.Context, id int64, todo domain.Todo) (*domain.Todo, error) {
	query := `
		UPDATE todos
		SET title = $2, completed = $3, sort_order = $4, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, todo.Title, todo.Completed, todo.Order)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	todo.ID = id
	return &todo, nil
}

// DeleteByID удаляет todo.
func (r *TodoRepo) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll удаляет все todo.
func (r *TodoRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM todos`)
	if err != nil {
		return 0, fmt.Errorf("delete all todos: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteCompleted удаляет выполненные todo.
func (r *TodoRepo) DeleteCompleted(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE completed`)
	if err != nil {
		return 0, fmt.Errorf("delete completed todos: %w", err)
	}
	return result.RowsAffected(), nil
}

// Ping проверяет соединение с БД.
func (r *TodoRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close закрывает пул.
func (r *TodoRepo) Close() error {
	r.pool.Close()
	return nil
}
