package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shaiso/todos/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteRepo — репозиторий todo в файле SQLite.
type SQLiteRepo struct {
	db *sql.DB
}

// sqliteSchema — схема таблицы todos.
// AUTOINCREMENT гарантирует, что ID удалённых записей не выдаются повторно.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS todos (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT    NOT NULL,
		completed  INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT    NOT NULL DEFAULT (datetime('now'))
	)
`

// NewSQLiteRepo открывает (или создаёт) базу по пути path.
// Родительская директория создаётся при необходимости.
func NewSQLiteRepo(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite допускает одного писателя
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create todos table: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// GetAll возвращает все todo.
func (r *SQLiteRepo) GetAll(ctx context.Context) ([]domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, completed, sort_order
		FROM todos
		ORDER BY sort_order, id
	`)
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
func (r *SQLiteRepo) FindByID(ctx context.Context, id int64) (*domain.Todo, error) {
	var t domain.Todo
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, completed, sort_order
		FROM todos
		WHERE id = ?
	`, id).Scan(&t.ID, &t.Title, &t.Completed, &t.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo by id: %w", err)
	}
	return &t, nil
}

// Add создаёт todo.
func (r *SQLiteRepo) Add(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO todos (title, completed, sort_order)
		VALUES (?, ?, ?)
	`, todo.Title, todo.Completed, todo.Order)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	todo.ID = id
	return &todo, nil
}

// Update заменяет title, completed и order.
func (r *SQLiteRepo) Update(ctx context.Context, id int64, todo domain.Todo) (*domain.Todo, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE todos
		SET title = ?, completed = ?, sort_order = ?, updated_at = datetime('now')
		WHERE id = ?
	`, todo.Title, todo.Completed, todo.Order, id)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update todo rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	todo.ID = id
	return &todo, nil
}

// DeleteByID удаляет todo.
func (r *SQLiteRepo) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll удаляет все todo.
func (r *SQLiteRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos`)
	if err != nil {
		return 0, fmt.Errorf("delete all todos: %w", err)
	}
	return result.RowsAffected()
}

// DeleteCompleted удаляет выполненные todo.
func (r *SQLiteRepo) DeleteCompleted(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("delete completed todos: %w", err)
	}
	return result.RowsAffected()
}

// Ping проверяет доступность БД.
func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close закрывает базу.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}
