package api

import (
	"github.com/shaiso/todos/internal/domain"
)

// CreateTodoRequest — тело POST /todos.
// Поле id допускается, но игнорируется: ID назначает хранилище.
type CreateTodoRequest struct {
	ID        *int64 `json:"id,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Order     int    `json:"order"`
}

// ToDomain конвертирует запрос в domain.Todo без ID.
func (r CreateTodoRequest) ToDomain() domain.Todo {
	return domain.Todo{
		Title:     r.Title,
		Completed: r.Completed,
		Order:     r.Order,
	}
}

// UpdateTodoRequest — тело PATCH /todos/{id}.
// Меняются только переданные поля; id игнорируется.
type UpdateTodoRequest struct {
	ID        *int64  `json:"id,omitempty"`
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Order     *int    `json:"order,omitempty"`
}

// ToPatch конвертирует запрос в domain.TodoPatch.
func (r UpdateTodoRequest) ToPatch() domain.TodoPatch {
	return domain.TodoPatch{
		Title:     r.Title,
		Completed: r.Completed,
		Order:     r.Order,
	}
}

// ClearResponse — ответ DELETE /todos.
type ClearResponse struct {
	Deleted int64 `json:"deleted"`
}
