package domain

import (
	"errors"
	"strings"
)

// ErrEmptyTitle — у todo нет заголовка.
var ErrEmptyTitle = errors.New("title is required")

// Todo — одна задача в списке.
//
// Имена JSON полей фиксированы: id, title, completed, order.
type Todo struct {
	// ID — уникальный идентификатор, назначается хранилищем при создании.
	ID int64 `json:"id"`

	// Title — текст задачи.
	Title string `json:"title"`

	// Completed — флаг выполнения.
	Completed bool `json:"completed"`

	// Order — позиция при отображении. Уникальность не требуется.
	Order int `json:"order"`
}

// Validate проверяет обязательные поля.
func (t Todo) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// TodoPatch — частичное обновление todo.
// nil означает "поле не меняется".
type TodoPatch struct {
	Title     *string
	Completed *bool
	Order     *int
}

// IsEmpty возвращает true, если patch ничего не меняет.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil && p.Order == nil
}

// Apply возвращает копию todo с применённым patch. ID не меняется.
func (t Todo) Apply(p TodoPatch) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	return t
}
