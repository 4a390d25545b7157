package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/shaiso/todos/internal/domain"
)

// MemoryRepo — хранилище в памяти процесса.
// Данные теряются при рестарте; подходит для разработки и тестов.
type MemoryRepo struct {
	mu     sync.RWMutex
	todos  map[int64]domain.Todo
	nextID int64
}

// NewMemoryRepo создаёт пустой MemoryRepo. Первый ID — 1.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		todos:  make(map[int64]domain.Todo),
		nextID: 1,
	}
}

// GetAll возвращает все todo, отсортированные по order, затем по id.
func (r *MemoryRepo) GetAll(_ context.Context) ([]domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]domain.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		todos = append(todos, t)
	}
	sortTodos(todos)
	return todos, nil
}

// FindByID возвращает todo по ID.
func (r *MemoryRepo) FindByID(_ context.Context, id int64) (*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

// Add сохраняет новый todo. ID из аргумента игнорируется.
func (r *MemoryRepo) Add(_ context.Context, todo domain.Todo) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo.ID = r.nextID
	r.nextID++
	r.todos[todo.ID] = todo
	return &todo, nil
}

// Update заменяет поля todo с указанным ID.
func (r *MemoryRepo) Update(_ context.Context, id int64, todo domain.Todo) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return nil, ErrNotFound
	}
	todo.ID = id
	r.todos[id] = todo
	return &todo, nil
}

// DeleteByID удаляет todo.
func (r *MemoryRepo) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

// DeleteAll удаляет все todo. Счётчик ID не сбрасывается.
func (r *MemoryRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.todos))
	clear(r.todos)
	return n, nil
}

// DeleteCompleted удаляет выполненные todo.
func (r *MemoryRepo) DeleteCompleted(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.todos {
		if t.Completed {
			delete(r.todos, id)
			n++
		}
	}
	return n, nil
}

// Ping всегда успешен.
func (r *MemoryRepo) Ping(_ context.Context) error { return nil }

// Close ничего не делает.
func (r *MemoryRepo) Close() error { return nil }

func sortTodos(todos []domain.Todo) {
	sort.Slice(todos, func(i, j int) bool {
		if todos[i].Order != todos[j].Order {
			return todos[i].Order < todos[j].Order
		}
		return todos[i].ID < todos[j].ID
	})
}
