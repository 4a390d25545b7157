package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shaiso/todos/internal/domain"
	"github.com/shaiso/todos/internal/mq"
	"github.com/shaiso/todos/internal/telemetry"
)

// maxBodySize — предельный размер тела запроса.
const maxBodySize = 1 << 20

// ListTodos возвращает все todo.
// GET /todos
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.store.GetAll(r.Context())
	if HandleStoreError(w, h.logger, err) {
		return
	}

	// пустой список отдаём как [], а не null
	if todos == nil {
		todos = []domain.Todo{}
	}
	OK(w, todos)
}

// GetTodo возвращает todo по ID.
// GET /todos/{id}
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	todo, err := h.store.FindByID(r.Context(), id)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	OK(w, todo)
}

// CreateTodo создаёт todo.
// POST /todos
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	todo := req.ToDomain()
	if err := todo.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	created, err := h.store.Add(r.Context(), todo)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	telemetry.WithTodoID(h.logger, created.ID).Debug("todo created")
	h.publish(r.Context(), mq.EventTodoCreated, mq.TodoEventPayload{Todo: created})

	Created(w, "/todos/"+strconv.FormatInt(created.ID, 10), created)
}

// UpdateTodo частично обновляет todo.
// PATCH /todos/{id}
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	current, err := h.store.FindByID(r.Context(), id)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	patch := req.ToPatch()
	if patch.IsEmpty() {
		// нечего менять: ни записи в хранилище, ни события
		OK(w, current)
		return
	}

	patched := current.Apply(patch)
	if err := patched.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	updated, err := h.store.Update(r.Context(), id, patched)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	h.publish(r.Context(), mq.EventTodoUpdated, mq.TodoEventPayload{Todo: updated})

	OK(w, updated)
}

// DeleteTodo удаляет todo и возвращает удалённую запись.
// DELETE /todos/{id}
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	todo, err := h.store.FindByID(r.Context(), id)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); HandleStoreError(w, h.logger, err) {
		return
	}

	h.publish(r.Context(), mq.EventTodoDeleted, mq.TodoEventPayload{Todo: todo})

	OK(w, todo)
}

// ClearTodos удаляет все todo.
// DELETE /todos
func (h *Handler) ClearTodos(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.DeleteAll(r.Context())
	if HandleStoreError(w, h.logger, err) {
		return
	}

	h.logger.Info("todos cleared", "count", n)
	if n > 0 {
		h.publish(r.Context(), mq.EventTodoCleared, mq.TodoEventPayload{Count: n})
	}

	OK(w, ClearResponse{Deleted: n})
}

// parseTodoID читает {id} из пути. При ошибке отправляет 400.
func parseTodoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		BadRequest(w, "invalid todo id")
		return 0, false
	}
	return id, true
}

// decodeBody разбирает JSON тело запроса. При ошибке отправляет 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid request body")
		return false
	}
	return true
}
