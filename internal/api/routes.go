package api

import (
	"net/http"
)

// RegisterRoutes регистрирует маршруты /todos.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
		Metrics(),
	)

	mux.Handle("GET /todos", chain(http.HandlerFunc(h.ListTodos)))
	mux.Handle("POST /todos", chain(http.HandlerFunc(h.CreateTodo)))
	mux.Handle("DELETE /todos", chain(http.HandlerFunc(h.ClearTodos)))
	mux.Handle("GET /todos/{id}", chain(http.HandlerFunc(h.GetTodo)))
	mux.Handle("PATCH /todos/{id}", chain(http.HandlerFunc(h.UpdateTodo)))
	mux.Handle("DELETE /todos/{id}", chain(http.HandlerFunc(h.DeleteTodo)))
}
