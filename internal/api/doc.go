// Package api содержит HTTP API сервиса todos.
//
// Структура:
//   - handler.go      — Handler с DI (хранилище, publisher, logger)
//   - routes.go       — регистрация маршрутов
//   - middleware.go   — middleware (recovery, logging, metrics)
//   - response.go     — JSON-ответы и обработка ошибок
//   - dto.go          — запросы и ответы
//   - todo_handler.go — обработчики для /todos
//
// Ответы с данными не оборачиваются: GET /todos отдаёт JSON массив,
// GET /todos/{id} — JSON объект. Ошибки отдаются в конверте
// {"error": {"code": "...", "message": "..."}}.
package api
