// Package mq публикует и потребляет события todo через RabbitMQ.
//
// Структура:
//   - connection.go — соединение с автоматическим reconnect
//   - topology.go   — exchanges, queues, bindings
//   - publisher.go  — публикация событий
//   - consumer.go   — потребление событий
//
// Типы событий (routing key совпадает с типом):
//   - todo.created   — создан todo
//   - todo.updated   — todo изменён (PATCH)
//   - todo.deleted   — todo удалён
//   - todo.cleared   — список очищен (DELETE /todos)
//   - todo.purged    — janitor удалил выполненные todo
//
// Exchanges:
//   - todos.events   — topic, все события
//   - todos.dlq      — dead letter для todos.audit
package mq
