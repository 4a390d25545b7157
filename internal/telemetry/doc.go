// Package telemetry обеспечивает наблюдаемость сервисов.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Все сервисы (todos-api, todos-janitor, todos-auditor) используют единый
// формат логирования и экспортируют метрики на /metrics endpoint.
package telemetry
