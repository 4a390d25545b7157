package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики регистрируются в глобальном реестре Prometheus
// и отдаются через promhttp.Handler() на /metrics.
var (
	// HTTPRequests — количество обработанных HTTP запросов.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todos_http_requests_total",
		Help: "Total HTTP requests handled by todos-api",
	}, []string{"method", "route", "status"})

	// HTTPDuration — длительность обработки HTTP запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "todos_http_request_duration_seconds",
		Help:    "HTTP request latency of todos-api",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// EventsPublished — опубликованные события (result: ok | error).
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todos_events_published_total",
		Help: "Todo events published to RabbitMQ",
	}, []string{"type", "result"})

	// EventsConsumed — события, обработанные todos-auditor.
	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todos_events_consumed_total",
		Help: "Todo events consumed by todos-auditor",
	}, []string{"type"})

	// JanitorPurged — удалённые janitor'ом выполненные todo.
	JanitorPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "todos_janitor_purged_total",
		Help: "Completed todos removed by todos-janitor",
	})
)
