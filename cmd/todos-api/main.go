// Todos API — REST сервис списка задач.
//
// Маршруты:
//
//	GET    /todos        список todo
//	POST   /todos        создать todo
//	DELETE /todos        удалить все todo
//	GET    /todos/{id}   получить todo
//	PATCH  /todos/{id}   частично обновить todo
//	DELETE /todos/{id}   удалить todo
//
// Если задан AMQP_URL, изменения публикуются в exchange todos.events.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/todos/internal/api"
	"github.com/shaiso/todos/internal/config"
	"github.com/shaiso/todos/internal/mq"
	"github.com/shaiso/todos/internal/repo"
	"github.com/shaiso/todos/internal/telemetry"
)

var startTime = time.Now()

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Инициализируем structured logging
	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting todos-api", "driver", cfg.Store.Driver)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := repo.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// RabbitMQ опционален: без него API работает, события не публикуются
	var publisher api.EventPublisher
	if cfg.AMQP.Enabled() {
		conn, err := mq.Dial(cfg.AMQP.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, events disabled", "error", err)
		} else {
			defer conn.Close()
			if err := mq.SetupTopology(ctx, conn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			publisher = mq.NewPublisher(conn, logger)
			logger.Info("RabbitMQ connected")
		}
	}

	handler := api.NewHandler(api.Config{
		Store:     store,
		Publisher: publisher,
		Logger:    logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			api.Error(w, http.StatusServiceUnavailable, api.ErrCodeInternalError, "store unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime).Round(time.Second))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.API.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
