// Todos Janitor — удаляет выполненные todo по cron-расписанию.
//
// Расписание задаётся JANITOR_CRON (по умолчанию "0 3 * * *").
// Работает только с постоянными хранилищами (postgres, sqlite):
// у in-memory хранилища отдельного процесса нет общих данных с API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/todos/internal/config"
	"github.com/shaiso/todos/internal/janitor"
	"github.com/shaiso/todos/internal/mq"
	"github.com/shaiso/todos/internal/repo"
	"github.com/shaiso/todos/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting todos-janitor", "cron", cfg.Janitor.Cron)

	if cfg.Store.Driver == config.DriverMemory {
		logger.Error("janitor requires a persistent store (postgres or sqlite)")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := repo.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var publisher janitor.EventPublisher
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
		}
	}

	j, err := janitor.New(janitor.Config{
		Store:     store,
		Publisher: publisher,
		Logger:    logger,
		Cron:      cfg.Janitor.Cron,
	})
	if err != nil {
		logger.Error("failed to create janitor", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok next=%s", j.Next().Format("2006-01-02T15:04:05Z07:00"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Janitor.Port
	go func() {
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	if err := j.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("janitor stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("todos-janitor stopped")
}
