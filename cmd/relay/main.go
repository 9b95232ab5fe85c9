package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/messaging"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/metrics"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/outbox"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/respond"
	"github.com/AchilleasB/school-admin/school-service/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("module", "cmd/relay")
	slog.SetDefault(logger)

	cfg := config.LoadRelayConfig()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "event", "startup_failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.EventQueueName)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "event", "startup_failed", "error", err)
		os.Exit(1)
	}
	defer broker.Close()
	logger.Info("connected to RabbitMQ", "event", "broker_connected", "queue", cfg.EventQueueName)

	registry := prometheus.NewRegistry()
	relayMetrics := metrics.NewRelay(registry)

	worker := outbox.NewRelay(db, cfg.DatabaseURL, broker, relayMetrics, logger)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("GET /health", probe(worker.IsHealthy))
	healthMux.HandleFunc("GET /health/live", probe(worker.IsHealthy))
	healthMux.HandleFunc("GET /health/ready", probe(worker.IsReady))
	healthMux.Handle("GET /metrics", relayMetrics.Handler())

	healthServer := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting health server", "event", "health_server_starting", "port", cfg.HealthPort)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server stopped", "event", "health_server_failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "event", "relay_stopping", "signal", sig.String())
	case err := <-errChan:
		logger.Error("relay worker failed, shutting down", "event", "relay_failed", "error", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown failed", "event", "health_server_shutdown_failed", "error", err)
	}
	logger.Info("shutdown complete", "event", "relay_stopped")
}

func probe(check func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, httpStatus := "UP", http.StatusOK
		if !check() {
			status, httpStatus = "DOWN", http.StatusServiceUnavailable
		}
		respond.JSON(w, httpStatus, map[string]string{
			"status":    status,
			"component": "outbox-relay",
		})
	}
}
