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
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/cache"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/handler"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/metrics"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/middleware"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/repository"
	"github.com/AchilleasB/school-admin/school-service/internal/adapters/security"
	"github.com/AchilleasB/school-admin/school-service/internal/config"
	"github.com/AchilleasB/school-admin/school-service/internal/core/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "event", "startup_failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(db); err != nil {
		logger.Error("failed to apply migrations", "event", "startup_failed", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// The denylist breaker answers 503 until Redis comes back.
		logger.Warn("redis not reachable at startup", "event", "redis_unreachable", "error", err)
	}
	cancelPing()

	registry := prometheus.NewRegistry()
	apiMetrics := metrics.NewAPI(registry)

	store := repository.NewSQLStore(db, logger)
	tokens := security.NewJWTService(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.TokenTTL)
	denylist := cache.NewRedisTokenDenylist(redisClient)

	authService := services.NewAuthService(store, security.NewBcryptHasher(bcrypt.DefaultCost), tokens, denylist, logger)
	resolver := services.NewIdentityResolver(store, logger)
	schoolService := services.NewSchoolService(store, apiMetrics, logger)
	scopeService := services.NewTeacherScopeService(store, apiMetrics, logger)

	mux := handler.NewRouter(handler.Router{
		Auth:    handler.NewAuthHandler(authService),
		School:  handler.NewSchoolHandler(schoolService),
		My:      handler.NewMyHandler(scopeService),
		Health:  handler.NewHealthHandler(cfg.Version, handler.DatabaseCheck(db), handler.RedisCheck(redisClient)),
		Gate:    middleware.NewAuthMiddleware(tokens, denylist, resolver, logger),
		Metrics: apiMetrics.Handler(),
	})

	var h http.Handler = mux
	h = middleware.RequestLogger(logger, apiMetrics)(h)
	h = middleware.CORSMiddleware(cfg.AllowedOrigins)(h)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "event", "server_starting", "port", cfg.Port, "version", cfg.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "event", "server_failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", "event", "server_stopping", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "event", "server_shutdown_failed", "error", err)
	}
}
