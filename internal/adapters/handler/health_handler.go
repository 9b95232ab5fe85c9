package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/AchilleasB/school-admin/school-service/internal/adapters/respond"
	"github.com/redis/go-redis/v9"
)

const checkTimeout = 5 * time.Second

// DependencyCheck pings one backing service for the readiness probe.
type DependencyCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// DatabaseCheck pings PostgreSQL. A nil db reports DOWN.
func DatabaseCheck(db *sql.DB) DependencyCheck {
	return DependencyCheck{
		Name: "database",
		Ping: func(ctx context.Context) error {
			if db == nil {
				return errNotInitialized
			}
			return db.PingContext(ctx)
		},
	}
}

// RedisCheck pings the token denylist store. A nil client reports DOWN.
func RedisCheck(client *redis.Client) DependencyCheck {
	return DependencyCheck{
		Name: "redis",
		Ping: func(ctx context.Context) error {
			if client == nil {
				return errNotInitialized
			}
			return client.Ping(ctx).Err()
		},
	}
}

type HealthHandler struct {
	checks    []DependencyCheck
	startTime time.Time
	version   string
}

func NewHealthHandler(version string, checks ...DependencyCheck) *HealthHandler {
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		checks:    checks,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse follows Kubernetes health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is the liveness check: the process is up and serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

// Ready reports 503 when any dependency fails its ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]Check, len(h.checks))
	status, httpStatus := "UP", http.StatusOK

	for _, dep := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := dep.Ping(ctx)
		cancel()

		if err != nil {
			checks[dep.Name] = Check{Status: "DOWN", Message: "Cannot connect to " + dep.Name}
			status, httpStatus = "DOWN", http.StatusServiceUnavailable
			continue
		}
		checks[dep.Name] = Check{Status: "UP"}
	}

	respond.JSON(w, httpStatus, HealthResponse{Status: status, Checks: checks})
}
