package config

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// isSuccessful decides which errors do not count as failures; nil means only
// a nil error is a success.
func NewCircuitBreaker(name string, isSuccessful func(err error) bool) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	// Align with the 5s health check timeout for Redis
	switch name {
	case "Redis-Auth":
		timeout = 5 * time.Second
	case "PostgreSQL", "Relay-PostgreSQL":
		timeout = 10 * time.Second
	default:
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         name,
		MaxRequests:  3,
		Interval:     10 * time.Second,
		Timeout:      timeout,
		IsSuccessful: isSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"event", "circuit_breaker_state_changed",
				"module", "internal/config",
				"layer", "platform",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}
