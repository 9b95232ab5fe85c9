package config

import "os"

// RelayConfig holds configuration for the outbox relay service.
type RelayConfig struct {
	DatabaseURL    string
	RabbitMQURL    string
	EventQueueName string
	HealthPort     string
}

func LoadRelayConfig() *RelayConfig {
	LoadDotEnv()

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}

	return &RelayConfig{
		DatabaseURL:    dbURL,
		RabbitMQURL:    rabbitURL,
		EventQueueName: getEnv("EVENT_QUEUE_NAME", "school-events"),
		HealthPort:     getEnv("RELAY_HEALTH_PORT", "8090"),
	}
}
