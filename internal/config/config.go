package config

import (
	"crypto/rsa"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

type Config struct {
	JWTPrivateKey  *rsa.PrivateKey
	JWTPublicKey   *rsa.PublicKey
	TokenTTL       time.Duration
	DatabaseURL    string
	RedisAddress   string
	RedisPassword  string
	AllowedOrigins []string
	Port           string
	Version        string
}

// LoadDotEnv reads .env when present. Variables already set in the
// environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func Load() *Config {
	LoadDotEnv()

	privateKey, err := loadPrivateKey(getEnv("PRIVATE_KEY_PATH", "/etc/certs/private.pem"))
	if err != nil {
		panic("Failed to load private key: " + err.Error())
	}

	publicKey, err := loadPublicKey(getEnv("PUBLIC_KEY_PATH", "/etc/certs/public.pem"))
	if err != nil {
		panic("Failed to load public key: " + err.Error())
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "60m"))
	if err != nil || ttl <= 0 {
		panic("TOKEN_TTL must be a positive duration")
	}

	return &Config{
		JWTPrivateKey:  privateKey,
		JWTPublicKey:   publicKey,
		TokenTTL:       ttl,
		DatabaseURL:    dbURL,
		RedisAddress:   getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		Port:           getEnv("PORT", "8080"),
		Version:        getEnv("APP_VERSION", "unknown"),
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, value := range strings.Split(raw, ",") {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPrivateKeyFromPEM(keyData)
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(keyData)
}
