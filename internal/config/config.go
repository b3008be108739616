// Package config loads service configuration from environment
// variables. The debounce window, cache TTL and adaptive thresholds
// are deliberately configurable; the defaults are the reference values.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Backend     BackendConfig
	Persistence PersistenceConfig
	Adaptive    AdaptiveConfig
	RabbitMQ    RabbitMQConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
	LogMode string
}

type BackendConfig struct {
	// Kind selects the durable backend: memory, mongo, redis or badger.
	Kind string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	BadgerPath    string

	// Key is the backend key the preference snapshot is stored under.
	Key string
}

type PersistenceConfig struct {
	DebounceWindow      time.Duration
	CacheTTL            time.Duration
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryBackoffFactor  float64
	RetryJitterFactor   float64
}

type AdaptiveConfig struct {
	RaiseStreak int
	LowerStreak int
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8087"),
			GinMode: getEnv("GIN_MODE", "debug"),
			LogMode: getEnv("LOG_MODE", "dev"),
		},
		Backend: BackendConfig{
			Kind:          getEnv("PREF_BACKEND", "memory"),
			MongoURI:      getEnv("MONGO_URI", ""),
			MongoDatabase: getEnv("MONGO_DATABASE", "personalization_service"),
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			BadgerPath:    getEnv("BADGER_PATH", "./data/preferences"),
			Key:           getEnv("PREF_STORAGE_KEY", "preferences:default"),
		},
		Persistence: PersistenceConfig{
			DebounceWindow:      getEnvAsDuration("PREF_WRITE_DEBOUNCE", 500*time.Millisecond),
			CacheTTL:            getEnvAsDuration("PREF_CACHE_TTL", 5*time.Minute),
			RetryMaxAttempts:    getEnvAsInt("PREF_RETRY_MAX_ATTEMPTS", 4),
			RetryInitialBackoff: getEnvAsDuration("PREF_RETRY_INITIAL_BACKOFF", 100*time.Millisecond),
			RetryMaxBackoff:     getEnvAsDuration("PREF_RETRY_MAX_BACKOFF", 5*time.Second),
			RetryBackoffFactor:  getEnvAsFloat("PREF_RETRY_BACKOFF_FACTOR", 2.0),
			RetryJitterFactor:   getEnvAsFloat("PREF_RETRY_JITTER_FACTOR", 0.2),
		},
		Adaptive: AdaptiveConfig{
			RaiseStreak: getEnvAsInt("ADAPTIVE_RAISE_STREAK", 5),
			LowerStreak: getEnvAsInt("ADAPTIVE_LOWER_STREAK", 3),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
