package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the service configuration, loaded from environment variables.
type Config struct {
	Port     string
	Provider string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// RedisAddr enables lifecycle event publishing when set.
	RedisAddr string

	JWTSecret string

	HeartbeatInterval time.Duration
	QuestionDelay     time.Duration
	ChunkDelay        time.Duration
	SweepSchedule     string
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Provider: getEnvOrDefault("AI_PROVIDER", "mock"),

		PostgresHost:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnvOrDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnvOrDefault("POSTGRES_DB", "postgres"),
		PostgresSSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		JWTSecret: getEnvOrDefault("JWT_SECRET", "dev-secret"),

		HeartbeatInterval: getEnvDuration("HEARTBEAT_INTERVAL", 30*time.Second),
		QuestionDelay:     getEnvDuration("QUESTION_DELAY", 2*time.Second),
		ChunkDelay:        getEnvDuration("CHUNK_DELAY", 150*time.Millisecond),
		SweepSchedule:     getEnvOrDefault("SWEEP_SCHEDULE", "@every 1m"),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// DSN assembles the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode)
}

func validateConfig(config *Config) error {
	if config.Provider != "mock" && config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: mock, gemini")
	}
	if _, err := strconv.Atoi(config.Port); err != nil {
		return errors.New("PORT must be numeric: " + config.Port)
	}
	if config.HeartbeatInterval <= 0 {
		return errors.New("HEARTBEAT_INTERVAL must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
