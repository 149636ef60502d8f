package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver            string
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	DBSSLMode           string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	SessionSecret       string
	GinMode             string
	HTTPAddr            string
	LogLevel            string
	LogEncoding         string
	NotifyEnabled       bool
	NotifyChannelPrefix string
	ReconcileSchedule   string
	ProgressMaxAttempts int
}

// Load reads configuration from the environment, optionally seeded from a .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBDriver:            getEnv("DB_DRIVER", "mysql"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBUser:              getEnv("DB_USER", "taskuser"),
		DBPassword:          getEnv("DB_PASSWORD", "taskpassword"),
		DBName:              getEnv("DB_NAME", "task_management"),
		DBSSLMode:           getEnv("DB_SSLMODE", "disable"),
		RedisHost:           getEnv("REDIS_HOST", "localhost"),
		RedisPort:           getEnv("REDIS_PORT", "6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		SessionSecret:       getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogEncoding:         getEnv("LOG_ENCODING", "json"),
		NotifyEnabled:       getBool("NOTIFY_ENABLED", true),
		NotifyChannelPrefix: getEnv("NOTIFY_CHANNEL_PREFIX", "notifications:"),
		ReconcileSchedule:   getEnv("RECONCILE_SCHEDULE", "0 */15 * * * *"),
		ProgressMaxAttempts: getInt("PROGRESS_MAX_ATTEMPTS", 5),
	}
}

// RedisAddr returns the host:port pair shared by the session store and the notification publisher.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
