package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Queue     QueueConfig
	App       AppConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	Environment string // "development", "staging", "production"
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// CacheConfig holds the Redis caching layer configuration
type CacheConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	TTL      time.Duration
}

// QueueConfig holds the optional RabbitMQ click pipeline configuration.
// An empty URL disables publishing.
type QueueConfig struct {
	URL        string
	ClickQueue string
}

// RateLimitConfig bounds mutating API calls per client IP.
type RateLimitConfig struct {
	MaxRequests int64
	Window      time.Duration
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	PrimaryDomain string // host the application itself is served on
	BaseURL       string // base URL for generating short links
	OTLPEndpoint  string // empty means no trace export
	SlugMinLen    int
	SlugMaxLen    int
	SlugBatchSize int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "nahpet"),
			Password: getEnv("DB_PASSWORD", "nahpet_secret"),
			DBName:   getEnv("DB_NAME", "shortener"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Cache: CacheConfig{
			Host:     getEnv("RDB_HOST", "localhost"),
			Port:     getEnv("RDB_PORT", "6379"),
			User:     getEnv("RDB_USER", ""),
			Password: getEnv("RDB_PASSWORD", ""),
			TTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Queue: QueueConfig{
			URL:        getEnv("AMQP_URL", ""),
			ClickQueue: getEnv("AMQP_CLICK_QUEUE", "clicks"),
		},
		RateLimit: RateLimitConfig{
			MaxRequests: int64(getEnvInt("RATE_LIMIT_MAX", 100)),
			Window:      getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		App: AppConfig{
			PrimaryDomain: getEnv("PRIMARY_DOMAIN", "localhost"),
			BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
			OTLPEndpoint:  getEnv("OTLP_ENDPOINT", ""),
			SlugMinLen:    getEnvInt("SLUG_MIN_LENGTH", 4),
			SlugMaxLen:    getEnvInt("SLUG_MAX_LENGTH", 8),
			SlugBatchSize: getEnvInt("SLUG_BATCH_SIZE", 10),
		},
	}, nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// ConnectionString returns the Redis connection string
func (c *CacheConfig) ConnectionString() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s/0", c.User, c.Password, c.Host, c.Port)
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
