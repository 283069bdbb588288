package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Import   ImportConfig
	Storage  StorageConfig
	Report   ReportConfig
	CORS     CORSConfig
	Events   EventsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port              int
	Env               string
	LogLevel          string
	// PoolStatsInterval is how often pool occupancy is sampled into metrics. Zero disables sampling.
	PoolStatsInterval time.Duration
}

// ImportConfig controls the CSV import pipeline
type ImportConfig struct {
	MaxBytes         int64
	DefaultBonusRate decimal.Decimal
	EncodingFallback string
	SkipInvalidRows  bool
	OnsiteTags       []string
}

type StorageConfig struct {
	Type     string
	BasePath string
}

// ReportConfig controls caching of year-scoped reports. A zero TTL disables the cache.
type ReportConfig struct {
	CacheTTL time.Duration
}

// EventsConfig enables publishing change notifications to RabbitMQ. An empty URL disables it.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

type CORSConfig struct {
	AllowedOrigins []string
}

const (
	StorageLocal = "local"
	// StorageNone disables archiving of uploaded files.
	StorageNone = "none"
)

const (
	EncodingFallbackReject      = "reject"
	EncodingFallbackWindows1252 = "windows-1252"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "bonus_tracker"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	poolInterval, err := time.ParseDuration(getEnv("METRICS_POOL_INTERVAL", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid METRICS_POOL_INTERVAL: %w", err)
	}

	config.App = AppConfig{
		Port:              appPort,
		Env:               getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		PoolStatsInterval: poolInterval,
	}

	// Import configuration
	maxBytes, err := strconv.ParseInt(getEnv("IMPORT_MAX_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_MAX_BYTES: %w", err)
	}
	bonusRate, err := decimal.NewFromString(getEnv("DEFAULT_BONUS_RATE", "0.02"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_BONUS_RATE: %w", err)
	}
	skipInvalid, err := strconv.ParseBool(getEnv("IMPORT_SKIP_INVALID_ROWS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_SKIP_INVALID_ROWS: %w", err)
	}

	config.Import = ImportConfig{
		MaxBytes:         maxBytes,
		DefaultBonusRate: bonusRate,
		EncodingFallback: strings.ToLower(getEnv("IMPORT_ENCODING_FALLBACK", EncodingFallbackReject)),
		SkipInvalidRows:  skipInvalid,
		OnsiteTags:       getEnvSlice("IMPORT_ONSITE_TAGS"),
	}

	config.Storage = StorageConfig{
		Type:     strings.ToLower(getEnv("STORAGE_TYPE", StorageLocal)),
		BasePath: getEnv("STORAGE_BASE_PATH", "./data/uploads"),
	}

	cacheTTL, err := time.ParseDuration(getEnv("REPORT_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_CACHE_TTL: %w", err)
	}
	config.Report = ReportConfig{CacheTTL: cacheTTL}

	origins := getEnvSlice("CORS_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	config.CORS = CORSConfig{AllowedOrigins: origins}

	config.Events = EventsConfig{
		AMQPURL:  getEnv("AMQP_URL", ""),
		Exchange: getEnv("AMQP_EXCHANGE", "bonus_tracker.events"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Import.MaxBytes <= 0 {
		return fmt.Errorf("IMPORT_MAX_BYTES must be positive")
	}
	if c.Import.DefaultBonusRate.IsNegative() || c.Import.DefaultBonusRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("DEFAULT_BONUS_RATE must be between 0 and 1")
	}
	switch c.Import.EncodingFallback {
	case EncodingFallbackReject, EncodingFallbackWindows1252:
	default:
		return fmt.Errorf("IMPORT_ENCODING_FALLBACK must be %q or %q", EncodingFallbackReject, EncodingFallbackWindows1252)
	}
	switch c.Storage.Type {
	case StorageLocal, StorageNone:
	default:
		return fmt.Errorf("STORAGE_TYPE must be %q or %q", StorageLocal, StorageNone)
	}
	if c.Events.AMQPURL != "" && c.Events.Exchange == "" {
		return fmt.Errorf("AMQP_EXCHANGE is required when AMQP_URL is set")
	}
	if c.Report.CacheTTL < 0 {
		return fmt.Errorf("REPORT_CACHE_TTL must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// LogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
