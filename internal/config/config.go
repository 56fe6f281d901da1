// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"marketlens/internal/domain/market"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Market      MarketConfig
	Cache       CacheConfig
	Warmer      WarmerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	SubjectPrefix  string
}

// MarketConfig holds live data source configuration
type MarketConfig struct {
	Mode          market.Mode
	Timeout       time.Duration
	TrendsBaseURL string
	QuotesBaseURL string
	Language      string
	TZOffset      int
	Region        string
	CatalogPath   string
}

// CacheConfig holds sector report cache configuration
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// WarmerConfig holds the scheduled refresh configuration
type WarmerConfig struct {
	Enabled    bool
	Schedule   string
	Categories []string
	Timeframe  string
}

// IsDevelopment reports whether the app runs in the development environment
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the app runs in the production environment
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from environment variables.
// In development a .env file in the working directory is read first.
func Load() (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	mode, err := resolveMode()
	if err != nil {
		return Config{}, err
	}

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", getEnvAsInt("PORT", 8080)),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "marketlens"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			SubjectPrefix:  getEnv("NATS_SUBJECT_PREFIX", "market"),
		},
		Market: MarketConfig{
			Mode:          mode,
			Timeout:       getEnvAsDuration("MARKET_TIMEOUT", 10*time.Second),
			TrendsBaseURL: getEnv("MARKET_TRENDS_BASE_URL", "https://trends.google.com"),
			QuotesBaseURL: getEnv("MARKET_QUOTES_BASE_URL", "https://query1.finance.yahoo.com"),
			Language:      getEnv("MARKET_LANGUAGE", "en-US"),
			TZOffset:      getEnvAsInt("MARKET_TZ_OFFSET", 360),
			Region:        getEnv("MARKET_REGION", "US"),
			CatalogPath:   getEnv("MARKET_CATALOG_PATH", ""),
		},
		Cache: CacheConfig{
			Enabled: getEnvAsBool("CACHE_ENABLED", true),
			TTL:     getEnvAsDuration("CACHE_TTL", 30*time.Minute),
		},
		Warmer: WarmerConfig{
			Enabled:    getEnvAsBool("WARMER_ENABLED", true),
			Schedule:   getEnv("WARMER_SCHEDULE", "*/15 * * * *"),
			Categories: getEnvAsSlice("WARMER_CATEGORIES", []string{"all", "tech", "fashion", "food", "gym"}),
			Timeframe:  getEnv("WARMER_TIMEFRAME", "today 1-m"),
		},
	}

	return config, validate(config)
}

// resolveMode picks the market mode. MARKET_MODE wins; otherwise hosted
// environments (RENDER set) run simulated.
func resolveMode() (market.Mode, error) {
	if raw := getEnv("MARKET_MODE", ""); raw != "" {
		return market.ParseMode(raw)
	}
	if getEnv("RENDER", "") != "" {
		return market.ModeSimulated, nil
	}
	return market.ModeLive, nil
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}
	if config.Market.Timeout <= 0 {
		return fmt.Errorf("market timeout must be positive")
	}
	if config.Cache.Enabled && config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when the cache is enabled")
	}
	if config.Warmer.Enabled && config.Warmer.Schedule == "" {
		return fmt.Errorf("warmer schedule must be set when the warmer is enabled")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
