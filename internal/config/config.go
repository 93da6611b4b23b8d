package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Providers  ProviderConfig
	Enrichment EnrichmentConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// RedisConfig holds the optional provider-cache Redis connection settings.
// An empty Addr means the in-memory cache is used instead.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// ProviderConfig holds settings for the external feature providers.
// API keys are optional; the default public endpoints accept unauthenticated
// requests. FernetKey decrypts keys stored in the provider_credential table.
type ProviderConfig struct {
	WeatherBaseURL   string
	HolidayBaseURL   string
	WeatherAPIKey    string // optional commercial key, stored encrypted at boot
	RequestTimeout   time.Duration
	HolidayRateLimit float64 // requests per second against the holiday calendar
	FernetKey        string
}

// EnrichmentConfig holds tuning knobs for the enrichment job pipeline.
type EnrichmentConfig struct {
	BatchSize    int
	Workers      int
	QueueDepth   int
	CacheTTL     time.Duration
	StageTimeout time.Duration
	JobRetention time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/jengu.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://localhost",
			},
		},
		Providers: ProviderConfig{
			WeatherBaseURL:   getEnv("WEATHER_BASE_URL", "https://archive-api.open-meteo.com/v1/archive"),
			HolidayBaseURL:   getEnv("HOLIDAY_BASE_URL", "https://date.nager.at/api/v3"),
			WeatherAPIKey:    getEnv("WEATHER_API_KEY", ""),
			RequestTimeout:   getEnvDuration("PROVIDER_TIMEOUT", 15*time.Second),
			HolidayRateLimit: getEnvFloat("HOLIDAY_RATE_LIMIT", 5),
			FernetKey:        getEnv("CREDENTIAL_FERNET_KEY", ""),
		},
		Enrichment: EnrichmentConfig{
			BatchSize:    getEnvInt("ENRICHMENT_BATCH_SIZE", 100),
			Workers:      getEnvInt("ENRICHMENT_WORKERS", 4),
			QueueDepth:   getEnvInt("ENRICHMENT_QUEUE_DEPTH", 64),
			CacheTTL:     getEnvDuration("PROVIDER_CACHE_TTL", 24*time.Hour),
			StageTimeout: getEnvDuration("ENRICHMENT_STAGE_TIMEOUT", 30*time.Second),
			JobRetention: getEnvDuration("ENRICHMENT_JOB_RETENTION", time.Hour),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvDuration gets a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
