package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Data
	DataDir       string // root for market artifact folders (static/data)
	LookbackYears int    // download window for fresh history
	RetentionDays int    // age threshold for the retention sweep

	// Providers
	Yahoo YahooConfig
	Naver NaverConfig

	// Batch
	Workers int // bounded worker pool size for multi-ticker runs

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
	RateLimit  float64 // requests per second
}

// NaverConfig holds Naver Finance chart API configuration
type NaverConfig struct {
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
	RateLimit  float64
}

// SchedulerConfig holds cron schedule specs
type SchedulerConfig struct {
	Enabled         bool
	KoreaRefresh    string // after KOSPI/KOSDAQ close
	USRefresh       string // after US close
	MaintenanceSpec string // nightly retention sweep
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		DataDir:       getEnv("DATA_DIR", filepath.Join("static", "data")),
		LookbackYears: getEnvAsInt("LOOKBACK_YEARS", 5),
		RetentionDays: getEnvAsInt("RETENTION_DAYS", 90),

		Yahoo: YahooConfig{
			BaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			MaxRetries: getEnvAsInt("YAHOO_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("YAHOO_RETRY_DELAY", "5s"),
			RateLimit:  getEnvAsFloat("YAHOO_RATE_LIMIT", 2.0),
		},
		Naver: NaverConfig{
			BaseURL:    getEnv("NAVER_BASE_URL", "https://fchart.stock.naver.com"),
			MaxRetries: getEnvAsInt("NAVER_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("NAVER_RETRY_DELAY", "2s"),
			RateLimit:  getEnvAsFloat("NAVER_RATE_LIMIT", 5.0),
		},

		Workers: getEnvAsInt("PIPELINE_WORKERS", 4),

		Scheduler: SchedulerConfig{
			Enabled:         getEnvAsBool("SCHEDULER_ENABLED", true),
			KoreaRefresh:    getEnv("SCHEDULE_KR_REFRESH", "0 10 16 * * MON-FRI"),
			USRefresh:       getEnv("SCHEDULE_US_REFRESH", "0 40 16 * * MON-FRI"),
			MaintenanceSpec: getEnv("SCHEDULE_MAINTENANCE", "0 0 3 * * *"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}

	if c.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1")
	}

	if c.LookbackYears < 1 {
		return fmt.Errorf("LOOKBACK_YEARS must be at least 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
