package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.LookbackYears != 5 {
		t.Errorf("Expected LookbackYears to be 5, got %d", cfg.LookbackYears)
	}

	if cfg.RetentionDays != 90 {
		t.Errorf("Expected RetentionDays to be 90, got %d", cfg.RetentionDays)
	}

	if cfg.Workers != 4 {
		t.Errorf("Expected Workers to be 4, got %d", cfg.Workers)
	}

	if cfg.Yahoo.MaxRetries != 3 {
		t.Errorf("Expected Yahoo MaxRetries to be 3, got %d", cfg.Yahoo.MaxRetries)
	}

	if cfg.Yahoo.RetryDelay != 5*time.Second {
		t.Errorf("Expected Yahoo RetryDelay to be 5s, got %v", cfg.Yahoo.RetryDelay)
	}

	if cfg.Naver.RetryDelay != 2*time.Second {
		t.Errorf("Expected Naver RetryDelay to be 2s, got %v", cfg.Naver.RetryDelay)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("ENV", "production")
	os.Setenv("DATA_DIR", "/tmp/market-data")
	os.Setenv("PIPELINE_WORKERS", "8")
	os.Setenv("LOG_LEVEL", "info")

	defer func() {
		os.Unsetenv("ENV")
		os.Unsetenv("DATA_DIR")
		os.Unsetenv("PIPELINE_WORKERS")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.DataDir != "/tmp/market-data" {
		t.Errorf("Expected DataDir to be /tmp/market-data, got %s", cfg.DataDir)
	}

	if cfg.Workers != 8 {
		t.Errorf("Expected Workers to be 8, got %d", cfg.Workers)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateInvalidWorkers(t *testing.T) {
	os.Setenv("PIPELINE_WORKERS", "0")
	defer os.Unsetenv("PIPELINE_WORKERS")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when PIPELINE_WORKERS is 0, got nil")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "2.5")
	defer os.Unsetenv("TEST_FLOAT")

	value := getEnvAsFloat("TEST_FLOAT", 1.0)
	if value != 2.5 {
		t.Errorf("Expected value to be 2.5, got %v", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
