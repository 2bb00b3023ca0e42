package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"modelbench/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Client   ClientConfig
	Paths    PathConfig
	Training TrainingConfig
	Download DownloadConfig
	Server   ServerConfig
	Report   ReportConfig
	Logging  LoggingConfig
}

// ClientConfig holds the training server connection settings
type ClientConfig struct {
	ServerURL string
	// Timeout of zero means requests wait for the server indefinitely
	Timeout time.Duration
}

// PathConfig holds file system paths
type PathConfig struct {
	OutputDir   string
	DownloadDir string
}

// TrainingConfig holds the simulated progress settings
type TrainingConfig struct {
	ProgressInterval time.Duration
}

// DownloadConfig holds model download settings
type DownloadConfig struct {
	Workers int
}

// ServerConfig holds the contract fixture server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ReportConfig holds the report preview server settings
type ReportConfig struct {
	Port string
}

// LoggingConfig mirrors the LOG_* variables read by internal.NewDefaultLogger
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// Load reads .env if present, then configuration from the environment, and validates it
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only
func FromEnv() (*Config, error) {
	config := &Config{
		Client:   *loadClientConfig(),
		Paths:    *loadPathConfig(),
		Training: *loadTrainingConfig(),
		Download: *loadDownloadConfig(),
		Server:   *loadServerConfig(),
		Report:   *loadReportConfig(),
		Logging:  *loadLoggingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadClientConfig() *ClientConfig {
	return &ClientConfig{
		ServerURL: getEnvOrDefault("MODELBENCH_SERVER_URL", "http://localhost:5000"),
		Timeout:   getEnvDurationOrDefault("MODELBENCH_HTTP_TIMEOUT", 0),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		OutputDir:   getEnvOrDefault("MODELBENCH_OUTPUT_DIR", "./modelbench-report"),
		DownloadDir: getEnvOrDefault("MODELBENCH_DOWNLOAD_DIR", "./models"),
	}
}

func loadTrainingConfig() *TrainingConfig {
	return &TrainingConfig{
		ProgressInterval: getEnvDurationOrDefault("MODELBENCH_PROGRESS_INTERVAL", time.Second),
	}
}

func loadDownloadConfig() *DownloadConfig {
	return &DownloadConfig{
		Workers: getEnvIntOrDefault("MODELBENCH_DOWNLOAD_WORKERS", 4),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "5000"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadReportConfig() *ReportConfig {
	return &ReportConfig{
		Port: getEnvOrDefault("MODELBENCH_REPORT_PORT", "8090"),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "console"),
		File:   getEnvOrDefault("LOG_FILE", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Client.ServerURL == "" {
		return errors.ConfigInvalid("MODELBENCH_SERVER_URL is required")
	}
	u, err := url.Parse(config.Client.ServerURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.ConfigInvalid("MODELBENCH_SERVER_URL must be an absolute URL")
	}
	if config.Client.Timeout < 0 {
		return errors.ConfigInvalid("MODELBENCH_HTTP_TIMEOUT cannot be negative")
	}
	if config.Training.ProgressInterval <= 0 {
		return errors.ConfigInvalid("MODELBENCH_PROGRESS_INTERVAL must be positive")
	}
	if config.Download.Workers <= 0 {
		return errors.ConfigInvalid("MODELBENCH_DOWNLOAD_WORKERS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
