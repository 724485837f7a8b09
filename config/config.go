package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the moderation engine
type Config struct {
	Bot      BotConfig
	Warnings WarningConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Service  ServiceConfig
}

// BotConfig holds bot identity and command configuration
type BotConfig struct {
	OwnerID       string
	DefaultPrefix string
}

// WarningConfig holds the per-reason kick thresholds
type WarningConfig struct {
	Links   int
	Sales   int
	Default int
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config   *Config
	Bot      *BotConfig
	Warnings *WarningConfig
	Database *DatabaseConfig
	Logging  *LoggingConfig
	Service  *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:   cfg,
		Bot:      &cfg.Bot,
		Warnings: &cfg.Warnings,
		Database: &cfg.Database,
		Logging:  &cfg.Logging,
		Service:  &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Bot: BotConfig{
			OwnerID:       getEnv("BOT_OWNER_ID", ""),
			DefaultPrefix: getEnv("COMMAND_PREFIX", "."),
		},
		Warnings: WarningConfig{
			Links:   getEnvInt("WARN_THRESHOLD_LINKS", 3),
			Sales:   getEnvInt("WARN_THRESHOLD_SALES", 2),
			Default: getEnvInt("WARN_THRESHOLD_DEFAULT", 3),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "groupwarden"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "groupwarden"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "groupwarden"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Bot.OwnerID == "" {
		return fmt.Errorf("BOT_OWNER_ID is required")
	}

	if c.Bot.DefaultPrefix == "" {
		return fmt.Errorf("COMMAND_PREFIX must not be empty")
	}

	if c.Warnings.Links <= 0 || c.Warnings.Sales <= 0 || c.Warnings.Default <= 0 {
		return fmt.Errorf("warning thresholds must be positive")
	}

	return nil
}

// Threshold returns the kick threshold for a warning reason bucket
func (w *WarningConfig) Threshold(reason string) int {
	switch reason {
	case "links":
		return w.Links
	case "sales":
		return w.Sales
	default:
		return w.Default
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
