// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the server
type Config struct {
	// Server settings
	Host        string
	Port        int
	CORSOrigins []string

	// Logging
	LogLevel  string
	LogFormat string // "json" or "console"

	// Database. Either DATABASE_DSN is set (driver auto-detected from it),
	// or a MySQL DSN is assembled from the discrete DB_* settings.
	DatabaseDSN    string
	DatabaseDriver string // "mysql", "postgres" or "sqlite"
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBConnLimit    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Server
	cfg.Host = getEnv("HOST", "0.0.0.0")
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", []string{"*"})

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	// Database
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnvInt("DB_PORT", 3306)
	cfg.DBUser = getEnv("DB_USER", "root")
	cfg.DBPassword = getEnv("DB_PASSWORD", "")
	cfg.DBName = getEnv("DB_NAME", "fieldtrack")
	cfg.DBConnLimit = getEnvInt("DB_CONNECTION_LIMIT", 10)
	if cfg.DBConnLimit < 1 {
		return nil, fmt.Errorf("DB_CONNECTION_LIMIT must be at least 1, got %d", cfg.DBConnLimit)
	}

	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "")
	if cfg.DatabaseDSN != "" {
		cfg.DatabaseDriver = detectDriver(cfg.DatabaseDSN)
	} else {
		cfg.DatabaseDriver = "mysql"
		cfg.DatabaseDSN = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}

	return cfg, nil
}

// detectDriver determines the database driver from DSN
func detectDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.HasPrefix(dsn, "sqlite://") || strings.HasSuffix(dsn, ".db") ||
		strings.HasSuffix(dsn, ".sqlite") || strings.Contains(dsn, ":memory:") {
		return "sqlite"
	}
	return "mysql"
}

// CleanDSN removes the driver prefix from DSN where the driver wants a bare path
func (c *Config) CleanDSN() string {
	if c.DatabaseDriver == "sqlite" {
		return strings.TrimPrefix(c.DatabaseDSN, "sqlite://")
	}
	return c.DatabaseDSN
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
