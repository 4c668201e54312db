// Package config resolves process settings from .env files and JOURNEY_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds the resolved settings for the CLI and servers.
type Config struct {
	Store         string
	DataDir       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string
	CatalogDir    string
	LogLevel      string
	LogFormat     string
	LogFile       string
	HTTPPort      int
}

// Load reads envFiles (or ./.env when none are given) and then the process
// environment. Missing .env files are not an error; variables already set
// in the environment take precedence over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	dataDir := getEnv("JOURNEY_DATA_DIR", ".journey")
	cfg := &Config{
		Store:         strings.ToLower(getEnv("JOURNEY_STORE", StoreFile)),
		DataDir:       dataDir,
		RedisAddr:     getEnv("JOURNEY_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("JOURNEY_REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("JOURNEY_SQLITE_PATH", DefaultSQLitePath(dataDir)),
		CatalogDir:    getEnv("JOURNEY_CATALOG_DIR", ""),
		LogLevel:      getEnv("JOURNEY_LOG_LEVEL", "info"),
		LogFormat:     getEnv("JOURNEY_LOG_FORMAT", "text"),
		LogFile:       getEnv("JOURNEY_LOG_FILE", ""),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("JOURNEY_REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.HTTPPort, err = getEnvInt("JOURNEY_HTTP_PORT", 8080); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want memory, file, redis or sqlite)", c.Store)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTPPort)
	}
	return nil
}

// DefaultSQLitePath is the database location inside a data directory.
func DefaultSQLitePath(dataDir string) string {
	return filepath.Join(dataDir, "journeys.db")
}

// JourneysDir is where the file store keeps its documents.
func (c *Config) JourneysDir() string {
	return filepath.Join(c.DataDir, "journeys")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
