package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultDatabasePath = "shows.db"
	DefaultPort         = "8080"
)

const (
	defaultBusyTimeoutMS = 5000
	defaultTopLimit      = 20
)

type Config struct {
	// database path
	DatabasePath string

	// gorm SQL log level: silent, error, warn, info
	DBLogLevel string

	// sqlite busy timeout so concurrent writers wait instead of failing
	BusyTimeoutMS int

	// static band equivalence groups (YAML). empty means built-in defaults
	EquivalentsPath string

	// http server settings
	Port           string
	AllowedOrigins []string

	// password protection for mutating routes. empty hash disables auth
	AdminUsername     string
	AdminPasswordHash string

	// default row limit for "top N" reports
	TopLimit int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", DefaultDatabasePath)
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to get absolute path for database '%s': %w", dbPath, err)
		}
		dbPath = abs
	}

	equivalents := os.Getenv("EQUIVALENTS_PATH")
	if equivalents != "" {
		abs, err := filepath.Abs(equivalents)
		if err != nil {
			return Config{}, fmt.Errorf("failed to get absolute path for equivalents file '%s': %w", equivalents, err)
		}
		equivalents = abs
	}

	cfg := Config{
		DatabasePath:      dbPath,
		DBLogLevel:        strings.ToLower(getEnvOrDefault("DB_LOG_LEVEL", "warn")),
		BusyTimeoutMS:     getEnvIntOrDefault("DB_BUSY_TIMEOUT_MS", defaultBusyTimeoutMS),
		EquivalentsPath:   equivalents,
		Port:              getEnvOrDefault("PORT", DefaultPort),
		AllowedOrigins:    splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
		AdminUsername:     getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		TopLimit:          getEnvIntOrDefault("TOP_LIMIT", defaultTopLimit),
	}

	return cfg, nil
}

// AuthEnabled reports whether mutating routes require a password.
func (c Config) AuthEnabled() bool {
	return c.AdminPasswordHash != ""
}
