package config

import (
	"os"
	"strconv"
)

type Config struct {
	ServerPort     string
	ModulePath     string
	DBPath         string
	LogLevel       string
	StartupGraceMs int

	// Overrides for the loaded module's manifest settings. Empty means
	// the manifest value (or the plugin default) wins.
	BackendURL   string
	BackendModel string
}

var cfg *Config

func Load() *Config {
	cfg = &Config{
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		ModulePath:     getEnv("MODULE_PATH", "/opt/module"),
		DBPath:         getEnv("DB_PATH", "./data/requests.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StartupGraceMs: getEnvInt("STARTUP_GRACE_MS", 5000),
		BackendURL:     getEnv("BACKEND_URL", ""),
		BackendModel:   getEnv("BACKEND_MODEL", ""),
	}
	return cfg
}

func Get() *Config {
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
