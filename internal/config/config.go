// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds the server's runtime settings.
type Config struct {
	DataDir  string
	LogLevel string
	LogFile  string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first if present; real environment
// variables win over .env entries.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DataDir:  getEnv("CRADLE_DATA_DIR", defaultDataDir()),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cradle"
	}
	return filepath.Join(home, ".cradle")
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
