package config

import (
	"os"
)

// Config holds all configuration for the report intake service
type Config struct {
	// Server configuration
	Port string

	// Storage configuration
	DBPath    string
	UploadDir string

	// Frontend assets
	StaticDir    string
	TemplatesDir string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DBPath:    getEnv("DB_PATH", "reports.db"),
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		StaticDir:    getEnv("STATIC_DIR", "static"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "templates"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
