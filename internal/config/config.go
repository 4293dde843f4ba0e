package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is the single source of truth for runtime parameters, loaded from
// the environment (optionally via a .env file).
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string
	CORSOrigins string

	DB DatabaseConfig
}

// DatabaseConfig contains discrete PostgreSQL connection parameters, used
// when DATABASE_URL is not set.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func Load() *Config {
	// Missing .env is fine; real deployments set environment variables.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "3000"),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "stationery"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
