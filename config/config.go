/*
config.go - Environment-driven configuration

PURPOSE:
  Loads process configuration from a .env file (if present) and the
  environment. Flags on cmd/server override these values.

VARIABLES:
  PORT                   HTTP port (default 8080)
  DB_ENGINE              "sqlite3" (default) or "mysql"
  DB_PATH                sqlite database path (default budget.db, ":memory:" ok)
  DB_DSN                 mysql DSN, e.g. user:pass@tcp(host:3306)/budgets
  CURRENCY_API_KEY       exchange-rate provider API key (required at startup)
  CURRENCY_API_BASE_URL  provider base URL override (tests, regional pins)
*/
package config

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Port     string
	DBEngine string
	DBPath   string
	DBDSN    string
	Currency struct {
		APIKey  string
		BaseURL string
	}
}

// LoadEnv loads environment variables from a .env file when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
}

// Load reads configuration from the environment. LoadEnv should run first.
func Load() (Config, error) {
	var cfg Config
	cfg.Port = GetEnv("PORT", "8080")
	cfg.DBEngine = GetEnv("DB_ENGINE", "sqlite3")
	cfg.DBPath = GetEnv("DB_PATH", "budget.db")
	cfg.DBDSN = os.Getenv("DB_DSN")
	cfg.Currency.APIKey = os.Getenv("CURRENCY_API_KEY")
	cfg.Currency.BaseURL = os.Getenv("CURRENCY_API_BASE_URL")

	if cfg.DBEngine != "sqlite3" && cfg.DBEngine != "mysql" {
		return cfg, errors.New("DB_ENGINE must be sqlite3 or mysql")
	}
	if cfg.DBEngine == "mysql" && cfg.DBDSN == "" {
		return cfg, errors.New("DB_DSN is required when DB_ENGINE=mysql")
	}
	if cfg.Currency.APIKey == "" {
		return cfg, errors.New("CURRENCY_API_KEY is required")
	}
	return cfg, nil
}

// DSN returns the driver DSN for the configured engine.
func (c Config) DSN() string {
	if c.DBEngine == "mysql" {
		return c.DBDSN
	}
	return c.DBPath
}

// GetEnv gets an environment variable or returns a default value if not present.
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
