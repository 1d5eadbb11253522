package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	DBDriver     string // "memory" (default), "sqlite3", or "postgres"
	DBDSN        string
	CookieSecret string
	AppEnv       string // "development" or "production"
}

// Load reads a .env file if present, then the environment, with defaults
// suitable for local development.
func Load() Config {
	godotenv.Load()

	return Config{
		Addr:         getenv("ADDR", ":8080"),
		DBDriver:     getenv("DB_DRIVER", "memory"),
		DBDSN:        getenv("DB_DSN", "banter.db"),
		CookieSecret: getenv("COOKIE_SECRET", "dev-secret-change-me"),
		AppEnv:       getenv("APP_ENV", "development"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
