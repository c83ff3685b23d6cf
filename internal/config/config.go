package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port                string
	DatabaseDSN         string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	JWTSecret           string
	Env                 string
	AccessTokenTTLHours int
	TelegramBotToken    string
	LocalesPath         string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Load reads the configuration from the environment, falling back to
// development defaults.
func Load() Config {
	return Config{
		Port:                getenv("APP_PORT", "8080"),
		DatabaseDSN:         getenv("DATABASE_DSN", "host=localhost user=user password=password dbname=motorentdb port=5432 sslmode=disable"),
		RedisAddr:           getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getenv("REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("REDIS_DB", 0),
		JWTSecret:           getenv("JWT_SECRET", "dev-secret-change-me"),
		Env:                 getenv("APP_ENV", "dev"),
		AccessTokenTTLHours: getenvInt("ACCESS_TOKEN_TTL_HOURS", 72),
		TelegramBotToken:    getenv("TELEGRAM_BOT_TOKEN", ""),
		LocalesPath:         getenv("LOCALES_PATH", "locales"),
	}
}

// Validate rejects configurations that must never reach production.
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("port must not be empty")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("database DSN must not be empty")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == "dev-secret-change-me" {
		return errors.New("default JWT secret is not allowed outside dev")
	}
	return nil
}
