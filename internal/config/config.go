package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	MongoDatabase      string
	JWTSecret          string
	CorsAllowedOrigins []string
	// Requests per minute per IP on public reads. Zero disables the limit.
	PublicRateLimit int
}

// Load reads .env (if present) and the process environment. It exits the
// process when required settings are missing.
func Load() Config {
	_ = godotenv.Load()

	cfg, err := Parse(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Parse builds a Config from getenv.
func Parse(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			return fallback
		}
		return value
	}

	cfg := Config{
		Port:               get("PORT", "8080"),
		DatabaseURL:        get("DATABASE_URL", ""),
		MongoDatabase:      get("MONGO_DATABASE", "blog"),
		JWTSecret:          get("JWT_SECRET", ""),
		CorsAllowedOrigins: splitCSV(get("CORS_ALLOWED_ORIGINS", "*")),
	}

	limit, err := strconv.Atoi(get("PUBLIC_RATE_LIMIT", "60"))
	if err != nil || limit < 0 {
		return Config{}, fmt.Errorf("PUBLIC_RATE_LIMIT must be a non-negative integer, got %q", getenv("PUBLIC_RATE_LIMIT"))
	}
	cfg.PublicRateLimit = limit

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
