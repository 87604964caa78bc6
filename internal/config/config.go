package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// BackendURL is the base URL of the ranking API (no trailing slash).
	BackendURL     string
	BackendTimeout time.Duration

	// CacheType selects the cache backend: "memory" or "redis".
	CacheType       string
	RedisURL        string
	CatalogCacheTTL time.Duration
	RankCacheTTL    time.Duration

	// USNewsConcurrency bounds parallel US News rank lookups per results page.
	// 1 reproduces a strictly sequential lookup.
	USNewsConcurrency int
	// RefreshInterval re-fetches the overall ranking in the background. Zero disables.
	RefreshInterval time.Duration

	RateLimitPerMinute int
	// AllowedOrigins controls CORS for the JSON API.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "pretty"),
		BackendURL:         strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),
		BackendTimeout:     time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 15)) * time.Second,
		CacheType:          strings.ToLower(getEnv("CACHE_TYPE", "memory")),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CatalogCacheTTL:    time.Duration(getEnvInt("CATALOG_CACHE_TTL_MINUTES", 60)) * time.Minute,
		RankCacheTTL:       time.Duration(getEnvInt("RANK_CACHE_TTL_MINUTES", 60)) * time.Minute,
		USNewsConcurrency:  clampMin(getEnvInt("US_NEWS_CONCURRENCY", 4), 1),
		RefreshInterval:    time.Duration(clampMin(getEnvInt("REFRESH_INTERVAL_MINUTES", 0), 0)) * time.Minute,
		RateLimitPerMinute: clampMin(getEnvInt("RATE_LIMIT_PER_MINUTE", 120), 0),
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func clampMin(n, min int) int {
	if n < min {
		return min
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
