package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	Host        string

	ProductsSheetURL  string
	StoresSheetURL    string
	SheetFetchTimeout time.Duration
	SheetUserAgent    string

	SyncInterval  time.Duration
	SyncOnStart   bool
	SyncRateLimit time.Duration
	Timezone      *time.Location

	CacheBackend  string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DataDir  string
	DBDriver string

	AdminToken string
	BarkKey    string
}

func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		Port:             getEnv("PORT", "8080"),
		Host:             getEnv("HOST", "0.0.0.0"),
		ProductsSheetURL: strings.TrimSpace(getEnv("PRODUCTS_SHEET_URL", "")),
		StoresSheetURL:   strings.TrimSpace(getEnv("STORES_SHEET_URL", "")),
		SheetUserAgent:   getEnv("SHEET_USER_AGENT", "price-tracker/1.0"),
		CacheBackend:     strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		DataDir:          getEnv("DATA_DIR", "./data"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite3"),
		AdminToken:       getEnv("ADMIN_TOKEN", ""),
		BarkKey:          getEnv("BARK_KEY", ""),
	}

	var err error
	if cfg.SheetFetchTimeout, err = parseDuration("SHEET_FETCH_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.SyncInterval, err = parseDuration("SYNC_INTERVAL", "24h"); err != nil {
		return nil, err
	}
	if cfg.SyncRateLimit, err = parseDuration("SYNC_RATE_LIMIT", "1m"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", "12h"); err != nil {
		return nil, err
	}

	onStart, err := strconv.ParseBool(getEnv("SYNC_ON_START", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_ON_START: %w", err)
	}
	cfg.SyncOnStart = onStart

	if db := getEnv("REDIS_DB", "0"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Timezone = loc

	switch cfg.CacheBackend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND: %q", cfg.CacheBackend)
	}
	switch cfg.DBDriver {
	case "sqlite3", "sqlite":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER: %q", cfg.DBDriver)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
