package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the runtime configuration of the server and tools.
type Config struct {
	Port        string
	DBPath      string
	DatabaseURL string
	SeedPath    string
	LogLevel    string

	ORSAPIKey  string
	ORSProfile string
	RedisURL   string

	OptimizeMaxIterations int
	OptimizeTimeBudget    time.Duration
	OptimizeWorkers       int

	// DotEnvLoaded is false when no .env file was found.
	DotEnvLoaded bool
}

// UsePostgres reports whether DATABASE_URL selects Postgres over SQLite.
func (c Config) UsePostgres() bool { return strings.TrimSpace(c.DatabaseURL) != "" }

// RoadDistances reports whether an OpenRouteService key is configured.
func (c Config) RoadDistances() bool { return strings.TrimSpace(c.ORSAPIKey) != "" }

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	loaded := godotenv.Load() == nil
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.DotEnvLoaded = loaded
	return cfg, nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:        Get("PORT", "8080"),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SeedPath:    Get("SEED_PATH", "data/seeds/trips.json"),
		LogLevel:    Get("LOG_LEVEL", "info"),
		ORSAPIKey:   os.Getenv("ORS_API_KEY"),
		ORSProfile:  Get("ORS_PROFILE", "foot-walking"),
		RedisURL:    os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.OptimizeMaxIterations, err = getInt("OPTIMIZE_MAX_ITERATIONS", 0); err != nil {
		return Config{}, err
	}
	if cfg.OptimizeWorkers, err = getInt("OPTIMIZE_WORKERS", 4); err != nil {
		return Config{}, err
	}
	if cfg.OptimizeTimeBudget, err = getDuration("OPTIMIZE_TIME_BUDGET", 2*time.Second); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("config: %s must be a non-negative integer, got %q", key, raw)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("config: %s must be a non-negative duration, got %q", key, raw)
	}
	return v, nil
}
