package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings for the platform.
type Config struct {
	Env           string
	Port          string
	DatabasePath  string
	JWTSecret     string
	Debug         bool
	SweepInterval time.Duration
	SeedDemoData  bool
}

// Load reads configuration from the environment, with .env support for
// local development. Missing values fall back to development defaults.
func Load() *Config {
	// Best effort: a missing .env file is not an error
	_ = godotenv.Load()

	return &Config{
		Env:           getEnv("ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "zerocarbon.db"),
		JWTSecret:     getEnv("JWT_SECRET", "zerocarbon-secret-key"),
		Debug:         getEnv("DEBUG", "") == "true",
		SweepInterval: getDuration("COMPLIANCE_SWEEP_INTERVAL", 5*time.Minute),
		SeedDemoData:  getEnv("SEED_DEMO_DATA", "true") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
