package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is built once at startup and passed by reference into every
// component that needs it. There are no ambient lookups after load.
type AppConfig struct {
	// OpenWeatherAPIKey may be empty; providers report a missing key per
	// call, not at startup.
	OpenWeatherAPIKey string

	DatabasePath string
	Port         string

	// ProviderTimeout bounds geocoding, current and forecast calls;
	// ArchiveTimeout bounds the historical-archive call.
	ProviderTimeout time.Duration
	ArchiveTimeout  time.Duration

	// Outbound rate limit for OpenWeather calls.
	ProviderRPS   float64
	ProviderBurst int

	// MaxListLimit caps the list endpoint's limit parameter.
	MaxListLimit int

	// Retention pruning. Zero max age disables the job.
	RetentionMaxAge   time.Duration
	RetentionInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.DatabasePath = getenvDefault("SQLITE_PATH", "weather.db")
	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.ProviderTimeout, err = getenvDuration("PROVIDER_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ArchiveTimeout, err = getenvDuration("ARCHIVE_TIMEOUT", "20s"); err != nil {
		return nil, err
	}

	cfg.ProviderRPS = getenvFloat("PROVIDER_RPS", 5)
	cfg.ProviderBurst = getenvInt("PROVIDER_BURST", 5)
	cfg.MaxListLimit = getenvInt("MAX_LIST_LIMIT", 500)

	if cfg.RetentionMaxAge, err = getenvDuration("RETENTION_MAX_AGE", "0s"); err != nil {
		return nil, err
	}
	if cfg.RetentionInterval, err = getenvDuration("RETENTION_INTERVAL", "1h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
