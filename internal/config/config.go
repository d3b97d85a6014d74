package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/route"
)

type AppConfig struct {
	Port string

	// Outbound forecast requests.
	HTTPTimeout        time.Duration
	ForecastBaseURL    string
	ForecastMaxRetries int
	ForecastBackoff    time.Duration
	ForecastWorkers    int

	// Forecast response cache.
	CacheTTL           time.Duration
	CacheMaxEntries    int
	CachePurgeInterval time.Duration

	// Route sampling defaults.
	SampleIntervalKm float64
	DefaultSpeedKmh  float64

	// Dashboard scale presets; DefaultPresets unless SCALE_PRESETS_FILE is set.
	ScalePresets []dashboard.ScalePreset

	// Optional reverse geocoding of start and finish.
	GeocoderAPIKey string

	MaxUploadBytes int
	Debug          bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	cfg.ForecastBaseURL = os.Getenv("FORECAST_BASE_URL")
	cfg.ForecastMaxRetries = getenvInt("FORECAST_MAX_RETRIES", 3)
	if cfg.ForecastBackoff, err = getenvDuration("FORECAST_BACKOFF", "200ms"); err != nil {
		return nil, err
	}
	cfg.ForecastWorkers = getenvInt("FORECAST_WORKERS", 4)

	if cfg.CacheTTL, err = getenvDuration("FORECAST_CACHE_TTL", "1h"); err != nil {
		return nil, err
	}
	cfg.CacheMaxEntries = getenvInt("FORECAST_CACHE_MAX_ENTRIES", 512)
	if cfg.CachePurgeInterval, err = getenvDuration("CACHE_PURGE_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.SampleIntervalKm = getenvFloat("SAMPLE_INTERVAL_KM", route.DefaultIntervalKm)
	cfg.DefaultSpeedKmh = getenvFloat("DEFAULT_SPEED_KMH", 27)
	if cfg.SampleIntervalKm <= 0 {
		return nil, fmt.Errorf("invalid SAMPLE_INTERVAL_KM: must be greater than zero")
	}
	if cfg.DefaultSpeedKmh <= 0 {
		return nil, fmt.Errorf("invalid DEFAULT_SPEED_KMH: must be greater than zero")
	}

	cfg.ScalePresets = dashboard.DefaultPresets()
	if path := os.Getenv("SCALE_PRESETS_FILE"); path != "" {
		presets, err := dashboard.LoadPresets(path)
		if err != nil {
			return nil, fmt.Errorf("invalid SCALE_PRESETS_FILE: %w", err)
		}
		cfg.ScalePresets = presets
	}

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.MaxUploadBytes = getenvInt("MAX_UPLOAD_MB", 10) << 20
	cfg.Debug = getenvBool("LOG_DEBUG", false)

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

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
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
