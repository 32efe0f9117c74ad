package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AdsURL     string
	WindsorURL string
	WindsorKey string
	SinkURL    string
	SinkSecret string
	Port       string

	HTTPTimeout time.Duration
	CacheTTL    time.Duration
	LogLevel    slog.Level

	BrandsFile string

	MaxN           int
	MinSupport     int
	MinWasteCost   float64
	MinWasteClicks int
}

// FromEnv reads configuration from the environment, loading a local .env
// file first when present.
func FromEnv() Config {
	_ = godotenv.Load()

	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	ttl := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			ttl = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		AdsURL:         os.Getenv("ADS_API_URL"),
		WindsorURL:     os.Getenv("WINDSOR_API_URL"),
		WindsorKey:     os.Getenv("WINDSOR_API_KEY"),
		SinkURL:        os.Getenv("SINK_URL"),
		SinkSecret:     os.Getenv("SINK_SECRET"),
		Port:           envOr("PORT", "8080"),
		HTTPTimeout:    to,
		CacheTTL:       ttl,
		LogLevel:       lvl,
		BrandsFile:     envOr("BRANDS_FILE", "configs/brands.yaml"),
		MaxN:           envInt("NGRAM_MAX_N", 3),
		MinSupport:     envInt("NGRAM_MIN_SUPPORT", 2),
		MinWasteCost:   envFloat("MIN_WASTE_COST", 1),
		MinWasteClicks: envInt("MIN_WASTE_CLICKS", 3),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return v
	}
	return def
}
