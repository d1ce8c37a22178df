package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"parking-facility/internal/parking"
)

const (
	PolicyFlat = "flat"
	PolicyPeak = "peak"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	OTelServiceName string
	OTelEndpoint    string

	Levels        int
	SpotsPerLevel int
	SpotMix       []parking.SpotType

	PricingPolicy string
	FlatRate      float64
	BaseRate      float64
	PeakRate      float64
	PeakWindows   []parking.PeakWindow

	// RedisURL enables the Redis stats store when set.
	RedisURL string

	RateLimitRPS   float64
	RateLimitBurst int

	ShutdownTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", ""),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "parking-facility-service"),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		PricingPolicy:   strings.ToLower(getEnv("PRICING_POLICY", PolicyPeak)),
		RedisURL:        getEnv("REDIS_URL", ""),
	}

	var err error
	if cfg.Levels, err = getEnvInt("PARKING_LEVELS", 3); err != nil {
		return nil, err
	}
	if cfg.SpotsPerLevel, err = getEnvInt("PARKING_SPOTS_PER_LEVEL", 10); err != nil {
		return nil, err
	}
	if cfg.FlatRate, err = getEnvFloat("PRICING_FLAT_RATE", 5); err != nil {
		return nil, err
	}
	if cfg.BaseRate, err = getEnvFloat("PRICING_BASE_RATE", 5); err != nil {
		return nil, err
	}
	if cfg.PeakRate, err = getEnvFloat("PRICING_PEAK_RATE", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 50); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 100); err != nil {
		return nil, err
	}

	timeout := getEnv("SHUTDOWN_TIMEOUT", "30s")
	cfg.ShutdownTimeout, err = time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg.SpotMix, err = parseSpotMix(getEnv("PARKING_SPOT_MIX", "oversized,standard,compact"))
	if err != nil {
		return nil, fmt.Errorf("invalid PARKING_SPOT_MIX: %w", err)
	}

	cfg.PeakWindows, err = parking.ParsePeakWindows(getEnv("PRICING_PEAK_WINDOWS", "8-11,17-20"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRICING_PEAK_WINDOWS: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Levels <= 0 {
		return fmt.Errorf("PARKING_LEVELS must be positive, got %d", c.Levels)
	}
	if c.SpotsPerLevel <= 0 {
		return fmt.Errorf("PARKING_SPOTS_PER_LEVEL must be positive, got %d", c.SpotsPerLevel)
	}
	switch c.PricingPolicy {
	case PolicyFlat:
		if c.FlatRate < 0 {
			return fmt.Errorf("PRICING_FLAT_RATE must not be negative")
		}
	case PolicyPeak:
		if c.BaseRate < 0 || c.PeakRate < 0 {
			return fmt.Errorf("PRICING_BASE_RATE and PRICING_PEAK_RATE must not be negative")
		}
	default:
		return fmt.Errorf("PRICING_POLICY must be %q or %q, got %q", PolicyFlat, PolicyPeak, c.PricingPolicy)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Layout builds the facility layout by cycling SpotMix over every level.
func (c *Config) Layout() (parking.Layout, error) {
	return parking.UniformLayout(c.Levels, c.SpotsPerLevel, c.SpotMix)
}

func (c *Config) Policy() parking.PricingPolicy {
	if c.PricingPolicy == PolicyFlat {
		return parking.NewFlatRate(c.FlatRate)
	}
	return parking.NewPeakRate(c.BaseRate, c.PeakRate, c.PeakWindows...)
}

func parseSpotMix(s string) ([]parking.SpotType, error) {
	var mix []parking.SpotType
	for _, name := range strings.Split(s, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t, err := parking.ParseSpotType(name)
		if err != nil {
			return nil, err
		}
		mix = append(mix, t)
	}
	if len(mix) == 0 {
		return nil, fmt.Errorf("no spot types in %q", s)
	}
	return mix, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
