package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-facility/internal/parking"
)

var configKeys = []string{
	"PORT", "ENVIRONMENT", "LOG_LEVEL", "OTEL_SERVICE_NAME", "OTEL_EXPORTER_OTLP_ENDPOINT",
	"PARKING_LEVELS", "PARKING_SPOTS_PER_LEVEL", "PARKING_SPOT_MIX",
	"PRICING_POLICY", "PRICING_FLAT_RATE", "PRICING_BASE_RATE", "PRICING_PEAK_RATE",
	"PRICING_PEAK_WINDOWS", "REDIS_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"SHUTDOWN_TIMEOUT",
}

// unsetAll clears every key Load reads; t.Setenv restores them afterwards.
func unsetAll(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetAll(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.LogLevel)
	assert.Equal(t, "parking-facility-service", cfg.OTelServiceName)
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)
	assert.Equal(t, 3, cfg.Levels)
	assert.Equal(t, 10, cfg.SpotsPerLevel)
	assert.Equal(t, parking.DefaultMix(), cfg.SpotMix)
	assert.Equal(t, PolicyPeak, cfg.PricingPolicy)
	assert.InDelta(t, 5.0, cfg.BaseRate, 0.001)
	assert.InDelta(t, 10.0, cfg.PeakRate, 0.001)
	assert.Equal(t, parking.DefaultPeakWindows(), cfg.PeakWindows)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)

	layout, err := cfg.Layout()
	require.NoError(t, err)
	assert.Equal(t, parking.DefaultLayout(), layout)
	assert.Equal(t, parking.NewPeakRate(5, 10, parking.DefaultPeakWindows()...), cfg.Policy())
}

func TestLoadFromEnv(t *testing.T) {
	unsetAll(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PARKING_LEVELS", "2")
	t.Setenv("PARKING_SPOTS_PER_LEVEL", "4")
	t.Setenv("PARKING_SPOT_MIX", "compact, standard")
	t.Setenv("PRICING_POLICY", "FLAT")
	t.Setenv("PRICING_FLAT_RATE", "7.5")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, PolicyFlat, cfg.PricingPolicy)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, parking.NewFlatRate(7.5), cfg.Policy())

	layout, err := cfg.Layout()
	require.NoError(t, err)
	require.Len(t, layout.Levels, 2)
	assert.Equal(t, []parking.SpotType{
		parking.SpotCompact, parking.SpotStandard, parking.SpotCompact, parking.SpotStandard,
	}, layout.Levels[1])
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric levels", "PARKING_LEVELS", "three"},
		{"zero levels", "PARKING_LEVELS", "0"},
		{"negative spots", "PARKING_SPOTS_PER_LEVEL", "-1"},
		{"unknown spot type", "PARKING_SPOT_MIX", "compact,bus"},
		{"empty mix", "PARKING_SPOT_MIX", " , "},
		{"unknown policy", "PRICING_POLICY", "surge"},
		{"bad rate", "PRICING_PEAK_RATE", "ten"},
		{"negative rate", "PRICING_BASE_RATE", "-1"},
		{"bad window", "PRICING_PEAK_WINDOWS", "8-25"},
		{"zero rps", "RATE_LIMIT_RPS", "0"},
		{"bad timeout", "SHUTDOWN_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetAll(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadPeakWindows(t *testing.T) {
	unsetAll(t)
	t.Setenv("PRICING_PEAK_WINDOWS", "0-24")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []parking.PeakWindow{{Start: 0, End: 24}}, cfg.PeakWindows)

	noon := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	assert.InDelta(t, 10.0, cfg.Policy().Price(noon, noon.Add(time.Hour), parking.SpotStandard), 1e-9)

	t.Setenv("PRICING_PEAK_WINDOWS", "")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.PeakWindows)

	morning := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	assert.InDelta(t, 5.0, cfg.Policy().Price(morning, morning.Add(time.Hour), parking.SpotStandard), 1e-9)
}
