package simulation

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Workers  int
	Vehicles int
	MaxDwell time.Duration
	// MaxTries bounds admission attempts per vehicle while the facility is full.
	MaxTries        int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func LoadConfig() Config {
	return Config{
		Workers:         getEnvInt("SIM_WORKERS", 8),
		Vehicles:        getEnvInt("SIM_VEHICLES", 200),
		MaxDwell:        getEnvDuration("SIM_MAX_DWELL", 200*time.Millisecond),
		MaxTries:        getEnvInt("SIM_MAX_TRIES", 5),
		InitialInterval: getEnvDuration("SIM_RETRY_INITIAL", 20*time.Millisecond),
		MaxInterval:     getEnvDuration("SIM_RETRY_MAX", 500*time.Millisecond),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
