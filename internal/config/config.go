package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the simulator.
type Config struct {
	Port     int
	LogLevel string

	Seed            int64
	InitialMid      float64 // price units
	DepthLevels     int
	HistoryLimit    int
	TradeLogLimit   int
	WarmupEvents    int
	BaseLambda      float64
	TempImpactEta   float64
	PermImpactGamma float64

	// AutoStepInterval > 0 enables timed auto-stepping; zero means
	// manual stepping only.
	AutoStepInterval time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	seed, err := getInt64("SEED", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED: %w", err)
	}

	initialMid, err := getFloat("INITIAL_MID", 100.0)
	if err != nil {
		return nil, fmt.Errorf("invalid INITIAL_MID: %w", err)
	}
	if initialMid <= 0 {
		return nil, fmt.Errorf("invalid INITIAL_MID: must be positive, got %v", initialMid)
	}

	depthLevels, err := getInt("DEPTH_LEVELS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DEPTH_LEVELS: %w", err)
	}
	if depthLevels <= 0 {
		return nil, fmt.Errorf("invalid DEPTH_LEVELS: must be positive, got %d", depthLevels)
	}

	historyLimit, err := getInt("HISTORY_LIMIT", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_LIMIT: %w", err)
	}

	tradeLogLimit, err := getInt("TRADE_LOG_LIMIT", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid TRADE_LOG_LIMIT: %w", err)
	}

	warmupEvents, err := getInt("WARMUP_EVENTS", 50)
	if err != nil {
		return nil, fmt.Errorf("invalid WARMUP_EVENTS: %w", err)
	}
	if warmupEvents < 0 {
		return nil, fmt.Errorf("invalid WARMUP_EVENTS: must be non-negative, got %d", warmupEvents)
	}

	baseLambda, err := getFloat("BASE_LAMBDA", 5.0)
	if err != nil {
		return nil, fmt.Errorf("invalid BASE_LAMBDA: %w", err)
	}
	if baseLambda <= 0 {
		return nil, fmt.Errorf("invalid BASE_LAMBDA: must be positive, got %v", baseLambda)
	}

	eta, err := getFloat("TEMP_IMPACT_ETA", 0.1)
	if err != nil {
		return nil, fmt.Errorf("invalid TEMP_IMPACT_ETA: %w", err)
	}
	if eta < 0 {
		return nil, fmt.Errorf("invalid TEMP_IMPACT_ETA: must be non-negative, got %v", eta)
	}

	gamma, err := getFloat("PERM_IMPACT_GAMMA", 0.01)
	if err != nil {
		return nil, fmt.Errorf("invalid PERM_IMPACT_GAMMA: %w", err)
	}
	if gamma < 0 {
		return nil, fmt.Errorf("invalid PERM_IMPACT_GAMMA: must be non-negative, got %v", gamma)
	}

	autoStepInterval, err := getDuration("AUTO_STEP_INTERVAL", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_STEP_INTERVAL: %w", err)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:             port,
		LogLevel:         logLevel,
		Seed:             seed,
		InitialMid:       initialMid,
		DepthLevels:      depthLevels,
		HistoryLimit:     historyLimit,
		TradeLogLimit:    tradeLogLimit,
		WarmupEvents:     warmupEvents,
		BaseLambda:       baseLambda,
		TempImpactEta:    eta,
		PermImpactGamma:  gamma,
		AutoStepInterval: autoStepInterval,
		ReadTimeout:      readTimeout,
		WriteTimeout:     writeTimeout,
		IdleTimeout:      idleTimeout,
		ShutdownTimeout:  shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
