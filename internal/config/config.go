// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aristath/riskalloc/internal/modules/allocation"
	"github.com/aristath/riskalloc/internal/modules/settings"
	"github.com/aristath/riskalloc/internal/modules/slider"
	"github.com/joho/godotenv"
)

// Defaults used when the environment does not set a value
const (
	DefaultExpectedReturn = 0.08
	DefaultVolatility     = 0.2
	DefaultRiskFreeRate   = 0.03
	DefaultSweepPoints    = 100

	DefaultMaintenanceSchedule = "@hourly"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Directory holding config.db (always absolute)
	LogLevel    string
	Port        int
	DevMode     bool
	Market      allocation.MarketParameters
	Slider      slider.Range
	SweepPoints int // Samples in the default weight curve

	MaintenanceSchedule string // Cron schedule for database maintenance
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("RISKALLOC_DATA_DIR", "data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnvAsInt("GO_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		Market: allocation.MarketParameters{
			ExpectedReturn: getEnvAsFloat("EXPECTED_RETURN", DefaultExpectedReturn),
			Volatility:     getEnvAsFloat("VOLATILITY", DefaultVolatility),
			RiskFreeRate:   getEnvAsFloat("RISK_FREE_RATE", DefaultRiskFreeRate),
		},
		Slider: slider.Range{
			Min:     getEnvAsFloat("LAMBDA_MIN", slider.DefaultMin),
			Max:     getEnvAsFloat("LAMBDA_MAX", slider.DefaultMax),
			Step:    getEnvAsFloat("LAMBDA_STEP", slider.DefaultStep),
			Default: getEnvAsFloat("LAMBDA_DEFAULT", slider.DefaultInitial),
		},
		SweepPoints:         getEnvAsInt("SWEEP_POINTS", DefaultSweepPoints),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", DefaultMaintenanceSchedule),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UpdateFromSettings applies market parameter overrides from the settings database.
// Settings DB values take precedence over environment variables. The config is
// left untouched if the result would be invalid.
func (c *Config) UpdateFromSettings(settingsService *settings.Service) error {
	overrides, err := settingsService.MarketOverrides()
	if err != nil {
		return fmt.Errorf("failed to read market overrides from settings: %w", err)
	}

	market := c.Market
	if overrides.ExpectedReturn != nil {
		market.ExpectedReturn = *overrides.ExpectedReturn
	}
	if overrides.Volatility != nil {
		market.Volatility = *overrides.Volatility
	}
	if overrides.RiskFreeRate != nil {
		market.RiskFreeRate = *overrides.RiskFreeRate
	}

	if err := market.Validate(); err != nil {
		return fmt.Errorf("market overrides from settings rejected: %w", err)
	}
	c.Market = market
	return nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if err := c.Market.Validate(); err != nil {
		return fmt.Errorf("invalid market parameters: %w", err)
	}
	if err := c.Slider.Validate(); err != nil {
		return fmt.Errorf("invalid risk aversion slider: %w", err)
	}
	if c.SweepPoints < 2 || c.SweepPoints > allocation.MaxSweepPoints {
		return fmt.Errorf("SWEEP_POINTS must be between 2 and %d, got %d", allocation.MaxSweepPoints, c.SweepPoints)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// DefaultSweep is the weight curve drawn across the whole slider range.
func (c *Config) DefaultSweep() allocation.SweepRange {
	return allocation.SweepRange{Min: c.Slider.Min, Max: c.Slider.Max, Count: c.SweepPoints}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
