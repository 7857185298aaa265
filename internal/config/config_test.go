package config

import (
	"testing"

	"github.com/aristath/riskalloc/internal/database"
	"github.com/aristath/riskalloc/internal/modules/allocation"
	"github.com/aristath/riskalloc/internal/modules/settings"
	"github.com/aristath/riskalloc/internal/modules/slider"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads; getEnv treats empty as unset
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"GO_PORT", "LOG_LEVEL", "DEV_MODE",
		"EXPECTED_RETURN", "VOLATILITY", "RISK_FREE_RATE",
		"LAMBDA_MIN", "LAMBDA_MAX", "LAMBDA_STEP", "LAMBDA_DEFAULT", "SWEEP_POINTS", "MAINTENANCE_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("RISKALLOC_DATA_DIR", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, allocation.MarketParameters{ExpectedReturn: 0.08, Volatility: 0.2, RiskFreeRate: 0.03}, cfg.Market)
	assert.Equal(t, slider.DefaultRange(), cfg.Slider)
	assert.Equal(t, 100, cfg.SweepPoints)
	assert.Equal(t, "@hourly", cfg.MaintenanceSchedule)
	assert.Equal(t, allocation.SweepRange{Min: 0.1, Max: 10, Count: 100}, cfg.DefaultSweep())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("EXPECTED_RETURN", "0.1")
	t.Setenv("VOLATILITY", "0.25")
	t.Setenv("RISK_FREE_RATE", "0.02")
	t.Setenv("LAMBDA_MIN", "0.5")
	t.Setenv("LAMBDA_MAX", "20")
	t.Setenv("LAMBDA_STEP", "0.5")
	t.Setenv("LAMBDA_DEFAULT", "2")
	t.Setenv("SWEEP_POINTS", "40")
	t.Setenv("MAINTENANCE_SCHEDULE", "@every 10m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, allocation.MarketParameters{ExpectedReturn: 0.1, Volatility: 0.25, RiskFreeRate: 0.02}, cfg.Market)
	assert.Equal(t, slider.Range{Min: 0.5, Max: 20, Step: 0.5, Default: 2}, cfg.Slider)
	assert.Equal(t, 40, cfg.SweepPoints)
	assert.Equal(t, "@every 10m", cfg.MaintenanceSchedule)
}

func TestLoad_UnparsableValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("GO_PORT", "not-a-port")
	t.Setenv("VOLATILITY", "high")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, 0.2, cfg.Market.Volatility)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero volatility", "VOLATILITY", "0"},
		{"zero lambda min", "LAMBDA_MIN", "0"},
		{"default above max", "LAMBDA_DEFAULT", "11"},
		{"single sweep point", "SWEEP_POINTS", "1"},
		{"too many sweep points", "SWEEP_POINTS", "10001"},
		{"port out of range", "GO_PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func newSettingsService(t *testing.T) *settings.Service {
	db, err := database.New(database.Config{Path: "file::memory:", Profile: database.ProfileMemory, Name: "config"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	repo := settings.NewRepository(db.Conn(), zerolog.Nop())
	return settings.NewService(repo, slider.DefaultRange(), zerolog.Nop())
}

func TestUpdateFromSettings(t *testing.T) {
	svc := newSettingsService(t)
	cfg := &Config{Market: allocation.MarketParameters{ExpectedReturn: 0.08, Volatility: 0.2, RiskFreeRate: 0.03}}

	require.NoError(t, cfg.UpdateFromSettings(svc))
	assert.Equal(t, 0.2, cfg.Market.Volatility, "nothing stored, nothing changes")

	require.NoError(t, svc.SetMarketOverride(settings.KeyVolatility, 0.3))
	require.NoError(t, cfg.UpdateFromSettings(svc))
	assert.Equal(t, allocation.MarketParameters{ExpectedReturn: 0.08, Volatility: 0.3, RiskFreeRate: 0.03}, cfg.Market)
}

func TestUpdateFromSettings_RejectsInvalidOverride(t *testing.T) {
	svc := newSettingsService(t)
	require.NoError(t, svc.SetMarketOverride(settings.KeyVolatility, -1))

	cfg := &Config{Market: allocation.MarketParameters{ExpectedReturn: 0.08, Volatility: 0.2, RiskFreeRate: 0.03}}
	err := cfg.UpdateFromSettings(svc)
	assert.ErrorIs(t, err, allocation.ErrInvalidParameter)
	assert.Equal(t, 0.2, cfg.Market.Volatility)
}
