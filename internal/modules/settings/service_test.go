package settings

import (
	"testing"

	"github.com/aristath/riskalloc/internal/database"
	"github.com/aristath/riskalloc/internal/modules/slider"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepository creates an in-memory config.db with the settings schema applied
func setupTestRepository(t *testing.T) *Repository {
	db, err := database.New(database.Config{
		Path:    "file::memory:",
		Profile: database.ProfileMemory,
		Name:    "config",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestRepository_GetSetDelete(t *testing.T) {
	repo := setupTestRepository(t)

	value, err := repo.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, repo.Set("volatility", "0.25", nil))
	value, err = repo.Get("volatility")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "0.25", *value)

	description := "updated"
	require.NoError(t, repo.Set("volatility", "0.3", &description))
	value, err = repo.Get("volatility")
	require.NoError(t, err)
	assert.Equal(t, "0.3", *value)

	require.NoError(t, repo.Delete("volatility"))
	require.NoError(t, repo.Delete("volatility"), "delete is idempotent")
	value, err = repo.Get("volatility")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRepository_Floats(t *testing.T) {
	repo := setupTestRepository(t)

	v, err := repo.GetFloat("risk_aversion", 1.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	require.NoError(t, repo.SetFloat("risk_aversion", 0.123456789))
	v, err = repo.GetFloat("risk_aversion", 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0.123456789, v, "no precision lost on round trip")

	require.NoError(t, repo.Set("risk_aversion", "not-a-number", nil))
	v, err = repo.GetFloat("risk_aversion", 1.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestRepository_GetAll(t *testing.T) {
	repo := setupTestRepository(t)
	require.NoError(t, repo.Set("a", "1", nil))
	require.NoError(t, repo.Set("b", "2", nil))

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)
}

func TestService_RiskAversion(t *testing.T) {
	svc := NewService(setupTestRepository(t), slider.DefaultRange(), zerolog.Nop())

	v, err := svc.GetRiskAversion()
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "falls back to the slider default")

	stored, err := svc.SetRiskAversion(2.34)
	require.NoError(t, err)
	assert.Equal(t, 2.3, stored)

	v, err = svc.GetRiskAversion()
	require.NoError(t, err)
	assert.Equal(t, 2.3, v)

	_, err = svc.SetRiskAversion(0)
	assert.ErrorIs(t, err, slider.ErrOutOfRange)
	_, err = svc.SetRiskAversion(10.5)
	assert.ErrorIs(t, err, slider.ErrOutOfRange)

	v, err = svc.GetRiskAversion()
	require.NoError(t, err)
	assert.Equal(t, 2.3, v, "rejected values are not stored")

	state, err := svc.GetRiskAversionState()
	require.NoError(t, err)
	assert.Equal(t, 2.3, state.Value)
	assert.Equal(t, 0.1, state.Min)
	assert.Equal(t, 10.0, state.Max)
	assert.Equal(t, 0.1, state.Step)
	require.Len(t, state.Ticks, 100)
	assert.Equal(t, 0.1, state.Ticks[0])
	assert.Equal(t, 2.3, state.Ticks[22])
	assert.Equal(t, 10.0, state.Ticks[99])
}

func TestService_RiskAversionOutsideNarrowedRange(t *testing.T) {
	repo := setupTestRepository(t)
	require.NoError(t, repo.Set(KeyRiskAversion, "9.5", nil))

	svc := NewService(repo, slider.Range{Min: 0.5, Max: 5, Step: 0.5, Default: 1}, zerolog.Nop())
	v, err := svc.GetRiskAversion()
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestService_MarketOverrides(t *testing.T) {
	svc := NewService(setupTestRepository(t), slider.DefaultRange(), zerolog.Nop())

	overrides, err := svc.MarketOverrides()
	require.NoError(t, err)
	assert.Nil(t, overrides.ExpectedReturn)
	assert.Nil(t, overrides.Volatility)
	assert.Nil(t, overrides.RiskFreeRate)

	require.NoError(t, svc.SetMarketOverride(KeyVolatility, 0.25))
	require.NoError(t, svc.SetMarketOverride(KeyRiskFreeRate, 0.01))
	assert.Error(t, svc.SetMarketOverride("leverage", 2))

	overrides, err = svc.MarketOverrides()
	require.NoError(t, err)
	assert.Nil(t, overrides.ExpectedReturn)
	require.NotNil(t, overrides.Volatility)
	assert.Equal(t, 0.25, *overrides.Volatility)
	require.NotNil(t, overrides.RiskFreeRate)
	assert.Equal(t, 0.01, *overrides.RiskFreeRate)
}

func TestService_GetAllFillsDefaults(t *testing.T) {
	svc := NewService(setupTestRepository(t), slider.DefaultRange(), zerolog.Nop())
	require.NoError(t, svc.SetMarketOverride(KeyExpectedReturn, 0.1))

	all, err := svc.GetAll()
	require.NoError(t, err)
	assert.Equal(t, "1", all[KeyRiskAversion])
	assert.Equal(t, "0.1", all[KeyExpectedReturn])
	assert.NotContains(t, all, KeyVolatility)
}

func TestService_GetAllUsesRangeDefault(t *testing.T) {
	svc := NewService(setupTestRepository(t), slider.Range{Min: 0.5, Max: 5, Step: 0.5, Default: 2.5}, zerolog.Nop())

	all, err := svc.GetAll()
	require.NoError(t, err)
	assert.Equal(t, "2.5", all[KeyRiskAversion])

	v, err := svc.GetRiskAversion()
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
}
