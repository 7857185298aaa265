package allocation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMu    = 0.08
	testSigma = 0.2
	testRf    = 0.03
)

func TestOptimize_ClampedAtOne(t *testing.T) {
	// w* = 0.05 / (1.0 * 0.04) = 1.25, clamped to 1
	result, err := Optimize(testMu, testSigma, testRf, 1.0)
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.RiskyWeight)
	assert.Equal(t, 0.0, result.RiskFreeWeight)
	assert.InDelta(t, 0.08, result.PortfolioReturn, 1e-12)
	assert.InDelta(t, 0.2, result.PortfolioRisk, 1e-12)
	assert.InDelta(t, 0.06, result.ObjectiveValue, 1e-12)
}

func TestOptimize_Interior(t *testing.T) {
	// w* = 0.05 / (5.0 * 0.04) = 0.25, no clamp
	result, err := Optimize(testMu, testSigma, testRf, 5.0)
	require.NoError(t, err)

	assert.InDelta(t, 0.25, result.RiskyWeight, 1e-12)
	assert.InDelta(t, 0.75, result.RiskFreeWeight, 1e-12)
	assert.InDelta(t, 0.0425, result.PortfolioReturn, 1e-12)
	assert.InDelta(t, 0.05, result.PortfolioRisk, 1e-12)
	assert.InDelta(t, 0.03625, result.ObjectiveValue, 1e-12)
}

func TestOptimize_ExpectedReturnBelowRiskFree(t *testing.T) {
	for _, mu := range []float64{0.03, 0.02, -0.1} {
		result, err := Optimize(mu, testSigma, testRf, 2.0)
		require.NoError(t, err, "mu <= rf is a valid input")

		assert.Equal(t, 0.0, result.RiskyWeight)
		assert.Equal(t, 1.0, result.RiskFreeWeight)
		assert.Equal(t, testRf, result.PortfolioReturn)
		assert.Equal(t, 0.0, result.PortfolioRisk)
		assert.Equal(t, testRf, result.ObjectiveValue)
	}
}

func TestOptimize_TinyLambdaFullyRisky(t *testing.T) {
	result, err := Optimize(testMu, testSigma, testRf, 1e-9)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.RiskyWeight)
	assert.Equal(t, 0.0, result.RiskFreeWeight)
}

func TestOptimize_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		mu     float64
		sigma  float64
		rf     float64
		lambda float64
		param  string
	}{
		{"zero sigma", testMu, 0, testRf, 1, "sigma"},
		{"negative sigma", testMu, -0.2, testRf, 1, "sigma"},
		{"zero lambda", testMu, testSigma, testRf, 0, "lambda"},
		{"negative lambda", testMu, testSigma, testRf, -1, "lambda"},
		{"NaN lambda", testMu, testSigma, testRf, math.NaN(), "lambda"},
		{"infinite lambda", testMu, testSigma, testRf, math.Inf(1), "lambda"},
		{"NaN sigma", testMu, math.NaN(), testRf, 1, "sigma"},
		{"NaN mu", math.NaN(), testSigma, testRf, 1, "mu"},
		{"infinite rf", testMu, testSigma, math.Inf(-1), 1, "rf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Optimize(tt.mu, tt.sigma, tt.rf, tt.lambda)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))
			assert.Equal(t, AllocationResult{}, result)

			var paramErr *InvalidParameterError
			require.True(t, errors.As(err, &paramErr))
			assert.Equal(t, tt.param, paramErr.Name)
		})
	}
}

func TestOptimize_WeightInvariants(t *testing.T) {
	mus := []float64{-0.05, 0.0, 0.03, 0.05, 0.08, 0.2, 1.5}
	sigmas := []float64{0.01, 0.1, 0.2, 0.5, 2.0}
	rfs := []float64{-0.01, 0.0, 0.03, 0.1}
	lambdas := []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 100}

	for _, mu := range mus {
		for _, sigma := range sigmas {
			for _, rf := range rfs {
				for _, lambda := range lambdas {
					result, err := Optimize(mu, sigma, rf, lambda)
					require.NoError(t, err)

					assert.GreaterOrEqual(t, result.RiskyWeight, 0.0)
					assert.LessOrEqual(t, result.RiskyWeight, 1.0)
					assert.Equal(t, 1-result.RiskyWeight, result.RiskFreeWeight)
					assert.GreaterOrEqual(t, result.PortfolioRisk, 0.0)

					unconstrained := (mu - rf) / (lambda * sigma * sigma)
					if unconstrained <= 0 {
						assert.Equal(t, 0.0, result.RiskyWeight)
					}
					if unconstrained >= 1 {
						assert.Equal(t, 1.0, result.RiskyWeight)
					}
				}
			}
		}
	}
}

func TestOptimize_ExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name   string
		mu     float64
		sigma  float64
		rf     float64
		lambda float64
		want   float64
	}{
		{"no excess with underflowing cost", 0.03, 1e-200, 0.03, 1e-200, 0},
		{"excess with underflowing cost", 0.08, 1e-200, 0.03, 1e-200, 1},
		{"overflowing cost", 0.08, 1e200, 0.03, 1e200, 0},
		{"overflowing excess and cost", 1e308, 10, -1e308, 1e308, 0.02},
		{"overflowing excess", 1e308, 1, -1e308, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Optimize(tt.mu, tt.sigma, tt.rf, tt.lambda)
			require.NoError(t, err)

			assert.InDelta(t, tt.want, result.RiskyWeight, 1e-9)
			assert.GreaterOrEqual(t, result.RiskyWeight, 0.0)
			assert.LessOrEqual(t, result.RiskyWeight, 1.0)
			assert.Equal(t, 1-result.RiskyWeight, result.RiskFreeWeight)
			for _, v := range []float64{result.PortfolioReturn, result.PortfolioRisk, result.ObjectiveValue} {
				assert.False(t, math.IsNaN(v))
				assert.False(t, math.IsInf(v, 0))
			}
		})
	}
}

func TestOptimize_MonotoneInLambda(t *testing.T) {
	prev := math.Inf(1)
	for lambda := 0.05; lambda <= 20; lambda += 0.05 {
		result, err := Optimize(testMu, testSigma, testRf, lambda)
		require.NoError(t, err)
		assert.LessOrEqual(t, result.RiskyWeight, prev, "weight must not increase at lambda=%v", lambda)
		prev = result.RiskyWeight
	}
}

func TestOptimize_Idempotent(t *testing.T) {
	first, err := Optimize(testMu, testSigma, testRf, 3.7)
	require.NoError(t, err)
	second, err := Optimize(testMu, testSigma, testRf, 3.7)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(first.RiskyWeight), math.Float64bits(second.RiskyWeight))
	assert.Equal(t, math.Float64bits(first.ObjectiveValue), math.Float64bits(second.ObjectiveValue))
	assert.Equal(t, first, second)
}

func TestMarketParameters_Allocate(t *testing.T) {
	params := MarketParameters{ExpectedReturn: testMu, Volatility: testSigma, RiskFreeRate: testRf}

	viaMethod, err := params.Allocate(5.0)
	require.NoError(t, err)
	direct, err := Optimize(testMu, testSigma, testRf, 5.0)
	require.NoError(t, err)

	assert.Equal(t, direct, viaMethod)
}

func TestMarketParameters_Validate(t *testing.T) {
	assert.NoError(t, MarketParameters{ExpectedReturn: 0.08, Volatility: 0.2, RiskFreeRate: 0.03}.Validate())
	assert.ErrorIs(t, MarketParameters{ExpectedReturn: 0.08, Volatility: 0, RiskFreeRate: 0.03}.Validate(), ErrInvalidParameter)
}
