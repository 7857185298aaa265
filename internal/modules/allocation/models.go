// Package allocation computes the mean-variance optimal split between one risky
// asset and one risk-free asset.
package allocation

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is matched by every input validation failure in this package.
var ErrInvalidParameter = errors.New("invalid parameter")

// InvalidParameterError describes which input was rejected and why.
type InvalidParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidParameter) match.
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

func invalid(name string, value float64, reason string) error {
	return &InvalidParameterError{Name: name, Value: value, Reason: reason}
}

// MarketParameters are the fixed inputs of a run.
type MarketParameters struct {
	ExpectedReturn float64 `json:"expected_return" msgpack:"expected_return"`
	Volatility     float64 `json:"volatility" msgpack:"volatility"`
	RiskFreeRate   float64 `json:"risk_free_rate" msgpack:"risk_free_rate"`
}

// Validate checks that the parameters can be fed to Optimize.
func (p MarketParameters) Validate() error {
	if err := requireFinite("mu", p.ExpectedReturn); err != nil {
		return err
	}
	if err := requireFinite("rf", p.RiskFreeRate); err != nil {
		return err
	}
	return requirePositive("sigma", p.Volatility)
}

// AllocationResult is the clamped optimal weight pair plus the statistics of the
// resulting portfolio. Statistics always use the clamped weight.
type AllocationResult struct {
	RiskyWeight     float64 `json:"risky_weight" msgpack:"risky_weight"`
	RiskFreeWeight  float64 `json:"risk_free_weight" msgpack:"risk_free_weight"`
	PortfolioReturn float64 `json:"portfolio_return" msgpack:"portfolio_return"`
	PortfolioRisk   float64 `json:"portfolio_risk" msgpack:"portfolio_risk"`
	ObjectiveValue  float64 `json:"objective_value" msgpack:"objective_value"`
}

// SweepPoint is one sample of the weight-vs-risk-aversion curve.
type SweepPoint struct {
	Lambda      float64 `json:"lambda" msgpack:"lambda"`
	RiskyWeight float64 `json:"risky_weight" msgpack:"risky_weight"`
}

// SweepRange bounds a sweep. Count is the number of evenly spaced samples,
// both ends included.
type SweepRange struct {
	Min   float64 `json:"min" msgpack:"min"`
	Max   float64 `json:"max" msgpack:"max"`
	Count int     `json:"count" msgpack:"count"`
}

func requireFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(name, v, "must be finite")
	}
	return nil
}

// requirePositive rejects NaN too, since NaN <= 0 is false.
func requirePositive(name string, v float64) error {
	if err := requireFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return invalid(name, v, "must be > 0")
	}
	return nil
}
