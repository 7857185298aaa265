package settings

import "github.com/aristath/riskalloc/internal/modules/slider"

// Setting keys stored in config.db
const (
	KeyRiskAversion   = "risk_aversion"   // Current slider value
	KeyExpectedReturn = "expected_return" // Override for the risky asset's expected return
	KeyVolatility     = "volatility"      // Override for the risky asset's standard deviation
	KeyRiskFreeRate   = "risk_free_rate"  // Override for the risk-free rate
)

// SettingDefaults documents the known keys and the value used when a key is absent.
// Market parameter keys default to nil: when unset, the environment configuration wins.
// The risk aversion default is the slider range's Default; Service.GetAll reports that.
var SettingDefaults = map[string]interface{}{
	KeyRiskAversion:   slider.DefaultInitial,
	KeyExpectedReturn: nil,
	KeyVolatility:     nil,
	KeyRiskFreeRate:   nil,
}

// SettingDescriptions are stored alongside values written through the Service.
var SettingDescriptions = map[string]string{
	KeyRiskAversion:   "Risk-aversion coefficient selected on the slider",
	KeyExpectedReturn: "Expected return of the risky asset",
	KeyVolatility:     "Standard deviation of the risky asset",
	KeyRiskFreeRate:   "Risk-free rate",
}

// MarketOverrides holds market parameters set at runtime. Nil fields are unset.
type MarketOverrides struct {
	ExpectedReturn *float64 `json:"expected_return,omitempty"`
	Volatility     *float64 `json:"volatility,omitempty"`
	RiskFreeRate   *float64 `json:"risk_free_rate,omitempty"`
}

// RiskAversionState is the current slider value together with its range and
// the grid values a UI can offer.
type RiskAversionState struct {
	Value float64   `json:"value" msgpack:"value"`
	Min   float64   `json:"min" msgpack:"min"`
	Max   float64   `json:"max" msgpack:"max"`
	Step  float64   `json:"step" msgpack:"step"`
	Ticks []float64 `json:"ticks" msgpack:"ticks"`
}
