// Package display renders allocation results as labeled text.
package display

import (
	"strconv"
	"strings"

	"github.com/aristath/riskalloc/internal/modules/allocation"
)

// Line is one labeled value of a rendered result.
type Line struct {
	Key   string `json:"key" msgpack:"key"`
	Label string `json:"label" msgpack:"label"`
	Value string `json:"value" msgpack:"value"`
}

// Weights are shown with 2 decimals, everything else with 4.
const (
	weightPrecision = 2
	statPrecision   = 4
)

// Lines returns the result fields in display order.
func Lines(r allocation.AllocationResult) []Line {
	return []Line{
		{Key: "risky_weight", Label: "Risky asset weight", Value: format(r.RiskyWeight, weightPrecision)},
		{Key: "risk_free_weight", Label: "Risk-free asset weight", Value: format(r.RiskFreeWeight, weightPrecision)},
		{Key: "objective_value", Label: "Objective value", Value: format(r.ObjectiveValue, statPrecision)},
		{Key: "portfolio_return", Label: "Expected portfolio return", Value: format(r.PortfolioReturn, statPrecision)},
		{Key: "portfolio_risk", Label: "Portfolio risk (std dev)", Value: format(r.PortfolioRisk, statPrecision)},
	}
}

// Render joins Lines as "Label: Value", one per line.
func Render(r allocation.AllocationResult) string {
	var b strings.Builder
	for _, line := range Lines(r) {
		b.WriteString(line.Label)
		b.WriteString(": ")
		b.WriteString(line.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

func format(v float64, precision int) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	// avoid "-0.00" for values that round to zero
	if strings.HasPrefix(s, "-") && strings.Trim(s, "-0.") == "" {
		return s[1:]
	}
	return s
}
