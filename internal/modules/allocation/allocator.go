package allocation

import "math"

// Optimize returns the mean-variance optimal allocation for risk aversion lambda.
//
// The unconstrained optimum (mu-rf)/(lambda*sigma^2) is clamped into [0, 1]:
// no leverage and no short sales. mu <= rf therefore yields a fully risk-free
// portfolio, and a small enough lambda a fully risky one. Both cases are
// reported the same way as any interior optimum.
func Optimize(mu, sigma, rf, lambda float64) (AllocationResult, error) {
	if err := (MarketParameters{ExpectedReturn: mu, Volatility: sigma, RiskFreeRate: rf}).Validate(); err != nil {
		return AllocationResult{}, err
	}
	if err := requirePositive("lambda", lambda); err != nil {
		return AllocationResult{}, err
	}

	excess := mu - rf
	if excess <= 0 {
		return AllocationResult{
			RiskyWeight:     0,
			RiskFreeWeight:  1,
			PortfolioReturn: rf,
			PortfolioRisk:   0,
			ObjectiveValue:  rf,
		}, nil
	}

	cost := lambda * sigma * sigma
	if math.IsInf(excess, 0) || cost == 0 || math.IsInf(cost, 0) {
		return optimizeScaled(mu, sigma, rf, lambda), nil
	}

	w := clamp(excess/cost, 0.0, 1.0)
	ret := rf + w*excess
	risk := w * sigma

	return AllocationResult{
		RiskyWeight:     w,
		RiskFreeWeight:  1 - w,
		PortfolioReturn: ret,
		PortfolioRisk:   risk,
		ObjectiveValue:  ret - (lambda/2)*risk*risk,
	}, nil
}

// optimizeScaled handles mu > rf when mu-rf or lambda*sigma^2 leaves the
// float64 range. The weight and the variance penalty are formed from
// logarithms so that no intermediate overflows or underflows to 0.
func optimizeScaled(mu, sigma, rf, lambda float64) AllocationResult {
	// mu/2 - rf/2 is finite for any finite mu and rf
	logExcess := math.Log(mu/2-rf/2) + math.Ln2
	logCost := math.Log(lambda) + 2*math.Log(sigma)

	w := clamp(math.Exp(logExcess-logCost), 0.0, 1.0)
	ret := (1-w)*rf + w*mu

	var penalty float64
	if w > 0 {
		penalty = math.Exp(2*math.Log(w) + logCost - math.Ln2)
	}

	return AllocationResult{
		RiskyWeight:     w,
		RiskFreeWeight:  1 - w,
		PortfolioReturn: ret,
		PortfolioRisk:   w * sigma,
		ObjectiveValue:  ret - penalty,
	}
}

// Allocate is Optimize with the receiver's market parameters.
func (p MarketParameters) Allocate(lambda float64) (AllocationResult, error) {
	return Optimize(p.ExpectedReturn, p.Volatility, p.RiskFreeRate, lambda)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
