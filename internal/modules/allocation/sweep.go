package allocation

import (
	"iter"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// MaxSweepPoints caps the number of samples in one sweep.
const MaxSweepPoints = 10000

// Sweep evaluates Optimize at count evenly spaced risk-aversion values in
// [lambdaMin, lambdaMax], both ends included, and keeps the risky weight.
//
// The whole sweep fails if any bound is outside the valid domain; no point is
// skipped. Points are ordered by increasing lambda and are recomputed on every
// call.
func Sweep(mu, sigma, rf, lambdaMin, lambdaMax float64, count int) ([]SweepPoint, error) {
	seq, err := SweepSeq(mu, sigma, rf, lambdaMin, lambdaMax, count)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, 0, count)
	for lambda, weight := range seq {
		points = append(points, SweepPoint{Lambda: lambda, RiskyWeight: weight})
	}
	return points, nil
}

// SweepSeq is the lazy form of Sweep. Inputs are validated before the sequence
// is returned, so ranging over it cannot fail. The sequence can be ranged over
// any number of times and yields the same (lambda, riskyWeight) pairs each time.
func SweepSeq(mu, sigma, rf, lambdaMin, lambdaMax float64, count int) (iter.Seq2[float64, float64], error) {
	lambdas, err := lambdaGrid(mu, sigma, rf, lambdaMin, lambdaMax, count)
	if err != nil {
		return nil, err
	}

	return func(yield func(float64, float64) bool) {
		for _, lambda := range lambdas {
			// lambdaGrid already checked every input against the domain
			result, _ := Optimize(mu, sigma, rf, lambda)
			if !yield(lambda, result.RiskyWeight) {
				return
			}
		}
	}, nil
}

// Sweep runs the package-level Sweep over r with the receiver's parameters.
func (p MarketParameters) Sweep(r SweepRange) ([]SweepPoint, error) {
	return Sweep(p.ExpectedReturn, p.Volatility, p.RiskFreeRate, r.Min, r.Max, r.Count)
}

func lambdaGrid(mu, sigma, rf, lambdaMin, lambdaMax float64, count int) ([]float64, error) {
	if err := (MarketParameters{ExpectedReturn: mu, Volatility: sigma, RiskFreeRate: rf}).Validate(); err != nil {
		return nil, err
	}
	if err := requirePositive("lambda_min", lambdaMin); err != nil {
		return nil, err
	}
	if err := requirePositive("lambda_max", lambdaMax); err != nil {
		return nil, err
	}
	if lambdaMax < lambdaMin {
		return nil, invalid("lambda_max", lambdaMax, "must be >= lambda_min")
	}
	if count < 1 {
		return nil, invalid("count", float64(count), "must be >= 1")
	}
	if count > MaxSweepPoints {
		return nil, invalid("count", float64(count), "must be <= "+strconv.Itoa(MaxSweepPoints))
	}

	lambdas := make([]float64, count)
	if count == 1 {
		lambdas[0] = lambdaMin
		return lambdas, nil
	}
	floats.Span(lambdas, lambdaMin, lambdaMax)
	// Span accumulates rounding; keep the upper bound exact.
	lambdas[count-1] = lambdaMax
	return lambdas, nil
}
