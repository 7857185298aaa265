package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/riskalloc/internal/utils"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// slowSweeps is the duration after which SweepMany logs a warning.
const slowSweeps = 500 * time.Millisecond

// Service binds a fixed set of market parameters to the allocator.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	params MarketParameters
	log    zerolog.Logger
}

// NewService validates params and returns a service for them.
func NewService(params MarketParameters, log zerolog.Logger) (*Service, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("market parameters: %w", err)
	}
	return &Service{
		params: params,
		log:    log.With().Str("service", "allocation").Logger(),
	}, nil
}

// Params returns the market parameters the service was built with.
func (s *Service) Params() MarketParameters {
	return s.params
}

// Allocate computes the allocation for one risk-aversion value.
func (s *Service) Allocate(lambda float64) (AllocationResult, error) {
	result, err := s.params.Allocate(lambda)
	if err != nil {
		s.log.Debug().Err(err).Float64("lambda", lambda).Msg("Rejected allocation request")
		return AllocationResult{}, err
	}

	s.log.Debug().
		Float64("lambda", lambda).
		Float64("risky_weight", result.RiskyWeight).
		Float64("objective", result.ObjectiveValue).
		Msg("Computed allocation")
	return result, nil
}

// AllocateBatch computes allocations for several risk-aversion values. Results
// are in input order. Any invalid value fails the whole batch.
func (s *Service) AllocateBatch(lambdas []float64) ([]AllocationResult, error) {
	results := make([]AllocationResult, len(lambdas))
	for i, lambda := range lambdas {
		result, err := s.params.Allocate(lambda)
		if err != nil {
			return nil, fmt.Errorf("lambda #%d: %w", i, err)
		}
		results[i] = result
	}
	return results, nil
}

// Sweep computes the weight curve over r.
func (s *Service) Sweep(r SweepRange) ([]SweepPoint, error) {
	points, err := s.params.Sweep(r)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Float64("lambda_min", r.Min).
		Float64("lambda_max", r.Max).
		Int("count", r.Count).
		Msg("Computed sweep")
	return points, nil
}

// SweepMany computes independent sweeps concurrently. Results are in input
// order. The first failing range cancels the rest and its error is returned.
func (s *Service) SweepMany(ctx context.Context, ranges []SweepRange) ([][]SweepPoint, error) {
	defer utils.OperationTimer("sweep_many", slowSweeps, s.log)()

	results := make([][]SweepPoint, len(ranges))

	g, ctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			points, err := s.params.Sweep(r)
			if err != nil {
				return fmt.Errorf("range #%d: %w", i, err)
			}
			results[i] = points
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
