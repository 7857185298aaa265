// Package services composes module services into the views served to clients.
package services

import (
	"fmt"

	"github.com/aristath/riskalloc/internal/modules/allocation"
	"github.com/aristath/riskalloc/internal/modules/charts"
	"github.com/aristath/riskalloc/internal/modules/display"
	"github.com/rs/zerolog"
)

// AllocationView is everything a client needs to render one slider position.
type AllocationView struct {
	Lambda     float64                     `json:"lambda" msgpack:"lambda"`
	Market     allocation.MarketParameters `json:"market" msgpack:"market"`
	Allocation allocation.AllocationResult `json:"allocation" msgpack:"allocation"`
	Lines      []display.Line              `json:"lines" msgpack:"lines"`
	Text       string                      `json:"text" msgpack:"text"`
	Chart      charts.WeightChart          `json:"chart" msgpack:"chart"`
}

// AllocationViewService builds views against a weight curve computed once at
// construction. The curve depends only on the market parameters.
type AllocationViewService struct {
	alloc *allocation.Service
	sweep allocation.SweepRange
	curve []allocation.SweepPoint
	log   zerolog.Logger
}

// NewAllocationViewService precomputes the weight curve over sweep.
func NewAllocationViewService(alloc *allocation.Service, sweep allocation.SweepRange, log zerolog.Logger) (*AllocationViewService, error) {
	curve, err := alloc.Sweep(sweep)
	if err != nil {
		return nil, fmt.Errorf("failed to compute weight curve: %w", err)
	}

	return &AllocationViewService{
		alloc: alloc,
		sweep: sweep,
		curve: curve,
		log:   log.With().Str("service", "allocation_view").Logger(),
	}, nil
}

// Curve returns the precomputed weight curve.
func (s *AllocationViewService) Curve() []allocation.SweepPoint {
	out := make([]allocation.SweepPoint, len(s.curve))
	copy(out, s.curve)
	return out
}

// SweepRange returns the range the curve was computed over.
func (s *AllocationViewService) SweepRange() allocation.SweepRange {
	return s.sweep
}

// Build returns the view for lambda.
func (s *AllocationViewService) Build(lambda float64) (AllocationView, error) {
	result, err := s.alloc.Allocate(lambda)
	if err != nil {
		return AllocationView{}, err
	}

	chart, err := s.Chart(lambda, result)
	if err != nil {
		return AllocationView{}, err
	}

	return AllocationView{
		Lambda:     lambda,
		Market:     s.alloc.Params(),
		Allocation: result,
		Lines:      display.Lines(result),
		Text:       display.Render(result),
		Chart:      chart,
	}, nil
}

// Chart lays the curve out with a marker at the exact allocation for lambda.
func (s *AllocationViewService) Chart(lambda float64, result allocation.AllocationResult) (charts.WeightChart, error) {
	chart, err := charts.BuildWeightChart(s.curve, allocation.SweepPoint{Lambda: lambda, RiskyWeight: result.RiskyWeight})
	if err != nil {
		return charts.WeightChart{}, fmt.Errorf("failed to build weight chart: %w", err)
	}
	if !chart.Marker.InRange {
		s.log.Debug().Float64("lambda", lambda).Msg("Marker outside plotted range")
	}
	return chart, nil
}
