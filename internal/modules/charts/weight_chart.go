// Package charts builds renderer-agnostic chart models for the weight curve.
package charts

import (
	"errors"

	"github.com/aristath/riskalloc/internal/modules/allocation"
	"gonum.org/v1/gonum/floats"
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("chart series is empty")

// ReferenceLine is a horizontal line at a fixed weight.
type ReferenceLine struct {
	Value float64 `json:"value" msgpack:"value"`
	Label string  `json:"label" msgpack:"label"`
	Color string  `json:"color" msgpack:"color"`
	Style string  `json:"style" msgpack:"style"`
}

// Marker is a vertical line at the currently selected risk aversion.
type Marker struct {
	Lambda      float64 `json:"lambda" msgpack:"lambda"`
	RiskyWeight float64 `json:"risky_weight" msgpack:"risky_weight"`
	Label       string  `json:"label" msgpack:"label"`
	Color       string  `json:"color" msgpack:"color"`
	Style       string  `json:"style" msgpack:"style"`
	InRange     bool    `json:"in_range" msgpack:"in_range"`
}

// Axis describes one chart axis.
type Axis struct {
	Label string  `json:"label" msgpack:"label"`
	Min   float64 `json:"min" msgpack:"min"`
	Max   float64 `json:"max" msgpack:"max"`
}

// WeightChart is the risky-weight vs risk-aversion line chart.
type WeightChart struct {
	Title          string                  `json:"title" msgpack:"title"`
	SeriesLabel    string                  `json:"series_label" msgpack:"series_label"`
	SeriesColor    string                  `json:"series_color" msgpack:"series_color"`
	X              Axis                    `json:"x" msgpack:"x"`
	Y              Axis                    `json:"y" msgpack:"y"`
	Series         []allocation.SweepPoint `json:"series" msgpack:"series"`
	ReferenceLines []ReferenceLine         `json:"reference_lines" msgpack:"reference_lines"`
	Marker         Marker                  `json:"marker" msgpack:"marker"`
}

// BuildWeightChart lays out the sweep as a line with reference lines at weight
// 1.0 and 0.0 and a marker at current. current is an exact allocation point,
// not interpolated from the series.
func BuildWeightChart(points []allocation.SweepPoint, current allocation.SweepPoint) (WeightChart, error) {
	if len(points) == 0 {
		return WeightChart{}, ErrEmptySeries
	}

	lambdas := make([]float64, len(points))
	for i, p := range points {
		lambdas[i] = p.Lambda
	}
	xMin, xMax := floats.Min(lambdas), floats.Max(lambdas)

	series := make([]allocation.SweepPoint, len(points))
	copy(series, points)

	return WeightChart{
		Title:       "Risky asset weight vs risk aversion",
		SeriesLabel: "Risky asset weight",
		SeriesColor: "blue",
		X:           Axis{Label: "Risk aversion (λ)", Min: xMin, Max: xMax},
		Y:           Axis{Label: "Risky asset weight", Min: 0, Max: 1},
		Series:      series,
		ReferenceLines: []ReferenceLine{
			{Value: 1.0, Label: "weight = 1.0", Color: "gray", Style: "dashed"},
			{Value: 0.0, Label: "weight = 0.0", Color: "red", Style: "dashed"},
		},
		Marker: Marker{
			Lambda:      current.Lambda,
			RiskyWeight: current.RiskyWeight,
			Label:       "current λ = " + formatLambda(current.Lambda),
			Color:       "green",
			Style:       "dotted",
			InRange:     current.Lambda >= xMin && current.Lambda <= xMax,
		},
	}, nil
}
