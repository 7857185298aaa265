// Package slider models the bounded risk-aversion input that a UI exposes as a
// slider. A Range is a plain value passed to whoever needs it; nothing here is
// global.
package slider

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned by Check for values outside [Min, Max].
var ErrOutOfRange = errors.New("value out of range")

// ErrInvalidRange is returned by Validate for a malformed range.
var ErrInvalidRange = errors.New("invalid range")

// Reference bounds of the risk-aversion slider.
const (
	DefaultMin     = 0.1
	DefaultMax     = 10.0
	DefaultStep    = 0.1
	DefaultInitial = 1.0
)

// MaxTicks caps the number of grid values a range may have.
const MaxTicks = 10000

// Range is a closed interval with a step grid anchored at Min and an initial value.
type Range struct {
	Min     float64 `json:"min" msgpack:"min"`
	Max     float64 `json:"max" msgpack:"max"`
	Step    float64 `json:"step" msgpack:"step"`
	Default float64 `json:"default" msgpack:"default"`
}

// DefaultRange returns the reference slider: [0.1, 10.0], step 0.1, starting at 1.0.
func DefaultRange() Range {
	return Range{Min: DefaultMin, Max: DefaultMax, Step: DefaultStep, Default: DefaultInitial}
}

// Validate checks the range itself. Min must be > 0 because the value is used
// as a divisor.
func (r Range) Validate() error {
	for _, v := range []float64{r.Min, r.Max, r.Step, r.Default} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound", ErrInvalidRange)
		}
	}
	if r.Min <= 0 {
		return fmt.Errorf("%w: min %v must be > 0", ErrInvalidRange, r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%w: max %v below min %v", ErrInvalidRange, r.Max, r.Min)
	}
	if r.Step <= 0 {
		return fmt.Errorf("%w: step %v must be > 0", ErrInvalidRange, r.Step)
	}
	if (r.Max-r.Min)/r.Step >= MaxTicks {
		return fmt.Errorf("%w: step %v gives more than %d values", ErrInvalidRange, r.Step, MaxTicks)
	}
	if err := r.Check(r.Default); err != nil {
		return fmt.Errorf("%w: default: %v", ErrInvalidRange, err)
	}
	return nil
}

// Check reports whether v lies inside [Min, Max].
func (r Range) Check(v float64) error {
	if math.IsNaN(v) || v < r.Min || v > r.Max {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfRange, v, r.Min, r.Max)
	}
	return nil
}

// Snap moves v to the nearest step of the grid and clamps it into [Min, Max].
func (r Range) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return r.Default
	}
	steps := math.Round((v - r.Min) / r.Step)
	snapped := r.Min + steps*r.Step
	// trim float noise such as 0.30000000000000004
	snapped = math.Round(snapped*1e9) / 1e9
	return math.Max(r.Min, math.Min(r.Max, snapped))
}

// Ticks returns every grid value from Min to Max. Max is included even when it
// is not on the grid.
func (r Range) Ticks() []float64 {
	n := int(math.Floor((r.Max-r.Min)/r.Step+1e-9)) + 1
	ticks := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		ticks = append(ticks, r.Snap(r.Min+float64(i)*r.Step))
	}
	if last := ticks[len(ticks)-1]; last < r.Max {
		ticks = append(ticks, r.Max)
	}
	return ticks
}
