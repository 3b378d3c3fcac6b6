// Package fuzzy implements genome-parameterised Mamdani inference: membership
// partitions, linguistic variables, rule bases and a centroid defuzzifier.
package fuzzy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Universe is the bounded domain of a linguistic variable.
type Universe struct {
	Min        float64
	Max        float64
	Resolution float64 // Maximum spacing between grid samples
}

// Validate reports whether the universe describes a usable interval.
func (u Universe) Validate() error {
	if math.IsNaN(u.Min) || math.IsNaN(u.Max) || math.IsInf(u.Min, 0) || math.IsInf(u.Max, 0) {
		return fmt.Errorf("universe bounds must be finite, got [%v, %v]", u.Min, u.Max)
	}
	if u.Max <= u.Min {
		return fmt.Errorf("universe max %v must exceed min %v", u.Max, u.Min)
	}
	if !(u.Resolution > 0) || u.Resolution > u.Max-u.Min {
		return fmt.Errorf("universe resolution %v outside (0, %v]", u.Resolution, u.Max-u.Min)
	}
	return nil
}

// Width returns Max - Min.
func (u Universe) Width() float64 {
	return u.Max - u.Min
}

// Clamp limits x to [Min, Max].
func (u Universe) Clamp(x float64) float64 {
	if x < u.Min {
		return u.Min
	}
	if x > u.Max {
		return u.Max
	}
	return x
}

// Scale maps a normalised fraction in [0,1] onto the universe.
func (u Universe) Scale(f float64) float64 {
	return u.Clamp(u.Min + f*u.Width())
}

// Grid returns the evenly spaced sampling points from Min to Max inclusive,
// spaced no further apart than Resolution.
func (u Universe) Grid() []float64 {
	n := int(math.Ceil(u.Width()/u.Resolution-1e-9)) + 1
	if n < 2 {
		n = 2
	}
	return floats.Span(make([]float64, n), u.Min, u.Max)
}
