// Package genome maps a flat vector of [0,1] fractions onto the membership
// partitions of a fuzzy controller through a versioned schema.
package genome

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/fuzzship/fuzzy"
)

var (
	// ErrInvalidGenomeLength is returned when a genome's length differs from
	// the schema's total gene count.
	ErrInvalidGenomeLength = errors.New("genome length does not match schema")
	// ErrInvalidGenomeRange is returned when a gene lies outside [0,1].
	ErrInvalidGenomeRange = fuzzy.ErrInvalidGenomeRange
)

// Genome is an ordered vector of fractions in [0,1].
type Genome []float64

// Clone returns an independent copy of g.
func (g Genome) Clone() Genome {
	return append(Genome(nil), g...)
}

// CheckRange reports the first gene outside [0,1]. Genes are never clamped.
func (g Genome) CheckRange() error {
	for i, v := range g {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: gene %d = %v", ErrInvalidGenomeRange, i, v)
		}
	}
	return nil
}

// Clamp returns a copy of g with every gene limited to [0,1]. Only search
// drivers use it; the controller rejects out-of-range genomes instead.
func (g Genome) Clamp() Genome {
	out := make(Genome, len(g))
	for i, v := range g {
		switch {
		case math.IsNaN(v):
			out[i] = 0.5
		case v < 0:
			out[i] = 0
		case v > 1:
			out[i] = 1
		default:
			out[i] = v
		}
	}
	return out
}
