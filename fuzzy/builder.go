package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidGenomeRange is returned when a genome fraction lies outside [0,1].
	ErrInvalidGenomeRange = errors.New("genome value outside [0,1]")
	// ErrInvalidGenomeSlice is returned when a gene slice does not match the arity.
	ErrInvalidGenomeSlice = errors.New("gene count does not match partition arity")
	// ErrInvalidArity is returned for partition sizes other than 3, 5 or 7.
	ErrInvalidArity = errors.New("partition arity must be 3, 5 or 7")
)

// Default label sets per partition arity, ordered low to high.
var defaultLabels = map[int][]string{
	3: {"S", "M", "L"},
	5: {"NL", "NS", "Z", "PS", "PL"},
	7: {"NL", "NM", "NS", "Z", "PS", "PM", "PL"},
}

// DefaultLabels returns the label names used for an arity when none are given.
func DefaultLabels(arity int) []string {
	return append([]string(nil), defaultLabels[arity]...)
}

// ParamCount returns the number of genes a partition of the given arity
// consumes: one midpoint plus a left/right spread pair per recursion level.
func ParamCount(arity int) int {
	return arity - 2
}

func validArity(arity int) bool {
	return arity == 3 || arity == 5 || arity == 7
}

// BuildPartition expands a gene slice into a full labelled partition of u.
//
// genes[0] places the midpoint; each following (left, right) pair pushes one
// more breakpoint towards the lower and upper bound. A spread of 0 collapses
// the new breakpoint onto the previous one, which yields a degenerate but
// valid term. labels may be nil to use DefaultLabels(arity).
func BuildPartition(u Universe, arity int, genes []float64, labels []string) ([]MembershipFunction, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if !validArity(arity) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidArity, arity)
	}
	if len(genes) != ParamCount(arity) {
		return nil, fmt.Errorf("%w: arity %d needs %d genes, got %d",
			ErrInvalidGenomeSlice, arity, ParamCount(arity), len(genes))
	}
	for i, g := range genes {
		if math.IsNaN(g) || g < 0 || g > 1 {
			return nil, fmt.Errorf("%w: gene %d = %v", ErrInvalidGenomeRange, i, g)
		}
	}
	if labels == nil {
		labels = defaultLabels[arity]
	}
	if len(labels) != arity {
		return nil, fmt.Errorf("arity %d needs %d labels, got %d", arity, arity, len(labels))
	}

	points := normalizedBreakpoints(arity, genes)
	for i := range points {
		points[i] = u.Scale(points[i])
	}

	terms := make([]MembershipFunction, arity)
	last := arity - 1
	for i := range terms {
		switch i {
		case 0:
			terms[i] = MembershipFunction{Label: labels[i], Shape: FallingShoulder, Points: []float64{points[0], points[1]}}
		case last:
			terms[i] = MembershipFunction{Label: labels[i], Shape: RisingShoulder, Points: []float64{points[last-1], points[last]}}
		default:
			terms[i] = MembershipFunction{Label: labels[i], Shape: Triangle, Points: []float64{points[i-1], points[i], points[i+1]}}
		}
	}
	return terms, nil
}

// normalizedBreakpoints lays out arity points on [0,1]: the bounds, the
// midpoint, and one inner pair per level interpolated towards the bounds.
func normalizedBreakpoints(arity int, genes []float64) []float64 {
	points := make([]float64, arity)
	mid := arity / 2
	points[0] = 0
	points[arity-1] = 1
	points[mid] = genes[0]

	left, right := genes[0], genes[0]
	for lvl := 0; lvl < (arity-3)/2; lvl++ {
		lp, rp := genes[1+2*lvl], genes[2+2*lvl]
		// min/max keep rounding in 1-(1-x) from stepping backwards.
		left = math.Min(left, left-left*lp)
		right = math.Max(right, 1-(1-right)*rp)
		points[mid-1-lvl] = left
		points[mid+1+lvl] = right
	}
	return points
}
