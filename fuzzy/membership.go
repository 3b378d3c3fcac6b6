package fuzzy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Shape selects how a membership function interprets its breakpoints.
type Shape uint8

const (
	Triangle        Shape = iota // (a, b, c): 0 at a, 1 at b, 0 at c
	FallingShoulder              // (a, b): 1 at and below a, 0 at and above b
	RisingShoulder               // (a, b): 0 at and below a, 1 at and above b
)

func (s Shape) String() string {
	switch s {
	case Triangle:
		return "triangle"
	case FallingShoulder:
		return "falling_shoulder"
	case RisingShoulder:
		return "rising_shoulder"
	default:
		return fmt.Sprintf("shape(%d)", s)
	}
}

// pointCount is the number of breakpoints each shape takes.
func (s Shape) pointCount() int {
	if s == Triangle {
		return 3
	}
	return 2
}

// degenerateWidth is the support width below which a term counts as degenerate.
const degenerateWidth = 1e-9

// MembershipFunction maps a crisp value to a degree of truth for one label.
type MembershipFunction struct {
	Label  string
	Shape  Shape
	Points []float64 // Non-decreasing breakpoints in universe units
}

// Validate checks the breakpoint count and ordering.
func (mf MembershipFunction) Validate() error {
	if len(mf.Points) != mf.Shape.pointCount() {
		return fmt.Errorf("term %q: %s needs %d points, got %d",
			mf.Label, mf.Shape, mf.Shape.pointCount(), len(mf.Points))
	}
	for i, p := range mf.Points {
		if math.IsNaN(p) {
			return fmt.Errorf("term %q: point %d is NaN", mf.Label, i)
		}
		if i > 0 && p < mf.Points[i-1] {
			return fmt.Errorf("term %q: points %v are not non-decreasing", mf.Label, mf.Points)
		}
	}
	return nil
}

// Degree returns the membership of x, linear between breakpoints.
func (mf MembershipFunction) Degree(x float64) float64 {
	p := mf.Points
	switch mf.Shape {
	case FallingShoulder:
		a, b := p[0], p[1]
		switch {
		case x <= a:
			return 1
		case x >= b:
			return 0
		default:
			return (b - x) / (b - a)
		}
	case RisingShoulder:
		a, b := p[0], p[1]
		switch {
		case x >= b:
			return 1
		case x <= a:
			return 0
		default:
			return (x - a) / (b - a)
		}
	default:
		a, b, c := p[0], p[1], p[2]
		switch {
		case x < a || x > c:
			return 0
		case x == b:
			return 1
		case x < b:
			return (x - a) / (b - a)
		default:
			return (c - x) / (c - b)
		}
	}
}

// Apex returns the point at which the term is fully true and closest to the
// interior of the universe. It is the term's defining midpoint.
func (mf MembershipFunction) Apex() float64 {
	switch mf.Shape {
	case FallingShoulder:
		return mf.Points[0]
	case RisingShoulder:
		return mf.Points[1]
	default:
		return mf.Points[1]
	}
}

// Width returns the distance between the first and last breakpoint.
func (mf MembershipFunction) Width() float64 {
	return mf.Points[len(mf.Points)-1] - mf.Points[0]
}

// Degenerate reports whether the term has (near) zero support.
func (mf MembershipFunction) Degenerate() bool {
	return mf.Width() < degenerateWidth
}

// sample writes the term's degree at every grid point into out. A term too
// narrow to cover any grid point is sampled as a unit spike at the grid point
// nearest its apex, so it still contributes to the centroid.
func (mf MembershipFunction) sample(grid, out []float64) {
	for i, x := range grid {
		out[i] = mf.Degree(x)
	}
	if floats.Max(out) > 0 {
		return
	}
	out[nearestIndex(grid, mf.Apex())] = 1
}

// nearestIndex returns the index of the uniform grid point closest to x.
func nearestIndex(grid []float64, x float64) int {
	last := len(grid) - 1
	step := (grid[last] - grid[0]) / float64(last)
	i := int(math.Round((x - grid[0]) / step))
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}
