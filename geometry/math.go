// Package geometry computes the crisp inputs of the flight controller:
// nearest-target selection, ballistic intercepts and collision forecasts.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// WrapAngle wraps an angle in radians to (-Pi, Pi]. -Pi maps to +Pi so a
// head-on geometry always reports the same sign.
func WrapAngle(a float64) float64 {
	if a > -math.Pi && a <= math.Pi {
		return a
	}
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// Bearing returns the direction of v in radians.
func Bearing(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// Heading returns the unit vector for a direction in radians.
func Heading(theta float64) r2.Vec {
	return r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}
}

// Body is a circle moving at constant velocity.
type Body struct {
	Pos    r2.Vec
	Vel    r2.Vec
	Radius float64
}

// At returns the body's position after t seconds.
func (b Body) At(t float64) r2.Vec {
	return r2.Add(b.Pos, r2.Scale(t, b.Vel))
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}
