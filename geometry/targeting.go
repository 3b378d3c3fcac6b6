package geometry

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrEmptyObstacleSet is returned when there is nothing to target.
	ErrEmptyObstacleSet = errors.New("no obstacles")
	// ErrNoRealIntercept is returned when no projectile at the given speed can
	// meet the target.
	ErrNoRealIntercept = errors.New("no real intercept")
)

// NearestTarget returns the index of the body closest to from and its
// distance. Ties go to the first body in input order.
func NearestTarget(from r2.Vec, bodies []Body) (int, float64, error) {
	if len(bodies) == 0 {
		return -1, 0, ErrEmptyObstacleSet
	}
	best, bestDist := 0, math.Inf(1)
	for i, b := range bodies {
		if d := Distance(from, b.Pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist, nil
}

// Intercept is a firing solution against one target.
type Intercept struct {
	Target     int     // Index into the obstacle list
	Time       float64 // Projectile travel time
	Point      r2.Vec  // Where projectile and target meet
	Bearing    float64 // Direction from shooter to Point
	Correction float64 // Bearing minus shooter heading, in (-Pi, Pi]

	// LowConfidence is set when both roots lie in the past, or when the
	// solution is a fallback aimed at the target's current position.
	LowConfidence bool
}

// SolveIntercept finds when a projectile fired from shooter at speed meets
// target, assuming both move at constant velocity.
//
// With d = target - shooter and v the target velocity, the meeting time t
// solves (|v|²-s²)t² + 2(d·v)t + |d|² = 0. The smaller non-negative root is
// preferred. When both roots are negative the larger is returned and the
// result is flagged low confidence.
func SolveIntercept(shooter r2.Vec, heading float64, target Body, speed float64) (Intercept, error) {
	d := r2.Sub(target.Pos, shooter)
	a := r2.Norm2(target.Vel) - speed*speed
	b := 2 * r2.Dot(d, target.Vel)
	c := r2.Norm2(d)

	var t float64
	var low bool
	if math.Abs(a) < 1e-9*math.Max(1, speed*speed) {
		// Target moves at projectile speed: linear in t.
		if c == 0 {
			t = 0
		} else if b >= 0 {
			return Intercept{}, ErrNoRealIntercept
		} else {
			t = -c / b
		}
	} else {
		disc := b*b - 4*a*c
		if disc < 0 {
			return Intercept{}, ErrNoRealIntercept
		}
		sq := math.Sqrt(disc)
		lo, hi := (-b-sq)/(2*a), (-b+sq)/(2*a)
		if lo > hi {
			lo, hi = hi, lo
		}
		switch {
		case lo >= 0:
			t = lo
		case hi >= 0:
			t = hi
		default:
			t, low = hi, true
		}
	}
	return aimAt(shooter, heading, target.At(t), t, low), nil
}

// AimAtCurrent is the fallback solution: aim at where the target is now and
// assume the given travel time.
func AimAtCurrent(shooter r2.Vec, heading float64, target Body, fallbackTime float64) Intercept {
	return aimAt(shooter, heading, target.Pos, fallbackTime, true)
}

func aimAt(shooter r2.Vec, heading float64, point r2.Vec, t float64, low bool) Intercept {
	bearing := Bearing(r2.Sub(point, shooter))
	return Intercept{
		Time:          t,
		Point:         point,
		Bearing:       bearing,
		Correction:    WrapAngle(bearing - heading),
		LowConfidence: low,
	}
}
