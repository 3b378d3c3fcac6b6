package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Predictor forecasts circle-circle collisions by stepping constant-velocity
// motion forward in fixed increments.
type Predictor struct {
	Step         float64 // Seconds between samples
	Horizon      float64 // Seconds to look ahead
	SafetyBuffer float64 // Added to the sum of radii
}

// Validate checks that the predictor can step.
func (p Predictor) Validate() error {
	if !(p.Step > 0) {
		return fmt.Errorf("collision step must be positive, got %v", p.Step)
	}
	if !(p.Horizon >= 0) {
		return fmt.Errorf("collision horizon must be non-negative, got %v", p.Horizon)
	}
	if p.SafetyBuffer < 0 {
		return fmt.Errorf("collision safety buffer must be non-negative, got %v", p.SafetyBuffer)
	}
	return nil
}

// Event is the first predicted collision. When Hit is false, Time equals the
// horizon and Index is -1.
type Event struct {
	Hit   bool
	Index int
	Time  float64
	Angle float64 // Direction the obstacle approaches from, relative to heading, in (-Pi, Pi]
}

// Steps returns the number of samples after t = 0.
func (p Predictor) Steps() int {
	return int(math.Floor(p.Horizon/p.Step + 1e-9))
}

// Predict samples t = k*Step for k = 0..Steps(). The first obstacle in input
// order overlapping the agent at the earliest sample wins.
func (p Predictor) Predict(agent Body, heading float64, obstacles []Body) Event {
	none := Event{Index: -1, Time: p.Horizon}
	if len(obstacles) == 0 || !(p.Step > 0) {
		return none
	}
	for k := 0; k <= p.Steps(); k++ {
		t := float64(k) * p.Step
		pa := agent.At(t)
		for i, o := range obstacles {
			po := o.At(t)
			if Distance(pa, po) < agent.Radius+o.Radius+p.SafetyBuffer {
				return Event{
					Hit:   true,
					Index: i,
					Time:  t,
					Angle: impactAngle(agent, o, pa, po, heading),
				}
			}
		}
	}
	return none
}

// impactAngle returns the direction the obstacle closes from, opposite its
// velocity relative to the agent. With no relative motion it falls back to
// the bearing of the obstacle.
func impactAngle(agent, obstacle Body, pa, po r2.Vec, heading float64) float64 {
	rel := r2.Sub(obstacle.Vel, agent.Vel)
	var from float64
	if r2.Norm2(rel) > 0 {
		from = Bearing(r2.Scale(-1, rel))
	} else {
		from = Bearing(r2.Sub(po, pa))
	}
	return WrapAngle(from - heading)
}
