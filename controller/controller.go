package controller

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fuzzship/fuzzy"
	"github.com/pthm-cable/fuzzship/genome"
	"github.com/pthm-cable/fuzzship/geometry"
)

// Agent is the controlled ship's state.
type Agent struct {
	Pos     r2.Vec
	Vel     r2.Vec
	Heading float64 // Radians
	Speed   float64 // Signed speed along the heading
	Radius  float64
}

// Body returns the agent as a constant-velocity circle.
func (a Agent) Body() geometry.Body {
	return geometry.Body{Pos: a.Pos, Vel: a.Vel, Radius: a.Radius}
}

// TickInput is one read-only snapshot of the world.
type TickInput struct {
	Agent     Agent
	Obstacles []geometry.Body
}

// TickOutput is the command for one tick.
type TickOutput struct {
	Thrust   float64 // [-MaxThrust, MaxThrust]
	TurnRate float64 // Degrees per second, [-180, 180]
	Fire     bool
}

// Neutral is the command issued when a tick cannot be decided.
var Neutral = TickOutput{}

// Diagnostics describe how a command was reached.
type Diagnostics struct {
	Tick         uint64
	Target       int // -1 with no obstacles
	Intercept    geometry.Intercept
	InterceptErr error // Set when Intercept is the fallback
	Collision    geometry.Event
	Inputs       fuzzy.Inputs
	Outputs      fuzzy.Outputs
	Err          error // Set when the command is Neutral because inference failed
	HeadOn       bool  // Set when the turn was settled by the head-on default
}

// Controller decides one tick at a time. Its registry, rules and engine are
// immutable after New.
type Controller struct {
	params Params
	genome genome.Genome
	engine *fuzzy.Engine

	avoidFrom int // First avoidance rule

	ticks atomic.Uint64
}

// New validates g against SchemaV1 and builds the controller's registry,
// rule base and inference engine. g is copied.
func New(g genome.Genome, p Params) (*Controller, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("controller params: %w", err)
	}
	reg, err := SchemaV1.BuildRegistry(g)
	if err != nil {
		return nil, err
	}
	rb, err := fuzzy.NewRuleBase(reg, Rules()...)
	if err != nil {
		return nil, fmt.Errorf("building rule base: %w", err)
	}
	return &Controller{
		params:    p,
		genome:    g.Clone(),
		engine:    fuzzy.NewEngine(rb),
		avoidFrom: avoidanceOffset(),
	}, nil
}

// Genome returns a copy of the controller's genome.
func (c *Controller) Genome() genome.Genome {
	return c.genome.Clone()
}

// Params returns the controller's fixed settings.
func (c *Controller) Params() Params {
	return c.params
}

// RuleBase returns the validated rules.
func (c *Controller) RuleBase() *fuzzy.RuleBase {
	return c.engine.Rules()
}

// Ticks returns how many ticks have been decided.
func (c *Controller) Ticks() uint64 {
	return c.ticks.Load()
}

// Actions returns the command for in.
func (c *Controller) Actions(in TickInput) TickOutput {
	out, _ := c.Decide(in)
	return out
}

// Decide computes the command for in and reports how it got there.
//
// With no obstacles the targeting inputs sit at "long bullet time, no
// correction", the collision inputs at "no collision", and the ship never
// fires. A failed intercept aims at the target's current position with the
// fallback bullet time. If inference itself fails, the command is Neutral.
func (c *Controller) Decide(in TickInput) (TickOutput, Diagnostics) {
	diag := Diagnostics{Tick: c.ticks.Add(1), Target: -1}
	agent := in.Agent
	bulletMax := SchemaV1.Entries[BulletTime].Universe.Max
	collisionMax := SchemaV1.Entries[CollisionTime].Universe.Max

	inputs := fuzzy.Inputs{
		BulletTime:     bulletMax,
		ThetaDelta:     0,
		ShipSpeed:      agent.Speed,
		CollisionTime:  collisionMax,
		CollisionTheta: 0,
	}

	idx, _, err := geometry.NearestTarget(agent.Pos, in.Obstacles)
	hasTarget := err == nil
	if hasTarget {
		target := in.Obstacles[idx]
		ic, err := geometry.SolveIntercept(agent.Pos, agent.Heading, target, c.params.ProjectileSpeed)
		if err != nil {
			ic = geometry.AimAtCurrent(agent.Pos, agent.Heading, target, c.params.InterceptFallbackTime)
			diag.InterceptErr = err
		}
		ic.Target = idx
		diag.Target = idx
		diag.Intercept = ic
		inputs[BulletTime] = ic.Time
		inputs[ThetaDelta] = ic.Correction
	}

	ev := c.params.Collision.Predict(agent.Body(), agent.Heading, in.Obstacles)
	diag.Collision = ev
	if ev.Hit {
		inputs[CollisionTime] = ev.Time
		inputs[CollisionTheta] = ev.Angle
	}
	diag.Inputs = inputs

	out, err := c.engine.Infer(inputs)
	if err != nil {
		diag.Err = err
		return Neutral, diag
	}
	diag.Outputs = out

	cmd := TickOutput{
		Thrust:   out.Value(ShipThrust) * c.params.MaxThrust,
		TurnRate: out.Value(ShipTurn),
		Fire:     hasTarget && out.Value(ShipFire) >= c.params.FireThreshold,
	}
	if ev.Hit && math.Abs(ev.Angle) <= c.params.HeadOnBand && c.avoiding(out.Strengths) {
		cmd.TurnRate = math.Max(math.Abs(cmd.TurnRate), c.params.HeadOnTurn)
		diag.HeadOn = true
	}
	return cmd, diag
}

// avoiding reports whether any avoidance rule fired.
func (c *Controller) avoiding(strengths []float64) bool {
	for _, s := range strengths[c.avoidFrom:] {
		if s > 0 {
			return true
		}
	}
	return false
}

// LowConfidence reports whether the diagnostics carry a fallback or
// past-time intercept.
func (d Diagnostics) LowConfidence() bool {
	return d.Intercept.LowConfidence || errors.Is(d.InterceptErr, geometry.ErrNoRealIntercept)
}
