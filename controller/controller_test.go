package controller

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/fuzzy"
	"github.com/pthm-cable/fuzzship/genome"
	"github.com/pthm-cable/fuzzship/geometry"
)

func newNeutral(t *testing.T) *Controller {
	t.Helper()
	c, err := New(SchemaV1.Neutral(), DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func randomGenome(seed uint64) genome.Genome {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g := make(genome.Genome, SchemaV1.Len())
	for i := range g {
		g[i] = rng.Float64()
	}
	return g
}

func TestSchemaV1Length(t *testing.T) {
	if SchemaV1.Len() != 22 {
		t.Errorf("SchemaV1.Len() = %d, want 22", SchemaV1.Len())
	}
	for i, e := range SchemaV1.Entries {
		if int(e.Var) != i {
			t.Errorf("entry %s has var %d at position %d", e.Name, e.Var, i)
		}
	}
}

func TestRuleCatalogValidates(t *testing.T) {
	c := newNeutral(t)
	rb := c.RuleBase()
	if rb.Len() != 21+5+10 {
		t.Errorf("rule count = %d, want 36", rb.Len())
	}
	if got := rb.Describe(10); got != "IF (bullet_time is M AND theta_delta is Z) THEN ship_turn is Z, ship_fire is Y" {
		t.Errorf("Describe(10) = %q", got)
	}
}

func TestNewRejectsBadGenome(t *testing.T) {
	short := SchemaV1.Neutral()[:21]
	if _, err := New(short, DefaultParams()); !errors.Is(err, genome.ErrInvalidGenomeLength) {
		t.Errorf("short genome: got %v, want ErrInvalidGenomeLength", err)
	}

	bad := SchemaV1.Neutral()
	bad[5] = 1.2
	if _, err := New(bad, DefaultParams()); !errors.Is(err, genome.ErrInvalidGenomeRange) {
		t.Errorf("out of range genome: got %v, want ErrInvalidGenomeRange", err)
	}

	p := DefaultParams()
	p.ProjectileSpeed = 0
	if _, err := New(SchemaV1.Neutral(), p); err == nil {
		t.Error("expected error for zero projectile speed")
	}
}

func TestGenomeRoundTrip(t *testing.T) {
	g := randomGenome(7)
	a, err := New(g, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(g, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Mutating the caller's genome must not reach the controllers.
	orig := g[0]
	g[0] = 0

	inputs := []TickInput{
		{Agent: Agent{Radius: 20}},
		{
			Agent: Agent{Pos: r2.Vec{X: 500, Y: 400}, Vel: r2.Vec{X: 30, Y: -10}, Heading: 1.2, Speed: 31, Radius: 20},
			Obstacles: []geometry.Body{
				{Pos: r2.Vec{X: 700, Y: 420}, Vel: r2.Vec{X: -60, Y: 5}, Radius: 24},
				{Pos: r2.Vec{X: 300, Y: 100}, Vel: r2.Vec{X: 20, Y: 80}, Radius: 16},
			},
		},
	}
	for i, in := range inputs {
		outA, outB := a.Actions(in), b.Actions(in)
		if outA != outB {
			t.Errorf("input %d: %+v != %+v", i, outA, outB)
		}
	}
	if a.Genome()[0] != orig {
		t.Error("controller genome aliases the caller's slice")
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	c, err := New(randomGenome(11), DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := TickInput{
		Agent: Agent{Pos: r2.Vec{X: 100, Y: 100}, Heading: 0.3, Speed: -40, Radius: 20},
		Obstacles: []geometry.Body{
			{Pos: r2.Vec{X: 180, Y: 140}, Vel: r2.Vec{X: -30, Y: -20}, Radius: 24},
		},
	}
	first := c.Actions(in)
	for i := 0; i < 20; i++ {
		got := c.Actions(in)
		if math.Float64bits(got.Thrust) != math.Float64bits(first.Thrust) ||
			math.Float64bits(got.TurnRate) != math.Float64bits(first.TurnRate) ||
			got.Fire != first.Fire {
			t.Fatalf("tick %d: %+v != %+v", i, got, first)
		}
	}
	if c.Ticks() != 21 {
		t.Errorf("Ticks = %d, want 21", c.Ticks())
	}
}

func TestDecideWithoutObstacles(t *testing.T) {
	c := newNeutral(t)
	out, diag := c.Decide(TickInput{Agent: Agent{Pos: r2.Vec{X: 10, Y: 10}, Radius: 20}})
	if diag.Err != nil {
		t.Fatalf("unexpected error: %v", diag.Err)
	}
	if out.Fire {
		t.Error("must not fire without a target")
	}
	if diag.Target != -1 || diag.Collision.Hit {
		t.Errorf("diagnostics = %+v, want no target and no collision", diag)
	}
	if math.Abs(out.TurnRate) > 1e-9 {
		t.Errorf("TurnRate = %v, want 0", out.TurnRate)
	}
	if math.Abs(out.Thrust) > 1e-9 {
		t.Errorf("Thrust = %v, want 0", out.Thrust)
	}
}

func TestDecideBleedsSpeed(t *testing.T) {
	c := newNeutral(t)
	out := c.Actions(TickInput{Agent: Agent{Speed: 200, Radius: 20}})
	if out.Thrust >= 0 {
		t.Errorf("Thrust = %v, want negative to bleed forward speed", out.Thrust)
	}
	out = c.Actions(TickInput{Agent: Agent{Speed: -200, Radius: 20}})
	if out.Thrust <= 0 {
		t.Errorf("Thrust = %v, want positive to bleed reverse speed", out.Thrust)
	}
}

func TestDecideEndToEndExample(t *testing.T) {
	p := DefaultParams()
	p.Collision = geometry.Predictor{Step: 0.1, Horizon: 5}
	c, err := New(SchemaV1.Neutral(), p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, diag := c.Decide(TickInput{
		Agent:     Agent{Radius: 10},
		Obstacles: []geometry.Body{{Pos: r2.Vec{X: 100}, Radius: 10}},
	})
	if math.Abs(diag.Intercept.Time-0.125) > 1e-12 {
		t.Errorf("intercept time = %v, want 0.125", diag.Intercept.Time)
	}
	if diag.Intercept.Correction != 0 {
		t.Errorf("correction = %v, want 0", diag.Intercept.Correction)
	}
	if diag.Collision.Hit {
		t.Errorf("unexpected collision %+v", diag.Collision)
	}
	if !out.Fire {
		t.Error("a dead-ahead stationary target should be fired on")
	}
}

func TestDecideHeadOnTurnsPositive(t *testing.T) {
	c := newNeutral(t)
	out, diag := c.Decide(TickInput{
		Agent:     Agent{Radius: 10},
		Obstacles: []geometry.Body{{Pos: r2.Vec{X: 80}, Vel: r2.Vec{X: -100}, Radius: 10}},
	})
	if !diag.Collision.Hit || diag.Collision.Angle != 0 {
		t.Fatalf("collision = %+v, want a dead-ahead hit", diag.Collision)
	}
	if out.TurnRate <= 0 {
		t.Errorf("TurnRate = %v, want the positive default", out.TurnRate)
	}
	if out.Thrust >= 0 {
		t.Errorf("Thrust = %v, want reverse thrust away from a frontal threat", out.Thrust)
	}
}

func TestDecideHeadOnTurnsPositiveForAnyGenome(t *testing.T) {
	theta := SchemaV1.Entries[CollisionTheta]
	withTheta := func(m, lp, rp float64) genome.Genome {
		g := SchemaV1.Neutral()
		copy(g[theta.Offset:theta.Offset+theta.Length], []float64{m, lp, rp})
		return g
	}
	ones := make(genome.Genome, SchemaV1.Len())
	for i := range ones {
		ones[i] = 1
	}
	genomes := map[string]genome.Genome{
		"neutral":              SchemaV1.Neutral(),
		"PS apex on midpoint":  withTheta(0.5, 0.5, 1),
		"PS apex left of zero": withTheta(0.4, 0.5, 1),
		"Z apex right of zero": withTheta(0.6, 0.3, 0.2),
		"NS collapsed onto Z":  withTheta(0.5, 0, 1),
		"all genes at zero":    make(genome.Genome, SchemaV1.Len()),
		"all genes at one":     ones,
	}
	for i := range 40 {
		genomes[fmt.Sprintf("random %d", i)] = randomGenome(uint64(100 + i))
	}

	headOn := TickInput{
		Agent:     Agent{Radius: 10},
		Obstacles: []geometry.Body{{Pos: r2.Vec{X: 80}, Vel: r2.Vec{X: -100}, Radius: 10}},
	}
	for name, g := range genomes {
		t.Run(name, func(t *testing.T) {
			c, err := New(g, DefaultParams())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			out, diag := c.Decide(headOn)
			if diag.Err != nil {
				t.Fatalf("Decide: %v", diag.Err)
			}
			if !diag.HeadOn {
				t.Errorf("collision %+v not settled as head-on", diag.Collision)
			}
			if out.TurnRate <= 0 {
				t.Errorf("TurnRate = %v, want positive", out.TurnRate)
			}
		})
	}
}

func TestDecideSideThreatIsNotHeadOn(t *testing.T) {
	c := newNeutral(t)
	_, diag := c.Decide(TickInput{
		Agent:     Agent{Radius: 10},
		Obstacles: []geometry.Body{{Pos: r2.Vec{X: 60, Y: 60}, Vel: r2.Vec{X: -70, Y: -70}, Radius: 10}},
	})
	if !diag.Collision.Hit {
		t.Fatalf("collision = %+v, want a hit", diag.Collision)
	}
	if diag.HeadOn {
		t.Errorf("threat at %.2f rad settled as head-on", diag.Collision.Angle)
	}
}

func TestParamsRejectBadHeadOn(t *testing.T) {
	p := DefaultParams()
	p.HeadOnTurn = 0
	if err := p.Validate(); err == nil {
		t.Error("expected an error for a zero head-on turn")
	}
	p = DefaultParams()
	p.HeadOnBand = -0.1
	if err := p.Validate(); err == nil {
		t.Error("expected an error for a negative head-on band")
	}
}

func TestDecideInterceptFallback(t *testing.T) {
	c := newNeutral(t)
	_, diag := c.Decide(TickInput{
		Agent:     Agent{Radius: 10},
		Obstacles: []geometry.Body{{Pos: r2.Vec{X: 100}, Vel: r2.Vec{Y: 2000}, Radius: 10}},
	})
	if !errors.Is(diag.InterceptErr, geometry.ErrNoRealIntercept) {
		t.Fatalf("InterceptErr = %v, want ErrNoRealIntercept", diag.InterceptErr)
	}
	if !diag.LowConfidence() || diag.Intercept.Time != DefaultParams().InterceptFallbackTime {
		t.Errorf("intercept = %+v, want low-confidence fallback", diag.Intercept)
	}
	if diag.Intercept.Correction != 0 {
		t.Errorf("fallback correction = %v, want 0 towards the current position", diag.Intercept.Correction)
	}
}

func TestDecideBadInputIsNeutral(t *testing.T) {
	c := newNeutral(t)
	out, diag := c.Decide(TickInput{Agent: Agent{Speed: math.NaN(), Radius: 10}})
	if !errors.Is(diag.Err, fuzzy.ErrMissingInput) {
		t.Errorf("Err = %v, want ErrMissingInput", diag.Err)
	}
	if out != Neutral {
		t.Errorf("got %+v, want neutral command", out)
	}
}

func TestParamsFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if got := ParamsFromConfig(cfg); got != DefaultParams() {
		t.Errorf("ParamsFromConfig = %+v, want %+v", got, DefaultParams())
	}
}
