// Package arena is a deterministic asteroid field for flying and tuning the
// controller: one ship with lives, bullets with a lifetime, and asteroids
// that wrap around the map and split when hit.
package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/controller"
	"github.com/pthm-cable/fuzzship/geometry"
	"github.com/pthm-cable/fuzzship/telemetry"
)

// StopReason says why an episode ended.
type StopReason string

const (
	StopNone        StopReason = ""
	StopNoAsteroids StopReason = "no asteroids"
	StopNoLives     StopReason = "no lives"
	StopTimeExpired StopReason = "time expired"
)

// cooldownEpsilon absorbs the rounding left when a cooldown is counted
// down in dt steps.
const cooldownEpsilon = 1e-9

// Pilot decides the ship's command from a snapshot of the arena.
// *controller.Controller is a Pilot.
type Pilot interface {
	Actions(controller.TickInput) controller.TickOutput
}

// Observer is called at the end of every tick with the command applied.
type Observer func(a *Arena, cmd controller.TickOutput)

// Score is the outcome of an episode so far.
type Score struct {
	AsteroidsHit int
	ShotsFired   int
	Deaths       int
	Ticks        int
	Accuracy     float64 // Hits per shot; 0 before the first shot
	TimeSec      float64
	StopReason   StopReason
}

// AsteroidState is an asteroid as seen by the viewer.
type AsteroidState struct {
	Kinematics
	Asteroid
}

// Arena is one episode. It is not safe for concurrent use; run one arena
// per goroutine.
type Arena struct {
	cfg  config.ArenaConfig
	seed int64

	world          *ecs.World
	asteroidMap    *ecs.Map2[Kinematics, Asteroid]
	bulletMap      *ecs.Map2[Kinematics, Bullet]
	asteroidFilter *ecs.Filter2[Kinematics, Asteroid]
	bulletFilter   *ecs.Filter2[Kinematics, Bullet]

	ship   Ship
	rng    *rand.Rand
	perf   *telemetry.PerfCollector
	events []telemetry.Event

	// Collision broadphase
	grid      *spatialGrid
	nearby    []int
	maxRadius float64

	tick      int
	maxTicks  int
	asteroids int
	score     Score
}

// New builds an arena from cfg and spawns the initial asteroid field. The
// same cfg and seed always give the same episode for the same pilot.
func New(cfg config.ArenaConfig, seed int64) (*Arena, error) {
	switch {
	case cfg.Width <= 0 || cfg.Height <= 0:
		return nil, fmt.Errorf("arena size must be positive, got %vx%v", cfg.Width, cfg.Height)
	case cfg.DT <= 0:
		return nil, fmt.Errorf("arena dt must be positive, got %v", cfg.DT)
	case cfg.Asteroids.Size < 1 || cfg.Asteroids.Size > 4:
		return nil, fmt.Errorf("asteroid size must be 1-4, got %d", cfg.Asteroids.Size)
	case cfg.Ship.Lives < 1:
		return nil, fmt.Errorf("ship needs at least one life, got %d", cfg.Ship.Lives)
	}

	world := ecs.NewWorld()
	a := &Arena{
		cfg:            cfg,
		seed:           seed,
		world:          world,
		asteroidMap:    ecs.NewMap2[Kinematics, Asteroid](world),
		bulletMap:      ecs.NewMap2[Kinematics, Bullet](world),
		asteroidFilter: ecs.NewFilter2[Kinematics, Asteroid](world),
		bulletFilter:   ecs.NewFilter2[Kinematics, Bullet](world),
		rng:            rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5deece66d)),
	}
	if cfg.TimeLimit > 0 {
		a.maxTicks = int(math.Round(cfg.TimeLimit / cfg.DT))
	}
	a.maxRadius = float64(cfg.Asteroids.Size) * cfg.Asteroids.RadiusScale
	a.grid = newSpatialGrid(cfg.Width, cfg.Height, 2*a.maxRadius)

	a.ship = Ship{Radius: cfg.Ship.Radius, Lives: cfg.Ship.Lives}
	a.resetShip()

	l := newLayout(cfg.Layout, seed, a.rng)
	for i := 0; i < cfg.Asteroids.Count; i++ {
		p := l.place(cfg.Width, cfg.Height, a.ship.Pos, cfg.Asteroids.SafeRadius)
		v := l.drift(p, cfg.Asteroids.MinSpeed, cfg.Asteroids.MaxSpeed)
		a.spawnAsteroid(p, v, cfg.Asteroids.Size)
	}

	slog.Debug("arena ready", "seed", seed, "asteroids", a.asteroids, "max_ticks", a.maxTicks)
	return a, nil
}

// SetPerf attaches a perf collector timing each tick's phases.
func (a *Arena) SetPerf(pc *telemetry.PerfCollector) {
	a.perf = pc
}

// Snapshot returns the controller's view of the current state.
func (a *Arena) Snapshot() controller.TickInput {
	in := controller.TickInput{
		Agent: controller.Agent{
			Pos:     a.ship.Pos,
			Vel:     a.ship.Vel,
			Heading: a.ship.Heading,
			Speed:   a.ship.Speed,
			Radius:  a.ship.Radius,
		},
		Obstacles: make([]geometry.Body, 0, a.asteroids),
	}
	query := a.asteroidFilter.Query()
	for query.Next() {
		k, ast := query.Get()
		in.Obstacles = append(in.Obstacles, geometry.Body{Pos: k.Pos, Vel: k.Vel, Radius: ast.Radius})
	}
	return in
}

// Advance runs one full tick: the pilot decides on a snapshot, the command
// is applied, and observers see the result.
func (a *Arena) Advance(p Pilot, observers ...Observer) controller.TickOutput {
	a.perf.StartTick()
	a.perf.StartPhase(telemetry.PhaseDecide)
	cmd := p.Actions(a.Snapshot())
	a.Step(cmd)
	a.perf.StartPhase(telemetry.PhaseTelemetry)
	for _, obs := range observers {
		obs(a, cmd)
	}
	a.perf.EndTick()
	return cmd
}

// Step applies cmd for one tick of dt seconds. It does nothing once the
// episode is over.
func (a *Arena) Step(cmd controller.TickOutput) {
	if a.Done() {
		return
	}
	a.tick++
	a.events = a.events[:0]
	dt := a.cfg.DT

	a.perf.StartPhase(telemetry.PhaseShip)
	a.steer(cmd, dt)

	a.perf.StartPhase(telemetry.PhaseMotion)
	a.move(dt)

	a.perf.StartPhase(telemetry.PhaseCollisions)
	a.collide()

	a.perf.StartPhase(telemetry.PhaseCleanup)
	a.expireBullets()
	a.checkStop()
}

// steer turns, accelerates and moves the ship, then fires if allowed.
func (a *Arena) steer(cmd controller.TickOutput, dt float64) {
	s := &a.ship
	sc := a.cfg.Ship

	turn := clamp(finite(cmd.TurnRate), -sc.MaxTurnRate, sc.MaxTurnRate)
	s.Heading = geometry.WrapAngle(s.Heading + turn*math.Pi/180*dt)

	switch {
	case s.Speed > 0:
		s.Speed = math.Max(0, s.Speed-sc.Drag*dt)
	case s.Speed < 0:
		s.Speed = math.Min(0, s.Speed+sc.Drag*dt)
	}
	s.Speed = clamp(s.Speed+finite(cmd.Thrust)*dt, -sc.MaxSpeed, sc.MaxSpeed)

	s.Vel = r2.Scale(s.Speed, geometry.Heading(s.Heading))
	s.Pos = a.wrap(r2.Add(s.Pos, r2.Scale(dt, s.Vel)))
	s.Invulnerable = math.Max(0, s.Invulnerable-dt)
	s.Cooldown = math.Max(0, s.Cooldown-dt)

	if cmd.Fire && s.Cooldown <= cooldownEpsilon {
		nose := r2.Add(s.Pos, r2.Scale(s.Radius, geometry.Heading(s.Heading)))
		vel := r2.Scale(a.cfg.Bullets.Speed, geometry.Heading(s.Heading))
		a.bulletMap.NewEntity(&Kinematics{Pos: nose, Vel: vel}, &Bullet{})
		s.Cooldown = a.cfg.Bullets.Cooldown
		a.score.ShotsFired++
		a.events = append(a.events, telemetry.NewShotEvent(a.tick, nose.X, nose.Y))
	}
}

// move advances bullets and asteroids. Asteroids wrap; bullets do not.
func (a *Arena) move(dt float64) {
	bullets := a.bulletFilter.Query()
	for bullets.Next() {
		k, b := bullets.Get()
		k.Pos = r2.Add(k.Pos, r2.Scale(dt, k.Vel))
		b.Age += dt
	}

	asteroids := a.asteroidFilter.Query()
	for asteroids.Next() {
		k, _ := asteroids.Get()
		k.Pos = a.wrap(r2.Add(k.Pos, r2.Scale(dt, k.Vel)))
	}
}

type rock struct {
	entity ecs.Entity
	pos    r2.Vec
	vel    r2.Vec
	size   int
	radius float64
	hit    bool
}

// collide resolves bullet hits, then at most one ship collision. Each
// bullet destroys the first asteroid in storage order it is inside; each
// asteroid absorbs at most one bullet.
func (a *Arena) collide() {
	var rocks []rock
	asteroids := a.asteroidFilter.Query()
	for asteroids.Next() {
		k, ast := asteroids.Get()
		rocks = append(rocks, rock{entity: asteroids.Entity(), pos: k.Pos, vel: k.Vel, size: ast.Size, radius: ast.Radius})
	}

	a.grid.clear()
	for i := range rocks {
		a.grid.insert(i, rocks[i].pos)
	}

	var spent []ecs.Entity
	bullets := a.bulletFilter.Query()
	for bullets.Next() {
		k, _ := bullets.Get()
		i := a.firstContact(rocks, k.Pos, 0)
		if i < 0 {
			continue
		}
		r := &rocks[i]
		r.hit = true
		spent = append(spent, bullets.Entity())
		a.score.AsteroidsHit++
		a.events = append(a.events, telemetry.NewHitEvent(a.tick, r.pos.X, r.pos.Y, r.size))
	}

	s := &a.ship
	crashed := -1
	if s.Invulnerable <= 0 {
		if crashed = a.firstContact(rocks, s.Pos, s.Radius); crashed >= 0 {
			rocks[crashed].hit = true
		}
	}

	for _, e := range spent {
		a.world.RemoveEntity(e)
	}
	for _, r := range rocks {
		if r.hit {
			a.world.RemoveEntity(r.entity)
			a.asteroids--
			a.split(r)
		}
	}
	if crashed >= 0 {
		a.loseLife(rocks[crashed])
	}
}

// firstContact returns the lowest index of an unhit rock overlapping a
// circle of radius at p, or -1. A radius of zero tests a point.
func (a *Arena) firstContact(rocks []rock, p r2.Vec, radius float64) int {
	first := -1
	a.nearby = a.grid.queryInto(a.nearby[:0], p, radius+a.maxRadius)
	for _, i := range a.nearby {
		r := &rocks[i]
		if r.hit || (first >= 0 && i >= first) {
			continue
		}
		if geometry.Distance(p, r.pos) < radius+r.radius {
			first = i
		}
	}
	return first
}

// split replaces a destroyed asteroid of size n > 1 with two of size n-1,
// their velocities rotated by plus and minus the split angle.
func (a *Arena) split(r rock) {
	if r.size <= 1 {
		return
	}
	angle := a.cfg.Asteroids.SplitAngle * math.Pi / 180
	for _, sign := range []float64{1, -1} {
		a.spawnAsteroid(r.pos, rotate(r.vel, sign*angle), r.size-1)
	}
	a.events = append(a.events, telemetry.NewSplitEvent(a.tick, r.pos.X, r.pos.Y, r.size))
}

func (a *Arena) loseLife(r rock) {
	s := &a.ship
	s.Lives--
	a.score.Deaths++
	a.events = append(a.events, telemetry.NewDeathEvent(a.tick, s.Pos.X, s.Pos.Y, r.size))
	if s.Lives <= 0 {
		return
	}
	a.resetShip()
	s.Invulnerable = a.cfg.Ship.Respawn
	a.events = append(a.events, telemetry.NewRespawnEvent(a.tick, s.Pos.X, s.Pos.Y))
}

// expireBullets removes bullets past their lifetime or off the map.
func (a *Arena) expireBullets() {
	var expired []ecs.Entity
	query := a.bulletFilter.Query()
	for query.Next() {
		k, b := query.Get()
		if b.Age >= a.cfg.Bullets.Lifetime || !a.inside(k.Pos) {
			expired = append(expired, query.Entity())
		}
	}
	for _, e := range expired {
		a.world.RemoveEntity(e)
	}
}

func (a *Arena) checkStop() {
	switch {
	case a.ship.Lives <= 0:
		a.score.StopReason = StopNoLives
	case a.asteroids == 0:
		a.score.StopReason = StopNoAsteroids
	case a.maxTicks > 0 && a.tick >= a.maxTicks:
		a.score.StopReason = StopTimeExpired
	default:
		return
	}
	slog.Debug("episode over", "seed", a.seed, "reason", string(a.score.StopReason), "tick", a.tick)
}

// Done reports whether the episode has ended.
func (a *Arena) Done() bool {
	return a.score.StopReason != StopNone
}

// Score returns the outcome so far.
func (a *Arena) Score() Score {
	s := a.score
	s.Ticks = a.tick
	s.TimeSec = float64(a.tick) * a.cfg.DT
	if s.ShotsFired > 0 {
		s.Accuracy = float64(s.AsteroidsHit) / float64(s.ShotsFired)
	}
	return s
}

// Ship returns the ship's state.
func (a *Arena) Ship() Ship {
	return a.ship
}

// Asteroids returns every asteroid in storage order.
func (a *Arena) Asteroids() []AsteroidState {
	out := make([]AsteroidState, 0, a.asteroids)
	query := a.asteroidFilter.Query()
	for query.Next() {
		k, ast := query.Get()
		out = append(out, AsteroidState{Kinematics: *k, Asteroid: *ast})
	}
	return out
}

// Bullets returns the position of every bullet in flight.
func (a *Arena) Bullets() []r2.Vec {
	var out []r2.Vec
	query := a.bulletFilter.Query()
	for query.Next() {
		k, _ := query.Get()
		out = append(out, k.Pos)
	}
	return out
}

// AsteroidCount returns the number of asteroids left.
func (a *Arena) AsteroidCount() int {
	return a.asteroids
}

// Events returns what happened during the last tick. The slice is reused
// by the next Step.
func (a *Arena) Events() []telemetry.Event {
	return a.events
}

// Tick returns the number of ticks run.
func (a *Arena) Tick() int {
	return a.tick
}

// Seed returns the seed the arena was built with.
func (a *Arena) Seed() int64 {
	return a.seed
}

// Config returns the arena's rules.
func (a *Arena) Config() config.ArenaConfig {
	return a.cfg
}

// Run advances a until the episode ends or ctx is cancelled.
func Run(ctx context.Context, a *Arena, p Pilot, observers ...Observer) (Score, error) {
	if p == nil {
		return a.Score(), errors.New("arena: nil pilot")
	}
	for !a.Done() {
		if err := ctx.Err(); err != nil {
			return a.Score(), err
		}
		a.Advance(p, observers...)
	}
	return a.Score(), nil
}

func (a *Arena) spawnAsteroid(pos, vel r2.Vec, size int) {
	radius := float64(size) * a.cfg.Asteroids.RadiusScale
	a.asteroidMap.NewEntity(
		&Kinematics{Pos: pos, Vel: vel},
		&Asteroid{Size: size, Radius: radius},
	)
	a.asteroids++
	a.maxRadius = max(a.maxRadius, radius)
}

func (a *Arena) resetShip() {
	sc := a.cfg.Ship
	s := &a.ship
	s.Pos = r2.Vec{X: sc.StartX, Y: sc.StartY}
	s.Vel = r2.Vec{}
	s.Heading = geometry.WrapAngle(sc.StartHeading * math.Pi / 180)
	s.Speed = 0
	s.Cooldown = 0
}

func (a *Arena) wrap(p r2.Vec) r2.Vec {
	return r2.Vec{X: wrapCoord(p.X, a.cfg.Width), Y: wrapCoord(p.Y, a.cfg.Height)}
}

func (a *Arena) inside(p r2.Vec) bool {
	return p.X >= 0 && p.X < a.cfg.Width && p.Y >= 0 && p.Y < a.cfg.Height
}

func wrapCoord(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	if v >= size {
		return 0
	}
	return v
}

func rotate(v r2.Vec, theta float64) r2.Vec {
	sin, cos := math.Sincos(theta)
	return r2.Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
