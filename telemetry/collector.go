package telemetry

import "math"

// Decision is what the controller did on one tick, as seen by telemetry.
type Decision struct {
	Thrust         float64
	TurnRate       float64
	Fire           bool
	HasTarget      bool
	LowConfidence  bool
	Threat         bool    // A collision was predicted
	CollisionTime  float64 // Valid when Threat
	InferenceError bool
}

// ShipState is the episode state at the end of a window.
type ShipState struct {
	Lives     int
	Asteroids int
	X, Y      float64
	Speed     float64
}

// Collector accumulates events and decisions within time windows and
// produces WindowStats.
type Collector struct {
	runID       string
	episode     int
	dt          float64
	windowTicks int

	windowStart int

	ticks, fires, targets, lowConf, threats, inferenceErrors int
	shots, hits, splits, deaths                              int
	absThrust, absTurn                                       float64
	minCollision                                             float64
}

// NewCollector returns a collector for one episode. windowSec is the
// window length in simulated seconds and dt the seconds per tick.
func NewCollector(runID string, episode int, windowSec, dt float64) *Collector {
	ticks := int(math.Round(windowSec / dt))
	if ticks < 1 {
		ticks = 1
	}
	c := &Collector{runID: runID, episode: episode, dt: dt, windowTicks: ticks}
	c.reset(0)
	return c
}

// RecordEvent counts an arena event.
func (c *Collector) RecordEvent(e Event) {
	switch e.Type {
	case EventShot:
		c.shots++
	case EventHit:
		c.hits++
	case EventSplit:
		c.splits++
	case EventDeath:
		c.deaths++
	}
}

// RecordDecision accumulates one tick's controller output.
func (c *Collector) RecordDecision(d Decision) {
	c.ticks++
	c.absThrust += math.Abs(d.Thrust)
	c.absTurn += math.Abs(d.TurnRate)
	if d.Fire {
		c.fires++
	}
	if d.HasTarget {
		c.targets++
		if d.LowConfidence {
			c.lowConf++
		}
	}
	if d.Threat {
		c.threats++
		if d.CollisionTime < c.minCollision {
			c.minCollision = d.CollisionTime
		}
	}
	if d.InferenceError {
		c.inferenceErrors++
	}
}

// ShouldFlush reports whether a full window has passed at currentTick.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStart >= c.windowTicks
}

// Flush produces the stats of the current window and starts the next one.
func (c *Collector) Flush(currentTick int, state ShipState) WindowStats {
	s := WindowStats{
		RunID:           c.runID,
		Episode:         c.episode,
		WindowStartTick: c.windowStart,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Lives:     state.Lives,
		Asteroids: state.Asteroids,
		ShipX:     state.X,
		ShipY:     state.Y,
		Speed:     state.Speed,

		Shots:           c.shots,
		Hits:            c.hits,
		Splits:          c.splits,
		Deaths:          c.deaths,
		InferenceErrors: c.inferenceErrors,
	}
	if c.shots > 0 {
		s.Accuracy = float64(c.hits) / float64(c.shots)
	}
	if c.ticks > 0 {
		n := float64(c.ticks)
		s.FireRate = float64(c.fires) / n
		s.TargetRate = float64(c.targets) / n
		s.ThreatRate = float64(c.threats) / n
		s.MeanAbsThrust = c.absThrust / n
		s.MeanAbsTurn = c.absTurn / n
	}
	if c.targets > 0 {
		s.LowConfidenceRate = float64(c.lowConf) / float64(c.targets)
	}
	if c.threats > 0 {
		s.MinCollisionTime = c.minCollision
	}

	c.reset(currentTick)
	return s
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}

func (c *Collector) reset(tick int) {
	c.windowStart = tick
	c.ticks, c.fires, c.targets, c.lowConf, c.threats, c.inferenceErrors = 0, 0, 0, 0, 0, 0
	c.shots, c.hits, c.splits, c.deaths = 0, 0, 0, 0
	c.absThrust, c.absTurn = 0, 0
	c.minCollision = math.Inf(1)
}
