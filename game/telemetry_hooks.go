package game

import (
	"log/slog"

	"github.com/pthm-cable/fuzzship/arena"
	"github.com/pthm-cable/fuzzship/controller"
	"github.com/pthm-cable/fuzzship/telemetry"
)

// observe feeds the tick's decision and events to the collector and
// flushes a window when one is complete.
func (g *Game) observe(a *arena.Arena, cmd controller.TickOutput) {
	d := g.lastDiag
	hasTarget := d.Target >= 0
	g.collector.RecordDecision(telemetry.Decision{
		Thrust:         cmd.Thrust,
		TurnRate:       cmd.TurnRate,
		Fire:           cmd.Fire,
		HasTarget:      hasTarget,
		LowConfidence:  hasTarget && d.LowConfidence(),
		Threat:         d.Collision.Hit,
		CollisionTime:  d.Collision.Time,
		InferenceError: d.Err != nil,
	})
	for _, e := range a.Events() {
		g.collector.RecordEvent(e)
	}

	if g.collector.ShouldFlush(a.Tick()) {
		g.flushTelemetry()
	}
}

// flushTelemetry closes the current stats window and handles bookmarks.
func (g *Game) flushTelemetry() {
	tick := g.arena.Tick()
	ship := g.arena.Ship()
	stats := g.collector.Flush(tick, telemetry.ShipState{
		Lives:     ship.Lives,
		Asteroids: g.arena.AsteroidCount(),
		X:         ship.Pos.X,
		Y:         ship.Pos.Y,
		Speed:     ship.Speed,
	})
	g.lastFlush = tick
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteWindow(stats); err != nil {
		slog.Error("failed to write window stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, g.episode, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		g.bookmarks = append(g.bookmarks, bm)
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}
