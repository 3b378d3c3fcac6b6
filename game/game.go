// Package game runs controller episodes in the training arena and feeds
// their telemetry to the output files. It has no rendering dependency so
// that the tuner can run many episodes at once.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/fuzzship/arena"
	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/controller"
	"github.com/pthm-cable/fuzzship/fuzzy"
	"github.com/pthm-cable/fuzzship/genome"
	"github.com/pthm-cable/fuzzship/telemetry"
)

// Game is one episode: an arena flown by a controller, with telemetry.
// It is not safe for concurrent use.
type Game struct {
	cfg     *config.Config
	runID   string
	episode int

	arena *arena.Arena
	ctrl  *controller.Controller

	// Telemetry
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	bookmarks        []telemetry.Bookmark
	lastFlush        int

	lastDiag       controller.Diagnostics
	lastCmd        controller.TickOutput
	stepsPerUpdate int
	finished       bool
	record         telemetry.EpisodeRecord
}

// New builds the arena and controller of an episode.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	g := opts.Genome
	if g == nil {
		g = controller.SchemaV1.Neutral()
	}
	ctrl, err := controller.New(g, controller.ParamsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("building controller: %w", err)
	}

	a, err := arena.New(cfg.Arena, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("building arena: %w", err)
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	game := &Game{
		cfg:              cfg,
		runID:            opts.RunID,
		episode:          opts.Episode,
		arena:            a,
		ctrl:             ctrl,
		collector:        telemetry.NewCollector(opts.RunID, opts.Episode, cfg.Telemetry.SampleInterval, cfg.Arena.DT),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager:    opts.Output,
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		stepsPerUpdate:   steps,
	}
	a.SetPerf(game.perfCollector)
	return game, nil
}

// Actions decides a tick with the controller and keeps its diagnostics
// for telemetry and the viewer.
func (g *Game) Actions(in controller.TickInput) controller.TickOutput {
	out, diag := g.ctrl.Decide(in)
	g.lastDiag = diag
	if diag.Err != nil {
		slog.Debug("inference failed", "tick", g.arena.Tick()+1, "error", diag.Err)
	}
	return out
}

// Step advances one tick. Returns false once the episode is over.
func (g *Game) Step() bool {
	if g.arena.Done() {
		return false
	}
	g.lastCmd = g.arena.Advance(g, g.observe)
	return !g.arena.Done()
}

// Update advances StepsPerUpdate ticks, stopping early at the end of the
// episode.
func (g *Game) Update() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		if !g.Step() {
			return
		}
	}
}

// Run plays the episode to the end and finishes it.
func (g *Game) Run(ctx context.Context) (arena.Score, error) {
	score, err := arena.Run(ctx, g.arena, g, g.observe)
	if err != nil {
		return score, err
	}
	if _, err := g.Finish(); err != nil {
		return score, err
	}
	return score, nil
}

// Finish flushes the last partial window, then writes the episode row and
// its snapshot. Calling it again returns the same record.
func (g *Game) Finish() (telemetry.EpisodeRecord, error) {
	if g.finished {
		return g.record, nil
	}
	g.finished = true

	if g.arena.Tick() > g.lastFlush {
		g.flushTelemetry()
	}

	s := g.arena.Score()
	g.record = telemetry.EpisodeRecord{
		RunID:      g.runID,
		Episode:    g.episode,
		Seed:       g.arena.Seed(),
		Hits:       s.AsteroidsHit,
		Shots:      s.ShotsFired,
		Deaths:     s.Deaths,
		Ticks:      s.Ticks,
		TimeSec:    s.TimeSec,
		Accuracy:   s.Accuracy,
		StopReason: string(s.StopReason),
		Score:      EpisodeScore(s.AsteroidsHit, s.Deaths, g.cfg.Tuner.DeathPenalty),
	}

	if g.outputManager == nil {
		return g.record, nil
	}
	if err := g.outputManager.WriteEpisode(g.record); err != nil {
		return g.record, err
	}
	path, err := g.outputManager.WriteSnapshot(g.Snapshot())
	if err != nil {
		return g.record, err
	}
	slog.Info("snapshot saved", "path", path, "episode", g.episode)
	return g.record, nil
}

// Snapshot returns what is needed to replay the episode.
func (g *Game) Snapshot() *telemetry.Snapshot {
	s := g.arena.Score()
	return &telemetry.Snapshot{
		Version:       telemetry.SnapshotVersion,
		RunID:         g.runID,
		Episode:       g.episode,
		Seed:          g.arena.Seed(),
		Arena:         g.cfg.Arena,
		Controller:    g.cfg.Controller,
		Collision:     g.cfg.Collision,
		SchemaVersion: controller.SchemaV1.Version,
		Genes:         g.ctrl.Genome(),
		Ticks:         s.Ticks,
		Hits:          s.AsteroidsHit,
		Deaths:        s.Deaths,
		StopReason:    string(s.StopReason),
		Bookmarks:     g.Bookmarks(),
	}
}

// Arena returns the episode's arena.
func (g *Game) Arena() *arena.Arena {
	return g.arena
}

// Genome returns a copy of the controller's genome.
func (g *Game) Genome() genome.Genome {
	return g.ctrl.Genome()
}

// Diagnostics returns how the last command was reached.
func (g *Game) Diagnostics() controller.Diagnostics {
	return g.lastDiag
}

// Rules returns the controller's rule base.
func (g *Game) Rules() *fuzzy.RuleBase {
	return g.ctrl.RuleBase()
}

// LastCommand returns the last command applied.
func (g *Game) LastCommand() controller.TickOutput {
	return g.lastCmd
}

// Bookmarks returns the bookmarks found so far.
func (g *Game) Bookmarks() []telemetry.Bookmark {
	return append([]telemetry.Bookmark(nil), g.bookmarks...)
}

// Perf returns the rolling tick timings.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame counts a rendered frame for FPS reporting.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// Tick returns the number of ticks run.
func (g *Game) Tick() int {
	return g.arena.Tick()
}

// Done reports whether the episode has ended.
func (g *Game) Done() bool {
	return g.arena.Done()
}

// Score returns the arena's outcome so far.
func (g *Game) Score() arena.Score {
	return g.arena.Score()
}

// Episode returns the episode number.
func (g *Game) Episode() int {
	return g.episode
}

// StepsPerUpdate returns the ticks run per Update call.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// SetStepsPerUpdate sets the ticks run per Update call, at least 1.
func (g *Game) SetStepsPerUpdate(n int) {
	if n < 1 {
		n = 1
	}
	g.stepsPerUpdate = n
}
