package game

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/genome"
	"github.com/pthm-cable/fuzzship/telemetry"
)

// shortConfig returns the default config with a 5 second episode.
func shortConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Arena.TimeLimit = 5
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return cfg
}

func TestEpisodeScore(t *testing.T) {
	tests := []struct {
		hits, deaths int
		penalty      float64
		want         float64
	}{
		{0, 0, 5, 0},
		{7, 0, 5, 7},
		{7, 1, 5, 2},
		{2, 2, 5, -8},
		{3, 4, 0, 3},
	}
	for _, tt := range tests {
		if got := EpisodeScore(tt.hits, tt.deaths, tt.penalty); got != tt.want {
			t.Errorf("EpisodeScore(%d, %d, %v) = %v, want %v", tt.hits, tt.deaths, tt.penalty, got, tt.want)
		}
	}
}

func TestNewRejectsBadGenome(t *testing.T) {
	cfg := shortConfig(t)
	if _, err := New(Options{Config: cfg, Genome: genome.Genome{0.5}}); err == nil {
		t.Error("expected an error for a short genome")
	}
}

func TestWindowsAddUpToScore(t *testing.T) {
	cfg := shortConfig(t)
	var windows []telemetry.WindowStats
	g, err := New(Options{
		RunID:         "test",
		Seed:          3,
		Config:        cfg,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	score, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	windowTicks := 30 // sample_interval 1s at 30 ticks per second
	want := (score.Ticks + windowTicks - 1) / windowTicks
	if len(windows) != want {
		t.Fatalf("got %d windows for %d ticks, want %d", len(windows), score.Ticks, want)
	}

	var hits, shots, deaths int
	for _, w := range windows {
		hits += w.Hits
		shots += w.Shots
		deaths += w.Deaths
		if w.RunID != "test" {
			t.Errorf("window run id %q", w.RunID)
		}
	}
	if hits != score.AsteroidsHit || shots != score.ShotsFired || deaths != score.Deaths {
		t.Errorf("windows sum to %d hits %d shots %d deaths, score is %+v", hits, shots, deaths, score)
	}
	if last := windows[len(windows)-1]; last.WindowEndTick != score.Ticks {
		t.Errorf("last window ends at %d, episode at %d", last.WindowEndTick, score.Ticks)
	}
}

func TestRunWritesOutput(t *testing.T) {
	cfg := shortConfig(t)
	dir := filepath.Join(t.TempDir(), "out")
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	g, err := New(Options{RunID: "run", Episode: 2, Seed: 9, Config: cfg, Output: om})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	score, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "episodes.csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var rows []telemetry.EpisodeRecord
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("UnmarshalBytes: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d episode rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Episode != 2 || row.Seed != 9 || row.Hits != score.AsteroidsHit || row.Ticks != score.Ticks {
		t.Errorf("episode row %+v does not match score %+v", row, score)
	}
	if want := EpisodeScore(score.AsteroidsHit, score.Deaths, cfg.Tuner.DeathPenalty); row.Score != want {
		t.Errorf("row score = %v, want %v", row.Score, want)
	}

	for _, name := range []string{"windows.csv", "perf.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	snaps, err := filepath.Glob(filepath.Join(dir, "snapshots", "episode_2*.json"))
	if err != nil || len(snaps) != 1 {
		t.Errorf("snapshots = %v, %v", snaps, err)
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	cfg := shortConfig(t)
	g, err := New(Options{Seed: 1, Config: cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for g.Step() {
	}
	first, err := g.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	second, err := g.Finish()
	if err != nil {
		t.Fatalf("Finish again: %v", err)
	}
	if first != second {
		t.Errorf("Finish changed: %+v then %+v", first, second)
	}
	if first.StopReason == "" {
		t.Error("finished episode has no stop reason")
	}
}

func TestUpdateRunsStepsPerUpdate(t *testing.T) {
	cfg := shortConfig(t)
	g, err := New(Options{Seed: 1, Config: cfg, StepsPerUpdate: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.Update()
	if g.Tick() != 4 {
		t.Fatalf("Tick = %d after one update, want 4", g.Tick())
	}
	g.SetStepsPerUpdate(0)
	if g.StepsPerUpdate() != 1 {
		t.Errorf("StepsPerUpdate = %d, want 1", g.StepsPerUpdate())
	}
	g.Update()
	if g.Tick() != 5 {
		t.Errorf("Tick = %d, want 5", g.Tick())
	}
	if g.Diagnostics().Tick != 5 {
		t.Errorf("diagnostics tick = %d, want 5", g.Diagnostics().Tick)
	}
}

func TestReplayReproducesEpisode(t *testing.T) {
	cfg := shortConfig(t)
	g, err := New(Options{RunID: "orig", Episode: 1, Seed: 17, Config: cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	path, err := telemetry.SaveSnapshot(g.Snapshot(), t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	base, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	opts, err := ReplayOptions(snap, base)
	if err != nil {
		t.Fatalf("ReplayOptions: %v", err)
	}
	if opts.Config.Derived.MaxTicks != 150 {
		t.Errorf("replay MaxTicks = %d, want 150", opts.Config.Derived.MaxTicks)
	}

	replay, err := New(opts)
	if err != nil {
		t.Fatalf("New replay: %v", err)
	}
	score, err := replay.Run(context.Background())
	if err != nil {
		t.Fatalf("replay Run: %v", err)
	}
	if err := VerifyReplay(snap, score); err != nil {
		t.Error(err)
	}

	score.AsteroidsHit++
	if err := VerifyReplay(snap, score); err == nil {
		t.Error("expected a divergence error")
	}
}
