package game

import (
	"fmt"

	"github.com/pthm-cable/fuzzship/arena"
	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/controller"
	"github.com/pthm-cable/fuzzship/genome"
	"github.com/pthm-cable/fuzzship/telemetry"
)

// ReplayOptions rebuilds the options of a recorded episode on top of base.
// The arena, controller and collision sections come from the snapshot;
// everything else from base.
func ReplayOptions(s *telemetry.Snapshot, base *config.Config) (Options, error) {
	cfg := *base
	cfg.Arena = s.Arena
	cfg.Controller = s.Controller
	cfg.Collision = s.Collision
	if err := cfg.Refresh(); err != nil {
		return Options{}, fmt.Errorf("snapshot config: %w", err)
	}

	f := genome.File{SchemaVersion: s.SchemaVersion, Genes: s.Genes}
	g, err := f.Genome(controller.SchemaV1)
	if err != nil {
		return Options{}, fmt.Errorf("snapshot genome: %w", err)
	}

	return Options{
		RunID:   s.RunID,
		Episode: s.Episode,
		Seed:    s.Seed,
		Genome:  g,
		Config:  &cfg,
	}, nil
}

// VerifyReplay checks a replayed outcome against the recording.
func VerifyReplay(s *telemetry.Snapshot, score arena.Score) error {
	if score.Ticks != s.Ticks || score.AsteroidsHit != s.Hits ||
		score.Deaths != s.Deaths || string(score.StopReason) != s.StopReason {
		return fmt.Errorf("replay diverged: got %d ticks, %d hits, %d deaths, %q; recorded %d, %d, %d, %q",
			score.Ticks, score.AsteroidsHit, score.Deaths, score.StopReason,
			s.Ticks, s.Hits, s.Deaths, s.StopReason)
	}
	return nil
}
