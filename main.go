package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/fuzzship/archive"
	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/controller"
	"github.com/pthm-cable/fuzzship/game"
	"github.com/pthm-cable/fuzzship/genome"
	"github.com/pthm-cable/fuzzship/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	genomePath := flag.String("genome", "", "Genome YAML to fly (empty = neutral genome)")
	fromArchive := flag.Bool("from-archive", false, "Fly the best archived genome instead of -genome")
	archivePath := flag.String("archive", "", "SQLite archive path (overrides config, implies sqlite)")
	headless := flag.Bool("headless", false, "Run without graphics")
	episodes := flag.Int("episodes", 1, "Episodes to run in headless mode")
	seed := flag.Int64("seed", 0, "Arena seed of the first episode (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and snapshots")
	logStats := flag.Bool("log-stats", false, "Output window and perf stats via slog")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Arena ticks per viewer frame")
	replayPath := flag.String("replay", "", "Replay an episode snapshot and check its outcome")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *archivePath != "" {
		cfg.Archive.Kind = "sqlite"
		cfg.Archive.Path = *archivePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var om *telemetry.OutputManager
	if *outputDir != "" {
		var err error
		if om, err = telemetry.NewOutputManager(*outputDir); err != nil {
			slog.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := om.Close(); err != nil {
				slog.Error("failed to close output", "error", err)
			}
		}()
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
	}

	var (
		opts   game.Options
		replay *telemetry.Snapshot
	)
	if *replayPath != "" {
		s, err := telemetry.LoadSnapshot(*replayPath)
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		if opts, err = game.ReplayOptions(s, cfg); err != nil {
			slog.Error("snapshot cannot be replayed", "error", err)
			os.Exit(1)
		}
		replay = s
		*episodes = 1
	} else {
		g, err := loadGenome(ctx, *genomePath, *fromArchive, cfg.Archive)
		if err != nil {
			slog.Error("failed to load genome", "error", err)
			os.Exit(1)
		}
		rngSeed := *seed
		if rngSeed == 0 {
			rngSeed = time.Now().UnixNano()
		}
		opts = game.Options{
			RunID:  uuid.NewString(),
			Seed:   rngSeed,
			Genome: g,
			Config: cfg,
		}
	}
	opts.Output = om
	opts.LogStats = *logStats
	opts.StepsPerUpdate = *stepsPerUpdate

	if *headless {
		if err := runHeadless(ctx, opts, *episodes, replay); err != nil {
			slog.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runViewer(opts, replay); err != nil {
		slog.Error("viewer failed", "error", err)
		os.Exit(1)
	}
}

// loadGenome returns the genome to fly: the archive's best when fromArchive
// is set, else the file at path, else the neutral genome.
func loadGenome(ctx context.Context, path string, fromArchive bool, ac config.ArchiveConfig) (genome.Genome, error) {
	if fromArchive {
		store, err := archive.NewStore(ac.Kind, ac.Path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		rec, ok, err := store.Best(ctx, controller.SchemaV1.Version)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("archive has no genome for this schema")
		}
		slog.Info("loaded archived genome", "id", rec.ID, "run_id", rec.RunID, "score", rec.Score)
		return rec.File().Genome(controller.SchemaV1)
	}

	if path == "" {
		return controller.SchemaV1.Neutral(), nil
	}
	f, err := genome.Load(path)
	if err != nil {
		return nil, err
	}
	return f.Genome(controller.SchemaV1)
}

// runHeadless plays episodes back to back, each with the next seed, and
// logs a summary of their scores. A replay is checked against its
// recording.
func runHeadless(ctx context.Context, opts game.Options, episodes int, replay *telemetry.Snapshot) error {
	slog.Info("starting headless run",
		"run_id", opts.RunID,
		"seed", opts.Seed,
		"episodes", episodes,
		"replay", replay != nil,
	)

	scores := make([]float64, 0, episodes)
	hits := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		eo := opts
		if replay == nil {
			eo.Episode = i
			eo.Seed = opts.Seed + int64(i)
		}
		g, err := game.New(eo)
		if err != nil {
			return err
		}
		score, err := g.Run(ctx)
		if err != nil {
			return fmt.Errorf("episode %d: %w", eo.Episode, err)
		}
		rec, _ := g.Finish()
		slog.Info("episode finished",
			"episode", eo.Episode,
			"seed", eo.Seed,
			"hits", score.AsteroidsHit,
			"deaths", score.Deaths,
			"accuracy", score.Accuracy,
			"ticks", score.Ticks,
			"stop_reason", string(score.StopReason),
			"score", rec.Score,
		)

		if replay != nil {
			if err := game.VerifyReplay(replay, score); err != nil {
				return err
			}
			slog.Info("replay matches recording", "ticks", score.Ticks)
		}
		scores = append(scores, rec.Score)
		hits = append(hits, float64(score.AsteroidsHit))
	}

	slog.Info("run summary",
		"score", telemetry.Summarize(scores),
		"hits", telemetry.Summarize(hits),
	)
	return nil
}
