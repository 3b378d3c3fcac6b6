package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/fuzzship/archive"
	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/controller"
	"github.com/pthm-cable/fuzzship/genome"
	"github.com/pthm-cable/fuzzship/telemetry"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// populationSize returns the CMA-ES default of 4 + floor(3 ln n) when
// requested is zero.
// newProblem wraps eval so that the optimizer stops once ctx is cancelled.
// Evaluations requested after that are not played.
func newProblem(ctx context.Context, eval func(x []float64) float64) optimize.Problem {
	return optimize.Problem{
		Func: func(x []float64) float64 {
			if ctx.Err() != nil {
				return -failedScore
			}
			return eval(x)
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
}

func populationSize(requested, dim int) int {
	if requested > 0 {
		return requested
	}
	return 4 + int(3*math.Log(float64(dim)))
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	outputDir := flag.String("output", "", "Output directory for results")
	seeds := flag.Int("seeds", 0, "Episodes per evaluation (0 = use config)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	population := flag.Int("population", -1, "CMA-ES population size (0 = auto, -1 = use config)")
	startGenome := flag.String("genome", "", "Genome YAML to start from (empty = neutral genome)")
	archivePath := flag.String("archive", "", "Archive path (empty = use config)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *outputDir == "" {
		slog.Error("--output is required")
		os.Exit(1)
	}

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *seeds > 0 {
		cfg.Tuner.Seeds = *seeds
	}
	if *maxEvals > 0 {
		cfg.Tuner.MaxEvals = *maxEvals
	}
	if *population >= 0 {
		cfg.Tuner.Population = *population
	}
	if *archivePath != "" {
		cfg.Archive.Path = *archivePath
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runID := uuid.NewString()
	gv := NewGenomeVector(controller.SchemaV1)

	initX := controller.SchemaV1.Neutral()
	if *startGenome != "" {
		f, err := genome.Load(*startGenome)
		if err != nil {
			slog.Error("failed to load genome", "error", err)
			os.Exit(1)
		}
		if initX, err = f.Genome(controller.SchemaV1); err != nil {
			slog.Error("invalid start genome", "error", err)
			os.Exit(1)
		}
	}

	evaluator := NewFitnessEvaluator(cfg, evalSeeds(cfg.Tuner.BaseSeed, cfg.Tuner.Seeds))

	workers := cfg.Tuner.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	dim := gv.Dim()
	popSize := populationSize(cfg.Tuner.Population, dim)

	settings := &optimize.Settings{
		FuncEvaluations: cfg.Tuner.MaxEvals,
		Concurrent:      workers,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: cfg.Tuner.InitStepSize,
		Population:   popSize,
	}

	startTime := time.Now()
	problem := newProblem(ctx, func(x []float64) float64 {
		g := gv.Genome(x)
		res := evaluator.Evaluate(ctx, g)
		if ctx.Err() != nil {
			// Interrupted mid-evaluation; the score is meaningless.
			return res.Fitness()
		}
		if res.Err != nil {
			slog.Warn("evaluation failed", "eval", res.Eval, "error", res.Err)
		}

		if err := om.WriteEval(telemetry.EvalRecord{
			RunID:      runID,
			Eval:       res.Eval,
			Score:      res.Score,
			Fitness:    res.Fitness(),
			ScoreStd:   res.ScoreStd,
			HitsMean:   res.HitsMean,
			DeathsMean: res.DeathsMean,
			Accuracy:   res.Accuracy,
			Best:       res.Best,
			Genes:      gv.Format(g),
		}); err != nil {
			slog.Error("failed to write evaluation", "error", err)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(res.Eval)
		remaining := time.Duration(cfg.Tuner.MaxEvals-res.Eval) * avgPerEval
		best, _ := evaluator.Best()
		slog.Info("evaluation",
			"eval", res.Eval,
			"max_evals", cfg.Tuner.MaxEvals,
			"score", res.Score,
			"score_std", res.ScoreStd,
			"hits", res.HitsMean,
			"deaths", res.DeathsMean,
			"best", best.Score,
			"elapsed", formatDuration(elapsed),
			"eta", formatDuration(remaining),
		)

		return res.Fitness()
	})

	slog.Info("starting CMA-ES tuning",
		"run_id", runID,
		"genes", dim,
		"population", popSize,
		"max_evals", cfg.Tuner.MaxEvals,
		"seeds", cfg.Tuner.Seeds,
		"workers", workers,
	)

	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	best, ok := evaluator.Best()
	if !ok {
		slog.Error("no evaluation succeeded")
		os.Exit(1)
	}
	slog.Info("tuning complete",
		"evals", evaluator.Evals(),
		"duration", formatDuration(time.Since(startTime)),
		"best_score", best.Score,
		"best_eval", best.Eval,
	)

	f := &genome.File{
		SchemaVersion: controller.SchemaV1.Version,
		Genes:         best.Genes,
		Fitness:       best.Score,
		RunID:         runID,
	}
	genomePath := filepath.Join(*outputDir, "best_genome.yaml")
	if err := f.Write(genomePath); err != nil {
		slog.Error("failed to write best genome", "error", err)
	} else {
		slog.Info("best genome saved", "path", genomePath)
	}

	hof := evaluator.HallOfFame()
	if err := om.WriteHallOfFame(hof); err != nil {
		slog.Error("failed to write hall of fame", "error", err)
	}

	// The interrupt context may be done by now; archiving still has to happen.
	if err := archiveHall(context.Background(), cfg.Archive, runID, hof); err != nil {
		slog.Error("failed to archive genomes", "error", err)
	}
}

// archiveHall saves every hall of fame entry under runID.
func archiveHall(ctx context.Context, ac config.ArchiveConfig, runID string, hof *telemetry.HallOfFame) error {
	store, err := archive.NewStore(ac.Kind, ac.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		return err
	}

	for _, e := range hof.Entries() {
		rec := archive.NewRecord(runID, controller.SchemaV1.Version, e.Score, e.Genes)
		if err := store.SaveGenome(ctx, rec); err != nil {
			return err
		}
	}

	saved, err := store.ListRun(ctx, runID)
	if err != nil {
		return err
	}
	slog.Info("genomes archived", "backend", ac.Kind, "path", ac.Path, "count", len(saved))
	return nil
}
