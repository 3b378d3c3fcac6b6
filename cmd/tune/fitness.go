package main

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/game"
	"github.com/pthm-cable/fuzzship/genome"
	"github.com/pthm-cable/fuzzship/telemetry"
)

const (
	hallOfFameSize = 20   // Genomes the tuner remembers
	failedScore    = -1e9 // Score of a genome that could not be played
)

// EvalResult is the outcome of one genome over every seed.
type EvalResult struct {
	Eval       int
	Genes      genome.Genome
	Score      float64 // Mean episode score, higher is better
	ScoreStd   float64
	HitsMean   float64
	DeathsMean float64
	Accuracy   float64 // Hits per shot over all seeds
	Best       bool    // Best so far when evaluated
	Err        error
}

// Fitness is the value the optimizer minimises.
func (r EvalResult) Fitness() float64 {
	return -r.Score
}

// FitnessEvaluator runs headless episodes and scores genomes. It is safe
// for concurrent use.
type FitnessEvaluator struct {
	cfg   *config.Config
	seeds []int64

	mu   sync.Mutex
	eval int
	best EvalResult
	hof  *telemetry.HallOfFame
}

// NewFitnessEvaluator creates an evaluator playing one episode per seed.
func NewFitnessEvaluator(cfg *config.Config, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		cfg:   cfg,
		seeds: seeds,
		best:  EvalResult{Score: math.Inf(-1)},
		hof:   telemetry.NewHallOfFame(hallOfFameSize, rand.New(rand.NewPCG(uint64(cfg.Tuner.BaseSeed), 1))),
	}
}

// seedResult holds one episode's outcome.
type seedResult struct {
	hits, shots, deaths int
	score               float64
	err                 error
}

// Evaluate plays g on every seed in parallel, one controller per episode.
// A genome whose episodes cannot be played scores failedScore.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, g genome.Genome) EvalResult {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runEpisode(ctx, g, s)
		}(i, seed)
	}
	wg.Wait()

	res := EvalResult{Genes: g.Clone()}
	scores := make([]float64, 0, len(results))
	hits := make([]float64, 0, len(results))
	deaths := make([]float64, 0, len(results))
	var totalHits, totalShots int
	for _, r := range results {
		if r.err != nil {
			res.Err = r.err
			continue
		}
		scores = append(scores, r.score)
		hits = append(hits, float64(r.hits))
		deaths = append(deaths, float64(r.deaths))
		totalHits += r.hits
		totalShots += r.shots
	}

	if res.Err != nil {
		res.Score = failedScore
	} else {
		sum := telemetry.Summarize(scores)
		res.Score, res.ScoreStd = sum.Mean, sum.Std
		res.HitsMean = stat.Mean(hits, nil)
		res.DeathsMean = stat.Mean(deaths, nil)
		if totalShots > 0 {
			res.Accuracy = float64(totalHits) / float64(totalShots)
		}
	}

	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.eval++
	res.Eval = fe.eval
	if res.Err == nil {
		if res.Score > fe.best.Score {
			res.Best = true
			fe.best = res
		}
		fe.hof.Consider(telemetry.HallEntry{
			Genes:    res.Genes,
			Score:    res.Score,
			Eval:     res.Eval,
			Hits:     res.HitsMean,
			Deaths:   res.DeathsMean,
			Accuracy: res.Accuracy,
		})
	}
	return res
}

// runEpisode plays one headless episode.
func (fe *FitnessEvaluator) runEpisode(ctx context.Context, g genome.Genome, seed int64) seedResult {
	gm, err := game.New(game.Options{Seed: seed, Genome: g, Config: fe.cfg})
	if err != nil {
		return seedResult{err: err}
	}
	s, err := gm.Run(ctx)
	if err != nil {
		return seedResult{err: err}
	}
	return seedResult{
		hits:   s.AsteroidsHit,
		shots:  s.ShotsFired,
		deaths: s.Deaths,
		score:  game.EpisodeScore(s.AsteroidsHit, s.Deaths, fe.cfg.Tuner.DeathPenalty),
	}
}

// Best returns the best evaluation so far. ok is false before the first
// successful one.
func (fe *FitnessEvaluator) Best() (EvalResult, bool) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.best, fe.best.Genes != nil
}

// HallOfFame returns the best genomes seen.
func (fe *FitnessEvaluator) HallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.hof
}

// Evals returns the number of evaluations so far.
func (fe *FitnessEvaluator) Evals() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.eval
}

// evalSeeds returns n seeds starting at base.
func evalSeeds(base int64, n int) []int64 {
	if n < 1 {
		n = 1
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = base + int64(i)
	}
	return seeds
}
