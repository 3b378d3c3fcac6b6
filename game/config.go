package game

import (
	"github.com/pthm-cable/fuzzship/config"
	"github.com/pthm-cable/fuzzship/genome"
	"github.com/pthm-cable/fuzzship/telemetry"
)

// Options configures one episode.
type Options struct {
	RunID   string
	Episode int
	Seed    int64
	Genome  genome.Genome  // nil = the schema's neutral genome
	Config  *config.Config // nil = config.Cfg()

	Output         *telemetry.OutputManager // nil = no files
	LogStats       bool                     // Log window and perf stats via slog
	StepsPerUpdate int                      // Ticks per Update call; 0 = 1
	StatsCallback  func(telemetry.WindowStats)
}

// EpisodeScore is the scalar an episode is judged by: hits minus
// deathPenalty per death.
func EpisodeScore(hits, deaths int, deathPenalty float64) float64 {
	return float64(hits) - deathPenalty*float64(deaths)
}
