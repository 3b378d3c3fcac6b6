package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats summarise one telemetry window of an episode.
type WindowStats struct {
	RunID           string  `csv:"run_id"`
	Episode         int     `csv:"episode"`
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// State at window end
	Lives     int     `csv:"lives"`
	Asteroids int     `csv:"asteroids"`
	ShipX     float64 `csv:"ship_x"`
	ShipY     float64 `csv:"ship_y"`
	Speed     float64 `csv:"speed"`

	// Events during the window
	Shots    int     `csv:"shots"`
	Hits     int     `csv:"hits"`
	Splits   int     `csv:"splits"`
	Deaths   int     `csv:"deaths"`
	Accuracy float64 `csv:"accuracy"`

	// Controller behaviour during the window
	FireRate          float64 `csv:"fire_rate"`     // Ticks commanding fire / ticks
	TargetRate        float64 `csv:"target_rate"`   // Ticks with a target / ticks
	LowConfidenceRate float64 `csv:"low_conf_rate"` // Fallback or past-time intercepts / ticks with a target
	ThreatRate        float64 `csv:"threat_rate"`   // Ticks with a predicted collision / ticks
	MinCollisionTime  float64 `csv:"min_collision"` // Earliest predicted collision; 0 when none
	MeanAbsThrust     float64 `csv:"mean_abs_thrust"`
	MeanAbsTurn       float64 `csv:"mean_abs_turn"`
	InferenceErrors   int     `csv:"inference_errors"`
}

// Percentile returns the p-th percentile of sorted with linear
// interpolation. p is in [0, 1]; an empty slice gives 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summary describes a sample of per-episode values.
type Summary struct {
	N             int
	Mean, Std     float64
	Min, Max      float64
	P10, P50, P90 float64
}

// Summarize computes a Summary of values. Std is the sample standard
// deviation and is 0 for fewer than two values.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{N: n, Min: sorted[0], Max: sorted[n-1]}
	if n == 1 {
		s.Mean = sorted[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	}
	if math.IsNaN(s.Std) {
		s.Std = 0
	}
	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
	return s
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("n", s.N),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("min", s.Min),
		slog.Float64("p50", s.P50),
		slog.Float64("max", s.Max),
	)
}

// LogValue implements slog.LogValuer.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("episode", s.Episode),
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("lives", s.Lives),
		slog.Int("asteroids", s.Asteroids),
		slog.Int("shots", s.Shots),
		slog.Int("hits", s.Hits),
		slog.Int("deaths", s.Deaths),
		slog.Float64("accuracy", s.Accuracy),
		slog.Float64("fire_rate", s.FireRate),
		slog.Float64("threat_rate", s.ThreatRate),
		slog.Float64("low_conf_rate", s.LowConfidenceRate),
	)
}

// LogStats logs the window at debug level.
func (s WindowStats) LogStats() {
	slog.Debug("window",
		"episode", s.Episode,
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"lives", s.Lives,
		"asteroids", s.Asteroids,
		"shots", s.Shots,
		"hits", s.Hits,
		"splits", s.Splits,
		"deaths", s.Deaths,
		"accuracy", s.Accuracy,
		"fire_rate", s.FireRate,
		"target_rate", s.TargetRate,
		"low_conf_rate", s.LowConfidenceRate,
		"threat_rate", s.ThreatRate,
		"min_collision", s.MinCollisionTime,
		"mean_abs_thrust", s.MeanAbsThrust,
		"mean_abs_turn", s.MeanAbsTurn,
		"inference_errors", s.InferenceErrors,
	)
}
