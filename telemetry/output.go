package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/fuzzship/config"
)

// EpisodeRecord is one episodes.csv row.
type EpisodeRecord struct {
	RunID      string  `csv:"run_id"`
	Episode    int     `csv:"episode"`
	Seed       int64   `csv:"seed"`
	Hits       int     `csv:"hits"`
	Shots      int     `csv:"shots"`
	Deaths     int     `csv:"deaths"`
	Ticks      int     `csv:"ticks"`
	TimeSec    float64 `csv:"time"`
	Accuracy   float64 `csv:"accuracy"`
	StopReason string  `csv:"stop_reason"`
	Score      float64 `csv:"score"`
}

// EvalRecord is one evaluations.csv row of a tuning run.
type EvalRecord struct {
	RunID      string  `csv:"run_id"`
	Eval       int     `csv:"eval"`
	Score      float64 `csv:"score"`   // Mean over seeds, higher is better
	Fitness    float64 `csv:"fitness"` // Minimised value, -Score
	ScoreStd   float64 `csv:"score_std"`
	HitsMean   float64 `csv:"hits_mean"`
	DeathsMean float64 `csv:"deaths_mean"`
	Accuracy   float64 `csv:"accuracy"`
	Best       bool    `csv:"best"`
	Genes      string  `csv:"genes"`
}

type csvSink struct {
	name          string
	file          *os.File
	headerWritten bool
}

// OutputManager writes experiment output as CSV files in one directory.
// Files are created on first write. A nil manager discards everything.
type OutputManager struct {
	dir string

	mu        sync.Mutex
	windows   csvSink
	episodes  csvSink
	perf      csvSink
	bookmarks csvSink
	evals     csvSink
}

// NewOutputManager creates dir and returns a manager writing into it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{
		dir:       dir,
		windows:   csvSink{name: "windows.csv"},
		episodes:  csvSink{name: "episodes.csv"},
		perf:      csvSink{name: "perf.csv"},
		bookmarks: csvSink{name: "bookmarks.csv"},
		evals:     csvSink{name: "evaluations.csv"},
	}, nil
}

// writeRow appends rec to the sink, with a header on the first write.
func writeRow[T any](om *OutputManager, s *csvSink, rec T) error {
	om.mu.Lock()
	defer om.mu.Unlock()

	if s.file == nil {
		f, err := os.Create(filepath.Join(om.dir, s.name))
		if err != nil {
			return fmt.Errorf("creating %s: %w", s.name, err)
		}
		s.file = f
	}

	records := []T{rec}
	if !s.headerWritten {
		if err := gocsv.Marshal(records, s.file); err != nil {
			return fmt.Errorf("writing %s: %w", s.name, err)
		}
		s.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, s.file); err != nil {
		return fmt.Errorf("writing %s: %w", s.name, err)
	}
	return nil
}

// WriteConfig saves the configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteWindow appends a row to windows.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return writeRow(om, &om.windows, stats)
}

// WriteEpisode appends a row to episodes.csv.
func (om *OutputManager) WriteEpisode(rec EpisodeRecord) error {
	if om == nil {
		return nil
	}
	return writeRow(om, &om.episodes, rec)
}

// WritePerf appends a row to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, episode, windowEnd int) error {
	if om == nil {
		return nil
	}
	return writeRow(om, &om.perf, stats.ToCSV(episode, windowEnd))
}

// WriteBookmark appends a row to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return writeRow(om, &om.bookmarks, b)
}

// WriteEval appends a row to evaluations.csv.
func (om *OutputManager) WriteEval(rec EvalRecord) error {
	if om == nil {
		return nil
	}
	return writeRow(om, &om.evals, rec)
}

// WriteHallOfFame saves the hall as hall_of_fame.json.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	if om == nil || hof == nil {
		return nil
	}
	return hof.WriteFile(filepath.Join(om.dir, "hall_of_fame.json"))
}

// WriteSnapshot saves an episode snapshot under snapshots/.
func (om *OutputManager) WriteSnapshot(s *Snapshot) (string, error) {
	if om == nil {
		return "", nil
	}
	return SaveSnapshot(s, filepath.Join(om.dir, "snapshots"))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every file that was opened.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	om.mu.Lock()
	defer om.mu.Unlock()

	var errs []error
	for _, s := range []*csvSink{&om.windows, &om.episodes, &om.perf, &om.bookmarks, &om.evals} {
		if s.file != nil {
			errs = append(errs, s.file.Close())
			s.file = nil
		}
	}
	return errors.Join(errs...)
}
