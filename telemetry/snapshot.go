package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/fuzzship/config"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds what is needed to replay an episode: the arena is
// deterministic given its rules, seed and the controller genome.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Episode int    `json:"episode"`
	Seed    int64  `json:"seed"`

	Arena      config.ArenaConfig      `json:"arena"`
	Controller config.ControllerConfig `json:"controller"`
	Collision  config.CollisionConfig  `json:"collision"`

	SchemaVersion int       `json:"schema_version"`
	Genes         []float64 `json:"genes"`

	// Outcome, for checking a replay against the recording
	Ticks      int    `json:"ticks"`
	Hits       int    `json:"hits"`
	Deaths     int    `json:"deaths"`
	StopReason string `json:"stop_reason"`

	Bookmarks []Bookmark `json:"bookmarks,omitempty"`
}

// SaveSnapshot writes snapshot into dir and returns its path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("episode_%d", snapshot.Episode)
	if snapshot.StopReason != "" {
		name += "_" + strings.ReplaceAll(snapshot.StopReason, " ", "_")
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
