package telemetry

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"sort"
)

// HallEntry is a genome that scored well during tuning.
type HallEntry struct {
	Genes    []float64 `json:"genes"`
	Score    float64   `json:"score"` // Higher is better
	Eval     int       `json:"eval"`
	Hits     float64   `json:"hits"`   // Mean over seeds
	Deaths   float64   `json:"deaths"` // Mean over seeds
	Accuracy float64   `json:"accuracy"`
}

// HallOfFame keeps the best genomes seen by a tuning run, sorted by
// descending score.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
	rng     *rand.Rand
}

// NewHallOfFame returns an empty hall holding at most maxSize entries.
func NewHallOfFame(maxSize int, rng *rand.Rand) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{entries: make([]HallEntry, 0, maxSize), maxSize: maxSize, rng: rng}
}

// Consider inserts e if it beats the weakest entry or the hall has room.
// e.Genes is copied. Returns true if e was added.
func (hof *HallOfFame) Consider(e HallEntry) bool {
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Score < e.Score
	})
	if idx >= hof.maxSize {
		return false
	}

	e.Genes = slices.Clone(e.Genes)
	hof.entries = slices.Insert(hof.entries, idx, e)
	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Sample picks an entry by tournament selection of size 3. Returns false
// when the hall is empty.
func (hof *HallOfFame) Sample() (HallEntry, bool) {
	if len(hof.entries) == 0 {
		return HallEntry{}, false
	}
	const tournamentSize = 3
	best := -1
	for i := 0; i < tournamentSize; i++ {
		idx := hof.rng.IntN(len(hof.entries))
		if best < 0 || hof.entries[idx].Score > hof.entries[best].Score {
			best = idx
		}
	}
	e := hof.entries[best]
	e.Genes = slices.Clone(e.Genes)
	return e, true
}

// Best returns the top entry.
func (hof *HallOfFame) Best() (HallEntry, bool) {
	if len(hof.entries) == 0 {
		return HallEntry{}, false
	}
	e := hof.entries[0]
	e.Genes = slices.Clone(e.Genes)
	return e, true
}

// Entries returns a copy of every entry, best first.
func (hof *HallOfFame) Entries() []HallEntry {
	out := make([]HallEntry, len(hof.entries))
	for i, e := range hof.entries {
		e.Genes = slices.Clone(e.Genes)
		out[i] = e
	}
	return out
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// MarshalJSON implements json.Marshaler.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		MaxSize int         `json:"max_size"`
		Entries []HallEntry `json:"entries"`
	}{hof.maxSize, hof.entries}, "", "  ")
}

// WriteFile saves the hall as JSON.
func (hof *HallOfFame) WriteFile(path string) error {
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	return nil
}
