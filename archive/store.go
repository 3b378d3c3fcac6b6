// Package archive persists tuned genomes so runs can be compared and the
// best controller reloaded.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/fuzzship/genome"
)

// ErrNotInitialized is returned by stores used before Init.
var ErrNotInitialized = errors.New("archive: store not initialized")

// Record is one archived genome.
type Record struct {
	ID            string
	RunID         string
	SchemaVersion int
	Score         float64 // Higher is better
	Genes         genome.Genome
	CreatedAt     time.Time
}

// NewRecord returns a record with a fresh id. genes is copied.
func NewRecord(runID string, schemaVersion int, score float64, genes genome.Genome) Record {
	return Record{
		ID:            uuid.NewString(),
		RunID:         runID,
		SchemaVersion: schemaVersion,
		Score:         score,
		Genes:         genes.Clone(),
		CreatedAt:     time.Now().UTC(),
	}
}

// File converts the record to a genome file.
func (r Record) File() *genome.File {
	return &genome.File{
		SchemaVersion: r.SchemaVersion,
		Genes:         r.Genes.Clone(),
		Fitness:       r.Score,
		RunID:         r.RunID,
	}
}

func (r Record) validate() error {
	if r.ID == "" {
		return errors.New("archive: record id is required")
	}
	if len(r.Genes) == 0 {
		return fmt.Errorf("archive: record %s has no genes", r.ID)
	}
	return nil
}

// Store persists genome records.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, rec Record) error
	GetGenome(ctx context.Context, id string) (Record, bool, error)
	// Best returns the highest scoring record of a schema version.
	Best(ctx context.Context, schemaVersion int) (Record, bool, error)
	// ListRun returns a run's records by descending score.
	ListRun(ctx context.Context, runID string) ([]Record, error)
	Close() error
}

// NewStore returns a store of the given kind: "memory" (or empty) or
// "sqlite" at path. The store still needs Init.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported archive backend: %s", kind)
	}
}
