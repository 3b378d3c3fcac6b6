package archive

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records in memory for the lifetime of the process.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	records     map[string]Record
	order       []string // Insertion order, for stable ties
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.records = make(map[string]Record)
	s.order = nil
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, rec Record) error {
	if err := rec.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	if _, ok := s.records[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	rec.Genes = rec.Genes.Clone()
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return Record{}, false, ErrNotInitialized
	}

	rec, ok := s.records[id]
	rec.Genes = rec.Genes.Clone()
	return rec, ok, nil
}

func (s *MemoryStore) Best(_ context.Context, schemaVersion int) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return Record{}, false, ErrNotInitialized
	}

	var best Record
	found := false
	for _, id := range s.order {
		rec := s.records[id]
		if rec.SchemaVersion != schemaVersion {
			continue
		}
		if !found || rec.Score > best.Score {
			best, found = rec, true
		}
	}
	best.Genes = best.Genes.Clone()
	return best, found, nil
}

func (s *MemoryStore) ListRun(_ context.Context, runID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	var out []Record
	for _, id := range s.order {
		rec := s.records[id]
		if rec.RunID == runID {
			rec.Genes = rec.Genes.Clone()
			out = append(out, rec)
		}
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
