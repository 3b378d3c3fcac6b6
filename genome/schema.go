package genome

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/fuzzship/fuzzy"
)

// Entry maps one linguistic variable onto a contiguous genome slice.
type Entry struct {
	Var      fuzzy.VarID
	Name     string
	Role     fuzzy.Role
	Arity    int // 3, 5 or 7
	Universe fuzzy.Universe
	Neutral  float64  // Consequents only: value reported when no rule fires
	Labels   []string // nil = fuzzy.DefaultLabels(Arity)

	// Filled in by NewSchema.
	Offset int
	Length int
}

// Schema is a versioned layout of genome slices. Entries are laid out
// back to back in declaration order.
type Schema struct {
	Version int
	Entries []Entry
	length  int
}

// NewSchema computes offsets and lengths and checks that every entry has a
// valid arity and universe.
func NewSchema(version int, entries ...Entry) (*Schema, error) {
	s := &Schema{Version: version, Entries: make([]Entry, len(entries))}
	offset := 0
	for i, e := range entries {
		if e.Arity != 3 && e.Arity != 5 && e.Arity != 7 {
			return nil, fmt.Errorf("schema entry %s: %w: got %d", e.Name, fuzzy.ErrInvalidArity, e.Arity)
		}
		if err := e.Universe.Validate(); err != nil {
			return nil, fmt.Errorf("schema entry %s: %w", e.Name, err)
		}
		if e.Labels != nil && len(e.Labels) != e.Arity {
			return nil, fmt.Errorf("schema entry %s: %d labels for arity %d", e.Name, len(e.Labels), e.Arity)
		}
		e.Offset = offset
		e.Length = fuzzy.ParamCount(e.Arity)
		offset += e.Length
		s.Entries[i] = e
	}
	s.length = offset
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Used for package-level
// schema declarations.
func MustSchema(version int, entries ...Entry) *Schema {
	s, err := NewSchema(version, entries...)
	if err != nil {
		panic(fmt.Sprintf("genome: invalid schema v%d: %v", version, err))
	}
	return s
}

// Len returns the total number of genes the schema consumes.
func (s *Schema) Len() int {
	return s.length
}

// Entry returns the entry with the given variable name.
func (s *Schema) Entry(name string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Validate checks g's length and range against the schema.
func (s *Schema) Validate(g Genome) error {
	if len(g) != s.length {
		return fmt.Errorf("%w: schema v%d needs %d genes, got %d", ErrInvalidGenomeLength, s.Version, s.length, len(g))
	}
	return g.CheckRange()
}

// Slice returns the genes belonging to entry e.
func (s *Schema) Slice(g Genome, e Entry) []float64 {
	return g[e.Offset : e.Offset+e.Length]
}

// Neutral returns a genome with every gene at 0.5: midpoints centred and
// every spread halfway.
func (s *Schema) Neutral() Genome {
	g := make(Genome, s.length)
	for i := range g {
		g[i] = 0.5
	}
	return g
}

// BuildRegistry validates g and expands every entry into a linguistic
// variable. Degenerate terms are logged and kept.
func (s *Schema) BuildRegistry(g Genome) (*fuzzy.Registry, error) {
	if err := s.Validate(g); err != nil {
		return nil, err
	}
	vars := make([]fuzzy.Variable, len(s.Entries))
	for i, e := range s.Entries {
		terms, err := fuzzy.BuildPartition(e.Universe, e.Arity, s.Slice(g, e), e.Labels)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", e.Name, err)
		}
		vars[i] = fuzzy.Variable{
			ID:       e.Var,
			Name:     e.Name,
			Universe: e.Universe,
			Role:     e.Role,
			Terms:    terms,
			Neutral:  e.Neutral,
		}
		if degenerate := vars[i].DegenerateTerms(); len(degenerate) > 0 {
			slog.Debug("degenerate membership terms", "variable", e.Name, "labels", degenerate)
		}
	}
	reg, err := fuzzy.NewRegistry(vars...)
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}
	return reg, nil
}
