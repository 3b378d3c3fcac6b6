// Package main provides CMA-ES tuning of the controller genome.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pthm-cable/fuzzship/genome"
)

// GenomeVector maps between the optimizer's free vector and a genome laid
// out by a schema. Genes are already fractions, so no normalisation is
// needed; the optimizer may step outside [0,1] and is clamped back.
type GenomeVector struct {
	Schema *genome.Schema
	names  []string
}

// NewGenomeVector names every gene of s after its variable.
func NewGenomeVector(s *genome.Schema) *GenomeVector {
	names := make([]string, 0, s.Len())
	for _, e := range s.Entries {
		for i := 0; i < e.Length; i++ {
			names = append(names, fmt.Sprintf("%s_%d", e.Name, i))
		}
	}
	return &GenomeVector{Schema: s, names: names}
}

// Dim returns the number of genes.
func (gv *GenomeVector) Dim() int {
	return gv.Schema.Len()
}

// Names returns one name per gene, in genome order.
func (gv *GenomeVector) Names() []string {
	return gv.names
}

// Genome clamps x into a valid genome.
func (gv *GenomeVector) Genome(x []float64) genome.Genome {
	return genome.Genome(x).Clamp()
}

// Format renders genes as a compact semicolon separated list for CSV.
func (gv *GenomeVector) Format(g genome.Genome) string {
	parts := make([]string, len(g))
	for i, v := range g {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	return strings.Join(parts, ";")
}
