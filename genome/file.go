package genome

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a tuned genome.
type File struct {
	SchemaVersion int       `yaml:"schema_version"`
	Genes         []float64 `yaml:"genes"`
	Fitness       float64   `yaml:"fitness,omitempty"`
	RunID         string    `yaml:"run_id,omitempty"`
}

// Load reads a genome file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genome file: %w", err)
	}
	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing genome file: %w", err)
	}
	return f, nil
}

// Write writes the file as YAML.
func (f *File) Write(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling genome: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genome file: %w", err)
	}
	return nil
}

// Genome checks the file against s and returns its genes.
func (f *File) Genome(s *Schema) (Genome, error) {
	if f.SchemaVersion != s.Version {
		return nil, fmt.Errorf("genome file has schema v%d, want v%d", f.SchemaVersion, s.Version)
	}
	g := Genome(f.Genes).Clone()
	if err := s.Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}
