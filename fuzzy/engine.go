package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

// ErrMissingInput is returned when a rule reads a variable that has no crisp input.
var ErrMissingInput = errors.New("missing crisp input")

// Inputs maps antecedent variables to crisp values.
type Inputs map[VarID]float64

// Output is the defuzzified value of one consequent variable.
type Output struct {
	Value float64
	Fired bool // False when no rule fired and Value is the variable's Neutral
}

// Outputs holds the result of one inference pass.
type Outputs struct {
	values    []Output
	Strengths []float64 // Firing strength per rule, in rule-base order
}

// Get returns the output for consequent id.
func (o Outputs) Get(id VarID) Output {
	if int(id) >= len(o.values) {
		return Output{}
	}
	return o.values[id]
}

// Value returns the crisp output for consequent id.
func (o Outputs) Value(id VarID) float64 {
	return o.Get(id).Value
}

// Engine runs Mamdani inference over a rule base. Everything it holds is
// computed at construction and only read afterwards; each Infer call works on
// its own evaluation scratch.
type Engine struct {
	rules *RuleBase
	grids map[VarID][]float64
	terms map[VarID][][]float64 // Sampled terms per consequent, indexed by label
}

// NewEngine precomputes the sampling grid and sampled terms of every
// consequent the rule base assigns.
func NewEngine(rb *RuleBase) *Engine {
	e := &Engine{
		rules: rb,
		grids: make(map[VarID][]float64, len(rb.outputs)),
		terms: make(map[VarID][][]float64, len(rb.outputs)),
	}
	for _, id := range rb.outputs {
		v := rb.reg.Var(id)
		grid := v.Universe.Grid()
		sampled := make([][]float64, len(v.Terms))
		for l, t := range v.Terms {
			sampled[l] = make([]float64, len(grid))
			t.sample(grid, sampled[l])
		}
		e.grids[id] = grid
		e.terms[id] = sampled
	}
	return e
}

// Rules returns the engine's rule base.
func (e *Engine) Rules() *RuleBase {
	return e.rules
}

// Infer fuzzifies in, evaluates every rule, aggregates the clipped consequent
// sets and defuzzifies each consequent by centroid.
func (e *Engine) Infer(in Inputs) (Outputs, error) {
	ev := e.newEvaluation()
	if err := ev.fuzzify(in); err != nil {
		return Outputs{}, err
	}
	ev.evaluate()
	ev.aggregate()
	return ev.defuzzify(), nil
}

// evaluation is the per-call scratch of one inference pass.
type evaluation struct {
	e          *Engine
	degrees    [][]float64 // Per variable, per label; nil for unread variables
	strengths  []float64
	aggregated map[VarID][]float64
}

func (e *Engine) newEvaluation() *evaluation {
	return &evaluation{
		e:          e,
		degrees:    make([][]float64, e.rules.reg.Len()),
		strengths:  make([]float64, len(e.rules.rules)),
		aggregated: make(map[VarID][]float64, len(e.rules.outputs)),
	}
}

func (ev *evaluation) fuzzify(in Inputs) error {
	for _, id := range ev.e.rules.inputs {
		v := ev.e.rules.reg.Var(id)
		x, ok := in[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingInput, v.Name)
		}
		if math.IsNaN(x) {
			return fmt.Errorf("%w: %s is NaN", ErrMissingInput, v.Name)
		}
		ev.degrees[id] = v.Fuzzify(x)
	}
	return nil
}

func (ev *evaluation) evaluate() {
	for i, rule := range ev.e.rules.rules {
		ev.strengths[i] = rule.If.strength(ev.degrees)
	}
}

// aggregate clips each assigned term at its rule's strength and folds the
// result into the consequent's output set by pointwise maximum.
func (ev *evaluation) aggregate() {
	for _, id := range ev.e.rules.outputs {
		ev.aggregated[id] = make([]float64, len(ev.e.grids[id]))
	}
	for i, rule := range ev.e.rules.rules {
		s := ev.strengths[i]
		if s <= 0 {
			continue
		}
		for _, a := range rule.Then {
			out := ev.aggregated[a.Var]
			for j, mu := range ev.e.terms[a.Var][a.Label] {
				if clipped := math.Min(s, mu); clipped > out[j] {
					out[j] = clipped
				}
			}
		}
	}
}

func (ev *evaluation) defuzzify() Outputs {
	reg := ev.e.rules.reg
	out := Outputs{
		values:    make([]Output, reg.Len()),
		Strengths: ev.strengths,
	}
	for _, id := range ev.e.rules.outputs {
		if value, ok := Centroid(ev.e.grids[id], ev.aggregated[id]); ok {
			out.values[id] = Output{Value: value, Fired: true}
		} else {
			out.values[id] = Output{Value: reg.Var(id).Neutral}
		}
	}
	return out
}
