package fuzzy

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Condition is the antecedent of a rule: a tree of membership tests joined by
// And (minimum) and Or (maximum).
type Condition interface {
	// strength returns the firing strength given per-variable label degrees.
	strength(degrees [][]float64) float64
	// visit calls fn for every membership test in the tree.
	visit(fn func(v VarID, l Label))
	describe(r *Registry) string
}

type isClause struct {
	v VarID
	l Label
}

// Is tests "variable v is label l".
func Is(v VarID, l Label) Condition {
	return isClause{v: v, l: l}
}

func (c isClause) strength(degrees [][]float64) float64 {
	return degrees[c.v][c.l]
}

func (c isClause) visit(fn func(VarID, Label)) {
	fn(c.v, c.l)
}

func (c isClause) describe(r *Registry) string {
	v := r.Var(c.v)
	if v == nil {
		return fmt.Sprintf("var(%d) is label(%d)", c.v, c.l)
	}
	return v.Name + " is " + v.LabelName(c.l)
}

type conjunction []Condition

// And joins antecedents; its strength is the minimum of its parts.
func And(parts ...Condition) Condition {
	return conjunction(parts)
}

func (c conjunction) strength(degrees [][]float64) float64 {
	s := 1.0
	for _, p := range c {
		s = math.Min(s, p.strength(degrees))
	}
	return s
}

func (c conjunction) visit(fn func(VarID, Label)) {
	for _, p := range c {
		p.visit(fn)
	}
}

func (c conjunction) describe(r *Registry) string {
	return joinDescriptions(r, c, " AND ")
}

type disjunction []Condition

// Or joins antecedents; its strength is the maximum of its parts.
func Or(parts ...Condition) Condition {
	return disjunction(parts)
}

func (d disjunction) strength(degrees [][]float64) float64 {
	s := 0.0
	for _, p := range d {
		s = math.Max(s, p.strength(degrees))
	}
	return s
}

func (d disjunction) visit(fn func(VarID, Label)) {
	for _, p := range d {
		p.visit(fn)
	}
}

func (d disjunction) describe(r *Registry) string {
	return joinDescriptions(r, d, " OR ")
}

func joinDescriptions(r *Registry, parts []Condition, sep string) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = p.describe(r)
	}
	return "(" + strings.Join(s, sep) + ")"
}

// Assignment is one consequent of a rule: "variable is label".
type Assignment struct {
	Var   VarID
	Label Label
}

// Set builds an Assignment.
func Set(v VarID, l Label) Assignment {
	return Assignment{Var: v, Label: l}
}

// Rule is an immutable if-then statement.
type Rule struct {
	Name string
	If   Condition
	Then []Assignment
}

// RuleBase is a validated, ordered catalog of rules over one registry.
type RuleBase struct {
	reg     *Registry
	rules   []Rule
	inputs  []VarID // Antecedents referenced by at least one rule, ascending
	outputs []VarID // Consequents assigned by at least one rule, ascending
}

// NewRuleBase validates every rule against reg.
func NewRuleBase(reg *Registry, rules ...Rule) (*RuleBase, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("rule base is empty")
	}
	inputs := make(map[VarID]bool)
	outputs := make(map[VarID]bool)
	for i, rule := range rules {
		if rule.If == nil {
			return nil, fmt.Errorf("rule %d (%s): missing antecedent", i, rule.Name)
		}
		if len(rule.Then) == 0 {
			return nil, fmt.Errorf("rule %d (%s): missing consequent", i, rule.Name)
		}
		var clauseErr error
		rule.If.visit(func(id VarID, l Label) {
			if clauseErr != nil {
				return
			}
			clauseErr = checkReference(reg, id, l, Antecedent)
			inputs[id] = true
		})
		if clauseErr != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rule.Name, clauseErr)
		}
		for _, a := range rule.Then {
			if err := checkReference(reg, a.Var, a.Label, Consequent); err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i, rule.Name, err)
			}
			outputs[a.Var] = true
		}
	}
	return &RuleBase{
		reg:     reg,
		rules:   append([]Rule(nil), rules...),
		inputs:  sortedIDs(inputs),
		outputs: sortedIDs(outputs),
	}, nil
}

func checkReference(reg *Registry, id VarID, l Label, role Role) error {
	v := reg.Var(id)
	if v == nil {
		return fmt.Errorf("unknown variable id %d", id)
	}
	if v.Role != role {
		return fmt.Errorf("variable %s is a %s, used as %s", v.Name, v.Role, role)
	}
	if int(l) >= len(v.Terms) {
		return fmt.Errorf("variable %s has no label %d", v.Name, l)
	}
	return nil
}

func sortedIDs(set map[VarID]bool) []VarID {
	ids := make([]VarID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of rules.
func (rb *RuleBase) Len() int {
	return len(rb.rules)
}

// Registry returns the registry the rules were validated against.
func (rb *RuleBase) Registry() *Registry {
	return rb.reg
}

// Inputs returns the antecedent variables the rules read.
func (rb *RuleBase) Inputs() []VarID {
	return append([]VarID(nil), rb.inputs...)
}

// Outputs returns the consequent variables the rules assign.
func (rb *RuleBase) Outputs() []VarID {
	return append([]VarID(nil), rb.outputs...)
}

// Describe renders rule i as text, e.g. "IF (a is S AND b is Z) THEN c is PL".
func (rb *RuleBase) Describe(i int) string {
	rule := rb.rules[i]
	then := make([]string, len(rule.Then))
	for j, a := range rule.Then {
		v := rb.reg.Var(a.Var)
		then[j] = v.Name + " is " + v.LabelName(a.Label)
	}
	return "IF " + rule.If.describe(rb.reg) + " THEN " + strings.Join(then, ", ")
}
