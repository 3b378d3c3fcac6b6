package fuzzy

import "fmt"

// VarID is the interned index of a linguistic variable within a Registry.
type VarID uint8

// Label is the index of a term within its variable, ordered low to high.
type Label uint8

// Role distinguishes inputs from outputs.
type Role uint8

const (
	Antecedent Role = iota
	Consequent
)

func (r Role) String() string {
	if r == Consequent {
		return "consequent"
	}
	return "antecedent"
}

// Variable is a linguistic variable: a universe partitioned into labelled terms.
type Variable struct {
	ID       VarID
	Name     string
	Universe Universe
	Role     Role
	Terms    []MembershipFunction

	// Neutral is the crisp value a consequent reports when no rule fired.
	Neutral float64
}

// Validate checks label uniqueness, term shapes and apex ordering.
func (v *Variable) Validate() error {
	if err := v.Universe.Validate(); err != nil {
		return fmt.Errorf("variable %s: %w", v.Name, err)
	}
	if len(v.Terms) == 0 {
		return fmt.Errorf("variable %s: no terms", v.Name)
	}
	if len(v.Terms) > 255 {
		return fmt.Errorf("variable %s: %d terms exceeds label range", v.Name, len(v.Terms))
	}
	seen := make(map[string]bool, len(v.Terms))
	for i, t := range v.Terms {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
		if seen[t.Label] {
			return fmt.Errorf("variable %s: duplicate label %q", v.Name, t.Label)
		}
		seen[t.Label] = true
		if i > 0 && t.Apex() < v.Terms[i-1].Apex() {
			return fmt.Errorf("variable %s: term %q apex %v below %q apex %v",
				v.Name, t.Label, t.Apex(), v.Terms[i-1].Label, v.Terms[i-1].Apex())
		}
	}
	if v.Role == Consequent && (v.Neutral < v.Universe.Min || v.Neutral > v.Universe.Max) {
		return fmt.Errorf("variable %s: neutral %v outside universe", v.Name, v.Neutral)
	}
	return nil
}

// Term returns the membership function for label l.
func (v *Variable) Term(l Label) MembershipFunction {
	return v.Terms[l]
}

// LabelName returns the human-readable name of label l.
func (v *Variable) LabelName(l Label) string {
	if int(l) >= len(v.Terms) {
		return fmt.Sprintf("label(%d)", l)
	}
	return v.Terms[l].Label
}

// Lookup returns the label with the given name.
func (v *Variable) Lookup(name string) (Label, bool) {
	for i, t := range v.Terms {
		if t.Label == name {
			return Label(i), true
		}
	}
	return 0, false
}

// Fuzzify returns the degree of x in every term, after clamping x into the
// universe. Shoulders therefore stay saturated beyond the bounds.
func (v *Variable) Fuzzify(x float64) []float64 {
	x = v.Universe.Clamp(x)
	out := make([]float64, len(v.Terms))
	for i, t := range v.Terms {
		out[i] = t.Degree(x)
	}
	return out
}

// DegenerateTerms lists the labels whose support has collapsed.
func (v *Variable) DegenerateTerms() []string {
	var out []string
	for _, t := range v.Terms {
		if t.Degenerate() {
			out = append(out, t.Label)
		}
	}
	return out
}
