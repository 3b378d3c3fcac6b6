package fuzzy

import "fmt"

// Registry holds every linguistic variable of a controller, indexed by VarID.
// It is read-only once built.
type Registry struct {
	vars []*Variable
}

// NewRegistry validates vars and indexes them by ID. IDs must be dense,
// starting at zero, and names unique.
func NewRegistry(vars ...Variable) (*Registry, error) {
	r := &Registry{vars: make([]*Variable, len(vars))}
	names := make(map[string]VarID, len(vars))
	for i := range vars {
		v := vars[i]
		if int(v.ID) >= len(vars) {
			return nil, fmt.Errorf("variable %s: id %d out of range for %d variables", v.Name, v.ID, len(vars))
		}
		if r.vars[v.ID] != nil {
			return nil, fmt.Errorf("variable %s: id %d already used by %s", v.Name, v.ID, r.vars[v.ID].Name)
		}
		if prev, ok := names[v.Name]; ok {
			return nil, fmt.Errorf("variable name %q used by ids %d and %d", v.Name, prev, v.ID)
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		names[v.Name] = v.ID
		r.vars[v.ID] = &v
	}
	return r, nil
}

// Len returns the number of registered variables.
func (r *Registry) Len() int {
	return len(r.vars)
}

// Var returns the variable with the given ID, or nil.
func (r *Registry) Var(id VarID) *Variable {
	if int(id) >= len(r.vars) {
		return nil
	}
	return r.vars[id]
}

// ByName returns the variable with the given name.
func (r *Registry) ByName(name string) (*Variable, bool) {
	for _, v := range r.vars {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Each calls fn for every variable in ID order.
func (r *Registry) Each(fn func(v *Variable)) {
	for _, v := range r.vars {
		fn(v)
	}
}
