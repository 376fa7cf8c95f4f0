package types

import (
	"sort"
	"strings"
)

// Reserved context keys. Everything else in a context mapping is carried
// but not interpreted by the engine.
const (
	ContextKeyDependencies = "dependencies"
	ContextKeyConstraints  = "constraints"
	ContextKeyLimits       = "limits"
)

// Constraint is a declared restriction evaluated against both states.
type Constraint struct {
	Name        string
	Description string
	// Requires names a state key that must be present for the constraint
	// to be satisfiable. Empty when the constraint is free-standing.
	Requires string
	// Immutable constraints cannot be relaxed; gaps referencing them are
	// classified UNFILLABLE.
	Immutable bool
}

// Limit declares a boundary for a state key: a numeric edge, an
// enumeration of permitted values, or both.
type Limit struct {
	Name string
	Max  *float64
	Enum []string
}

// Context holds the auxiliary declarations for a mapping run: the
// dependency graph (name -> required-by-whom), the constraint set, and
// declared boundaries. It is read-only for the duration of a run.
type Context struct {
	// Dependencies maps a dependency name to the key or dependency that
	// requires it.
	Dependencies map[string]string
	Constraints  map[string]Constraint
	Limits       map[string]Limit
}

// ParseContext extracts the reserved sub-mappings from a raw context state.
// Unrecognized shapes inside the reserved keys are skipped rather than
// rejected; discovery surfaces them as low-certainty information gaps.
func ParseContext(raw State) Context {
	ctx := Context{
		Dependencies: map[string]string{},
		Constraints:  map[string]Constraint{},
		Limits:       map[string]Limit{},
	}
	if raw == nil {
		return ctx
	}

	if deps, ok := raw[ContextKeyDependencies]; ok && deps.IsMap() {
		for name, v := range deps.Map() {
			if v.Kind() == KindString {
				ctx.Dependencies[name] = v.Str()
			}
		}
	}

	if cons, ok := raw[ContextKeyConstraints]; ok && cons.IsMap() {
		for name, v := range cons.Map() {
			c := Constraint{Name: name}
			switch v.Kind() {
			case KindString:
				c.Description = v.Str()
			case KindMap:
				m := v.Map()
				if d, ok := m["description"]; ok && d.Kind() == KindString {
					c.Description = d.Str()
				}
				if r, ok := m["requires"]; ok && r.Kind() == KindString {
					c.Requires = r.Str()
				}
				if im, ok := m["immutable"]; ok && im.Kind() == KindBool {
					c.Immutable = im.Bool()
				}
			default:
				continue
			}
			// A description carrying the marker word declares the
			// constraint immutable, whichever form it was written in.
			if !c.Immutable && strings.Contains(strings.ToLower(c.Description), "immutable") {
				c.Immutable = true
			}
			ctx.Constraints[name] = c
		}
	}

	if lims, ok := raw[ContextKeyLimits]; ok && lims.IsMap() {
		for name, v := range lims.Map() {
			l := Limit{Name: name}
			switch v.Kind() {
			case KindNumber:
				max := v.Num()
				l.Max = &max
			case KindList:
				for _, e := range v.List() {
					if e.Kind() == KindString {
						l.Enum = append(l.Enum, e.Str())
					}
				}
			case KindMap:
				m := v.Map()
				if mx, ok := m["max"]; ok && mx.Kind() == KindNumber {
					max := mx.Num()
					l.Max = &max
				}
				if en, ok := m["enum"]; ok && en.Kind() == KindList {
					for _, e := range en.List() {
						if e.Kind() == KindString {
							l.Enum = append(l.Enum, e.Str())
						}
					}
				}
			default:
				continue
			}
			ctx.Limits[name] = l
		}
	}

	return ctx
}

// ConstraintNames returns constraint names in sorted order for
// deterministic iteration.
func (c Context) ConstraintNames() []string {
	names := make([]string, 0, len(c.Constraints))
	for n := range c.Constraints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DependencyNames returns dependency names in sorted order.
func (c Context) DependencyNames() []string {
	names := make([]string, 0, len(c.Dependencies))
	for n := range c.Dependencies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LimitNames returns limit names in sorted order.
func (c Context) LimitNames() []string {
	names := make([]string, 0, len(c.Limits))
	for n := range c.Limits {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
