package discovery

import (
	"fmt"
	"sync"
)

// Registry manages strategy registration and resolution. Registration
// order is preserved: it defines the deterministic candidate ordering the
// orchestrator guarantees.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	order      []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// NewDefaultRegistry creates a registry with the five built-in strategies.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []Strategy{
		&ContrastiveAnalysis{},
		&DependencyWalk{},
		&ConstraintPropagation{},
		&CounterfactualExploration{},
		&BoundaryProbing{},
	} {
		// Built-in names are unique; ignore the duplicate error.
		_ = r.Register(s)
	}
	return r
}

// Register adds a strategy to the registry.
func (r *Registry) Register(s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("strategy %q already registered", name)
	}
	r.strategies[name] = s
	r.order = append(r.order, name)
	return nil
}

// Get returns a registered strategy by name.
func (r *Registry) Get(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	return s, ok
}

// List returns all registered strategy names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Resolve returns the strategies for the given names, preserving
// registration order rather than request order.
func (r *Registry) Resolve(names []string) ([]Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requested := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.strategies[n]; !ok {
			return nil, fmt.Errorf("unknown strategy %q", n)
		}
		requested[n] = true
	}

	var out []Strategy
	for _, n := range r.order {
		if requested[n] {
			out = append(out, r.strategies[n])
		}
	}
	return out, nil
}
