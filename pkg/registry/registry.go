package registry

import (
	"slices"
	"sync"

	"github.com/aretw0/trestle/pkg/domain"
)

// Registry maps action names to their implementations so that declarative
// definitions (manifests, DSL) can refer to behavior by name.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]domain.Action
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]domain.Action),
	}
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn domain.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// Get looks up an action by name.
func (r *Registry) Get(name string) (domain.Action, error) {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.NotFoundError{Kind: "action", Name: name}
	}
	return fn, nil
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
