package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/trestle/pkg/domain"
)

// Store implements ports.ConfigStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]map[string]any
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string]any),
	}
}

// Save stores a copy of values under profile.
func (s *Store) Save(ctx context.Context, profile string, values map[string]any) error {
	copied := copyValues(values)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[profile] = copied
	return nil
}

// Load retrieves a copy of the values stored under profile.
func (s *Store) Load(ctx context.Context, profile string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.data[profile]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return copyValues(values), nil
}

// Delete removes the profile.
func (s *Store) Delete(ctx context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, profile)
	return nil
}

// List returns the stored profiles, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data)), nil
}

// copyValues isolates stored values from the caller, lists included.
func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if list, ok := v.([]any); ok {
			v = slices.Clone(list)
		}
		out[k] = v
	}
	return out
}
