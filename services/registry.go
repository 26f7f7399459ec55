package services

import (
	"fmt"
	"sort"
	"sync"

	"facet-search-service/models"
)

// Registry maps collection names to their search services.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*SearchService
}

func NewRegistry() *Registry {
	return &Registry{services: map[string]*SearchService{}}
}

func (r *Registry) Register(s *SearchService) error {
	name := s.Collection().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[name]; ok {
		return fmt.Errorf("collection %q registered twice: %w", name, models.ErrConfiguration)
	}
	r.services[name] = s
	return nil
}

func (r *Registry) Get(name string) (*SearchService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, models.ErrUnknownCollection)
	}
	return s, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
