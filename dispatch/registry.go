package dispatch

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-gateway/core"
)

// Registry maps driver names onto factories. Registration rejects
// duplicates so a misconfigured deployment fails loudly at startup
// instead of silently shadowing a driver.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]core.DriverFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]core.DriverFactory{}}
}

func (r *Registry) Register(name string, factory core.DriverFactory) error {
	if r == nil {
		return fmt.Errorf("dispatch: registry is nil")
	}
	name = normalizeDriverName(name)
	if name == "" {
		return fmt.Errorf("dispatch: driver name is required")
	}
	if factory == nil {
		return fmt.Errorf("dispatch: driver factory is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("dispatch: driver %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

func (r *Registry) Lookup(name string) (core.DriverFactory, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[normalizeDriverName(name)]
	return factory, ok
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeDriverName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
