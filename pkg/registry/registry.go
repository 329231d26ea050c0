// Package registry keeps named image generators so the active one can be picked by configuration.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/ports"
)

// Registry manages the available generators.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]ports.Generator
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]ports.Generator),
	}
}

// Register adds a generator to the registry.
// If a generator with the same name exists, it is overwritten.
func (r *Registry) Register(name string, g ports.Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = g
}

// Get looks up a generator by name.
func (r *Registry) Get(name string) (ports.Generator, error) {
	r.mu.RLock()
	g, ok := r.generators[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("generator not registered: %s", name)
	}
	return g, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for n := range r.generators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Generate looks up a generator by name and runs it.
func (r *Registry) Generate(ctx context.Context, name string, sources []domain.Node, instructions string) (domain.GeneratedImage, error) {
	g, err := r.Get(name)
	if err != nil {
		return domain.GeneratedImage{}, err
	}
	return g.Generate(ctx, sources, instructions)
}
