package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/mosaic/pkg/domain"
)

// Store implements ports.CanvasStore and ports.ViewportStore in memory.
// Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	canvases  map[string][]domain.Node
	viewports map[string]domain.Viewport
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		canvases:  make(map[string][]domain.Node),
		viewports: make(map[string]domain.Viewport),
	}
}

// Save copies the node list so later mutations by the caller are not visible.
func (s *Store) Save(ctx context.Context, canvasID string, graph *domain.SerializedGraph) error {
	nodes := append([]domain.Node{}, graph.Nodes...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvases[canvasID] = nodes
	return nil
}

// Load returns a copy of the stored node list.
func (s *Store) Load(ctx context.Context, canvasID string) (*domain.SerializedGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, ok := s.canvases[canvasID]
	if !ok {
		return nil, domain.ErrCanvasNotFound
	}
	return &domain.SerializedGraph{Nodes: append([]domain.Node{}, nodes...)}, nil
}

// Delete removes the canvas and its viewport.
func (s *Store) Delete(ctx context.Context, canvasID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.canvases, canvasID)
	delete(s.viewports, canvasID)
	return nil
}

// List returns stored canvas ids in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.canvases))
	for id := range s.canvases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveViewport stores the viewport of a canvas.
func (s *Store) SaveViewport(ctx context.Context, canvasID string, vp domain.Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewports[canvasID] = vp
	return nil
}

// LoadViewport returns domain.ErrCanvasNotFound when nothing was saved.
func (s *Store) LoadViewport(ctx context.Context, canvasID string) (domain.Viewport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vp, ok := s.viewports[canvasID]
	if !ok {
		return domain.Viewport{}, domain.ErrCanvasNotFound
	}
	return vp, nil
}
