package ports

import (
	"context"

	"github.com/aretw0/mosaic/pkg/domain"
)

// CanvasStore defines the interface for persisting canvas node lists.
// Edges are session-scoped and never reach the store.
type CanvasStore interface {
	// Save persists the graph for a given canvas ID, replacing any previous value.
	Save(ctx context.Context, canvasID string, graph *domain.SerializedGraph) error

	// Load retrieves the graph for a given canvas ID.
	// Returns domain.ErrCanvasNotFound if the canvas does not exist and
	// domain.ErrCorruptCanvas if the stored value cannot be decoded.
	Load(ctx context.Context, canvasID string) (*domain.SerializedGraph, error)

	// Delete removes the canvas. Deleting an unknown canvas is not an error.
	Delete(ctx context.Context, canvasID string) error

	// List returns the IDs of all stored canvases.
	List(ctx context.Context) ([]string, error)
}

// ViewportStore persists the pan/zoom of a canvas.
type ViewportStore interface {
	SaveViewport(ctx context.Context, canvasID string, vp domain.Viewport) error

	// LoadViewport returns domain.ErrCanvasNotFound when nothing was saved.
	LoadViewport(ctx context.Context, canvasID string) (domain.Viewport, error)
}

// SeedSource provides the initial node set of a canvas.
type SeedSource interface {
	Seed(ctx context.Context) ([]domain.Node, error)
}

// SeedFunc adapts a function to SeedSource.
type SeedFunc func(ctx context.Context) ([]domain.Node, error)

// Seed calls f.
func (f SeedFunc) Seed(ctx context.Context) ([]domain.Node, error) {
	return f(ctx)
}

// DefaultSeed returns the built-in node set.
var DefaultSeed SeedSource = SeedFunc(func(context.Context) ([]domain.Node, error) {
	return domain.DefaultNodes(), nil
})
