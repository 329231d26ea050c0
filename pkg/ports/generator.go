package ports

import (
	"context"

	"github.com/aretw0/mosaic/pkg/domain"
)

// Generator is the external image generation service.
// Implementations may block for a long time and must honor ctx cancellation.
type Generator interface {
	// Generate produces a new image from the source nodes and the user's instructions.
	// sources is empty for a direct generation.
	Generate(ctx context.Context, sources []domain.Node, instructions string) (domain.GeneratedImage, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, sources []domain.Node, instructions string) (domain.GeneratedImage, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, sources []domain.Node, instructions string) (domain.GeneratedImage, error) {
	return f(ctx, sources, instructions)
}
