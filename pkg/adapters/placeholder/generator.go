// Package placeholder provides a Generator that returns a fixed image.
// It stands in for a real generation service in demos and tests.
package placeholder

import (
	"context"
	"time"

	"github.com/aretw0/mosaic/pkg/domain"
)

// Defaults match the stock fusion preview image.
const (
	DefaultImageURL = "https://i.insider.com/5e1f5ef6855cc22d3e1ba0a2?width=700"
	DefaultTitle    = "Generated Fusion"
	DefaultWidth    = 380
	DefaultHeight   = 320
)

// Generator returns Image after Delay.
type Generator struct {
	Image domain.GeneratedImage
	Delay time.Duration
}

// New creates a Generator with the default image and no delay.
func New() *Generator {
	return &Generator{Image: domain.GeneratedImage{
		ImageURL: DefaultImageURL,
		Title:    DefaultTitle,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
	}}
}

// Generate waits for Delay (honoring ctx) and returns Image.
func (g *Generator) Generate(ctx context.Context, _ []domain.Node, _ string) (domain.GeneratedImage, error) {
	if g.Delay > 0 {
		t := time.NewTimer(g.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return domain.GeneratedImage{}, ctx.Err()
		case <-t.C:
		}
	}
	return g.Image, nil
}
