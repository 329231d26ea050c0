package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mosaic/pkg/adapters/placeholder"
	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/ports"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("placeholder", placeholder.New())
	r.Register("echo", ports.GeneratorFunc(func(_ context.Context, sources []domain.Node, instructions string) (domain.GeneratedImage, error) {
		return domain.GeneratedImage{Title: instructions, Width: len(sources)}, nil
	}))

	assert.Equal(t, []string{"echo", "placeholder"}, r.Names())

	img, err := r.Generate(context.Background(), "echo", domain.DefaultNodes()[:2], "hi")
	require.NoError(t, err)
	assert.Equal(t, domain.GeneratedImage{Title: "hi", Width: 2}, img)

	img, err = r.Generate(context.Background(), "placeholder", nil, "x")
	require.NoError(t, err)
	assert.Equal(t, placeholder.DefaultTitle, img.Title)

	_, err = r.Get("missing")
	assert.ErrorContains(t, err, "generator not registered: missing")
}
