package placeholder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	img, err := New().Generate(context.Background(), nil, "anything")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, img.Title)
	assert.Equal(t, 380, img.Width)
}

func TestGenerate_Cancelled(t *testing.T) {
	g := New()
	g.Delay = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, nil, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
