package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCanvasStoreContract runs a suite of tests to verify that a CanvasStore implementation
// adheres to the defined interface contract.
func RunCanvasStoreContract(t *testing.T, store CanvasStore) {
	ctx := context.Background()
	canvasID := "contract-test-canvas-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		graph := &domain.SerializedGraph{Nodes: domain.DefaultNodes()}
		graph.Nodes[0].Data.Prompt = "merge styles"

		err := store.Save(ctx, canvasID, graph)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, canvasID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, graph.Nodes, loaded.Nodes)
	})

	t.Run("Round Trip Is A Fixed Point", func(t *testing.T) {
		first, err := store.Load(ctx, canvasID)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, canvasID, first))

		second, err := store.Load(ctx, canvasID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		graph := &domain.SerializedGraph{Nodes: domain.DefaultNodes()[:1]}
		require.NoError(t, store.Save(ctx, canvasID, graph))

		loaded, err := store.Load(ctx, canvasID)
		require.NoError(t, err)
		assert.Len(t, loaded.Nodes, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+canvasID)
		assert.ErrorIs(t, err, domain.ErrCanvasNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, canvasID, &domain.SerializedGraph{Nodes: domain.DefaultNodes()})
		require.NoError(t, err)

		err = store.Delete(ctx, canvasID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, canvasID)
		assert.ErrorIs(t, err, domain.ErrCanvasNotFound, "Load after Delete should return ErrCanvasNotFound")

		assert.NoError(t, store.Delete(ctx, canvasID), "Delete should be idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := canvasID + "-1"
		id2 := canvasID + "-2"
		_ = store.Save(ctx, id1, &domain.SerializedGraph{Nodes: domain.DefaultNodes()})
		_ = store.Save(ctx, id2, &domain.SerializedGraph{})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		canvases, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, canvases, id1)
		assert.Contains(t, canvases, id2)
	})
}

// RunViewportStoreContract verifies a ViewportStore implementation.
func RunViewportStoreContract(t *testing.T, store ViewportStore) {
	ctx := context.Background()
	canvasID := "contract-test-viewport-" + time.Now().Format("20060102150405")

	_, err := store.LoadViewport(ctx, canvasID)
	assert.ErrorIs(t, err, domain.ErrCanvasNotFound)

	vp := domain.Viewport{X: 12.5, Y: -40, Zoom: 1.25}
	require.NoError(t, store.SaveViewport(ctx, canvasID, vp))

	loaded, err := store.LoadViewport(ctx, canvasID)
	require.NoError(t, err)
	assert.Equal(t, vp, loaded)
}
