package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mosaic/pkg/adapters/file"
	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunCanvasStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_ViewportContract(t *testing.T) {
	ports.RunViewportStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "main", &domain.SerializedGraph{Nodes: domain.DefaultNodes()}))
	require.NoError(t, store.SaveViewport(ctx, "main", domain.DefaultViewport()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"canvas-nodes-main.json", "canvas-viewport-main.json"}, names, "no temp files left behind")

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, ids)
}

func TestFileStore_ByteIdenticalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()
	path := filepath.Join(dir, "canvas-nodes-main.json")

	require.NoError(t, store.Save(ctx, "main", &domain.SerializedGraph{Nodes: domain.DefaultNodes()}))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "main")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "main", loaded))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestFileStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canvas-nodes-bad.json"), []byte("{not json"), 0644))

	_, err := file.New(dir).Load(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrCorruptCanvas)
}
