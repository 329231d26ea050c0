package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mosaic/pkg/domain"
)

const ext = ".json"

// Store implements ports.CanvasStore and ports.ViewportStore on the local filesystem.
// Each key becomes one JSON file in BasePath, named after the storage keys
// (canvas-nodes-<id>.json, canvas-viewport-<id>.json).
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".mosaic/canvases".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".mosaic", "canvases")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.BasePath, key+ext)
}

// Save persists the node list of a canvas atomically.
func (s *Store) Save(ctx context.Context, canvasID string, graph *domain.SerializedGraph) error {
	if canvasID == "" {
		return fmt.Errorf("canvasID cannot be empty")
	}
	return s.write(domain.NodesKey(canvasID), graph.Nodes)
}

// Load reads the node list of a canvas.
// The file holds a bare JSON array of nodes.
func (s *Store) Load(ctx context.Context, canvasID string) (*domain.SerializedGraph, error) {
	if canvasID == "" {
		return nil, fmt.Errorf("canvasID cannot be empty")
	}
	var nodes []domain.Node
	if err := s.read(domain.NodesKey(canvasID), &nodes); err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []domain.Node{}
	}
	return &domain.SerializedGraph{Nodes: nodes}, nil
}

// Delete removes the canvas and viewport files.
func (s *Store) Delete(ctx context.Context, canvasID string) error {
	if canvasID == "" {
		return fmt.Errorf("canvasID cannot be empty")
	}
	for _, key := range []string{domain.NodesKey(canvasID), domain.ViewportKey(canvasID)} {
		if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

// List returns the ids of all stored canvases.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list canvases: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || !strings.HasPrefix(name, domain.KeyNodesPrefix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, domain.KeyNodesPrefix), ext))
	}
	return ids, nil
}

// SaveViewport persists the viewport of a canvas.
func (s *Store) SaveViewport(ctx context.Context, canvasID string, vp domain.Viewport) error {
	return s.write(domain.ViewportKey(canvasID), vp)
}

// LoadViewport reads the viewport of a canvas.
func (s *Store) LoadViewport(ctx context.Context, canvasID string) (domain.Viewport, error) {
	var vp domain.Viewport
	err := s.read(domain.ViewportKey(canvasID), &vp)
	return vp, err
}

func (s *Store) read(key string, v any) error {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrCanvasNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorruptCanvas, key, err)
	}
	return nil
}

// write stores v atomically: temp file in the same directory, fsync, rename.
func (s *Store) write(key string, v any) error {
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure canvas directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+key+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	dest := s.path(key)
	// os.Rename does not replace an existing file on Windows.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace %s: %w", key, err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file for %s: %w", key, err)
	}
	return nil
}
