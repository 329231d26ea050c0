// Package loam reads a template catalog from a directory of markdown (or JSON)
// documents and uses it to seed new canvases.
//
// Each document describes one starter node in its frontmatter:
//
//	---
//	title: Minecraft Castle
//	image_url: https://example.com/castle.png
//	template: Minecraft
//	width: 400
//	height: 300
//	x: 200
//	y: 150
//	order: 1
//	---
//	Optional notes, kept as the node prompt.
//
// The node id is the document id without its extension unless the frontmatter sets one.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/mosaic/pkg/domain"
)

// TemplateMetadata is the frontmatter of a catalog entry.
type TemplateMetadata struct {
	ID       string  `json:"id" mapstructure:"id"`
	Title    string  `json:"title" mapstructure:"title"`
	ImageURL string  `json:"image_url" mapstructure:"image_url"`
	Template string  `json:"template" mapstructure:"template"`
	Width    int     `json:"width" mapstructure:"width"`
	Height   int     `json:"height" mapstructure:"height"`
	X        float64 `json:"x" mapstructure:"x"`
	Y        float64 `json:"y" mapstructure:"y"`
	Order    int     `json:"order" mapstructure:"order"`
}

// Catalog implements ports.SeedSource over a Loam repository.
type Catalog struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New creates a Catalog from a typed repository.
func New(repo *loam.TypedRepository[TemplateMetadata]) *Catalog {
	return &Catalog{Repo: repo}
}

// Open initializes a read-only repository at dir.
func Open(dir string) (*Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open template catalog %s: %w", dir, err)
	}
	return New(loam.NewTypedRepository[TemplateMetadata](repo)), nil
}

type entry struct {
	order int
	node  domain.Node
}

// Seed returns one node per catalog entry, ordered by "order" and then id.
// Entries without an image are skipped. Two entries resolving to the same id are an error.
func (c *Catalog) Seed(ctx context.Context) ([]domain.Node, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		meta := doc.Data
		rawID := meta.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: template '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		if meta.ImageURL == "" {
			continue
		}
		title := meta.Title
		if title == "" {
			title = id
		}
		entries = append(entries, entry{
			order: meta.Order,
			node: domain.Node{
				ID:       id,
				Position: domain.Position{X: meta.X, Y: meta.Y},
				Data: domain.NodeData{
					Title:    title,
					ImageURL: meta.ImageURL,
					Template: domain.Template(meta.Template),
					Width:    meta.Width,
					Height:   meta.Height,
					Prompt:   strings.TrimSpace(doc.Content),
				},
			},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return entries[i].node.ID < entries[j].node.ID
	})

	nodes := make([]domain.Node, len(entries))
	for i, e := range entries {
		nodes[i] = e.node
	}
	return nodes, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
