package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mosaic/pkg/domain"
)

func setupCatalog(t *testing.T, files map[string]string) *Catalog {
	t.Helper()
	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	repo, err := loam.Init(dir)
	require.NoError(t, err, "Failed to init loam repo")
	return New(loam.NewTypedRepository[TemplateMetadata](repo))
}

func TestCatalog_Seed(t *testing.T) {
	c := setupCatalog(t, map[string]string{
		"castle.md": `---
title: Minecraft Castle
image_url: https://img.test/castle.png
template: Minecraft
width: 400
height: 300
x: 200
y: 150
order: 2
---
Blocky towers`,
		"portrait.md": `---
title: Realistic Portrait
image_url: https://img.test/portrait.png
template: Realistic
width: 280
height: 350
order: 1
---
`,
		"draft.md": `---
title: Not ready
---
`,
	})

	nodes, err := c.Seed(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "portrait", nodes[0].ID)
	assert.Equal(t, "castle", nodes[1].ID)
	assert.Equal(t, domain.Position{X: 200, Y: 150}, nodes[1].Position)
	assert.Equal(t, domain.KindMinecraft, nodes[1].Data.Template.Kind())
	assert.Equal(t, 400, nodes[1].Data.Width)
	assert.Equal(t, "Blocky towers", nodes[1].Data.Prompt)
}

func TestCatalog_Collision(t *testing.T) {
	c := setupCatalog(t, map[string]string{
		"a.md": "---\nid: same\nimage_url: x\n---\n",
		"b.md": "---\nid: same\nimage_url: y\n---\n",
	})

	_, err := c.Seed(context.Background())
	assert.ErrorContains(t, err, "collision detected")
}
