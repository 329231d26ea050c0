package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/mosaic/pkg/domain"
)

func TestNodeMarkdown(t *testing.T) {
	md := NodeMarkdown(domain.Node{
		ID:       "generated-1",
		Position: domain.Position{X: 425, Y: 150},
		Data: domain.NodeData{
			Title:    "Generated Fusion",
			ImageURL: "https://img.test/x.png",
			Template: domain.TemplateGenerated,
			Width:    380,
			Height:   320,
			Prompt:   "merge styles",
		},
	})

	assert.Contains(t, md, "# Generated Fusion")
	assert.Contains(t, md, "| **Template** | * Generated |")
	assert.Contains(t, md, "380 × 320")
	assert.Contains(t, md, "> merge styles")
}

func TestNodeMarkdown_HidesPromptForStyles(t *testing.T) {
	md := NodeMarkdown(domain.DefaultNodes()[0])
	assert.NotContains(t, md, "Prompt")
	assert.Contains(t, md, "Minecraft Castle")
}

func TestRenderer(t *testing.T) {
	out, err := NewRenderer()("# Hello")
	assert.NoError(t, err)
	assert.Contains(t, out, "Hello")
}

func TestEdgeLineAndBanner(t *testing.T) {
	assert.Contains(t, EdgeLine(domain.NewPendingEdge("1", "2")), "(pending)")
	assert.Equal(t, "1 → 2", EdgeLine(domain.NewConfirmedEdge("1", "2")))

	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0")
	assert.Contains(t, buf.String(), "v0.1.0")
}
