package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/mosaic/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// It falls back to the raw markdown when no renderer can be built.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}

// NodeMarkdown describes a node the way the details panel shows it.
func NodeMarkdown(node domain.Node) string {
	var sb strings.Builder
	d := node.Data.Template.Decoration()

	title := node.Data.Title
	if title == "" {
		title = node.ID
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| **ID** | `%s` |\n", node.ID)
	template := string(node.Data.Template)
	if template == "" {
		template = "none"
	}
	fmt.Fprintf(&sb, "| **Template** | %s %s |\n", d.Glyph, template)
	fmt.Fprintf(&sb, "| **Size** | %d × %d |\n", node.Data.Width, node.Data.Height)
	fmt.Fprintf(&sb, "| **Position** | (%.0f, %.0f) |\n", node.Position.X, node.Position.Y)
	if node.Data.ImageURL != "" && !strings.HasPrefix(node.Data.ImageURL, "data:") {
		fmt.Fprintf(&sb, "| **Image** | %s |\n", node.Data.ImageURL)
	}

	if node.Data.Template.IsGenerated() && node.Data.Prompt != "" {
		fmt.Fprintf(&sb, "\n## Prompt\n\n> %s\n", strings.ReplaceAll(node.Data.Prompt, "\n", "\n> "))
	}
	return sb.String()
}
