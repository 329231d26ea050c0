package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/mosaic/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a canvas snapshot.
// Generated and custom nodes are drawn as stadiums with their prompt underneath;
// every other node is a rectangle. Labels carry the template glyph.
// Confirmed edges are solid arrows, pending edges dotted, and nodes in the open
// connection are highlighted.
func GenerateMermaid(snap domain.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range snap.Nodes {
		safeID := sanitizeMermaidID(node.ID)
		opener, closer := "[", "]"
		if node.Data.Template.IsGenerated() {
			opener, closer = "([", "])"
		}

		label := escapeLabel(node.Data.Title)
		if label == "" {
			label = escapeLabel(node.ID)
		}
		if d := node.Data.Template.Decoration(); node.Data.Template != "" {
			label = d.Glyph + " " + label
		}
		if node.Data.Prompt != "" {
			label += " <br/> <i>" + escapeLabel(truncate(node.Data.Prompt, 40)) + "</i>"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for _, e := range snap.Edges {
		arrow := "-->"
		if e.Pending() {
			arrow = "-. pending .->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target)))
	}

	sb.WriteString("\n    %% Template Styles\n")
	styled := make(map[domain.TemplateKind]bool)
	for _, node := range snap.Nodes {
		kind := node.Data.Template.Kind()
		if !styled[kind] {
			styled[kind] = true
			sb.WriteString(fmt.Sprintf("    classDef %s stroke:%s,stroke-width:2px;\n", className(kind), node.Data.Template.Decoration().Color))
		}
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(node.ID), className(kind)))
	}

	if snap.Connection != nil {
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef connecting fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s,%s connecting;\n",
			sanitizeMermaidID(snap.Connection.Source), sanitizeMermaidID(snap.Connection.Target)))
	}

	return sb.String()
}

func className(k domain.TemplateKind) string {
	return fmt.Sprintf("tpl%d", int(k))
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\"", "'"), "\n", " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
