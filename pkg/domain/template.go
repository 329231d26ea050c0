package domain

import "strings"

// Template is the style label stored on a node, e.g. "Minecraft".
// The raw label is persisted as-is; use Kind for behavior.
type Template string

// Well-known template labels.
const (
	TemplateMinecraft Template = "Minecraft"
	TemplateCartoon   Template = "Cartoon"
	TemplateAnime     Template = "Anime"
	TemplateRealistic Template = "Realistic"
	TemplateAbstract  Template = "Abstract"
	TemplateGenerated Template = "Generated"
	TemplateCustom    Template = "Custom"
)

// TemplateKind enumerates the template styles the canvas knows about.
type TemplateKind int

const (
	KindUnknown TemplateKind = iota
	KindMinecraft
	KindCartoon
	KindAnime
	KindRealistic
	KindAbstract
	KindGenerated
	KindCustom
)

var templateKinds = map[string]TemplateKind{
	"minecraft": KindMinecraft,
	"cartoon":   KindCartoon,
	"anime":     KindAnime,
	"realistic": KindRealistic,
	"abstract":  KindAbstract,
	"generated": KindGenerated,
	"custom":    KindCustom,
}

// Kind resolves the label case-insensitively.
func (t Template) Kind() TemplateKind {
	if k, ok := templateKinds[strings.ToLower(strings.TrimSpace(string(t)))]; ok {
		return k
	}
	return KindUnknown
}

// Decoration is the presentation hint for a template kind.
type Decoration struct {
	Glyph string // short badge text
	Color string // hex color
}

var decorations = map[TemplateKind]Decoration{
	KindUnknown:   {Glyph: "?", Color: "#9ca3af"},
	KindMinecraft: {Glyph: "M", Color: "#22c55e"},
	KindCartoon:   {Glyph: "C", Color: "#a855f7"},
	KindAnime:     {Glyph: "A", Color: "#ec4899"},
	KindRealistic: {Glyph: "R", Color: "#3b82f6"},
	KindAbstract:  {Glyph: "~", Color: "#eab308"},
	KindGenerated: {Glyph: "*", Color: "#f97316"},
	KindCustom:    {Glyph: "+", Color: "#14b8a6"},
}

// Decoration returns the badge used to render nodes of this template.
func (t Template) Decoration() Decoration {
	return decorations[t.Kind()]
}

// IsGenerated reports whether nodes of this template carry a prompt worth showing.
func (t Template) IsGenerated() bool {
	k := t.Kind()
	return k == KindGenerated || k == KindCustom
}
