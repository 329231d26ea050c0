package domain

// Position is a point on the canvas plane.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData holds the fields attached to a node at creation.
type NodeData struct {
	Title    string   `json:"title" yaml:"title"`
	ImageURL string   `json:"imageUrl" yaml:"image_url"`
	Template Template `json:"template" yaml:"template"`
	Width    int      `json:"width" yaml:"width"`
	Height   int      `json:"height" yaml:"height"`

	// Prompt is set on nodes produced by a generation call.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// Node represents an image placed on the canvas.
// Only Position changes after creation (drag); Data is fixed.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// Layout constants shared by the lifecycle and the presentation adapters.
const (
	// NodeWidth is the rendered width of a node card.
	NodeWidth = 220
	// AffordanceMargin separates the confirm/cancel buttons from the target node.
	AffordanceMargin = 20
)

// GeneratedImage is the result of a generation call.
type GeneratedImage struct {
	ImageURL string `json:"imageUrl" mapstructure:"imageUrl"`
	Title    string `json:"title" mapstructure:"title"`
	Width    int    `json:"width" mapstructure:"width"`
	Height   int    `json:"height" mapstructure:"height"`
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Position) Position {
	return Position{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
