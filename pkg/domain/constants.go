package domain

// Id prefixes for nodes created at runtime.
const (
	PrefixGenerated = "generated-"
	PrefixDirect    = "direct-"
	PrefixNode      = "node-"
)

// Storage key prefixes, matching the canvas page's localStorage layout.
const (
	KeyNodesPrefix    = "canvas-nodes-"
	KeyViewportPrefix = "canvas-viewport-"
)

// NodesKey derives the persistence key for a canvas node list.
func NodesKey(canvasID string) string {
	return KeyNodesPrefix + canvasID
}

// ViewportKey derives the persistence key for a canvas viewport.
func ViewportKey(canvasID string) string {
	return KeyViewportPrefix + canvasID
}

// Suggestions are quick instruction presets offered while collecting a prompt.
var Suggestions = []string{
	"Combine both images into a single scene",
	"Create a character that fits both art styles",
	"Generate a bridge connecting these environments",
	"Merge the color palettes of both images",
}
