package domain

// Phase is the state of the interactive connection slot.
type Phase string

const (
	PhaseIdle       Phase = "idle"       // No connection open
	PhasePending    Phase = "pending"    // Pending edge drawn, waiting for confirm/cancel
	PhaseConfirming Phase = "confirming" // Confirmed, collecting generation instructions
)

// Connection is the source/target pair of a connection in progress.
type Connection struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// PendingEdgeID returns the id of the scaffolding edge for this connection.
func (c Connection) PendingEdgeID() string {
	return EdgeID(EdgePending, c.Source, c.Target)
}

// Snapshot is the presentation-facing view of a canvas.
type Snapshot struct {
	CanvasID string `json:"canvasId"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	Phase    Phase  `json:"phase"`

	// Connection is the pair held by the interactive slot (Pending or Confirming).
	Connection *Connection `json:"connection,omitempty"`

	// Affordance is where confirm/cancel controls render, derived from the target node.
	Affordance *Position `json:"affordance,omitempty"`

	// Generating lists connections whose generation call is in flight.
	Generating []Connection `json:"generating,omitempty"`
}

// Node looks up a node by id.
func (s *Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge looks up an edge by id.
func (s *Snapshot) Edge(id string) (Edge, bool) {
	for _, e := range s.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// SerializedGraph is the persisted form of a canvas.
// Edges are session-scoped and intentionally not part of it.
type SerializedGraph struct {
	Nodes []Node `json:"nodes"`

	// Sealed holds the encrypted node list when the store is wrapped by an
	// encryption middleware. Nodes is empty in that case.
	Sealed string `json:"sealed,omitempty"`
}

// Viewport is the pan/zoom of a canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is used when no viewport was saved.
func DefaultViewport() Viewport {
	return Viewport{X: -100, Y: -50, Zoom: 0.6}
}

// DefaultNodes returns the built-in node set used for new or unreadable canvases.
func DefaultNodes() []Node {
	return []Node{
		{
			ID:       "1",
			Position: Position{X: 200, Y: 150},
			Data: NodeData{
				ImageURL: "https://www.minecraft.net/content/dam/minecraftnet/franchise/component-library/redeemheroa/Redeem-Hero_Mobile_576x324.png",
				Title:    "Minecraft Castle",
				Template: TemplateMinecraft,
				Width:    400,
				Height:   300,
			},
		},
		{
			ID:       "2",
			Position: Position{X: 650, Y: 150},
			Data: NodeData{
				ImageURL: "https://static0.moviewebimages.com/wordpress/wp-content/uploads/2024/05/35-all-time-best-cartoon-characters-ever-created-ranked.jpg",
				Title:    "Cartoon Characters",
				Template: TemplateCartoon,
				Width:    300,
				Height:   400,
			},
		},
		{
			ID:       "3",
			Position: Position{X: 200, Y: 450},
			Data: NodeData{
				ImageURL: "https://sm.ign.com/ign_ap/feature/t/the-top-25/the-top-25-greatest-anime-characters-of-all-time_ge1p.jpg",
				Title:    "Anime Characters",
				Template: TemplateAnime,
				Width:    350,
				Height:   280,
			},
		},
		{
			ID:       "4",
			Position: Position{X: 650, Y: 450},
			Data: NodeData{
				ImageURL: "https://images.stockcake.com/public/0/5/e/05edba27-2ba8-4d40-b42c-8908c8b2758b_large/child-s-pencil-portrait-stockcake.jpg",
				Title:    "Realistic Portrait",
				Template: TemplateRealistic,
				Width:    280,
				Height:   350,
			},
		},
	}
}
