/*
Package mosaic is a canvas engine that composes image nodes into a single connected graph.

Users place image nodes, draw connections between them, and confirm or cancel each
connection before it becomes permanent. A confirmed connection is handed to an
external generator together with the user's instructions; the generated image is
added as a new node and the connection becomes a confirmed edge.

# Concept

The canvas keeps one invariant: once any edge exists, every new edge must touch the
existing group. Connections move through three phases:

	Idle ──Connect──▶ Pending ──Confirm──▶ Confirming ──Submit──▶ (generating) ──▶ Idle
	                     │                     │
	                     └───────Cancel────────┴──▶ Idle

Node lists are persisted after every change through a ports.CanvasStore (memory,
file or redis). Edges are session-scoped and never persisted.

# Usage

	canvas, err := mosaic.Open(ctx, "main",
		mosaic.WithStore(file.New(".mosaic/canvases")),
		mosaic.WithGenerator(placeholder.New()),
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := canvas.Connect(ctx, "1", "2"); err != nil {
		log.Println("rejected:", err)
	}
	_ = canvas.Confirm(ctx)
	node, err := canvas.Submit(ctx, "merge styles")

Presentation layers read Canvas.Snapshot or subscribe with Canvas.Watch.
*/
package mosaic
