package domain

import (
	"reflect"
)

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// CanvasID is always present to identify the target.
	CanvasID string `json:"canvas_id"`

	Phase *Phase `json:"phase,omitempty"`

	// Connection is set when the interactive slot now holds a different pair.
	// ConnectionCleared is set when the slot was emptied.
	Connection        *Connection `json:"connection,omitempty"`
	ConnectionCleared bool        `json:"connection_cleared,omitempty"`

	// NodesUpserted contains added nodes and nodes whose fields changed (moves).
	NodesUpserted []Node   `json:"nodes_upserted,omitempty"`
	NodesRemoved  []string `json:"nodes_removed,omitempty"`

	EdgesAdded   []Edge   `json:"edges_added,omitempty"`
	EdgesRemoved []string `json:"edges_removed,omitempty"`

	// Generating is the full in-flight list when it changed.
	Generating *[]Connection `json:"generating,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}
	if oldSnap == nil {
		oldSnap = &Snapshot{Phase: ""}
	}

	diff := &SnapshotDiff{CanvasID: newSnap.CanvasID}

	if oldSnap.Phase != newSnap.Phase {
		p := newSnap.Phase
		diff.Phase = &p
	}

	switch {
	case newSnap.Connection == nil && oldSnap.Connection != nil:
		diff.ConnectionCleared = true
	case newSnap.Connection != nil && (oldSnap.Connection == nil || *oldSnap.Connection != *newSnap.Connection):
		c := *newSnap.Connection
		diff.Connection = &c
	}

	diff.NodesUpserted, diff.NodesRemoved = diffNodes(oldSnap.Nodes, newSnap.Nodes)
	diff.EdgesAdded, diff.EdgesRemoved = diffEdges(oldSnap.Edges, newSnap.Edges)

	if !reflect.DeepEqual(normalize(oldSnap.Generating), normalize(newSnap.Generating)) {
		g := append([]Connection{}, newSnap.Generating...)
		diff.Generating = &g
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffNodes(old, new []Node) ([]Node, []string) {
	before := make(map[string]Node, len(old))
	for _, n := range old {
		before[n.ID] = n
	}

	var upserted []Node
	seen := make(map[string]bool, len(new))
	for _, n := range new {
		seen[n.ID] = true
		if prev, ok := before[n.ID]; !ok || prev != n {
			upserted = append(upserted, n)
		}
	}

	var removed []string
	for _, n := range old {
		if !seen[n.ID] {
			removed = append(removed, n.ID)
		}
	}
	return upserted, removed
}

// diffEdges treats edges as immutable: a status change shows up as remove + add
// because the id changes with the status.
func diffEdges(old, new []Edge) ([]Edge, []string) {
	before := make(map[string]bool, len(old))
	for _, e := range old {
		before[e.ID] = true
	}

	var added []Edge
	seen := make(map[string]bool, len(new))
	for _, e := range new {
		seen[e.ID] = true
		if !before[e.ID] {
			added = append(added, e)
		}
	}

	var removed []string
	for _, e := range old {
		if !seen[e.ID] {
			removed = append(removed, e.ID)
		}
	}
	return added, removed
}

func normalize(c []Connection) []Connection {
	if len(c) == 0 {
		return nil
	}
	return c
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Phase == nil &&
		d.Connection == nil &&
		!d.ConnectionCleared &&
		len(d.NodesUpserted) == 0 &&
		len(d.NodesRemoved) == 0 &&
		len(d.EdgesAdded) == 0 &&
		len(d.EdgesRemoved) == 0 &&
		d.Generating == nil
}
