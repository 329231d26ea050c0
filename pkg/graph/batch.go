package graph

import (
	"github.com/aretw0/mosaic/pkg/domain"
)

// Tx is a working copy of the store used inside Batch.
// Its mutations become visible only when the batch function returns nil.
type Tx struct {
	st      *state
	changed bool
}

// Node looks up a node, including nodes added earlier in the same batch.
func (tx *Tx) Node(id string) (domain.Node, bool) {
	if i := tx.st.nodeIndex(id); i >= 0 {
		return tx.st.nodes[i], true
	}
	return domain.Node{}, false
}

// Edges returns the edges as seen by the batch.
func (tx *Tx) Edges() []domain.Edge {
	return append([]domain.Edge(nil), tx.st.edges...)
}

// EdgeBetween returns the edge for the ordered pair, whatever its status.
func (tx *Tx) EdgeBetween(source, target string) (domain.Edge, bool) {
	if i := tx.st.pairIndex(source, target); i >= 0 {
		return tx.st.edges[i], true
	}
	return domain.Edge{}, false
}

// AddNode inserts node. See Store.AddNode.
func (tx *Tx) AddNode(node domain.Node) (domain.Node, error) {
	if node.ID == "" {
		node.ID = NewNodeID(domain.PrefixNode)
	}
	if err := tx.st.addNode(node); err != nil {
		return node, err
	}
	tx.changed = true
	return node, nil
}

// AddEdge inserts edge. See Store.AddEdge.
func (tx *Tx) AddEdge(edge domain.Edge) error {
	if _, err := tx.st.addEdge(edge); err != nil {
		return err
	}
	tx.changed = true
	return nil
}

// RemoveEdge deletes the edge if present.
func (tx *Tx) RemoveEdge(id string) {
	if tx.st.removeEdge(id) {
		tx.changed = true
	}
}

// PromoteEdge replaces a pending edge with its confirmed form.
func (tx *Tx) PromoteEdge(pendingID string, confirmed domain.Edge) error {
	if err := tx.st.promoteEdge(pendingID, confirmed); err != nil {
		return err
	}
	tx.changed = true
	return nil
}

// RemoveNode deletes a node and its edges. See Store.RemoveNode.
func (tx *Tx) RemoveNode(id string) error {
	if err := tx.st.removeNode(id); err != nil {
		return err
	}
	tx.changed = true
	return nil
}

// Batch runs fn against a copy of the store and applies every change at once
// if fn returns nil. Observers see a single notification for the whole batch;
// a failing batch leaves the store and observers untouched.
func (s *Store) Batch(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{st: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.changed {
		return nil
	}
	s.state = tx.st
	s.notify()
	return nil
}
