package graph

import (
	"fmt"

	"github.com/aretw0/mosaic/pkg/domain"
)

// state is the mutable data behind a Store or a Tx.
// It is not safe for concurrent use on its own.
type state struct {
	nodes []domain.Node
	edges []domain.Edge
}

func (s *state) clone() *state {
	return &state{
		nodes: append([]domain.Node(nil), s.nodes...),
		edges: append([]domain.Edge(nil), s.edges...),
	}
}

func (s *state) nodeIndex(id string) int {
	for i, n := range s.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *state) edgeIndex(id string) int {
	for i, e := range s.edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *state) pairIndex(source, target string) int {
	for i, e := range s.edges {
		if e.Source == source && e.Target == target {
			return i
		}
	}
	return -1
}

func (s *state) addNode(node domain.Node) error {
	if s.nodeIndex(node.ID) >= 0 {
		return fmt.Errorf("%w: %s", domain.ErrNodeExists, node.ID)
	}
	s.nodes = append(s.nodes, node)
	return nil
}

// addEdge reports whether an existing edge with the same id was replaced.
func (s *state) addEdge(edge domain.Edge) (bool, error) {
	if s.nodeIndex(edge.Source) < 0 {
		return false, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, edge.Source)
	}
	if s.nodeIndex(edge.Target) < 0 {
		return false, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, edge.Target)
	}
	if i := s.edgeIndex(edge.ID); i >= 0 {
		s.edges[i] = edge
		return true, nil
	}
	if i := s.pairIndex(edge.Source, edge.Target); i >= 0 {
		return false, fmt.Errorf("%w: %s -> %s (%s)", domain.ErrDuplicateEdge, edge.Source, edge.Target, s.edges[i].ID)
	}
	s.edges = append(s.edges, edge)
	return false, nil
}

func (s *state) removeEdge(id string) bool {
	i := s.edgeIndex(id)
	if i < 0 {
		return false
	}
	s.edges = append(s.edges[:i], s.edges[i+1:]...)
	return true
}

func (s *state) promoteEdge(pendingID string, confirmed domain.Edge) error {
	i := s.edgeIndex(pendingID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, pendingID)
	}
	pending := s.edges[i]
	if pending.Source != confirmed.Source || pending.Target != confirmed.Target {
		return fmt.Errorf("promote %s: endpoints differ from %s", pendingID, confirmed.ID)
	}
	if j := s.edgeIndex(confirmed.ID); j >= 0 && j != i {
		return fmt.Errorf("%w: %s already held by %s -> %s", domain.ErrDuplicateEdge, confirmed.ID, s.edges[j].Source, s.edges[j].Target)
	}
	// In-place replacement keeps exactly one edge for the pair at every point.
	s.edges[i] = confirmed
	return nil
}

func (s *state) moveNode(id string, pos domain.Position) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	s.nodes[i].Position = pos
	return nil
}

// removeNode drops the node and every edge touching it.
func (s *state) removeNode(id string) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)

	kept := s.edges[:0]
	for _, e := range s.edges {
		if !e.Touches(id) {
			kept = append(kept, e)
		}
	}
	s.edges = kept
	return nil
}
