package graph

import (
	"log/slog"
	"sync"

	"github.com/aretw0/mosaic/internal/logging"
	"github.com/aretw0/mosaic/pkg/domain"
)

// Observer is notified with the full node list after every successful mutation.
// It runs while the store is locked, so it must not call back into the Store.
type Observer func(nodes []domain.Node)

// Store is the canonical collection of nodes and edges for one canvas.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	state    *state
	observer Observer
	logger   *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithObserver registers the change observer.
func WithObserver(fn Observer) Option {
	return func(s *Store) {
		s.observer = fn
	}
}

// WithLogger configures a logger for invariant violations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store seeded with nodes and no edges.
func NewStore(nodes []domain.Node, opts ...Option) *Store {
	s := &Store{
		state:  &state{nodes: append([]domain.Node(nil), nodes...)},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetObserver replaces the change observer.
func (s *Store) SetObserver(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// Reset replaces every node and drops all edges without notifying the observer.
func (s *Store) Reset(nodes []domain.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &state{nodes: append([]domain.Node(nil), nodes...)}
}

// Nodes returns a copy of the node list in insertion order.
func (s *Store) Nodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Node(nil), s.state.nodes...)
}

// Edges returns a copy of the edge list in insertion order.
func (s *Store) Edges() []domain.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Edge(nil), s.state.edges...)
}

// Node looks up a node by id.
func (s *Store) Node(id string) (domain.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.state.nodeIndex(id); i >= 0 {
		return s.state.nodes[i], true
	}
	return domain.Node{}, false
}

// EdgeBetween returns the edge for the ordered pair, whatever its status.
func (s *Store) EdgeBetween(source, target string) (domain.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.state.pairIndex(source, target); i >= 0 {
		return s.state.edges[i], true
	}
	return domain.Edge{}, false
}

// AddNode inserts node. An empty id is replaced by a fresh one.
// Existing ids are never overwritten.
func (s *Store) AddNode(node domain.Node) (domain.Node, error) {
	if node.ID == "" {
		node.ID = NewNodeID(domain.PrefixNode)
	}
	err := s.mutate(func(st *state) error {
		return st.addNode(node)
	})
	return node, err
}

// AddEdge inserts edge. Both endpoints must exist and the ordered pair must be free.
// Re-adding an existing id replaces the previous edge.
func (s *Store) AddEdge(edge domain.Edge) error {
	return s.mutate(func(st *state) error {
		replaced, err := st.addEdge(edge)
		if replaced {
			s.logger.Error("edge id collision, latest write wins", "edge", edge.ID)
		}
		return err
	})
}

// RemoveEdge deletes the edge if present. Removing an unknown id is a no-op.
func (s *Store) RemoveEdge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.removeEdge(id) {
		s.notify()
	}
}

// PromoteEdge replaces the pending edge with confirmed in a single step.
func (s *Store) PromoteEdge(pendingID string, confirmed domain.Edge) error {
	return s.mutate(func(st *state) error {
		return st.promoteEdge(pendingID, confirmed)
	})
}

// MoveNode updates the position of a node.
func (s *Store) MoveNode(id string, pos domain.Position) error {
	return s.mutate(func(st *state) error {
		return st.moveNode(id, pos)
	})
}

// RemoveNode deletes a node and every edge touching it.
func (s *Store) RemoveNode(id string) error {
	return s.mutate(func(st *state) error {
		return st.removeNode(id)
	})
}

// mutate applies fn to the live state. fn must leave the state untouched when it fails.
func (s *Store) mutate(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.state); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Store) notify() {
	if s.observer == nil {
		return
	}
	s.observer(append([]domain.Node(nil), s.state.nodes...))
}
