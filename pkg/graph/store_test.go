package graph_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/graph"
)

func node(id string) domain.Node {
	return domain.Node{ID: id, Data: domain.NodeData{Title: id}}
}

func TestStore_AddNode(t *testing.T) {
	var notified [][]domain.Node
	s := graph.NewStore([]domain.Node{node("1")}, graph.WithObserver(func(nodes []domain.Node) {
		notified = append(notified, nodes)
	}))

	n, err := s.AddNode(node("2"))
	require.NoError(t, err)
	assert.Equal(t, "2", n.ID)

	_, err = s.AddNode(domain.Node{ID: "1", Data: domain.NodeData{Title: "other"}})
	assert.ErrorIs(t, err, domain.ErrNodeExists)
	got, _ := s.Node("1")
	assert.Equal(t, "1", got.Data.Title, "existing node must not be overwritten")

	fresh, err := s.AddNode(domain.Node{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fresh.ID, domain.PrefixNode))

	assert.Len(t, notified, 2, "one notification per successful mutation")
	assert.Len(t, notified[1], 3)
}

func TestStore_AddEdge(t *testing.T) {
	s := graph.NewStore([]domain.Node{node("1"), node("2")})

	require.NoError(t, s.AddEdge(domain.NewPendingEdge("1", "2")))

	err := s.AddEdge(domain.NewConfirmedEdge("1", "2"))
	assert.ErrorIs(t, err, domain.ErrDuplicateEdge)

	err = s.AddEdge(domain.NewPendingEdge("1", "9"))
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	// Same id again: latest write wins.
	require.NoError(t, s.AddEdge(domain.NewPendingEdge("1", "2")))
	assert.Len(t, s.Edges(), 1)

	// Reverse direction is a different ordered pair.
	require.NoError(t, s.AddEdge(domain.NewPendingEdge("2", "1")))
	assert.Len(t, s.Edges(), 2)
}

func TestStore_RemoveEdgeIsIdempotent(t *testing.T) {
	calls := 0
	s := graph.NewStore([]domain.Node{node("1"), node("2")}, graph.WithObserver(func([]domain.Node) { calls++ }))
	require.NoError(t, s.AddEdge(domain.NewPendingEdge("1", "2")))

	s.RemoveEdge("pending-1-2")
	s.RemoveEdge("pending-1-2")
	s.RemoveEdge("unknown")

	assert.Empty(t, s.Edges())
	assert.Equal(t, 2, calls)
}

func TestStore_PromoteEdge(t *testing.T) {
	s := graph.NewStore([]domain.Node{node("1"), node("2")})
	require.NoError(t, s.AddEdge(domain.NewPendingEdge("1", "2")))

	require.NoError(t, s.PromoteEdge("pending-1-2", domain.NewConfirmedEdge("1", "2")))
	es := s.Edges()
	require.Len(t, es, 1)
	assert.Equal(t, "confirmed-1-2", es[0].ID)
	assert.Equal(t, domain.EdgeConfirmed, es[0].Status)

	err := s.PromoteEdge("pending-1-2", domain.NewConfirmedEdge("1", "2"))
	assert.ErrorIs(t, err, domain.ErrEdgeNotFound)
}

func TestStore_PromoteEdgeKeepsIDsUnique(t *testing.T) {
	s := graph.NewStore([]domain.Node{node("1"), node("2"), node("3")})
	require.NoError(t, s.AddEdge(domain.Edge{ID: "taken", Source: "1", Target: "3", Status: domain.EdgeConfirmed}))
	require.NoError(t, s.AddEdge(domain.NewPendingEdge("1", "2")))

	err := s.PromoteEdge("pending-1-2", domain.Edge{ID: "taken", Source: "1", Target: "2", Status: domain.EdgeConfirmed})
	assert.ErrorIs(t, err, domain.ErrDuplicateEdge)

	es := s.Edges()
	require.Len(t, es, 2)
	assert.Equal(t, "pending-1-2", es[1].ID, "failed promotion leaves the pending edge")
}

func TestStore_HyphenatedNodeIDs(t *testing.T) {
	s := graph.NewStore([]domain.Node{node("a-b"), node("c"), node("a"), node("b-c")})
	require.NoError(t, s.AddEdge(domain.NewConfirmedEdge("a-b", "c")))
	require.NoError(t, s.AddEdge(domain.NewConfirmedEdge("c", "a")))
	require.NoError(t, s.AddEdge(domain.NewPendingEdge("a", "b-c")))
	require.NoError(t, s.PromoteEdge(domain.EdgeID(domain.EdgePending, "a", "b-c"), domain.NewConfirmedEdge("a", "b-c")))

	ids := make(map[string]int)
	for _, e := range s.Edges() {
		ids[e.ID]++
	}
	assert.Len(t, ids, 3)
	for id, n := range ids {
		assert.Equal(t, 1, n, id)
	}

	s.RemoveEdge(domain.EdgeID(domain.EdgeConfirmed, "a-b", "c"))
	_, ok := s.EdgeBetween("a", "b-c")
	assert.True(t, ok, "removing one pair must not touch the other")
}

func TestStore_MoveAndRemoveNode(t *testing.T) {
	s := graph.NewStore([]domain.Node{node("1"), node("2"), node("3")})
	require.NoError(t, s.AddEdge(domain.NewConfirmedEdge("1", "2")))
	require.NoError(t, s.AddEdge(domain.NewConfirmedEdge("2", "3")))

	require.NoError(t, s.MoveNode("1", domain.Position{X: 5, Y: 6}))
	n, _ := s.Node("1")
	assert.Equal(t, domain.Position{X: 5, Y: 6}, n.Position)
	assert.ErrorIs(t, s.MoveNode("9", domain.Position{}), domain.ErrNodeNotFound)

	require.NoError(t, s.RemoveNode("2"))
	assert.Len(t, s.Nodes(), 2)
	assert.Empty(t, s.Edges(), "incident edges go with the node")
	assert.ErrorIs(t, s.RemoveNode("2"), domain.ErrNodeNotFound)
}

func TestStore_BatchIsAllOrNothing(t *testing.T) {
	var snapshots [][]domain.Node
	s := graph.NewStore([]domain.Node{node("1"), node("2")}, graph.WithObserver(func(n []domain.Node) {
		snapshots = append(snapshots, n)
	}))
	require.NoError(t, s.AddEdge(domain.NewPendingEdge("1", "2")))
	snapshots = nil

	boom := errors.New("boom")
	err := s.Batch(func(tx *graph.Tx) error {
		if _, err := tx.AddNode(node("g")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, s.Nodes(), 2)
	assert.Empty(t, snapshots)

	err = s.Batch(func(tx *graph.Tx) error {
		if _, err := tx.AddNode(node("g")); err != nil {
			return err
		}
		return tx.PromoteEdge("pending-1-2", domain.NewConfirmedEdge("1", "2"))
	})
	require.NoError(t, err)
	assert.Len(t, s.Nodes(), 3)
	assert.Equal(t, "confirmed-1-2", s.Edges()[0].ID)
	require.Len(t, snapshots, 1, "a batch notifies once")
	assert.Len(t, snapshots[0], 3)
}

func TestStore_ResetSkipsObserver(t *testing.T) {
	calls := 0
	s := graph.NewStore(nil, graph.WithObserver(func([]domain.Node) { calls++ }))
	s.Reset([]domain.Node{node("1")})
	assert.Len(t, s.Nodes(), 1)
	assert.Zero(t, calls)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := graph.NewStore([]domain.Node{node("root")})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.AddNode(domain.Node{})
			if err != nil {
				return
			}
			_ = s.AddEdge(domain.NewConfirmedEdge("root", n.ID))
			_ = s.Edges()
		}()
	}
	wg.Wait()
	assert.Len(t, s.Nodes(), 21)
	assert.Len(t, s.Edges(), 20)
}
