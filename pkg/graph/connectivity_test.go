package graph_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/graph"
)

func edges(pairs ...[2]string) []domain.Edge {
	out := make([]domain.Edge, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, domain.NewConfirmedEdge(p[0], p[1]))
	}
	return out
}

func TestWouldCreateSeparateGroups(t *testing.T) {
	existing := edges([2]string{"A", "B"}, [2]string{"B", "C"})

	tests := []struct {
		name   string
		source string
		target string
		edges  []domain.Edge
		want   bool
	}{
		{"first edge always allowed", "X", "Y", nil, false},
		{"disjoint pair rejected", "D", "E", existing, true},
		{"new node joins group", "D", "A", existing, false},
		{"target in group", "D", "C", existing, false},
		{"cycle allowed", "A", "C", existing, false},
		{"redundant edge allowed", "A", "B", existing, false},
		{"direction ignored", "C", "A", edges([2]string{"A", "B"}, [2]string{"C", "B"}), false},
		{"pending edges count", "Z", "A", []domain.Edge{domain.NewPendingEdge("A", "B")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, graph.WouldCreateSeparateGroups(tt.source, tt.target, tt.edges))
		})
	}
}

func TestComponents(t *testing.T) {
	es := edges([2]string{"A", "B"}, [2]string{"C", "D"}, [2]string{"B", "E"})
	assert.Equal(t, [][]string{{"A", "B", "E"}, {"C", "D"}}, graph.Components(es))
	assert.False(t, graph.Connected(es))
	assert.True(t, graph.Connected(edges([2]string{"A", "B"}, [2]string{"B", "C"})))
	assert.True(t, graph.Connected(nil))
}

// Accepting only edges the checker allows keeps every edge in one group,
// whatever order the attempts arrive in.
func TestConnectivityInvariant_RandomAttempts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		var accepted []domain.Edge
		for i := 0; i < 40; i++ {
			s := fmt.Sprintf("n%d", rng.Intn(12))
			d := fmt.Sprintf("n%d", rng.Intn(12))
			if s == d {
				continue
			}
			if graph.WouldCreateSeparateGroups(s, d, accepted) {
				continue
			}
			accepted = append(accepted, domain.NewConfirmedEdge(s, d))
			assert.True(t, graph.Connected(accepted), "round %d step %d", round, i)
		}
	}
}

func TestStaysConnected(t *testing.T) {
	pending := func(e domain.Edge) bool { return e.Pending() }
	p := domain.NewPendingEdge
	c := domain.NewConfirmedEdge

	tests := []struct {
		name  string
		edges []domain.Edge
		want  bool
	}{
		{"no edges", nil, true},
		{"single tentative edge", []domain.Edge{p("A", "B")}, true},
		{"tentative star", []domain.Edge{p("A", "B"), p("B", "C"), p("D", "B")}, true},
		{"tentative chain", []domain.Edge{p("A", "B"), p("B", "C"), p("C", "D")}, false},
		{"tentative touching settled", []domain.Edge{c("A", "B"), p("B", "C"), p("A", "D")}, true},
		{"tentative bridge", []domain.Edge{c("A", "B"), p("B", "C"), p("C", "D")}, false},
		{"settled split", []domain.Edge{c("A", "B"), c("C", "D")}, false},
		{"settled joined by tentative", []domain.Edge{c("A", "B"), p("B", "C"), c("C", "D")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, graph.StaysConnected(tt.edges, pending))
		})
	}
}
