package lifecycle_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/graph"
	"github.com/aretw0/mosaic/pkg/lifecycle"
	"github.com/aretw0/mosaic/pkg/ports"
)

func nodes(ids ...string) []domain.Node {
	out := make([]domain.Node, 0, len(ids))
	for i, id := range ids {
		out = append(out, domain.Node{
			ID:       id,
			Position: domain.Position{X: float64(i) * 100, Y: 100},
			Data:     domain.NodeData{Title: id, Template: domain.TemplateCartoon},
		})
	}
	return out
}

var okGenerator = ports.GeneratorFunc(func(ctx context.Context, sources []domain.Node, instructions string) (domain.GeneratedImage, error) {
	return domain.GeneratedImage{ImageURL: "https://example.test/out.png", Title: "Fusion", Width: 380, Height: 320}, nil
})

func commit(t *testing.T, m *lifecycle.Machine, source, target string) domain.Node {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, m.Connect(ctx, source, target))
	require.NoError(t, m.Confirm(ctx))
	n, err := m.Submit(ctx, "merge styles")
	require.NoError(t, err)
	return n
}

func TestMachine_Connect(t *testing.T) {
	store := graph.NewStore(nodes("1", "2"))
	m := lifecycle.New(store, okGenerator)

	require.NoError(t, m.Connect(context.Background(), "1", "2"))

	st := m.Status()
	assert.Equal(t, domain.PhasePending, st.Phase)
	require.NotNil(t, st.Connection)
	assert.Equal(t, domain.Connection{Source: "1", Target: "2"}, *st.Connection)
	require.NotNil(t, st.Affordance)
	assert.Equal(t, domain.Position{X: 100 + 240, Y: 120}, *st.Affordance)

	es := store.Edges()
	require.Len(t, es, 1)
	assert.Equal(t, "pending-1-2", es[0].ID)
}

func TestMachine_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, m *lifecycle.Machine)
		source  string
		target  string
		wantErr error
	}{
		{"self loop", nil, "1", "1", domain.ErrSelfLoop},
		{"unknown node", nil, "1", "9", domain.ErrNodeNotFound},
		{"split graph", func(t *testing.T, m *lifecycle.Machine) { commit(t, m, "1", "2") }, "3", "4", domain.ErrWouldSplitGraph},
		{"pair already linked", func(t *testing.T, m *lifecycle.Machine) { commit(t, m, "1", "2") }, "1", "2", domain.ErrDuplicateEdge},
		{"slot busy", func(t *testing.T, m *lifecycle.Machine) {
			require.NoError(t, m.Connect(context.Background(), "1", "2"))
		}, "2", "3", domain.ErrConnectionInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rejected []*domain.ConnectionEvent
			store := graph.NewStore(nodes("1", "2", "3", "4"))
			m := lifecycle.New(store, okGenerator, lifecycle.WithHooks(domain.LifecycleHooks{
				OnConnectRejected: func(_ context.Context, e *domain.ConnectionEvent) { rejected = append(rejected, e) },
			}))
			if tt.setup != nil {
				tt.setup(t, m)
			}
			beforeEdges := store.Edges()
			beforeStatus := m.Status()

			err := m.Connect(context.Background(), tt.source, tt.target)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, beforeEdges, store.Edges(), "store unchanged")
			assert.Equal(t, beforeStatus, m.Status(), "machine unchanged")
			require.Len(t, rejected, 1)
			assert.ErrorIs(t, rejected[0].Err, tt.wantErr)
		})
	}
}

func TestMachine_RejectionCorrectness(t *testing.T) {
	store := graph.NewStore(nodes("A", "B", "C", "D", "E"))
	m := lifecycle.New(store, okGenerator)
	commit(t, m, "A", "B")
	commit(t, m, "B", "C")

	assert.ErrorIs(t, m.Connect(context.Background(), "D", "E"), domain.ErrWouldSplitGraph)

	require.NoError(t, m.Connect(context.Background(), "D", "A"))
	require.NoError(t, m.Cancel(context.Background()))

	require.NoError(t, m.Connect(context.Background(), "A", "C"), "cycles are allowed")
}

func TestMachine_FirstEdgeAlwaysAllowed(t *testing.T) {
	m := lifecycle.New(graph.NewStore(nodes("x", "y")), okGenerator)
	assert.NoError(t, m.Connect(context.Background(), "y", "x"))
}

func TestMachine_CancelRoundTrip(t *testing.T) {
	store := graph.NewStore(nodes("1", "2", "3"))
	m := lifecycle.New(store, okGenerator)
	commit(t, m, "1", "2")

	beforeNodes, beforeEdges := store.Nodes(), store.Edges()

	require.NoError(t, m.Connect(context.Background(), "3", "1"))
	assert.Len(t, store.Edges(), len(beforeEdges)+1)
	require.NoError(t, m.Confirm(context.Background()))
	require.NoError(t, m.Cancel(context.Background()))

	assert.Equal(t, beforeNodes, store.Nodes())
	assert.Equal(t, beforeEdges, store.Edges())
	assert.Equal(t, domain.PhaseIdle, m.Phase())
	assert.ErrorIs(t, m.Cancel(context.Background()), domain.ErrNoConnection)
}

func TestMachine_CommitAtomicity(t *testing.T) {
	var committed []*domain.ConnectionEvent
	store := graph.NewStore(nodes("1", "2"))
	m := lifecycle.New(store, okGenerator, lifecycle.WithHooks(domain.LifecycleHooks{
		OnConnectCommitted: func(_ context.Context, e *domain.ConnectionEvent) { committed = append(committed, e) },
	}))

	n := commit(t, m, "1", "2")

	assert.True(t, strings.HasPrefix(n.ID, domain.PrefixGenerated))
	assert.Equal(t, "merge styles", n.Data.Prompt)
	assert.Equal(t, domain.TemplateGenerated, n.Data.Template)
	assert.Equal(t, domain.Position{X: 50, Y: 100}, n.Position)
	assert.Len(t, store.Nodes(), 3)

	es := store.Edges()
	require.Len(t, es, 1)
	assert.Equal(t, domain.NewConfirmedEdge("1", "2"), es[0])
	for _, e := range es {
		assert.False(t, e.Touches(n.ID), "generated node is not wired")
	}

	require.Len(t, committed, 1)
	assert.Equal(t, n.ID, committed[0].Node.ID)
	assert.Equal(t, domain.PhaseIdle, m.Phase())
}

func TestMachine_SubmitValidation(t *testing.T) {
	m := lifecycle.New(graph.NewStore(nodes("1", "2")), okGenerator)
	ctx := context.Background()

	_, err := m.Submit(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNoConnection)

	require.NoError(t, m.Connect(ctx, "1", "2"))
	_, err = m.Submit(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotConfirming)

	require.NoError(t, m.Confirm(ctx))
	require.NoError(t, m.Confirm(ctx), "confirming twice is a no-op")
	_, err = m.Submit(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyInstructions)
	assert.Equal(t, domain.PhaseConfirming, m.Phase(), "blank instructions keep the dialog open")
}

func TestMachine_GenerationFailure(t *testing.T) {
	boom := errors.New("upstream down")
	var failed []*domain.ConnectionEvent
	store := graph.NewStore(nodes("1", "2"))
	m := lifecycle.New(store, ports.GeneratorFunc(func(context.Context, []domain.Node, string) (domain.GeneratedImage, error) {
		return domain.GeneratedImage{}, boom
	}), lifecycle.WithHooks(domain.LifecycleHooks{
		OnGenerationFailed: func(_ context.Context, e *domain.ConnectionEvent) { failed = append(failed, e) },
	}))

	require.NoError(t, m.Connect(context.Background(), "1", "2"))
	require.NoError(t, m.Confirm(context.Background()))
	_, err := m.Submit(context.Background(), "merge styles")

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, store.Nodes(), 2)
	assert.Empty(t, store.Edges())
	assert.Empty(t, m.Status().Generating)
	require.Len(t, failed, 1)
}

func TestMachine_ContextCancelledDuringGeneration(t *testing.T) {
	store := graph.NewStore(nodes("1", "2"))
	m := lifecycle.New(store, ports.GeneratorFunc(func(ctx context.Context, _ []domain.Node, _ string) (domain.GeneratedImage, error) {
		<-ctx.Done()
		return domain.GeneratedImage{}, ctx.Err()
	}))

	require.NoError(t, m.Connect(context.Background(), "1", "2"))
	require.NoError(t, m.Confirm(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.Submit(ctx, "merge styles")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, store.Edges())
	assert.Len(t, store.Nodes(), 2)
}

// While a generation is in flight the slot is free for other pairs, but the
// pair being generated stays blocked by its pending edge.
func TestMachine_ConnectDuringGeneration(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	store := graph.NewStore(nodes("1", "2", "3"))
	m := lifecycle.New(store, ports.GeneratorFunc(func(ctx context.Context, _ []domain.Node, _ string) (domain.GeneratedImage, error) {
		close(started)
		<-release
		return domain.GeneratedImage{ImageURL: "u"}, nil
	}))

	ctx := context.Background()
	require.NoError(t, m.Connect(ctx, "1", "2"))
	require.NoError(t, m.Confirm(ctx))

	var wg sync.WaitGroup
	wg.Add(1)
	var node domain.Node
	var submitErr error
	go func() {
		defer wg.Done()
		node, submitErr = m.Submit(ctx, "merge styles")
	}()
	<-started

	st := m.Status()
	assert.Equal(t, domain.PhaseIdle, st.Phase)
	assert.Equal(t, []domain.Connection{{Source: "1", Target: "2"}}, st.Generating)
	assert.True(t, m.Involves("1"))

	assert.ErrorIs(t, m.Connect(ctx, "1", "2"), domain.ErrDuplicateEdge)
	require.NoError(t, m.Connect(ctx, "3", "2"))

	close(release)
	wg.Wait()
	require.NoError(t, submitErr)
	assert.Equal(t, lifecycle.DefaultGeneratedTitle, node.Data.Title)

	ids := []string{}
	for _, e := range store.Edges() {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"confirmed-1-2", "pending-3-2"}, ids)
	assert.Equal(t, domain.PhasePending, m.Phase())
	assert.False(t, m.Involves("1"))
}

func TestMachine_Scenario(t *testing.T) {
	store := graph.NewStore(nodes("1", "2", "3"))
	m := lifecycle.New(store, okGenerator)

	commit(t, m, "1", "2")
	commit(t, m, "3", "1")
	assert.Equal(t, [][]string{{"1", "2", "3"}}, graph.Components(store.Edges()))

	_, err := store.AddNode(domain.Node{ID: "4"})
	require.NoError(t, err)
	_, err = store.AddNode(domain.Node{ID: "5"})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Connect(context.Background(), "4", "5"), domain.ErrWouldSplitGraph)
	assert.True(t, graph.Connected(store.Edges()))
}

// gate is a generator whose calls block until the test resolves them.
type gate struct {
	started chan *pendingCall
}

type pendingCall struct {
	outcome chan error
	cancel  context.CancelFunc
	done    chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan *pendingCall)}
}

func (g *gate) Generate(ctx context.Context, _ []domain.Node, _ string) (domain.GeneratedImage, error) {
	c := &pendingCall{outcome: make(chan error, 1)}
	g.started <- c
	select {
	case err := <-c.outcome:
		if err != nil {
			return domain.GeneratedImage{}, err
		}
		return domain.GeneratedImage{ImageURL: "https://example.test/out.png"}, nil
	case <-ctx.Done():
		return domain.GeneratedImage{}, ctx.Err()
	}
}

// submit confirms the open connection and starts its generation, returning
// once the generator holds the call.
func (g *gate) submit(t *testing.T, m *lifecycle.Machine) *pendingCall {
	t.Helper()
	require.NoError(t, m.Confirm(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Submit(ctx, "merge styles")
	}()
	c := <-g.started
	c.cancel = cancel
	c.done = done
	return c
}

func (c *pendingCall) resolve(err error) {
	c.outcome <- err
	<-c.done
	c.cancel()
}

func (c *pendingCall) abort() {
	c.cancel()
	<-c.done
}

func TestMachine_FailedGenerationKeepsGroupConnected(t *testing.T) {
	g := newGate()
	store := graph.NewStore(nodes("A", "B", "C", "D"))
	m := lifecycle.New(store, g)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx, "A", "B"))
	first := g.submit(t, m)
	first.resolve(nil)

	require.NoError(t, m.Connect(ctx, "B", "C"))
	running := g.submit(t, m)

	// C only belongs to the group through the running generation.
	assert.ErrorIs(t, m.Connect(ctx, "C", "D"), domain.ErrWouldSplitGraph)
	require.NoError(t, m.Connect(ctx, "A", "D"))
	second := g.submit(t, m)
	second.resolve(nil)

	running.resolve(errors.New("upstream down"))

	var ids []string
	for _, e := range store.Edges() {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"confirmed-A-B", "confirmed-A-D"}, ids)
	assert.True(t, graph.Connected(store.Edges()))
}

func TestMachine_ConnectWithOnlyRunningGenerations(t *testing.T) {
	g := newGate()
	store := graph.NewStore(nodes("1", "2", "3", "4"))
	m := lifecycle.New(store, g)
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx, "1", "2"))
	a := g.submit(t, m)
	require.NoError(t, m.Connect(ctx, "2", "3"))
	b := g.submit(t, m)

	// 3-4 touches 2-3 but not 1-2; if 2-3 fails, 1-2 and 3-4 split.
	assert.ErrorIs(t, m.Connect(ctx, "3", "4"), domain.ErrWouldSplitGraph)
	require.NoError(t, m.Connect(ctx, "2", "4"))
	require.NoError(t, m.Cancel(ctx))

	b.resolve(errors.New("upstream down"))
	a.resolve(nil)
	assert.True(t, graph.Connected(store.Edges()))
	assert.Len(t, store.Edges(), 1)
}

func TestMachine_RemoveNode(t *testing.T) {
	store := graph.NewStore(nodes("1", "2", "3", "4", "5", "6"))
	m := lifecycle.New(store, okGenerator)
	commit(t, m, "1", "2")
	commit(t, m, "2", "3")
	commit(t, m, "3", "4")
	commit(t, m, "4", "5")

	// Removing 3 would leave 1-2 and 4-5 apart.
	assert.ErrorIs(t, m.RemoveNode("3"), domain.ErrWouldSplitGraph)
	assert.Len(t, store.Edges(), 4)

	require.NoError(t, m.Connect(context.Background(), "5", "6"))
	assert.ErrorIs(t, m.RemoveNode("6"), domain.ErrNodeBusy)
	require.NoError(t, m.Cancel(context.Background()))

	require.NoError(t, m.RemoveNode("6"))
	require.NoError(t, m.RemoveNode("5"))
	require.NoError(t, m.RemoveNode("1"))
	assert.ErrorIs(t, m.RemoveNode("1"), domain.ErrNodeNotFound)
	assert.True(t, graph.Connected(store.Edges()))
	assert.Len(t, store.Edges(), 2)
}

// Random gestures, commits, failures, cancellations and aborts never leave
// the edges in more than one group, now or after any running generation fails.
func TestMachine_ConnectivityInvariant_RandomSequences(t *testing.T) {
	ids := []string{"n0", "n1", "n2", "n3", "n4", "n5", "n6", "n7"}
	pending := func(e domain.Edge) bool { return e.Pending() }
	boom := errors.New("upstream down")

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 25; round++ {
		g := newGate()
		store := graph.NewStore(nodes(ids...))
		m := lifecycle.New(store, g)
		ctx := context.Background()
		var running []*pendingCall

		for step := 0; step < 60; step++ {
			switch op := rng.Intn(6); {
			case op <= 1:
				s, d := ids[rng.Intn(len(ids))], ids[rng.Intn(len(ids))]
				_ = m.Connect(ctx, s, d)
			case op == 2:
				if m.Phase() != domain.PhaseIdle {
					running = append(running, g.submit(t, m))
				}
			case op == 3:
				_ = m.Cancel(ctx)
			default:
				if len(running) == 0 {
					continue
				}
				i := rng.Intn(len(running))
				c := running[i]
				running = append(running[:i], running[i+1:]...)
				switch rng.Intn(3) {
				case 0:
					c.resolve(nil)
				case 1:
					c.resolve(boom)
				default:
					c.abort()
				}
			}

			es := store.Edges()
			require.True(t, graph.Connected(es), "round %d step %d: %v", round, step, graph.Components(es))
			require.True(t, graph.StaysConnected(es, pending), "round %d step %d: %v", round, step, es)
		}

		for _, c := range running {
			c.resolve(boom)
		}
		_ = m.Cancel(ctx)
		assert.True(t, graph.Connected(store.Edges()), "round %d", round)
		for _, e := range store.Edges() {
			assert.False(t, e.Pending(), "round %d: %s left pending", round, e.ID)
		}
	}
}
