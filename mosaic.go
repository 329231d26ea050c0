package mosaic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/mosaic/internal/logging"
	"github.com/aretw0/mosaic/pkg/adapters/memory"
	"github.com/aretw0/mosaic/pkg/adapters/placeholder"
	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/graph"
	"github.com/aretw0/mosaic/pkg/input"
	"github.com/aretw0/mosaic/pkg/lifecycle"
	"github.com/aretw0/mosaic/pkg/ports"
)

// DirectPosition is where directly generated nodes are placed.
var DirectPosition = domain.Position{X: 100, Y: 300}

// persistTimeout bounds a single best-effort write.
const persistTimeout = 5 * time.Second

// Canvas is the high-level entry point of the library.
// It composes the graph store, the connection lifecycle, persistence and watchers.
type Canvas struct {
	id        string
	store     *graph.Store
	machine   *lifecycle.Machine
	persist   ports.CanvasStore
	viewports ports.ViewportStore
	seed      ports.SeedSource
	generator ports.Generator
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	timeout   time.Duration
	writer    *writer

	watchMu  sync.Mutex
	watchers map[chan domain.Snapshot]struct{}
}

// Option defines a functional option for configuring the Canvas.
type Option func(*Canvas)

// WithStore sets where the node list is persisted (default: in memory).
// If the store also implements ports.ViewportStore it is used for viewports too.
func WithStore(s ports.CanvasStore) Option {
	return func(c *Canvas) {
		c.persist = s
	}
}

// WithViewportStore overrides where the viewport is persisted.
func WithViewportStore(s ports.ViewportStore) Option {
	return func(c *Canvas) {
		c.viewports = s
	}
}

// WithSeed sets the node set used for new or unreadable canvases.
func WithSeed(s ports.SeedSource) Option {
	return func(c *Canvas) {
		c.seed = s
	}
}

// WithGenerator sets the image generation service (default: placeholder).
func WithGenerator(g ports.Generator) Option {
	return func(c *Canvas) {
		c.generator = g
	}
}

// WithLifecycleHooks registers observability hooks. Multiple calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Canvas) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Canvas) {
		c.logger = logger
	}
}

// WithGenerationTimeout bounds every generator call. Zero means no limit.
func WithGenerationTimeout(d time.Duration) Option {
	return func(c *Canvas) {
		c.timeout = d
	}
}

// Open loads canvas id from the store, falling back to the seed node set when
// it is missing or unreadable.
func Open(ctx context.Context, id string, opts ...Option) (*Canvas, error) {
	if id == "" {
		return nil, fmt.Errorf("canvas id cannot be empty")
	}

	c := &Canvas{
		id:       id,
		seed:     ports.DefaultSeed,
		logger:   logging.NewNop(),
		watchers: make(map[chan domain.Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.persist == nil {
		c.persist = memory.NewStore()
	}
	if c.viewports == nil {
		if vs, ok := c.persist.(ports.ViewportStore); ok {
			c.viewports = vs
		}
	}
	if c.generator == nil {
		c.generator = placeholder.New()
	}
	c.logger = c.logger.With("canvas", id)

	nodes, seeded := c.load(ctx)
	if seeded {
		c.persistNodes(nodes)
	}
	c.writer = newWriter(c.persistNodes)
	c.store = graph.NewStore(nodes, graph.WithLogger(c.logger), graph.WithObserver(c.writer.submit))

	internal := domain.LifecycleHooks{
		OnGenerationStart: func(context.Context, *domain.ConnectionEvent) { c.broadcast() },
	}
	c.machine = lifecycle.New(c.store, c.generator,
		lifecycle.WithCanvasID(id),
		lifecycle.WithLogger(c.logger),
		lifecycle.WithHooks(c.hooks),
		lifecycle.WithHooks(internal),
	)
	return c, nil
}

// load returns the persisted node list, or the seed set (seeded=true).
func (c *Canvas) load(ctx context.Context) ([]domain.Node, bool) {
	saved, err := c.persist.Load(ctx, c.id)
	if err == nil {
		return saved.Nodes, false
	}

	switch {
	case errors.Is(err, domain.ErrCanvasNotFound):
		c.logger.Debug("canvas not found, seeding")
	case errors.Is(err, domain.ErrCorruptCanvas):
		c.logger.Warn("persisted canvas is malformed, seeding", "error", err)
	default:
		c.logger.Warn("failed to load canvas, seeding", "error", err)
	}

	nodes, err := c.seed.Seed(ctx)
	if err != nil {
		c.logger.Warn("seed source failed, using built-in nodes", "error", err)
		nodes = domain.DefaultNodes()
	}
	return nodes, true
}

// persistNodes writes the node list. The graph observer queues it on the writer;
// failures are logged and reported, never rolled back.
func (c *Canvas) persistNodes(nodes []domain.Node) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := c.persist.Save(ctx, c.id, &domain.SerializedGraph{Nodes: nodes}); err != nil {
		c.logger.Error("failed to persist canvas", "error", err)
		if c.hooks.OnPersistFailed != nil {
			c.hooks.OnPersistFailed(ctx, &domain.PersistEvent{
				EventBase: domain.NewEventBase(domain.EventPersistFailed, c.id),
				Err:       err,
			})
		}
	}
}

// ID returns the canvas id.
func (c *Canvas) ID() string {
	return c.id
}

// Snapshot returns the presentation-facing view of the canvas.
func (c *Canvas) Snapshot() domain.Snapshot {
	st := c.machine.Status()
	snap := domain.Snapshot{
		CanvasID:   c.id,
		Nodes:      c.store.Nodes(),
		Edges:      c.store.Edges(),
		Phase:      st.Phase,
		Connection: st.Connection,
		Affordance: st.Affordance,
		Generating: st.Generating,
	}
	if snap.Nodes == nil {
		snap.Nodes = []domain.Node{}
	}
	if snap.Edges == nil {
		snap.Edges = []domain.Edge{}
	}
	return snap
}

// Node looks up a node by id.
func (c *Canvas) Node(id string) (domain.Node, bool) {
	return c.store.Node(id)
}

// Phase returns the phase of the interactive connection slot.
func (c *Canvas) Phase() domain.Phase {
	return c.machine.Phase()
}

// Suggestions returns the quick instruction presets.
func (c *Canvas) Suggestions() []string {
	return append([]string(nil), domain.Suggestions...)
}

// Connect handles a connection gesture from source to target.
func (c *Canvas) Connect(ctx context.Context, source, target string) error {
	if err := c.machine.Connect(ctx, source, target); err != nil {
		return err
	}
	c.broadcast()
	return nil
}

// Confirm accepts the pending connection and waits for instructions.
func (c *Canvas) Confirm(ctx context.Context) error {
	if err := c.machine.Confirm(ctx); err != nil {
		return err
	}
	c.broadcast()
	return nil
}

// Cancel discards the open connection.
func (c *Canvas) Cancel(ctx context.Context) error {
	if err := c.machine.Cancel(ctx); err != nil {
		return err
	}
	c.broadcast()
	return nil
}

// Submit sends the confirmed connection to the generator with the given instructions.
// It blocks until the generation is committed or discarded.
func (c *Canvas) Submit(ctx context.Context, instructions string) (domain.Node, error) {
	clean, err := input.Sanitize(instructions)
	if err != nil {
		return domain.Node{}, err
	}
	if clean == "" {
		return domain.Node{}, domain.ErrEmptyInstructions
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	node, err := c.machine.Submit(ctx, clean)
	c.broadcast()
	return node, err
}

// Generate runs the generator without source nodes and adds the result,
// unconnected, at DirectPosition.
func (c *Canvas) Generate(ctx context.Context, instructions string) (domain.Node, error) {
	clean, err := input.Sanitize(instructions)
	if err != nil {
		return domain.Node{}, err
	}
	if clean == "" {
		return domain.Node{}, domain.ErrEmptyInstructions
	}

	gctx, cancel := c.withTimeout(ctx)
	defer cancel()

	img, err := c.generator.Generate(gctx, nil, clean)
	if err == nil {
		err = gctx.Err()
	}
	if err != nil {
		c.logger.Error("direct generation failed", "error", err)
		if errors.Is(err, domain.ErrGenerationFailed) {
			return domain.Node{}, err
		}
		return domain.Node{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	node := lifecycle.NewGeneratedNode(graph.NewNodeID(domain.PrefixDirect), DirectPosition, img, clean)
	return c.addNode(ctx, node)
}

// AddNode places a node on the canvas, e.g. an uploaded image.
// An empty id is replaced by a fresh one.
func (c *Canvas) AddNode(ctx context.Context, node domain.Node) (domain.Node, error) {
	title, err := input.Sanitize(node.Data.Title)
	if err != nil {
		return domain.Node{}, err
	}
	node.Data.Title = title
	return c.addNode(ctx, node)
}

func (c *Canvas) addNode(ctx context.Context, node domain.Node) (domain.Node, error) {
	node, err := c.store.AddNode(node)
	if err != nil {
		return domain.Node{}, err
	}
	if c.hooks.OnNodeAdded != nil {
		c.hooks.OnNodeAdded(ctx, &domain.NodeEvent{
			EventBase: domain.NewEventBase(domain.EventNodeAdded, c.id),
			Node:      node,
		})
	}
	c.broadcast()
	return node, nil
}

// MoveNode updates a node position (drag).
func (c *Canvas) MoveNode(ctx context.Context, id string, pos domain.Position) error {
	if err := c.store.MoveNode(id, pos); err != nil {
		return err
	}
	c.broadcast()
	return nil
}

// RemoveNode deletes a node and its edges. Nodes taking part in an open or
// generating connection cannot be removed, nor can a node whose removal would
// split the connected group.
func (c *Canvas) RemoveNode(ctx context.Context, id string) error {
	if err := c.machine.RemoveNode(id); err != nil {
		return err
	}
	c.broadcast()
	return nil
}

// Flush waits until every node list queued for persistence has been written.
func (c *Canvas) Flush(ctx context.Context) error {
	return c.writer.wait(ctx)
}

// Viewport returns the saved viewport or the default one.
func (c *Canvas) Viewport(ctx context.Context) domain.Viewport {
	if c.viewports == nil {
		return domain.DefaultViewport()
	}
	vp, err := c.viewports.LoadViewport(ctx, c.id)
	if err != nil {
		if !errors.Is(err, domain.ErrCanvasNotFound) {
			c.logger.Warn("failed to load viewport", "error", err)
		}
		return domain.DefaultViewport()
	}
	return vp
}

// SaveViewport persists the viewport.
func (c *Canvas) SaveViewport(ctx context.Context, vp domain.Viewport) error {
	if c.viewports == nil {
		return nil
	}
	return c.viewports.SaveViewport(ctx, c.id, vp)
}

// Watch streams snapshots, starting with the current one. Slow readers only
// see the latest snapshot. The channel is closed when ctx is done.
func (c *Canvas) Watch(ctx context.Context) <-chan domain.Snapshot {
	ch := make(chan domain.Snapshot, 1)
	ch <- c.Snapshot()

	c.watchMu.Lock()
	c.watchers[ch] = struct{}{}
	c.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		c.watchMu.Lock()
		delete(c.watchers, ch)
		close(ch)
		c.watchMu.Unlock()
	}()
	return ch
}

func (c *Canvas) broadcast() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if len(c.watchers) == 0 {
		return
	}

	snap := c.Snapshot()
	for ch := range c.watchers {
		select {
		case ch <- snap:
		default:
			// Replace the stale snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (c *Canvas) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}
