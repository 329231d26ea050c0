package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/mosaic/internal/logging"
	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/graph"
	"github.com/aretw0/mosaic/pkg/ports"
)

// DefaultGeneratedTitle is used when the generator returns no title.
const DefaultGeneratedTitle = "Generated Image"

// Status is a consistent view of the machine.
type Status struct {
	Phase      domain.Phase
	Connection *domain.Connection
	Affordance *domain.Position
	Generating []domain.Connection
}

// Machine drives connections over a graph.Store.
// Safe for concurrent use.
type Machine struct {
	store     *graph.Store
	generator ports.Generator
	canvasID  string
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	mu       sync.Mutex
	phase    domain.Phase
	conn     *domain.Connection
	inflight map[string]domain.Connection // keyed by pending edge id
	order    []string                     // inflight keys in submission order
}

// Option configures the Machine.
type Option func(*Machine)

// WithLogger configures a logger for the Machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithHooks registers lifecycle hooks. Multiple calls are merged.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithCanvasID tags events and logs with the canvas id.
func WithCanvasID(id string) Option {
	return func(m *Machine) {
		m.canvasID = id
	}
}

// New creates an idle Machine.
func New(store *graph.Store, generator ports.Generator, opts ...Option) *Machine {
	m := &Machine{
		store:     store,
		generator: generator,
		logger:    logging.NewNop(),
		phase:     domain.PhaseIdle,
		inflight:  make(map[string]domain.Connection),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.canvasID != "" {
		m.logger = m.logger.With("canvas", m.canvasID)
	}
	return m
}

// Connect validates a connection gesture and draws the pending edge.
// A rejected gesture leaves the machine and the store unchanged.
func (m *Machine) Connect(ctx context.Context, source, target string) error {
	conn := domain.Connection{Source: source, Target: target}

	m.mu.Lock()
	err := m.connectLocked(conn)
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("connection rejected", "source", source, "target", target, "error", err)
		m.fire(ctx, m.hooks.OnConnectRejected, domain.EventConnectRejected, conn, func(e *domain.ConnectionEvent) {
			e.Err = err
		})
		return err
	}

	m.logger.Debug("connection pending", "source", source, "target", target)
	m.fire(ctx, m.hooks.OnConnectPending, domain.EventConnectPending, conn, nil)
	return nil
}

func (m *Machine) connectLocked(conn domain.Connection) error {
	if conn.Source == conn.Target {
		return fmt.Errorf("%w: %s", domain.ErrSelfLoop, conn.Source)
	}
	if m.phase != domain.PhaseIdle {
		return fmt.Errorf("%w: %s -> %s", domain.ErrConnectionInProgress, m.conn.Source, m.conn.Target)
	}

	err := m.store.Batch(func(tx *graph.Tx) error {
		for _, id := range []string{conn.Source, conn.Target} {
			if _, ok := tx.Node(id); !ok {
				return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
			}
		}
		if existing, ok := tx.EdgeBetween(conn.Source, conn.Target); ok {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateEdge, existing.ID)
		}
		if graph.WouldCreateSeparateGroups(conn.Source, conn.Target, tx.Edges()) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrWouldSplitGraph, conn.Source, conn.Target)
		}
		if err := tx.AddEdge(domain.NewPendingEdge(conn.Source, conn.Target)); err != nil {
			return err
		}
		// Running generations may still fail and drop their edges.
		pendingID := conn.PendingEdgeID()
		stays := graph.StaysConnected(tx.Edges(), func(e domain.Edge) bool {
			return e.ID == pendingID || m.tentativeLocked(e)
		})
		if !stays {
			return fmt.Errorf("%w: %s -> %s depends on a running generation", domain.ErrWouldSplitGraph, conn.Source, conn.Target)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.phase = domain.PhasePending
	m.conn = &conn
	return nil
}

// Confirm moves a pending connection to the instructions step.
// Confirming twice is a no-op.
func (m *Machine) Confirm(ctx context.Context) error {
	m.mu.Lock()
	if m.phase == domain.PhaseIdle {
		m.mu.Unlock()
		return domain.ErrNoConnection
	}
	already := m.phase == domain.PhaseConfirming
	m.phase = domain.PhaseConfirming
	conn := *m.conn
	m.mu.Unlock()

	if !already {
		m.fire(ctx, m.hooks.OnConnectConfirmed, domain.EventConnectConfirmed, conn, nil)
	}
	return nil
}

// Cancel discards the open connection and its pending edge.
func (m *Machine) Cancel(ctx context.Context) error {
	m.mu.Lock()
	if m.phase == domain.PhaseIdle {
		m.mu.Unlock()
		return domain.ErrNoConnection
	}
	conn := *m.conn
	m.store.RemoveEdge(conn.PendingEdgeID())
	m.phase = domain.PhaseIdle
	m.conn = nil
	m.mu.Unlock()

	m.logger.Debug("connection cancelled", "source", conn.Source, "target", conn.Target)
	m.fire(ctx, m.hooks.OnConnectCancelled, domain.EventConnectCancelled, conn, nil)
	return nil
}

// Submit sends the confirmed connection to the generator and commits the result:
// a new node at the midpoint of the pair and the pending edge promoted to confirmed.
//
// The interactive slot is released before the generator is called. If the
// generator fails or ctx is cancelled nothing is committed and the pending edge
// is removed.
func (m *Machine) Submit(ctx context.Context, instructions string) (domain.Node, error) {
	instructions = strings.TrimSpace(instructions)

	m.mu.Lock()
	switch {
	case m.phase == domain.PhaseIdle:
		m.mu.Unlock()
		return domain.Node{}, domain.ErrNoConnection
	case m.phase == domain.PhasePending:
		m.mu.Unlock()
		return domain.Node{}, domain.ErrNotConfirming
	case instructions == "":
		m.mu.Unlock()
		return domain.Node{}, domain.ErrEmptyInstructions
	}
	conn := *m.conn
	key := conn.PendingEdgeID()
	m.inflight[key] = conn
	m.order = append(m.order, key)
	m.phase = domain.PhaseIdle
	m.conn = nil
	m.mu.Unlock()

	defer m.finish(key)

	start := time.Now()
	m.logger.Info("generation started", "source", conn.Source, "target", conn.Target)
	m.fire(ctx, m.hooks.OnGenerationStart, domain.EventGenerationStart, conn, nil)

	node, err := m.generate(ctx, conn, instructions)
	if err != nil {
		m.store.RemoveEdge(key)
		m.logger.Error("generation failed", "source", conn.Source, "target", conn.Target, "error", err)
		m.fire(ctx, m.hooks.OnGenerationFailed, domain.EventGenerationFailed, conn, func(e *domain.ConnectionEvent) {
			e.Err = err
			e.Duration = time.Since(start)
		})
		return domain.Node{}, err
	}

	m.logger.Info("connection committed", "source", conn.Source, "target", conn.Target, "node", node.ID)
	m.fire(ctx, m.hooks.OnConnectCommitted, domain.EventConnectCommitted, conn, func(e *domain.ConnectionEvent) {
		e.Node = &node
		e.Duration = time.Since(start)
	})
	return node, nil
}

func (m *Machine) generate(ctx context.Context, conn domain.Connection, instructions string) (domain.Node, error) {
	src, ok := m.store.Node(conn.Source)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, conn.Source)
	}
	dst, ok := m.store.Node(conn.Target)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, conn.Target)
	}

	img, err := m.generator.Generate(ctx, []domain.Node{src, dst}, instructions)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			return domain.Node{}, err
		}
		return domain.Node{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	node := NewGeneratedNode(graph.NewNodeID(domain.PrefixGenerated), domain.Midpoint(src.Position, dst.Position), img, instructions)
	err = m.store.Batch(func(tx *graph.Tx) error {
		if _, err := tx.AddNode(node); err != nil {
			return err
		}
		return tx.PromoteEdge(conn.PendingEdgeID(), domain.NewConfirmedEdge(conn.Source, conn.Target))
	})
	if err != nil {
		return domain.Node{}, fmt.Errorf("commit %s: %w", conn.PendingEdgeID(), err)
	}
	return node, nil
}

func (m *Machine) finish(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// NewGeneratedNode builds the node committed for a generation result.
func NewGeneratedNode(id string, pos domain.Position, img domain.GeneratedImage, prompt string) domain.Node {
	title := img.Title
	if title == "" {
		title = DefaultGeneratedTitle
	}
	return domain.Node{
		ID:       id,
		Position: pos,
		Data: domain.NodeData{
			Title:    title,
			ImageURL: img.ImageURL,
			Template: domain.TemplateGenerated,
			Width:    img.Width,
			Height:   img.Height,
			Prompt:   prompt,
		},
	}
}

// RemoveNode deletes a node and its edges. Nodes taking part in the open
// connection or a running generation are refused, and so is a removal that
// would leave the edges in more than one group.
func (m *Machine) RemoveNode(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.involvesLocked(id) {
		return fmt.Errorf("%w: %s", domain.ErrNodeBusy, id)
	}
	return m.store.Batch(func(tx *graph.Tx) error {
		if err := tx.RemoveNode(id); err != nil {
			return err
		}
		if !graph.StaysConnected(tx.Edges(), m.tentativeLocked) {
			return fmt.Errorf("%w: removing %s", domain.ErrWouldSplitGraph, id)
		}
		return nil
	})
}

// tentativeLocked reports whether e may still be dropped: the pending edge of
// the open connection or of a running generation.
func (m *Machine) tentativeLocked(e domain.Edge) bool {
	if _, ok := m.inflight[e.ID]; ok {
		return true
	}
	return m.conn != nil && e.ID == m.conn.PendingEdgeID()
}

// Status returns the phase, the open connection and the in-flight generations.
//
// The interactive slot is released when a generation starts, so a running
// generation reports PhaseIdle and appears in Generating rather than as
// PhaseConfirming. Presentation layers show Generating entries as busy edges.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{Phase: m.phase}
	if m.conn != nil {
		c := *m.conn
		st.Connection = &c
		st.Affordance = m.affordance(c)
	}
	for _, k := range m.order {
		st.Generating = append(st.Generating, m.inflight[k])
	}
	return st
}

// Phase returns the phase of the interactive slot.
func (m *Machine) Phase() domain.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Involves reports whether node id takes part in the open connection or an in-flight generation.
func (m *Machine) Involves(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.involvesLocked(id)
}

func (m *Machine) involvesLocked(id string) bool {
	if m.conn != nil && (m.conn.Source == id || m.conn.Target == id) {
		return true
	}
	for _, c := range m.inflight {
		if c.Source == id || c.Target == id {
			return true
		}
	}
	return false
}

// affordance places the confirm/cancel controls to the right of the target node.
func (m *Machine) affordance(c domain.Connection) *domain.Position {
	target, ok := m.store.Node(c.Target)
	if !ok {
		return nil
	}
	return &domain.Position{
		X: target.Position.X + domain.NodeWidth + domain.AffordanceMargin,
		Y: target.Position.Y + domain.AffordanceMargin,
	}
}

func (m *Machine) fire(ctx context.Context, hook func(context.Context, *domain.ConnectionEvent), t domain.EventType, conn domain.Connection, fill func(*domain.ConnectionEvent)) {
	if hook == nil {
		return
	}
	e := &domain.ConnectionEvent{EventBase: domain.NewEventBase(t, m.canvasID), Connection: conn}
	if fill != nil {
		fill(e)
	}
	hook(ctx, e)
}
