package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/internal/logging"
	"github.com/aretw0/mosaic/pkg/ports"
)

// DefaultLockTTL bounds how long a replica may hold a canvas lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager caches open canvases and serializes their creation.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.CanvasStore
	opts  []mosaic.Option

	mu       sync.Mutex // guards locks and canvases
	locks    map[string]*lockEntry
	canvases map[string]*mosaic.Canvas

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking around canvas creation and deletion.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithCanvasOptions sets the options every canvas is opened with.
// The manager's store is always added.
func WithCanvasOptions(opts ...mosaic.Option) Option {
	return func(m *Manager) {
		m.opts = append(m.opts, opts...)
	}
}

// NewManager creates a Manager persisting canvases in store.
func NewManager(store ports.CanvasStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		canvases: make(map[string]*mosaic.Canvas),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(canvasID) after unlocking.
func (m *Manager) acquire(canvasID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[canvasID]
	if !exists {
		entry = &lockEntry{}
		m.locks[canvasID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(canvasID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[canvasID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, canvasID)
	}
}

func (m *Manager) cached(canvasID string) (*mosaic.Canvas, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.canvases[canvasID]
	return c, ok
}

// Get returns the live canvas for canvasID, opening (and possibly seeding) it on first use.
func (m *Manager) Get(ctx context.Context, canvasID string) (*mosaic.Canvas, error) {
	if c, ok := m.cached(canvasID); ok {
		return c, nil
	}

	var canvas *mosaic.Canvas
	err := m.WithLock(ctx, canvasID, func(ctx context.Context) error {
		if c, ok := m.cached(canvasID); ok {
			canvas = c
			return nil
		}

		opts := append([]mosaic.Option{mosaic.WithStore(m.store)}, m.opts...)
		c, err := mosaic.Open(ctx, canvasID, opts...)
		if err != nil {
			return fmt.Errorf("failed to open canvas %s: %w", canvasID, err)
		}

		m.mu.Lock()
		m.canvases[canvasID] = c
		m.mu.Unlock()
		m.logger.Debug("canvas opened", "canvas", canvasID)
		canvas = c
		return nil
	})
	return canvas, err
}

// Delete forgets the live canvas and removes it from the store.
// Queued writes of the live canvas land first so they cannot recreate it.
func (m *Manager) Delete(ctx context.Context, canvasID string) error {
	return m.WithLock(ctx, canvasID, func(ctx context.Context) error {
		m.mu.Lock()
		c, ok := m.canvases[canvasID]
		delete(m.canvases, canvasID)
		m.mu.Unlock()
		if ok {
			if err := c.Flush(ctx); err != nil {
				return fmt.Errorf("failed to flush canvas %s: %w", canvasID, err)
			}
		}
		return m.store.Delete(ctx, canvasID)
	})
}

// Flush waits for the queued writes of every live canvas.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	live := make([]*mosaic.Canvas, 0, len(m.canvases))
	for _, c := range m.canvases {
		live = append(live, c)
	}
	m.mu.Unlock()

	for _, c := range live {
		if err := c.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// List returns stored and live canvas ids, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	stored, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(stored))
	for _, id := range stored {
		seen[id] = true
	}
	m.mu.Lock()
	for id := range m.canvases {
		seen[id] = true
	}
	m.mu.Unlock()

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Store returns the underlying canvas store.
func (m *Manager) Store() ports.CanvasStore {
	return m.store
}

// WithLock executes fn while holding the local and (if configured) distributed lock for the canvas.
func (m *Manager) WithLock(ctx context.Context, canvasID string, fn func(context.Context) error) error {
	entry := m.acquire(canvasID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(canvasID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, "canvas:"+canvasID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"canvas", canvasID,
					"error", err,
				)
			}
		}()
	}

	return fn(ctx)
}
