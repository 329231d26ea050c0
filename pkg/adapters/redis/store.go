package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/mosaic/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "mosaic:"

// noExpiryScore is the index score of canvases saved without a TTL (2100-01-01).
const noExpiryScore = 4102444800

// Store implements ports.CanvasStore and ports.ViewportStore using Redis.
// Node lists live at <prefix>canvas-nodes-<id>, viewports at
// <prefix>canvas-viewport-<id>, and a ZSET index tracks canvas expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for canvases.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the node list and refreshes the index entry.
func (s *Store) Save(ctx context.Context, canvasID string, graph *domain.SerializedGraph) error {
	data, err := json.Marshal(graph.Nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal canvas: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiryScore
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.prefix+domain.NodesKey(canvasID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: canvasID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the node list of a canvas.
func (s *Store) Load(ctx context.Context, canvasID string) (*domain.SerializedGraph, error) {
	var nodes []domain.Node
	if err := s.get(ctx, domain.NodesKey(canvasID), &nodes); err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []domain.Node{}
	}
	return &domain.SerializedGraph{Nodes: nodes}, nil
}

// Delete removes the canvas, its viewport and its index entry.
func (s *Store) Delete(ctx context.Context, canvasID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.prefix+domain.NodesKey(canvasID), s.prefix+domain.ViewportKey(canvasID))
	pipe.ZRem(ctx, s.indexKey(), canvasID)
	_, err := pipe.Exec(ctx)
	return err
}

// List prunes expired index entries and returns the rest.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired canvases: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list canvases: %w", err)
	}
	return ids, nil
}

// SaveViewport stores the viewport with the same TTL as canvases.
func (s *Store) SaveViewport(ctx context.Context, canvasID string, vp domain.Viewport) error {
	data, err := json.Marshal(vp)
	if err != nil {
		return fmt.Errorf("failed to marshal viewport: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+domain.ViewportKey(canvasID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save viewport: %w", err)
	}
	return nil
}

// LoadViewport reads the viewport of a canvas.
func (s *Store) LoadViewport(ctx context.Context, canvasID string) (domain.Viewport, error) {
	var vp domain.Viewport
	err := s.get(ctx, domain.ViewportKey(canvasID), &vp)
	return vp, err
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.ErrCanvasNotFound
		}
		return fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	if err := json.Unmarshal(val, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorruptCanvas, key, err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
