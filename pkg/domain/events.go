package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventConnectRejected  EventType = "connect_rejected"
	EventConnectPending   EventType = "connect_pending"
	EventConnectConfirmed EventType = "connect_confirmed"
	EventConnectCancelled EventType = "connect_cancelled"
	EventGenerationStart  EventType = "generation_start"
	EventGenerationFailed EventType = "generation_failed"
	EventConnectCommitted EventType = "connect_committed"
	EventNodeAdded        EventType = "node_added"
	EventPersistFailed    EventType = "persist_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	CanvasID  string    `json:"canvas_id"`
}

// NewEventBase stamps an event of the given type.
func NewEventBase(t EventType, canvasID string) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t, CanvasID: canvasID}
}

// ConnectionEvent describes a step of the connection lifecycle.
type ConnectionEvent struct {
	EventBase
	Connection Connection `json:"connection"`

	// Err carries the rejection or failure reason, if any.
	Err error `json:"-"`

	// Duration is set on generation outcomes.
	Duration time.Duration `json:"duration,omitempty"`

	// Node is the node created by a commit.
	Node *Node `json:"node,omitempty"`
}

// NodeEvent represents a node added outside of a connection commit.
type NodeEvent struct {
	EventBase
	Node Node `json:"node"`
}

// PersistEvent reports a failed best-effort write.
type PersistEvent struct {
	EventBase
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for canvas observability.
// Every field is optional.
type LifecycleHooks struct {
	OnConnectRejected  func(context.Context, *ConnectionEvent)
	OnConnectPending   func(context.Context, *ConnectionEvent)
	OnConnectConfirmed func(context.Context, *ConnectionEvent)
	OnConnectCancelled func(context.Context, *ConnectionEvent)
	OnGenerationStart  func(context.Context, *ConnectionEvent)
	OnGenerationFailed func(context.Context, *ConnectionEvent)
	OnConnectCommitted func(context.Context, *ConnectionEvent)
	OnNodeAdded        func(context.Context, *NodeEvent)
	OnPersistFailed    func(context.Context, *PersistEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnConnectRejected:  chain(h.OnConnectRejected, other.OnConnectRejected),
		OnConnectPending:   chain(h.OnConnectPending, other.OnConnectPending),
		OnConnectConfirmed: chain(h.OnConnectConfirmed, other.OnConnectConfirmed),
		OnConnectCancelled: chain(h.OnConnectCancelled, other.OnConnectCancelled),
		OnGenerationStart:  chain(h.OnGenerationStart, other.OnGenerationStart),
		OnGenerationFailed: chain(h.OnGenerationFailed, other.OnGenerationFailed),
		OnConnectCommitted: chain(h.OnConnectCommitted, other.OnConnectCommitted),
		OnNodeAdded:        chain(h.OnNodeAdded, other.OnNodeAdded),
		OnPersistFailed:    chain(h.OnPersistFailed, other.OnPersistFailed),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
