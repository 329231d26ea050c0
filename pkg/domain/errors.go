package domain

import "errors"

// Graph store errors.
var (
	// ErrNodeExists is returned when adding a node whose id is already taken.
	ErrNodeExists = errors.New("node already exists")

	// ErrNodeNotFound is returned when an operation references an unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned when promoting an edge that is not in the store.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrDuplicateEdge is returned when an ordered pair already has an edge.
	ErrDuplicateEdge = errors.New("an edge already exists for this pair")
)

// Connection lifecycle errors.
var (
	// ErrSelfLoop is returned when source and target are the same node.
	ErrSelfLoop = errors.New("cannot connect a node to itself")

	// ErrWouldSplitGraph is returned when the edge would start a separate group.
	ErrWouldSplitGraph = errors.New("connection would create a separate group")

	// ErrConnectionInProgress is returned when another connection awaits confirmation.
	ErrConnectionInProgress = errors.New("another connection is awaiting confirmation")

	// ErrNoConnection is returned when confirming, cancelling or submitting with nothing open.
	ErrNoConnection = errors.New("no connection in progress")

	// ErrNotConfirming is returned when instructions arrive before the connection was confirmed.
	ErrNotConfirming = errors.New("connection has not been confirmed")

	// ErrEmptyInstructions is returned when the submitted instructions are blank.
	ErrEmptyInstructions = errors.New("instructions cannot be empty")

	// ErrGenerationFailed wraps failures of the external generation call.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrNodeBusy is returned when removing a node that takes part in an open connection.
	ErrNodeBusy = errors.New("node is part of a connection in progress")
)

// Persistence errors.
var (
	// ErrCanvasNotFound is returned when a canvas id cannot be found in the store.
	ErrCanvasNotFound = errors.New("canvas not found")

	// ErrCorruptCanvas is returned when a persisted canvas cannot be decoded.
	ErrCorruptCanvas = errors.New("persisted canvas is malformed")
)
