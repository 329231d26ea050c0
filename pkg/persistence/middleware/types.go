// Package middleware decorates canvas stores with cross-cutting behavior.
package middleware

import "github.com/aretw0/mosaic/pkg/ports"

// Middleware allows wrapping a CanvasStore to add behavior.
type Middleware func(ports.CanvasStore) ports.CanvasStore

// Chain applies mws to store; the first middleware is the outermost.
func Chain(store ports.CanvasStore, mws ...Middleware) ports.CanvasStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
