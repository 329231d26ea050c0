package mosaic

import (
	"context"
	"sync"

	"github.com/aretw0/mosaic/pkg/domain"
)

// writer saves node lists off the caller's path. Only the latest pending list
// is kept, and a single goroutine runs while work is queued, so saves never
// reorder and never block graph mutations.
type writer struct {
	save func([]domain.Node)

	mu      sync.Mutex
	next    []domain.Node
	dirty   bool
	running bool
	idle    chan struct{}
}

func newWriter(save func([]domain.Node)) *writer {
	return &writer{save: save}
}

// submit queues nodes, replacing any list not yet written.
func (w *writer) submit(nodes []domain.Node) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.next = nodes
	w.dirty = true
	if w.running {
		return
	}
	w.running = true
	w.idle = make(chan struct{})
	go w.loop()
}

func (w *writer) loop() {
	for {
		w.mu.Lock()
		if !w.dirty {
			w.running = false
			close(w.idle)
			w.mu.Unlock()
			return
		}
		nodes := w.next
		w.next, w.dirty = nil, false
		w.mu.Unlock()

		w.save(nodes)
	}
}

// wait blocks until every submitted list has been written or ctx is done.
func (w *writer) wait(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	idle := w.idle
	w.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
