package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/mosaic/pkg/domain"
)

// SubscribeEvents handles GET /canvases/{canvasId}/events (SSE).
// The first message carries the whole canvas; later ones carry only what changed.
// The optional watch query (nodes,edges,connection) limits which changes are sent.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	c, ok := s.canvas(w, r)
	if !ok {
		return
	}

	var watch []string
	if q := r.URL.Query().Get("watch"); q != "" {
		watch = strings.Split(q, ",")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	s.logger.Info("SSE: subscribing to canvas updates", "canvas", c.ID())
	snapshots := c.Watch(r.Context())

	var prev *domain.Snapshot
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "canvas", c.ID())
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			diff := domain.Diff(prev, &snap)
			prev = &snap
			if diff == nil || !filterDiff(diff, watch) {
				continue
			}

			data, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("SSE: failed to encode diff", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// filterDiff drops the sections of d that are not watched and reports
// whether anything is left. An empty watch list keeps everything.
func filterDiff(d *domain.SnapshotDiff, watch []string) bool {
	if len(watch) == 0 {
		return true
	}

	keep := map[string]bool{}
	for _, field := range watch {
		keep[strings.TrimSpace(field)] = true
	}
	if !keep["nodes"] {
		d.NodesUpserted, d.NodesRemoved = nil, nil
	}
	if !keep["edges"] {
		d.EdgesAdded, d.EdgesRemoved = nil, nil
	}
	if !keep["connection"] {
		d.Phase, d.Connection, d.ConnectionCleared, d.Generating = nil, nil, false, nil
	}
	return !d.IsEmpty()
}
