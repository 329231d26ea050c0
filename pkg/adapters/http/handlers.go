package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/internal/presentation/graph"
	"github.com/aretw0/mosaic/pkg/domain"
)

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type instructionsRequest struct {
	Instructions string `json:"instructions"`
}

type infoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// pathParam binds a simple-style path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return value, nil
}

// canvas resolves the {canvasId} of the request. It writes the error response itself.
func (s *Server) canvas(w http.ResponseWriter, r *http.Request) (*mosaic.Canvas, bool) {
	id, err := pathParam(r, "canvasId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	c, err := s.canvases.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return c, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{Name: "mosaic", Version: mosaic.Version})
}

// ListCanvases handles GET /canvases.
func (s *Server) ListCanvases(w http.ResponseWriter, r *http.Request) {
	ids, err := s.canvases.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetSnapshot handles GET /canvases/{canvasId}.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// DeleteCanvas handles DELETE /canvases/{canvasId}.
func (s *Server) DeleteCanvas(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "canvasId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.canvases.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddNode handles POST /canvases/{canvasId}/nodes.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	var node domain.Node
	if !decode(w, r, &node) {
		return
	}
	added, err := c.AddNode(r.Context(), node)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// GetNode handles GET /canvases/{canvasId}/nodes/{nodeId}.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	id, err := pathParam(r, "nodeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	node, found := c.Node(id)
	if !found {
		s.fail(w, r, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// RemoveNode handles DELETE /canvases/{canvasId}/nodes/{nodeId}.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	id, err := pathParam(r, "nodeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := c.RemoveNode(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNode handles PUT /canvases/{canvasId}/nodes/{nodeId}/position.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	id, err := pathParam(r, "nodeId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var pos domain.Position
	if !decode(w, r, &pos) {
		return
	}
	if err := c.MoveNode(r.Context(), id, pos); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Connect handles POST /canvases/{canvasId}/connections.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	var body connectRequest
	if !decode(w, r, &body) {
		return
	}
	if err := c.Connect(r.Context(), body.Source, body.Target); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// Confirm handles POST /canvases/{canvasId}/connections/confirm.
func (s *Server) Confirm(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	if err := c.Confirm(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// Cancel handles POST /canvases/{canvasId}/connections/cancel.
func (s *Server) Cancel(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	if err := c.Cancel(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// Submit handles POST /canvases/{canvasId}/connections/instructions.
// It blocks until the generated node is committed or the generation fails.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	var body instructionsRequest
	if !decode(w, r, &body) {
		return
	}
	node, err := c.Submit(r.Context(), body.Instructions)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// Generate handles POST /canvases/{canvasId}/generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	var body instructionsRequest
	if !decode(w, r, &body) {
		return
	}
	node, err := c.Generate(r.Context(), body.Instructions)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// GetViewport handles GET /canvases/{canvasId}/viewport.
func (s *Server) GetViewport(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Viewport(r.Context()))
}

// SaveViewport handles PUT /canvases/{canvasId}/viewport.
func (s *Server) SaveViewport(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	var vp domain.Viewport
	if !decode(w, r, &vp) {
		return
	}
	if err := c.SaveViewport(r.Context(), vp); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suggestions handles GET /canvases/{canvasId}/suggestions.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Suggestions())
}

// Graph handles GET /canvases/{canvasId}/graph.
func (s *Server) Graph(w http.ResponseWriter, r *http.Request) {
	c, ok := s.canvas(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(c.Snapshot()))
}
