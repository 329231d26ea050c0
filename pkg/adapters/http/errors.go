package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/input"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCanvasNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrEdgeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSelfLoop),
		errors.Is(err, domain.ErrWouldSplitGraph),
		errors.Is(err, domain.ErrConnectionInProgress),
		errors.Is(err, domain.ErrNoConnection),
		errors.Is(err, domain.ErrNotConfirming),
		errors.Is(err, domain.ErrNodeBusy),
		errors.Is(err, domain.ErrNodeExists),
		errors.Is(err, domain.ErrDuplicateEdge):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyInstructions),
		errors.Is(err, input.ErrTooLarge),
		errors.Is(err, input.ErrInvalidUTF8):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// fail logs err and writes it with its mapped status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err)
}
