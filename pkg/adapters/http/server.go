// Package http exposes canvases over a REST + server-sent events API.
// Requests are validated against the embedded OpenAPI document before they
// reach a handler.
package http

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/internal/logging"
)

//go:embed openapi.yaml
var rawSpec []byte

// Canvases resolves live canvases by id. session.Manager implements it.
type Canvases interface {
	Get(ctx context.Context, canvasID string) (*mosaic.Canvas, error)
	Delete(ctx context.Context, canvasID string) error
	List(ctx context.Context) ([]string, error)
}

// Server serves the canvas API.
type Server struct {
	canvases Canvases
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	router   routers.Router
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics exposes the gatherer on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// NewHandler creates the HTTP handler for the given canvases.
func NewHandler(canvases Canvases, opts ...Option) (http.Handler, error) {
	s := &Server{
		canvases: canvases,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s.router, err = legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.validate)

		r.Get("/health", s.Health)
		r.Get("/info", s.Info)
		r.Get("/canvases", s.ListCanvases)

		r.Route("/canvases/{canvasId}", func(r chi.Router) {
			r.Get("/", s.GetSnapshot)
			r.Delete("/", s.DeleteCanvas)

			r.Post("/nodes", s.AddNode)
			r.Get("/nodes/{nodeId}", s.GetNode)
			r.Delete("/nodes/{nodeId}", s.RemoveNode)
			r.Put("/nodes/{nodeId}/position", s.MoveNode)

			r.Post("/connections", s.Connect)
			r.Post("/connections/confirm", s.Confirm)
			r.Post("/connections/cancel", s.Cancel)
			r.Post("/connections/instructions", s.Submit)
			r.Post("/generate", s.Generate)

			r.Get("/viewport", s.GetViewport)
			r.Put("/viewport", s.SaveViewport)

			r.Get("/suggestions", s.Suggestions)
			r.Get("/graph", s.Graph)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Mosaic API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
