// Package mcp exposes canvases as Model Context Protocol tools, so agents can
// inspect a canvas, open and confirm connections and trigger generations.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/internal/logging"
	"github.com/aretw0/mosaic/pkg/domain"
)

const resourcePrefix = "mosaic://canvases/"

// Canvases resolves live canvases by id. session.Manager implements it.
type Canvases interface {
	Get(ctx context.Context, canvasID string) (*mosaic.Canvas, error)
	List(ctx context.Context) ([]string, error)
}

// Server wraps the canvases and exposes them as an MCP Server.
type Server struct {
	canvases  Canvases
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(canvases Canvases, opts ...Option) *Server {
	s := &Server{
		canvases:  canvases,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("mosaic-mcp", mosaic.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func canvasIDParam() mcp.ToolOption {
	return mcp.WithString("canvas_id", mcp.Required(), mcp.Description("Canvas identifier"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_snapshot",
		mcp.WithDescription("Return the nodes, edges and connection phase of a canvas."),
		canvasIDParam(),
		mcp.WithOutputSchema[domain.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleSnapshot))

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Open a pending connection from source to target. It must be confirmed before instructions are accepted."),
		canvasIDParam(),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source node ID")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target node ID")),
		mcp.WithOutputSchema[domain.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleConnect))

	s.mcpServer.AddTool(mcp.NewTool("confirm",
		mcp.WithDescription("Confirm the pending connection."),
		canvasIDParam(),
		mcp.WithOutputSchema[domain.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleConfirm))

	s.mcpServer.AddTool(mcp.NewTool("cancel",
		mcp.WithDescription("Discard the open connection and its pending edge."),
		canvasIDParam(),
		mcp.WithOutputSchema[domain.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleCancel))

	s.mcpServer.AddTool(mcp.NewTool("submit_instructions",
		mcp.WithDescription("Generate an image from the confirmed connection. Blocks until the node is added."),
		canvasIDParam(),
		mcp.WithString("instructions", mcp.Required(), mcp.Description("What to generate from the two images")),
		mcp.WithOutputSchema[domain.Node](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("generate",
		mcp.WithDescription("Generate an image without source nodes and add it to the canvas."),
		canvasIDParam(),
		mcp.WithString("instructions", mcp.Required(), mcp.Description("What to generate")),
		mcp.WithOutputSchema[domain.Node](),
	), mcp.NewStructuredToolHandler(s.handleGenerate))

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Place an image on the canvas."),
		canvasIDParam(),
		mcp.WithString("image_url", mcp.Required(), mcp.Description("Image URL or data URI")),
		mcp.WithString("title", mcp.Description("Display title")),
		mcp.WithString("template", mcp.Description("Style label, e.g. Minecraft or Custom")),
		mcp.WithNumber("x", mcp.Description("Horizontal position")),
		mcp.WithNumber("y", mcp.Description("Vertical position")),
		mcp.WithNumber("width", mcp.Description("Width in pixels")),
		mcp.WithNumber("height", mcp.Description("Height in pixels")),
		mcp.WithOutputSchema[domain.Node](),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	s.mcpServer.AddTool(mcp.NewTool("move_node",
		mcp.WithDescription("Move a node to a new position."),
		canvasIDParam(),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node ID")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Horizontal position")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Vertical position")),
		mcp.WithOutputSchema[domain.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleMoveNode))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Render the canvas as a Mermaid flowchart."),
		canvasIDParam(),
	), s.handleGraph)

	s.mcpServer.AddTool(mcp.NewTool("list_canvases",
		mcp.WithDescription("List known canvas ids."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.canvases.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(resourcePrefix+"{canvasId}", "Canvas snapshot",
		mcp.WithTemplateDescription("Nodes, edges and connection phase of a canvas."),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI
		id := strings.TrimPrefix(uri, resourcePrefix)
		if id == "" || id == uri {
			return nil, fmt.Errorf("invalid canvas resource: %s", uri)
		}
		c, err := s.canvases.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to open canvas: %w", err)
		}
		jsonBytes, _ := json.Marshal(c.Snapshot())

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
