package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/internal/presentation/graph"
	"github.com/aretw0/mosaic/pkg/domain"
)

type canvasArgs struct {
	CanvasID string `json:"canvas_id"`
}

type connectArgs struct {
	CanvasID string `json:"canvas_id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
}

type instructionsArgs struct {
	CanvasID     string `json:"canvas_id"`
	Instructions string `json:"instructions"`
}

type addNodeArgs struct {
	CanvasID string  `json:"canvas_id"`
	ImageURL string  `json:"image_url"`
	Title    string  `json:"title"`
	Template string  `json:"template"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

type moveNodeArgs struct {
	CanvasID string  `json:"canvas_id"`
	NodeID   string  `json:"node_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

func (s *Server) canvas(ctx context.Context, id string) (*mosaic.Canvas, error) {
	if id == "" {
		return nil, fmt.Errorf("canvas_id is required")
	}
	return s.canvases.Get(ctx, id)
}

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest, args canvasArgs) (domain.Snapshot, error) {
	c, err := s.canvas(ctx, args.CanvasID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest, args connectArgs) (domain.Snapshot, error) {
	c, err := s.canvas(ctx, args.CanvasID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := c.Connect(ctx, args.Source, args.Target); err != nil {
		return domain.Snapshot{}, fmt.Errorf("connect failed: %w", err)
	}
	return c.Snapshot(), nil
}

func (s *Server) handleConfirm(ctx context.Context, request mcp.CallToolRequest, args canvasArgs) (domain.Snapshot, error) {
	c, err := s.canvas(ctx, args.CanvasID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := c.Confirm(ctx); err != nil {
		return domain.Snapshot{}, fmt.Errorf("confirm failed: %w", err)
	}
	return c.Snapshot(), nil
}

func (s *Server) handleCancel(ctx context.Context, request mcp.CallToolRequest, args canvasArgs) (domain.Snapshot, error) {
	c, err := s.canvas(ctx, args.CanvasID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := c.Cancel(ctx); err != nil {
		return domain.Snapshot{}, fmt.Errorf("cancel failed: %w", err)
	}
	return c.Snapshot(), nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args instructionsArgs) (domain.Node, error) {
	c, err := s.canvas(ctx, args.CanvasID)
	if err != nil {
		return domain.Node{}, err
	}
	node, err := c.Submit(ctx, args.Instructions)
	if err != nil {
		s.logger.Warn("MCP submit failed", "canvas", args.CanvasID, "error", err)
		return domain.Node{}, fmt.Errorf("submit failed: %w", err)
	}
	return node, nil
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args instructionsArgs) (domain.Node, error) {
	c, err := s.canvas(ctx, args.CanvasID)
	if err != nil {
		return domain.Node{}, err
	}
	node, err := c.Generate(ctx, args.Instructions)
	if err != nil {
		s.logger.Warn("MCP generate failed", "canvas", args.CanvasID, "error", err)
		return domain.Node{}, fmt.Errorf("generate failed: %w", err)
	}
	return node, nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest, args addNodeArgs) (domain.Node, error) {
	c, err := s.canvas(ctx, args.CanvasID)
	if err != nil {
		return domain.Node{}, err
	}
	template := domain.Template(args.Template)
	if template == "" {
		template = domain.TemplateCustom
	}
	return c.AddNode(ctx, domain.Node{
		Position: domain.Position{X: args.X, Y: args.Y},
		Data: domain.NodeData{
			Title:    args.Title,
			ImageURL: args.ImageURL,
			Template: template,
			Width:    args.Width,
			Height:   args.Height,
		},
	})
}

func (s *Server) handleMoveNode(ctx context.Context, request mcp.CallToolRequest, args moveNodeArgs) (domain.Snapshot, error) {
	c, err := s.canvas(ctx, args.CanvasID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := c.MoveNode(ctx, args.NodeID, domain.Position{X: args.X, Y: args.Y}); err != nil {
		return domain.Snapshot{}, fmt.Errorf("move failed: %w", err)
	}
	return c.Snapshot(), nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := s.canvas(ctx, request.GetString("canvas_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(c.Snapshot())), nil
}
