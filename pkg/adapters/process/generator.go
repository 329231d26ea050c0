package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/mosaic/internal/logging"
	"github.com/aretw0/mosaic/pkg/domain"
)

// EnvPrefix marks the variables that carry generation arguments to the process.
const EnvPrefix = "MOSAIC_ARG_"

// Generator implements ports.Generator by running an allow-listed command.
//
// Arguments are passed as environment variables, never as flags:
//
//	MOSAIC_ARG_INSTRUCTIONS  the user's instructions
//	MOSAIC_ARG_SOURCES       JSON array of the source nodes
//	MOSAIC_ARG_SOURCE_COUNT  number of source nodes
//
// The process prints either a JSON object ({"imageUrl", "title", "width", "height"})
// or a bare image URL on stdout.
type Generator struct {
	tool    ToolConfig
	baseDir string
	logger  *slog.Logger
}

// Option configures the Generator.
type Option func(*Generator)

// WithBaseDir sets the working directory for the process.
func WithBaseDir(dir string) Option {
	return func(g *Generator) {
		g.baseDir = dir
	}
}

// WithLogger configures a logger for the Generator.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New selects tool from the registry.
func New(registry map[string]ToolConfig, tool string, opts ...Option) (*Generator, error) {
	cfg, ok := registry[tool]
	if !ok {
		return nil, fmt.Errorf("generator tool not registered: %s", tool)
	}
	g := &Generator{tool: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate runs the tool and decodes its output.
func (g *Generator) Generate(ctx context.Context, sources []domain.Node, instructions string) (domain.GeneratedImage, error) {
	srcJSON, err := json.Marshal(sources)
	if err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("failed to marshal sources: %w", err)
	}

	cmd := exec.CommandContext(ctx, g.tool.Command, g.tool.Args...)
	cmd.Dir = g.baseDir
	cmd.Env = cmd.Environ()
	for k, v := range g.tool.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Env = append(cmd.Env,
		EnvPrefix+"INSTRUCTIONS="+instructions,
		EnvPrefix+"SOURCES="+string(srcJSON),
		EnvPrefix+"SOURCE_COUNT="+strconv.Itoa(len(sources)),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g.logger.Debug("running generator", "tool", g.tool.Name, "sources", len(sources))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return domain.GeneratedImage{}, ctx.Err()
		}
		return domain.GeneratedImage{}, fmt.Errorf("%w: %s: %v: %s", domain.ErrGenerationFailed, g.tool.Name, err, strings.TrimSpace(stderr.String()))
	}

	img, err := ParseOutput(stdout.String())
	if err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("%w: %s: %w", domain.ErrGenerationFailed, g.tool.Name, err)
	}
	return img, nil
}

// ParseOutput decodes the stdout of a generator process.
func ParseOutput(out string) (domain.GeneratedImage, error) {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return domain.GeneratedImage{}, fmt.Errorf("empty output")
	}

	var img domain.GeneratedImage
	if strings.HasPrefix(trimmed, "{") {
		var raw map[string]any
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return img, fmt.Errorf("invalid JSON output: %w", err)
		}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &img,
		})
		if err != nil {
			return img, err
		}
		if err := dec.Decode(raw); err != nil {
			return img, fmt.Errorf("unexpected output shape: %w", err)
		}
	} else {
		// First line is the image URL.
		img.ImageURL, _, _ = strings.Cut(trimmed, "\n")
		img.ImageURL = strings.TrimSpace(img.ImageURL)
	}

	if img.ImageURL == "" {
		return img, fmt.Errorf("output has no image url")
	}
	return img, nil
}
