package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/internal/config"
	"github.com/aretw0/mosaic/pkg/adapters/file"
	"github.com/aretw0/mosaic/pkg/adapters/loam"
	"github.com/aretw0/mosaic/pkg/adapters/memory"
	"github.com/aretw0/mosaic/pkg/adapters/placeholder"
	"github.com/aretw0/mosaic/pkg/adapters/process"
	"github.com/aretw0/mosaic/pkg/adapters/redis"
	"github.com/aretw0/mosaic/pkg/observability"
	"github.com/aretw0/mosaic/pkg/persistence/middleware"
	"github.com/aretw0/mosaic/pkg/ports"
	"github.com/aretw0/mosaic/pkg/registry"
	"github.com/aretw0/mosaic/pkg/session"
)

// flushTimeout bounds how long Close waits for queued canvas writes.
const flushTimeout = 5 * time.Second

// Stack is the set of services every command runs on, wired from a Config.
type Stack struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    ports.CanvasStore
	Manager  *session.Manager
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	closers []func() error
}

// NewStack builds the store, generator, seed source and session manager described by cfg.
// Relative paths are resolved against dir.
func NewStack(cfg config.Config, dir string, logger *slog.Logger) (*Stack, error) {
	s := &Stack{Config: cfg, Logger: logger}

	s.Registry = prometheus.NewRegistry()
	s.Registry.MustRegister(collectors.NewGoCollector())
	s.Metrics = observability.NewMetrics(s.Registry)

	var sessionOpts []session.Option
	switch cfg.Store.Driver {
	case "memory":
		s.Store = memory.NewStore()
	case "file":
		s.Store = file.New(filepath.Join(resolve(dir, cfg.Store.Path), "canvases"))
	case "redis":
		rs := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB,
			redis.WithPrefix(cfg.Store.Redis.Prefix),
			redis.WithTTL(cfg.Store.Redis.TTL),
		)
		s.Store = rs
		s.closers = append(s.closers, rs.Close)
		sessionOpts = append(sessionOpts, session.WithLocker(redis.NewLocker(rs.Client(), cfg.Store.Redis.Prefix)))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	var canvasOpts []mosaic.Option
	if vs, ok := s.Store.(ports.ViewportStore); ok {
		canvasOpts = append(canvasOpts, mosaic.WithViewportStore(vs))
	}
	if key := cfg.Store.Encryption.Key; key != "" {
		keys, err := middleware.ParseKeys(key, cfg.Store.Encryption.Previous...)
		if err != nil {
			s.Close()
			return nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Store = middleware.Chain(s.Store, mw)
	}

	gen, err := newGenerator(cfg.Generator, dir, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	canvasOpts = append(canvasOpts,
		mosaic.WithGenerator(gen),
		mosaic.WithLogger(logger),
		mosaic.WithGenerationTimeout(cfg.Generator.Timeout),
		mosaic.WithLifecycleHooks(s.Metrics.Hooks()),
		mosaic.WithLifecycleHooks(observability.LogHooks(logger)),
	)

	if cfg.Templates.Dir != "" {
		catalog, err := loam.Open(resolve(dir, cfg.Templates.Dir))
		if err != nil {
			s.Close()
			return nil, err
		}
		canvasOpts = append(canvasOpts, mosaic.WithSeed(catalog))
	}

	sessionOpts = append(sessionOpts,
		session.WithLogger(logger),
		session.WithCanvasOptions(canvasOpts...),
	)
	s.Manager = session.NewManager(s.Store, sessionOpts...)
	return s, nil
}

// Close waits for queued canvas writes, then releases backend connections.
func (s *Stack) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	first := s.Manager.Flush(ctx)
	if first != nil {
		s.Logger.Warn("unsaved canvas changes", "error", first)
	}
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// newGenerator registers the built-in placeholder and every process tool, then
// picks the one cfg selects.
func newGenerator(cfg config.GeneratorConfig, dir string, logger *slog.Logger) (ports.Generator, error) {
	reg := registry.NewRegistry()
	reg.Register("placeholder", placeholder.New())

	name := "placeholder"
	switch cfg.Kind {
	case "", "placeholder":
	case "process":
		tools, err := process.LoadRegistry(resolve(dir, cfg.Registry))
		if err != nil {
			return nil, err
		}
		for toolName := range tools {
			gen, err := process.New(tools, toolName, process.WithBaseDir(dir), process.WithLogger(logger))
			if err != nil {
				return nil, fmt.Errorf("error initializing generator: %w", err)
			}
			reg.Register(toolName, gen)
		}
		name = cfg.Tool
	default:
		return nil, fmt.Errorf("unknown generator kind %q", cfg.Kind)
	}

	gen, err := reg.Get(name)
	if err != nil {
		logger.Debug("available generators", "names", reg.Names())
		return nil, err
	}
	return gen, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
