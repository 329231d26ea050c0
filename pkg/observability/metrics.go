package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/mosaic/pkg/domain"
)

// Metrics holds the canvas collectors.
type Metrics struct {
	Connections        *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	InFlight           prometheus.Gauge
	NodesAdded         *prometheus.CounterVec
	PersistFailures    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg (if not nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosaic_connections_total",
				Help: "Connection lifecycle transitions by outcome",
			},
			[]string{"canvas", "outcome"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosaic_connection_rejections_total",
				Help: "Rejected connection gestures by reason",
			},
			[]string{"canvas", "reason"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mosaic_generation_duration_seconds",
				Help:    "Duration of generation calls",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"canvas", "result"},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mosaic_generations_in_flight",
			Help: "Generation calls currently running",
		}),
		NodesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosaic_nodes_added_total",
				Help: "Nodes added outside of connection commits",
			},
			[]string{"canvas"},
		),
		PersistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosaic_persist_failures_total",
				Help: "Failed best-effort canvas writes",
			},
			[]string{"canvas"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Connections, m.Rejections, m.GenerationDuration, m.InFlight, m.NodesAdded, m.PersistFailures)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	outcome := func(name string) func(context.Context, *domain.ConnectionEvent) {
		return func(_ context.Context, e *domain.ConnectionEvent) {
			m.Connections.WithLabelValues(e.CanvasID, name).Inc()
		}
	}
	return domain.LifecycleHooks{
		OnConnectRejected: func(_ context.Context, e *domain.ConnectionEvent) {
			m.Rejections.WithLabelValues(e.CanvasID, RejectionReason(e.Err)).Inc()
		},
		OnConnectPending:   outcome("pending"),
		OnConnectConfirmed: outcome("confirmed"),
		OnConnectCancelled: outcome("cancelled"),
		OnGenerationStart: func(context.Context, *domain.ConnectionEvent) {
			m.InFlight.Inc()
		},
		OnGenerationFailed: func(_ context.Context, e *domain.ConnectionEvent) {
			m.InFlight.Dec()
			m.Connections.WithLabelValues(e.CanvasID, "failed").Inc()
			m.GenerationDuration.WithLabelValues(e.CanvasID, "error").Observe(e.Duration.Seconds())
		},
		OnConnectCommitted: func(_ context.Context, e *domain.ConnectionEvent) {
			m.InFlight.Dec()
			m.Connections.WithLabelValues(e.CanvasID, "committed").Inc()
			m.GenerationDuration.WithLabelValues(e.CanvasID, "ok").Observe(e.Duration.Seconds())
		},
		OnNodeAdded: func(_ context.Context, e *domain.NodeEvent) {
			m.NodesAdded.WithLabelValues(e.CanvasID).Inc()
		},
		OnPersistFailed: func(_ context.Context, e *domain.PersistEvent) {
			m.PersistFailures.WithLabelValues(e.CanvasID).Inc()
		},
	}
}

// RejectionReason maps a rejection error to a low-cardinality label.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSelfLoop):
		return "self_loop"
	case errors.Is(err, domain.ErrNodeNotFound):
		return "unknown_node"
	case errors.Is(err, domain.ErrConnectionInProgress):
		return "in_progress"
	case errors.Is(err, domain.ErrDuplicateEdge):
		return "duplicate"
	case errors.Is(err, domain.ErrWouldSplitGraph):
		return "split_graph"
	default:
		return "other"
	}
}
