package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/pkg/domain"
	"github.com/aretw0/mosaic/pkg/observability"
)

func TestMetrics_RecordCanvasActivity(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	c, err := mosaic.Open(ctx, "main", mosaic.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)

	require.Error(t, c.Connect(ctx, "1", "1"))
	require.NoError(t, c.Connect(ctx, "1", "2"))
	require.NoError(t, c.Confirm(ctx))
	_, err = c.Submit(ctx, "merge styles")
	require.NoError(t, err)
	_, err = c.Generate(ctx, "direct")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("main", "self_loop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("main", "pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("main", "committed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodesAdded.WithLabelValues("main")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GenerationDuration))
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "split_graph", observability.RejectionReason(domain.ErrWouldSplitGraph))
	assert.Equal(t, "other", observability.RejectionReason(nil))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LogHooks(slog.New(slog.NewTextHandler(&buf, nil)))

	hooks.OnConnectCommitted(context.Background(), &domain.ConnectionEvent{
		EventBase:  domain.NewEventBase(domain.EventConnectCommitted, "main"),
		Connection: domain.Connection{Source: "1", Target: "2"},
		Duration:   time.Second,
		Node:       &domain.Node{ID: "generated-x"},
	})
	assert.Contains(t, buf.String(), "connect_committed")
	assert.Contains(t, buf.String(), "node=generated-x")
}
