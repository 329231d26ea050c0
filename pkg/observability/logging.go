package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/mosaic/pkg/domain"
)

// LogHooks returns hooks that write one structured line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	conn := func(msg string) func(context.Context, *domain.ConnectionEvent) {
		return func(ctx context.Context, e *domain.ConnectionEvent) {
			attrs := []any{"canvas", e.CanvasID, "source", e.Connection.Source, "target", e.Connection.Target}
			if e.Err != nil {
				attrs = append(attrs, "error", e.Err)
			}
			if e.Duration > 0 {
				attrs = append(attrs, "duration", e.Duration)
			}
			if e.Node != nil {
				attrs = append(attrs, "node", e.Node.ID)
			}
			logger.InfoContext(ctx, msg, attrs...)
		}
	}
	return domain.LifecycleHooks{
		OnConnectRejected:  conn(string(domain.EventConnectRejected)),
		OnConnectPending:   conn(string(domain.EventConnectPending)),
		OnConnectConfirmed: conn(string(domain.EventConnectConfirmed)),
		OnConnectCancelled: conn(string(domain.EventConnectCancelled)),
		OnGenerationStart:  conn(string(domain.EventGenerationStart)),
		OnGenerationFailed: conn(string(domain.EventGenerationFailed)),
		OnConnectCommitted: conn(string(domain.EventConnectCommitted)),
		OnNodeAdded: func(ctx context.Context, e *domain.NodeEvent) {
			logger.InfoContext(ctx, string(domain.EventNodeAdded), "canvas", e.CanvasID, "node", e.Node.ID, "template", e.Node.Data.Template)
		},
		OnPersistFailed: func(ctx context.Context, e *domain.PersistEvent) {
			logger.ErrorContext(ctx, string(domain.EventPersistFailed), "canvas", e.CanvasID, "error", e.Err)
		},
	}
}
