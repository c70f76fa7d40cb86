package handlers

import (
	"context"
	"time"

	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/sales"
)

// ReportSource yields the order lines of a CSV report
type ReportSource interface {
	ReportRows(ctx context.Context, r sales.Range) ([]models.Order, error)
}

// Dataset is the reloadable order source
type Dataset interface {
	Reload(ctx context.Context) (sales.LoadStats, error)
	Stats() (sales.LoadStats, time.Time)
}

// EventPublisher publishes dashboard events to the message bus
type EventPublisher interface {
	PublishReportGenerated(ctx context.Context, event models.ReportGeneratedEvent) error
	PublishDatasetReloaded(ctx context.Context, event models.DatasetReloadedEvent) error
}

// Broadcaster pushes messages to websocket clients
type Broadcaster interface {
	Broadcast(message interface{})
}
