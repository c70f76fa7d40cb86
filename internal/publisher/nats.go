package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/blockedby/sales-dashboard/internal/models"
)

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes dashboard events.
type NATSPublisher struct {
	js NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{js: conn}
}

// PublishReportGenerated publishes a report generated event
func (p *NATSPublisher) PublishReportGenerated(ctx context.Context, event models.ReportGeneratedEvent) error {
	return p.publish(ctx, models.SubjectReportGenerated, event)
}

// PublishDatasetReloaded publishes a dataset reloaded event
func (p *NATSPublisher) PublishDatasetReloaded(ctx context.Context, event models.DatasetReloadedEvent) error {
	return p.publish(ctx, models.SubjectDatasetReloaded, event)
}

func (p *NATSPublisher) publish(_ context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.js.Publish(subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
