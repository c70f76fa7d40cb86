package models

import (
	"time"

	"github.com/google/uuid"
)

// Event subjects published on NATS.
const (
	SubjectReportGenerated = "reports.csv.generated"
	SubjectDatasetReloaded = "dataset.reloaded"
)

// ReportGeneratedEvent is published after a CSV report was streamed.
// Start and End hold "None" for an unbounded side.
type ReportGeneratedEvent struct {
	ReportID    uuid.UUID `json:"report_id"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	Rows        int       `json:"rows"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DatasetReloadedEvent is published after the order snapshot was replaced.
// InstanceID identifies the server that did the reload.
type DatasetReloadedEvent struct {
	InstanceID uuid.UUID `json:"instance_id"`
	Orders     int       `json:"orders"`
	Dropped    int       `json:"dropped"`
	ReloadedAt time.Time `json:"reloaded_at"`
}
