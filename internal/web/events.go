package web

import (
	"encoding/json"

	"github.com/blockedby/sales-dashboard/internal/sales"
)

// WebSocket event types
const (
	EventDatasetReloaded = "dataset.reloaded"
	EventReportGenerated = "report.generated"
)

// WSEvent represents a structured WebSocket message
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// DatasetReloadedPayload is the payload for EventDatasetReloaded
type DatasetReloadedPayload struct {
	Orders  int `json:"orders"`
	Dropped int `json:"dropped"`
}

// ReportGeneratedPayload is the payload for EventReportGenerated
type ReportGeneratedPayload struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
}

// DatasetReloadedEvent creates a JSON message telling clients to refresh.
func DatasetReloadedEvent(stats sales.LoadStats) []byte {
	return mustEvent(EventDatasetReloaded, DatasetReloadedPayload{
		Orders:  stats.Orders,
		Dropped: stats.Dropped,
	})
}

// ReportGeneratedEvent creates a JSON message for a finished CSV download.
func ReportGeneratedEvent(filename string, rows int) []byte {
	return mustEvent(EventReportGenerated, ReportGeneratedPayload{
		Filename: filename,
		Rows:     rows,
	})
}

func mustEvent(kind string, payload interface{}) []byte {
	b, _ := json.Marshal(WSEvent{Type: kind, Payload: payload})
	return b
}
