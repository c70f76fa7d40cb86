package api

import (
	"time"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string     `json:"status" example:"ok" description:"Health status"`
	Version  string     `json:"version" example:"dev" description:"Application version"`
	Orders   int        `json:"orders" description:"Order lines in the loaded dataset"`
	Dropped  int        `json:"dropped" description:"Rows skipped by the last load"`
	LoadedAt *time.Time `json:"loaded_at,omitempty" description:"When the dataset was last loaded"`
	Viewers  int        `json:"viewers" description:"Dashboards connected to the live update socket"`
}
