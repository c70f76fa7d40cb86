package api

import (
	"context"
	"time"

	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/sales"
)

// SalesService defines the interface for dashboard queries.
type SalesService interface {
	KPIs(ctx context.Context, r sales.Range) (*models.KpiResponse, error)
	SalesByMonth(ctx context.Context, r sales.Range) ([]models.MonthPoint, error)
}

// DatasetInfo reports the state of the loaded dataset.
type DatasetInfo interface {
	Stats() (sales.LoadStats, time.Time)
}

// ViewerCounter reports how many dashboards are connected for live updates.
type ViewerCounter interface {
	ClientCount() int
}
