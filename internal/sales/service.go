package sales

import (
	"context"
	"fmt"

	"github.com/blockedby/sales-dashboard/internal/logger"
	"github.com/blockedby/sales-dashboard/internal/models"
)

// Service answers dashboard queries from a Source.
type Service struct {
	src Source
	log *logger.Logger
}

// NewService creates a new Service.
func NewService(src Source, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Get()
	}
	return &Service{src: src, log: log}
}

// KPIs returns the KPI cards and chart series for r.
func (s *Service) KPIs(ctx context.Context, r Range) (*models.KpiResponse, error) {
	orders, err := s.src.Orders(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	resp := ComputeKPIs(orders, r)
	s.log.Debug().
		Str("start", r.StartLabel()).
		Str("end", r.EndLabel()).
		Int("orders", resp.NumOrders).
		Msg("computed kpis")
	return resp, nil
}

// SalesByMonth returns monthly totals for r.
func (s *Service) SalesByMonth(ctx context.Context, r Range) ([]models.MonthPoint, error) {
	orders, err := s.src.Orders(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return SalesByMonth(orders, r), nil
}

// ReportRows returns the order lines of the CSV report for r.
func (s *Service) ReportRows(ctx context.Context, r Range) ([]models.Order, error) {
	orders, err := s.src.Orders(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return Filter(orders, r), nil
}
