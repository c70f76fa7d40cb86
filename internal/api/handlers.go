// Package api provides the typed JSON endpoints of the dashboard.
package api

import (
	"github.com/go-fuego/fuego"

	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/sales"
)

func (s *Server) healthCheck(c fuego.ContextNoBody) (HealthResponse, error) {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.version,
	}

	if s.deps.Dataset != nil {
		stats, loadedAt := s.deps.Dataset.Stats()
		resp.Orders = stats.Orders
		resp.Dropped = stats.Dropped
		if !loadedAt.IsZero() {
			resp.LoadedAt = &loadedAt
		}
	}
	if s.deps.Viewers != nil {
		resp.Viewers = s.deps.Viewers.ClientCount()
	}

	return resp, nil
}

func (s *Server) getKPIs(c fuego.ContextNoBody) (models.KpiResponse, error) {
	rng, err := rangeFromQuery(c)
	if err != nil {
		return models.KpiResponse{}, err
	}

	resp, err := s.deps.Sales.KPIs(c.Context(), rng)
	if err != nil {
		return models.KpiResponse{}, fuego.InternalServerError{Detail: err.Error()}
	}

	return *resp, nil
}

func (s *Server) getSalesByMonth(c fuego.ContextNoBody) ([]models.MonthPoint, error) {
	rng, err := rangeFromQuery(c)
	if err != nil {
		return nil, err
	}

	points, err := s.deps.Sales.SalesByMonth(c.Context(), rng)
	if err != nil {
		return nil, fuego.InternalServerError{Detail: err.Error()}
	}

	return points, nil
}

// rangeFromQuery reads the optional start/end parameters.
func rangeFromQuery(c fuego.ContextNoBody) (sales.Range, error) {
	rng, err := sales.ParseRange(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return sales.Range{}, fuego.BadRequestError{Detail: err.Error()}
	}
	return rng, nil
}
