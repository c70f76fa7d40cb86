package sales

import (
	"sort"

	"github.com/blockedby/sales-dashboard/internal/models"
)

// Filter returns the orders whose date falls inside r, keeping input order.
func Filter(orders []models.Order, r Range) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if r.Contains(o.OrderDate) {
			out = append(out, o)
		}
	}
	return out
}

// ComputeKPIs aggregates the orders inside r.
//
// num_orders counts distinct order ids, so a multi-line order counts once.
// sales_by_date is ascending by date; sales_by_category is descending by sales,
// with ties broken by category name to keep the output stable.
func ComputeKPIs(orders []models.Order, r Range) *models.KpiResponse {
	var total float64
	ids := make(map[string]struct{})
	byDate := make(map[string]float64)
	byCategory := make(map[string]float64)

	for _, o := range orders {
		if !r.Contains(o.OrderDate) {
			continue
		}
		total += o.TotalPrice
		ids[o.OrderID] = struct{}{}
		byDate[o.Day()] += o.TotalPrice
		byCategory[o.ProductCategory] += o.TotalPrice
	}

	resp := &models.KpiResponse{
		TotalSales:      total,
		NumOrders:       len(ids),
		SalesByDate:     make([]models.DatePoint, 0, len(byDate)),
		SalesByCategory: make([]models.CategoryPoint, 0, len(byCategory)),
	}
	if resp.NumOrders > 0 {
		resp.AOV = total / float64(resp.NumOrders)
	}

	for day, v := range byDate {
		resp.SalesByDate = append(resp.SalesByDate, models.DatePoint{Date: day, TotalSales: v})
	}
	sort.Slice(resp.SalesByDate, func(i, j int) bool {
		return resp.SalesByDate[i].Date < resp.SalesByDate[j].Date
	})

	for cat, v := range byCategory {
		resp.SalesByCategory = append(resp.SalesByCategory, models.CategoryPoint{Category: cat, TotalSales: v})
	}
	sort.Slice(resp.SalesByCategory, func(i, j int) bool {
		a, b := resp.SalesByCategory[i], resp.SalesByCategory[j]
		if a.TotalSales != b.TotalSales {
			return a.TotalSales > b.TotalSales
		}
		return a.Category < b.Category
	})

	return resp
}

// SalesByMonth sums sales per "YYYY-MM" inside r, ascending.
func SalesByMonth(orders []models.Order, r Range) []models.MonthPoint {
	byMonth := make(map[string]float64)
	for _, o := range orders {
		if !r.Contains(o.OrderDate) {
			continue
		}
		byMonth[o.OrderDate.Format("2006-01")] += o.TotalPrice
	}

	out := make([]models.MonthPoint, 0, len(byMonth))
	for m, v := range byMonth {
		out = append(out, models.MonthPoint{Month: m, TotalSales: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
