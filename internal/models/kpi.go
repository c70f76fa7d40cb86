package models

// DateLayout is the wire format of dates in query parameters and responses.
const DateLayout = "2006-01-02"

// KpiResponse is the body of GET /api/kpis.
type KpiResponse struct {
	TotalSales      float64         `json:"total_sales"`
	NumOrders       int             `json:"num_orders"`
	AOV             float64         `json:"aov"`
	SalesByDate     []DatePoint     `json:"sales_by_date"`
	SalesByCategory []CategoryPoint `json:"sales_by_category"`
}

// DatePoint is the sales total of one calendar day.
type DatePoint struct {
	Date       string  `json:"date"`
	TotalSales float64 `json:"total_sales"`
}

// CategoryPoint is the sales total of one product category.
type CategoryPoint struct {
	Category   string  `json:"category"`
	TotalSales float64 `json:"total_sales"`
}

// MonthPoint is the sales total of one calendar month ("YYYY-MM").
type MonthPoint struct {
	Month      string  `json:"month"`
	TotalSales float64 `json:"total_sales"`
}
