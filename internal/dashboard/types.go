// Package dashboard implements the refresh/export cycle of the sales
// dashboard against pluggable inputs, metrics client and render sink.
package dashboard

import (
	"context"
	"net/url"
	"strings"

	"github.com/blockedby/sales-dashboard/internal/models"
)

// Element ids shared by the html page and the Go render sink.
const (
	StartDateID           = "startDate"
	EndDateID             = "endDate"
	KpiTotalSalesID       = "kpiTotalSales"
	KpiNumOrdersID        = "kpiNumOrders"
	KpiAOVID              = "kpiAOV"
	SalesOverTimeCanvas   = "salesOverTimeChart"
	SalesByCategoryCanvas = "salesByCategoryChart"
	DownloadCsvID         = "downloadCsvBtn"
)

// Backend paths.
const (
	KPIPath    = "/api/kpis"
	ReportPath = "/api/report/csv"
)

// DateRange is the filter of one refresh. Empty fields are unbounded.
type DateRange struct {
	Start string
	End   string
}

// Query encodes the present fields, start before end, without the leading '?'.
func (d DateRange) Query() string {
	parts := make([]string, 0, 2)
	if d.Start != "" {
		parts = append(parts, "start="+url.QueryEscape(d.Start))
	}
	if d.End != "" {
		parts = append(parts, "end="+url.QueryEscape(d.End))
	}
	return strings.Join(parts, "&")
}

// Target appends the query to path. With no fields set it returns path unchanged.
func (d DateRange) Target(path string) string {
	if q := d.Query(); q != "" {
		return path + "?" + q
	}
	return path
}

// InputReader reads the current value of a named form field.
type InputReader interface {
	Value(id string) string
}

// Inputs is a fixed InputReader keyed by element id.
type Inputs map[string]string

// Value returns the value for id, or "".
func (in Inputs) Value(id string) string {
	return strings.TrimSpace(in[id])
}

// MetricsClient fetches KPI data from the backend.
type MetricsClient interface {
	FetchKPIs(ctx context.Context, r DateRange) (*models.KpiResponse, error)
}

// ChartKind selects the chart type.
type ChartKind string

// Chart kinds.
const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
)

// ChartSpec describes one chart. Labels and Values are drawn in order.
type ChartSpec struct {
	Kind   ChartKind
	Label  string
	Labels []string
	Values []float64
	Color  string
}

// ChartHandle is a chart bound to a canvas.
type ChartHandle interface {
	// Destroy releases the canvas.
	Destroy()
}

// RenderSink writes KPI text and binds charts to canvases.
type RenderSink interface {
	SetText(id, text string) error
	NewChart(canvasID string, spec ChartSpec) (ChartHandle, error)
}

// Navigator follows an export target such as "/api/report/csv?start=2024-02-01".
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}
