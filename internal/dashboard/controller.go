package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/blockedby/sales-dashboard/internal/logger"
	"github.com/blockedby/sales-dashboard/internal/models"
)

// Status is reported to the status hook around a refresh.
type Status int

// Refresh states.
const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StatusFunc receives refresh state changes. err is set only for StatusFailed.
type StatusFunc func(s Status, err error)

// Option configures a Controller.
type Option func(*Controller)

// WithStatusHook installs fn as the loading/error indicator.
func WithStatusHook(fn StatusFunc) Option {
	return func(c *Controller) { c.status = fn }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller runs the dashboard refresh and export operations.
// It owns one chart handle per canvas.
type Controller struct {
	inputs InputReader
	client MetricsClient
	sink   RenderSink
	nav    Navigator
	status StatusFunc
	log    *logger.Logger

	mu            sync.Mutex
	timeChart     ChartHandle
	categoryChart ChartHandle
}

// New creates a controller. nav may be nil when exports are not needed.
func New(inputs InputReader, client MetricsClient, sink RenderSink, nav Navigator, opts ...Option) *Controller {
	c := &Controller{
		inputs: inputs,
		client: client,
		sink:   sink,
		nav:    nav,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get()
	}
	return c
}

// CurrentRange reads the date inputs.
func (c *Controller) CurrentRange() DateRange {
	return RangeFrom(c.inputs)
}

// RangeFrom reads the start and end date fields of in.
func RangeFrom(in InputReader) DateRange {
	return DateRange{
		Start: in.Value(StartDateID),
		End:   in.Value(EndDateID),
	}
}

// Refresh fetches the KPIs for the current inputs and redraws cards and charts.
// A failed fetch leaves the board as it was.
func (c *Controller) Refresh(ctx context.Context) error {
	rng := c.CurrentRange()
	c.notify(StatusLoading, nil)

	resp, err := c.client.FetchKPIs(ctx, rng)
	if err != nil {
		return c.fail(rng, fmt.Errorf("fetch kpis: %w", err))
	}

	c.mu.Lock()
	err = c.render(resp)
	c.mu.Unlock()
	if err != nil {
		return c.fail(rng, err)
	}

	c.log.Debug().
		Str("start", rng.Start).
		Str("end", rng.End).
		Int("orders", resp.NumOrders).
		Msg("dashboard refreshed")
	c.notify(StatusReady, nil)
	return nil
}

// ExportCSV navigates to the CSV report for the current inputs.
func (c *Controller) ExportCSV(ctx context.Context) error {
	if c.nav == nil {
		return fmt.Errorf("export csv: no navigator configured")
	}
	target := c.CurrentRange().Target(ReportPath)
	if err := c.nav.Navigate(ctx, target); err != nil {
		return fmt.Errorf("export csv %s: %w", target, err)
	}
	return nil
}

// LiveCharts returns how many chart handles the controller holds.
func (c *Controller) LiveCharts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	if c.timeChart != nil {
		n++
	}
	if c.categoryChart != nil {
		n++
	}
	return n
}

// Close releases both charts.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	release(&c.timeChart)
	release(&c.categoryChart)
}

func (c *Controller) render(resp *models.KpiResponse) error {
	texts := []struct{ id, text string }{
		{KpiTotalSalesID, formatMoney(resp.TotalSales)},
		{KpiNumOrdersID, strconv.Itoa(resp.NumOrders)},
		{KpiAOVID, formatMoney(resp.AOV)},
	}
	for _, t := range texts {
		if err := c.sink.SetText(t.id, t.text); err != nil {
			return fmt.Errorf("set %s: %w", t.id, err)
		}
	}

	if err := c.bind(SalesOverTimeCanvas, &c.timeChart, salesOverTimeSpec(resp)); err != nil {
		return err
	}
	return c.bind(SalesByCategoryCanvas, &c.categoryChart, salesByCategorySpec(resp))
}

// bind releases the handle in slot before creating its replacement.
func (c *Controller) bind(canvas string, slot *ChartHandle, spec ChartSpec) error {
	release(slot)
	h, err := c.sink.NewChart(canvas, spec)
	if err != nil {
		return fmt.Errorf("render %s: %w", canvas, err)
	}
	*slot = h
	return nil
}

func release(slot *ChartHandle) {
	if *slot != nil {
		(*slot).Destroy()
		*slot = nil
	}
}

func (c *Controller) fail(rng DateRange, err error) error {
	c.log.Error().Err(err).Str("start", rng.Start).Str("end", rng.End).Msg("dashboard refresh failed")
	c.notify(StatusFailed, err)
	return err
}

func (c *Controller) notify(s Status, err error) {
	if c.status != nil {
		c.status(s, err)
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func salesOverTimeSpec(resp *models.KpiResponse) ChartSpec {
	spec := ChartSpec{
		Kind:   ChartLine,
		Label:  "Sales over time",
		Color:  "blue",
		Labels: make([]string, len(resp.SalesByDate)),
		Values: make([]float64, len(resp.SalesByDate)),
	}
	for i, p := range resp.SalesByDate {
		spec.Labels[i] = p.Date
		spec.Values[i] = p.TotalSales
	}
	return spec
}

func salesByCategorySpec(resp *models.KpiResponse) ChartSpec {
	spec := ChartSpec{
		Kind:   ChartBar,
		Label:  "Sales by category",
		Color:  "orange",
		Labels: make([]string, len(resp.SalesByCategory)),
		Values: make([]float64, len(resp.SalesByCategory)),
	}
	for i, p := range resp.SalesByCategory {
		spec.Labels[i] = p.Category
		spec.Values[i] = p.TotalSales
	}
	return spec
}
