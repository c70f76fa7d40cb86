package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/sales-dashboard/internal/dashboard"
	"github.com/blockedby/sales-dashboard/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func lineSpec(labels []string, values []float64) dashboard.ChartSpec {
	return dashboard.ChartSpec{
		Kind:   dashboard.ChartLine,
		Label:  "Sales over time",
		Labels: labels,
		Values: values,
		Color:  "blue",
	}
}

func barSpec(labels []string, values []float64) dashboard.ChartSpec {
	return dashboard.ChartSpec{
		Kind:   dashboard.ChartBar,
		Label:  "Sales by category",
		Labels: labels,
		Values: values,
		Color:  "orange",
	}
}

func TestBoard_SetText(t *testing.T) {
	b := NewBoard(640, 360)

	require.NoError(t, b.SetText(dashboard.KpiTotalSalesID, "27.00"))
	assert.Equal(t, "27.00", b.Text(dashboard.KpiTotalSalesID))

	err := b.SetText("nope", "1")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestBoard_NewChart_Line(t *testing.T) {
	b := NewBoard(640, 360)

	h, err := b.NewChart(dashboard.SalesOverTimeCanvas,
		lineSpec([]string{"2024-01", "2024-02", "2024-03"}, []float64{10, 25, 5}))
	require.NoError(t, err)

	c := b.Chart(dashboard.SalesOverTimeCanvas)
	require.NotNil(t, c)
	assert.Same(t, h, dashboard.ChartHandle(c))
	assert.True(t, bytes.HasPrefix(c.PNG(), pngMagic))
	assert.Equal(t, 1, b.LiveCharts())
}

func TestBoard_NewChart_SinglePoint(t *testing.T) {
	b := NewBoard(640, 360)

	_, err := b.NewChart(dashboard.SalesOverTimeCanvas, lineSpec([]string{"2024-01"}, []float64{12}))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b.Chart(dashboard.SalesOverTimeCanvas).PNG(), pngMagic))
}

func TestBoard_NewChart_Bar(t *testing.T) {
	b := NewBoard(640, 360)

	_, err := b.NewChart(dashboard.SalesByCategoryCanvas,
		barSpec([]string{"Books", "Toys"}, []float64{12, 15}))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b.Chart(dashboard.SalesByCategoryCanvas).PNG(), pngMagic))
}

func TestBoard_NewChart_Empty(t *testing.T) {
	b := NewBoard(640, 360)

	h, err := b.NewChart(dashboard.SalesByCategoryCanvas, barSpec(nil, nil))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Empty(t, b.Chart(dashboard.SalesByCategoryCanvas).PNG())
	assert.Equal(t, 1, b.LiveCharts())
}

func TestBoard_NewChart_Errors(t *testing.T) {
	b := NewBoard(640, 360)

	_, err := b.NewChart("missing", lineSpec([]string{"a"}, []float64{1}))
	assert.ErrorIs(t, err, ErrUnknownTarget)

	_, err = b.NewChart(dashboard.SalesOverTimeCanvas, lineSpec([]string{"a"}, []float64{1, 2}))
	assert.Error(t, err)
	assert.Equal(t, 0, b.LiveCharts())

	_, err = b.NewChart(dashboard.SalesOverTimeCanvas, dashboard.ChartSpec{Kind: "pie", Labels: []string{"a"}, Values: []float64{1}})
	assert.Error(t, err)
}

func TestBoard_CanvasBusyUntilDestroyed(t *testing.T) {
	b := NewBoard(640, 360)
	spec := lineSpec([]string{"2024-01", "2024-02"}, []float64{1, 2})

	h, err := b.NewChart(dashboard.SalesOverTimeCanvas, spec)
	require.NoError(t, err)

	_, err = b.NewChart(dashboard.SalesOverTimeCanvas, spec)
	assert.ErrorIs(t, err, ErrCanvasBusy)

	h.Destroy()
	h.Destroy()
	assert.Equal(t, 0, b.LiveCharts())

	h2, err := b.NewChart(dashboard.SalesOverTimeCanvas, spec)
	require.NoError(t, err)

	// a stale handle must not free its successor
	h.Destroy()
	assert.Equal(t, 1, b.LiveCharts())
	assert.Same(t, h2, dashboard.ChartHandle(b.Chart(dashboard.SalesOverTimeCanvas)))
}

func TestBoard_WriteFiles(t *testing.T) {
	b := NewBoard(640, 360)
	dir := filepath.Join(t.TempDir(), "out")

	_, err := b.NewChart(dashboard.SalesOverTimeCanvas, lineSpec([]string{"2024-01", "2024-02"}, []float64{1, 2}))
	require.NoError(t, err)
	_, err = b.NewChart(dashboard.SalesByCategoryCanvas, barSpec(nil, nil))
	require.NoError(t, err)

	paths, err := b.WriteFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, dashboard.SalesOverTimeCanvas+".png")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestBoard_WriteSummary(t *testing.T) {
	b := NewBoard(640, 360)
	require.NoError(t, b.SetText(dashboard.KpiTotalSalesID, "27.00"))
	require.NoError(t, b.SetText(dashboard.KpiNumOrdersID, "3"))
	require.NoError(t, b.SetText(dashboard.KpiAOVID, "9.00"))

	var buf bytes.Buffer
	require.NoError(t, b.WriteSummary(&buf))
	assert.Equal(t, "kpiTotalSales: 27.00\nkpiNumOrders: 3\nkpiAOV: 9.00\n", buf.String())
}

type staticClient struct {
	resp *models.KpiResponse
}

func (s staticClient) FetchKPIs(context.Context, dashboard.DateRange) (*models.KpiResponse, error) {
	return s.resp, nil
}

func TestBoard_DrivenByController(t *testing.T) {
	b := NewBoard(640, 360)
	resp := &models.KpiResponse{
		TotalSales: 27,
		NumOrders:  3,
		AOV:        9,
		SalesByDate: []models.DatePoint{
			{Date: "2024-01-01", TotalSales: 12},
			{Date: "2024-01-15", TotalSales: 15},
		},
		SalesByCategory: []models.CategoryPoint{
			{Category: "Books", TotalSales: 12},
			{Category: "Toys", TotalSales: 15},
		},
	}
	ctrl := dashboard.New(dashboard.Inputs{}, staticClient{resp: resp}, b, nil)

	require.NoError(t, ctrl.Refresh(context.Background()))
	require.NoError(t, ctrl.Refresh(context.Background()))

	assert.Equal(t, "27.00", b.Text(dashboard.KpiTotalSalesID))
	assert.Equal(t, "3", b.Text(dashboard.KpiNumOrdersID))
	assert.Equal(t, "9.00", b.Text(dashboard.KpiAOVID))
	assert.Equal(t, 2, b.LiveCharts())

	ctrl.Close()
	assert.Equal(t, 0, b.LiveCharts())
}
