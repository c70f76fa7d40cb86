// Package render draws the dashboard into PNG files with go-chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/blockedby/sales-dashboard/internal/dashboard"
)

var (
	// ErrCanvasBusy is returned when binding a chart to a canvas that still has one.
	ErrCanvasBusy = errors.New("canvas already has a live chart")
	// ErrUnknownTarget is returned for ids the board does not have.
	ErrUnknownTarget = errors.New("unknown render target")
)

var (
	textTargets = []string{
		dashboard.KpiTotalSalesID,
		dashboard.KpiNumOrdersID,
		dashboard.KpiAOVID,
	}
	canvasTargets = []string{
		dashboard.SalesOverTimeCanvas,
		dashboard.SalesByCategoryCanvas,
	}
)

// Board is a dashboard.RenderSink holding KPI text and rendered charts.
type Board struct {
	width  int
	height int

	mu       sync.Mutex
	texts    map[string]string
	canvases map[string]*Chart
}

// NewBoard creates a board with the dashboard's text targets and canvases.
// width and height size each chart in pixels.
func NewBoard(width, height int) *Board {
	b := &Board{
		width:    width,
		height:   height,
		texts:    make(map[string]string, len(textTargets)),
		canvases: make(map[string]*Chart, len(canvasTargets)),
	}
	for _, id := range textTargets {
		b.texts[id] = ""
	}
	for _, id := range canvasTargets {
		b.canvases[id] = nil
	}
	return b
}

// SetText sets a KPI text target.
func (b *Board) SetText(id, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.texts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, id)
	}
	b.texts[id] = text
	return nil
}

// Text returns the current value of a text target.
func (b *Board) Text(id string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.texts[id]
}

// NewChart renders spec and binds it to canvasID.
func (b *Board) NewChart(canvasID string, spec dashboard.ChartSpec) (dashboard.ChartHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.canvases[canvasID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, canvasID)
	}
	if current != nil {
		return nil, fmt.Errorf("%w: %s", ErrCanvasBusy, canvasID)
	}

	png, err := drawChart(spec, b.width, b.height)
	if err != nil {
		return nil, fmt.Errorf("draw %s: %w", canvasID, err)
	}

	c := &Chart{board: b, canvas: canvasID, png: png}
	b.canvases[canvasID] = c
	return c, nil
}

// Chart returns the live chart on canvasID, or nil.
func (b *Board) Chart(canvasID string) *Chart {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canvases[canvasID]
}

// LiveCharts returns the number of bound canvases.
func (b *Board) LiveCharts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.canvases {
		if c != nil {
			n++
		}
	}
	return n
}

// WriteSummary prints the KPI targets, one "id: value" per line.
func (b *Board) WriteSummary(w io.Writer) error {
	for _, id := range textTargets {
		if _, err := fmt.Fprintf(w, "%s: %s\n", id, b.Text(id)); err != nil {
			return err
		}
	}
	return nil
}

// WriteFiles writes every live chart with an image to dir as <canvas>.png.
// It returns the written paths, sorted.
func (b *Board) WriteFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	b.mu.Lock()
	charts := make([]*Chart, 0, len(b.canvases))
	for _, c := range b.canvases {
		if c != nil && len(c.PNG()) > 0 {
			charts = append(charts, c)
		}
	}
	b.mu.Unlock()

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(dir, c.canvas+".png")
		if err := os.WriteFile(path, c.PNG(), 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func (b *Board) release(c *Chart) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.canvases[c.canvas] == c {
		b.canvases[c.canvas] = nil
	}
}

// Chart is a rendered chart bound to a board canvas.
type Chart struct {
	board  *Board
	canvas string
	png    []byte
}

// Destroy frees the canvas. Calling it twice is harmless.
func (c *Chart) Destroy() {
	c.board.release(c)
}

// PNG returns the encoded image. It is empty when the series had no points.
func (c *Chart) PNG() []byte {
	return c.png
}
