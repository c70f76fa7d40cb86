package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/blockedby/sales-dashboard/internal/dashboard"
)

const (
	maxXTicks  = 12
	barWidth   = 40
	barSpacing = 20
)

var namedColors = map[string]string{
	"blue":   "0000ff",
	"orange": "ffa500",
	"green":  "008000",
	"red":    "ff0000",
	"gray":   "808080",
}

func colorOf(name string) drawing.Color {
	if hex, ok := namedColors[strings.ToLower(name)]; ok {
		return drawing.ColorFromHex(hex)
	}
	if name != "" {
		return drawing.ColorFromHex(strings.TrimPrefix(name, "#"))
	}
	return chart.ColorBlue
}

// drawChart renders spec as PNG. An empty series yields no image.
func drawChart(spec dashboard.ChartSpec, width, height int) ([]byte, error) {
	if len(spec.Values) == 0 {
		return nil, nil
	}
	if len(spec.Labels) != len(spec.Values) {
		return nil, fmt.Errorf("%d labels for %d values", len(spec.Labels), len(spec.Values))
	}

	switch spec.Kind {
	case dashboard.ChartLine:
		return drawLine(spec, width, height)
	case dashboard.ChartBar:
		return drawBar(spec, width, height)
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
}

func drawLine(spec dashboard.ChartSpec, width, height int) ([]byte, error) {
	n := len(spec.Values)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, v := range spec.Values {
		xs[i] = float64(i)
		ys[i] = v
	}
	// go-chart needs two x values to compute a range
	if n == 1 {
		xs = append(xs, 1)
		ys = append(ys, ys[0])
	}

	col := colorOf(spec.Color)
	ch := chart.Chart{
		Title:      spec.Label,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(float64(n-1), 1)},
			Ticks: lineTicks(spec.Labels),
		},
		YAxis: chart.YAxis{
			Range: valueRange(spec.Values),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.Label,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: col,
					StrokeWidth: 2,
					DotColor:    col,
					DotWidth:    2,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render line chart: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBar(spec dashboard.ChartSpec, width, height int) ([]byte, error) {
	col := colorOf(spec.Color)
	bars := make([]chart.Value, len(spec.Values))
	for i, v := range spec.Values {
		bars[i] = chart.Value{
			Label: spec.Labels[i],
			Value: v,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		}
	}

	minWidth := len(bars)*(barWidth+barSpacing) + 200
	if width < minWidth {
		width = minWidth
	}

	bc := chart.BarChart{
		Title:      spec.Label,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range: valueRange(spec.Values),
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// valueRange spans zero to the largest value with some headroom.
// A flat zero series still gets a non-empty range.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi * 1.1}
}

// lineTicks labels at most maxXTicks evenly spaced points.
func lineTicks(labels []string) []chart.Tick {
	n := len(labels)
	step := 1
	if n > maxXTicks {
		step = int(math.Ceil(float64(n) / maxXTicks))
	}

	ticks := make([]chart.Tick, 0, maxXTicks+1)
	for i := 0; i < n; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	if last := n - 1; last > 0 && (last%step) != 0 {
		ticks = append(ticks, chart.Tick{Value: float64(last), Label: labels[last]})
	}
	if n == 1 {
		ticks = append(ticks, chart.Tick{Value: 1, Label: ""})
	}
	return ticks
}
