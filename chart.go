package main

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// chartLabels shortens archetype labels for axis ticks: "2 Adults (1 Working) 3 Children" -> "2A1W 3C"
var chartLabels = strings.NewReplacer(
	" Adults (1 Working)", "A1W",
	" Adults (2 Working)", "A2W",
	" Adults", "A",
	" Adult", "A",
	" Children", "C",
	" Child", "C",
)

// ShortLabel abbreviates an archetype label for charts
func ShortLabel(label string) string {
	return chartLabels.Replace(label)
}

// BreakdownChartPNG renders the breakdown table as stacked monthly cost bars, tax on top
func BreakdownChartPNG(table *BreakdownTable, width, height vg.Length) ([]byte, error) {
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("breakdown table has no rows")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Monthly cost by household (p%02.0f)", table.Percentile*100)
	p.Y.Label.Text = "USD per month"
	p.X.Tick.Label.Rotation = math.Pi / 6

	barWidth := vg.Points(14)
	var below *plotter.BarChart

	layers := append(append([]Category(nil), BreakdownCategories...), -1)
	for i, cat := range layers {
		values := make(plotter.Values, len(table.Rows))
		for j, row := range table.Rows {
			if cat < 0 {
				values[j] = math.Max(row.Tax, 0)
			} else {
				values[j] = row.Cost(cat)
			}
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("bar chart layer %d: %w", i, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars

		name := "Tax"
		if cat >= 0 {
			name = cat.Title()
		}
		p.Add(bars)
		p.Legend.Add(name, bars)
	}

	names := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		names[i] = ShortLabel(row.Label)
	}
	p.NominalX(names...)
	p.Legend.Top = true
	p.Legend.Left = true

	return renderPNG(p, width, height)
}

// SensitivityChartPNG renders hourly wage against percentile, one line per household
func SensitivityChartPNG(analysis *SensitivityAnalysis, width, height vg.Length) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Hourly living wage by cost percentile"
	p.X.Label.Text = "Percentile"
	p.Y.Label.Text = "USD per hour"

	for i, r := range analysis.Results {
		pts := make(plotter.XYs, len(analysis.Percentiles))
		for j, q := range analysis.Percentiles {
			pts[j] = plotter.XY{X: q * 100, Y: r.Hourly[j]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("line for %s: %w", r.Label, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(ShortLabel(r.Label), line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return renderPNG(p, width, height)
}

func renderPNG(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
