package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"
)

// HTMLReport is the interactive chart page: stacked cost bars, hourly wage
// bars and, when a sweep is supplied, wage against percentile
type HTMLReport struct {
	ID          string
	Region      string
	Breakdown   *BreakdownTable
	Summary     *SummaryTable
	Sensitivity *SensitivityAnalysis
}

// BuildHTMLReport computes the tables for q and, if sweep is true, the sensitivity analysis
func BuildHTMLReport(engine *Engine, q float64, filing FilingMode, includeTax, sweep bool) (*HTMLReport, error) {
	breakdown, summary, err := engine.ComputeTables(q, filing, includeTax)
	if err != nil {
		return nil, err
	}
	report := &HTMLReport{
		ID:        uuid.NewString(),
		Region:    engine.Config().Region,
		Breakdown: breakdown,
		Summary:   summary,
	}
	if sweep {
		report.Sensitivity, err = engine.SensitivitySweep(nil)
		if err != nil {
			return nil, err
		}
	}
	return report, nil
}

// GenerateHTMLReport writes the report to filename
func GenerateHTMLReport(report *HTMLReport, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.Render(f)
}

// Render writes the page
func (r *HTMLReport) Render(w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Living Wage - %s", r.Region)
	page.AddCharts(r.breakdownChart(), r.hourlyChart())
	if r.Sensitivity != nil {
		page.AddCharts(r.sensitivityChart())
	}
	return page.Render(w)
}

func (r *HTMLReport) labels() []string {
	labels := make([]string, len(r.Breakdown.Rows))
	for i, row := range r.Breakdown.Rows {
		labels[i] = ShortLabel(row.Label)
	}
	return labels
}

func (r *HTMLReport) breakdownChart() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "560px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Monthly cost by household (p%02.0f)", r.Breakdown.Percentile*100),
			Subtitle: fmt.Sprintf("%s, report %s", r.Region, r.ID),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "USD / month"}),
	)
	bar.SetXAxis(r.labels())

	for _, cat := range BreakdownCategories {
		data := make([]opts.BarData, len(r.Breakdown.Rows))
		for i, row := range r.Breakdown.Rows {
			data[i] = opts.BarData{Name: row.Label, Value: row.Cost(cat)}
		}
		bar.AddSeries(cat.Title(), data, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	}

	tax := make([]opts.BarData, len(r.Breakdown.Rows))
	for i, row := range r.Breakdown.Rows {
		tax[i] = opts.BarData{Name: row.Label, Value: math.Max(row.Tax, 0)}
	}
	bar.AddSeries("Tax", tax, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	return bar
}

func (r *HTMLReport) hourlyChart() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Hourly living wage per earner"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "USD / hour"}),
	)

	data := make([]opts.BarData, len(r.Summary.Rows))
	for i, row := range r.Summary.Rows {
		data[i] = opts.BarData{Name: row.Label, Value: row.Hourly}
	}
	bar.SetXAxis(r.labels()).
		AddSeries("hourly", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func (r *HTMLReport) sensitivityChart() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "560px"}),
		charts.WithTitleOpts(opts.Title{Title: "Hourly wage by cost percentile"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "USD / hour"}),
	)

	x := make([]string, len(r.Sensitivity.Percentiles))
	for i, q := range r.Sensitivity.Percentiles {
		x[i] = fmt.Sprintf("p%02d", int(math.Round(q*100)))
	}
	line.SetXAxis(x)

	for _, res := range r.Sensitivity.Results {
		data := make([]opts.LineData, len(res.Hourly))
		for i, h := range res.Hourly {
			data[i] = opts.LineData{Value: h}
		}
		line.AddSeries(ShortLabel(res.Label), data)
	}
	return line
}
