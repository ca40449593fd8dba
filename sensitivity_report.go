package main

import (
	"fmt"
	"html"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

// SensitivityResult holds one archetype's wages across the percentile grid
type SensitivityResult struct {
	Label       string    `json:"label"`
	Hourly      []float64 `json:"hourly"`       // one per percentile
	AnnualGross []float64 `json:"annual_gross"` // one per percentile
}

// Spread returns the hourly wage gap between the highest and lowest percentile
func (r SensitivityResult) Spread() float64 {
	if len(r.Hourly) == 0 {
		return 0
	}
	return floats.Max(r.Hourly) - floats.Min(r.Hourly)
}

// SensitivityAnalysis holds the complete percentile sweep
type SensitivityAnalysis struct {
	Percentiles []float64           `json:"percentiles"`
	Results     []SensitivityResult `json:"results"` // sorted by label
	Region      string              `json:"region"`
	Timestamp   string              `json:"timestamp"`
}

// SensitivitySweep computes the summary table at each percentile and collects
// every archetype's wage across them. Percentiles are used in the order given.
func (e *Engine) SensitivitySweep(percentiles []float64) (*SensitivityAnalysis, error) {
	if len(percentiles) == 0 {
		percentiles = e.config.Report.GetSensitivityPercentiles()
	}

	analysis := &SensitivityAnalysis{
		Percentiles: append([]float64(nil), percentiles...),
		Region:      e.config.Region,
		Timestamp:   time.Now().Format("2006-01-02_1504"),
	}

	for qi, q := range percentiles {
		summary, err := e.ComputeSummary(q)
		if err != nil {
			return nil, fmt.Errorf("sensitivity at q=%.2f: %w", q, err)
		}
		if qi == 0 {
			analysis.Results = make([]SensitivityResult, len(summary.Rows))
			for i, row := range summary.Rows {
				analysis.Results[i] = SensitivityResult{
					Label:       row.Label,
					Hourly:      make([]float64, len(percentiles)),
					AnnualGross: make([]float64, len(percentiles)),
				}
			}
		}
		// Summary rows are label-sorted, so indices line up across percentiles
		for i, row := range summary.Rows {
			analysis.Results[i].Hourly[qi] = row.Hourly
			analysis.Results[i].AnnualGross[qi] = row.AnnualGross
		}
	}
	return analysis, nil
}

// Lookup returns the result for label
func (a *SensitivityAnalysis) Lookup(label string) (SensitivityResult, error) {
	for _, r := range a.Results {
		if r.Label == label {
			return r, nil
		}
	}
	return SensitivityResult{}, &ArchetypeError{Label: label}
}

// PrintSensitivityMatrix prints hourly wage per archetype (rows) per percentile (columns)
func PrintSensitivityMatrix(w io.Writer, analysis *SensitivityAnalysis) {
	labelWidth := 34
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", labelWidth+9*len(analysis.Percentiles)+10))
	fmt.Fprintf(w, "HOURLY LIVING WAGE BY PERCENTILE - %s\n", analysis.Region)
	fmt.Fprintln(w, strings.Repeat("=", labelWidth+9*len(analysis.Percentiles)+10))

	fmt.Fprintf(w, "%-*s", labelWidth, "Household")
	for _, q := range analysis.Percentiles {
		fmt.Fprintf(w, " %8s", fmt.Sprintf("p%02d", int(math.Round(q*100))))
	}
	fmt.Fprintf(w, " %9s\n", "Spread")
	fmt.Fprintln(w, strings.Repeat("-", labelWidth+9*len(analysis.Percentiles)+10))

	for _, r := range analysis.Results {
		fmt.Fprintf(w, "%-*s", labelWidth, r.Label)
		for _, h := range r.Hourly {
			fmt.Fprintf(w, " %8.2f", h)
		}
		fmt.Fprintf(w, " %9.2f\n", r.Spread())
	}
	fmt.Fprintln(w)
}

// wageClass buckets an hourly wage for the matrix colouring
func wageClass(hourly, lo, hi float64) string {
	if hi <= lo {
		return "wage-low"
	}
	frac := (hourly - lo) / (hi - lo)
	switch {
	case frac < 1.0/3:
		return "wage-low"
	case frac < 2.0/3:
		return "wage-mid"
	default:
		return "wage-high"
	}
}

// GenerateSensitivityReport writes the sweep as an HTML matrix into dir and returns the file path
func GenerateSensitivityReport(analysis *SensitivityAnalysis, dir string) (string, error) {
	if dir == "" {
		dir = fmt.Sprintf("sensitivity_%s", analysis.Timestamp)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(dir, "index.html")
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteSensitivityHTML(f, analysis); err != nil {
		return "", err
	}
	return filename, nil
}

// WriteSensitivityHTML renders the matrix page
func WriteSensitivityHTML(w io.Writer, analysis *SensitivityAnalysis) error {
	var all []float64
	for _, r := range analysis.Results {
		all = append(all, r.Hourly...)
	}
	lo, hi := 0.0, 0.0
	if len(all) > 0 {
		lo, hi = floats.Min(all), floats.Max(all)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Living Wage Sensitivity - %s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        .container { max-width: 1400px; margin: 0 auto; }
        h1 { color: #1a237e; margin-bottom: 10px; }
        .subtitle { color: #666; margin-bottom: 30px; }
        .matrix-container { background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); overflow-x: auto; }
        .matrix { border-collapse: collapse; margin: 0 auto; }
        .matrix th, .matrix td { padding: 8px 12px; text-align: center; border: 1px solid #ddd; min-width: 70px; }
        .matrix th { background: #1a237e; color: white; font-weight: 600; }
        .matrix .row-header { background: #303f9f; color: white; font-weight: 600; text-align: left; }
        .wage-low { background: #c8e6c9; }
        .wage-mid { background: #fff9c4; }
        .wage-high { background: #ffcdd2; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Hourly Living Wage by Cost Percentile</h1>
        <div class="subtitle">%s &middot; generated %s</div>
        <div class="matrix-container">
        <table class="matrix">
            <tr><th>Household</th>`, html.EscapeString(analysis.Region), html.EscapeString(analysis.Region), analysis.Timestamp)

	for _, q := range analysis.Percentiles {
		fmt.Fprintf(&b, "<th>p%02d</th>", int(math.Round(q*100)))
	}
	b.WriteString("<th>Spread</th></tr>\n")

	for _, r := range analysis.Results {
		fmt.Fprintf(&b, `            <tr><td class="row-header">%s</td>`, html.EscapeString(r.Label))
		for _, h := range r.Hourly {
			fmt.Fprintf(&b, `<td class="%s">$%.2f</td>`, wageClass(h, lo, hi), h)
		}
		fmt.Fprintf(&b, "<td>$%.2f</td></tr>\n", r.Spread())
	}

	b.WriteString(`        </table>
        </div>
    </div>
</body>
</html>
`)
	_, err := io.WriteString(w, b.String())
	return err
}
