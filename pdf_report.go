package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"
)

// LivingWagePDFReport renders both tables, a chart and the model assumptions to PDF
type LivingWagePDFReport struct {
	pdf       *fpdf.Fpdf
	engine    *Engine
	breakdown *BreakdownTable
	summary   *SummaryTable
	filing    FilingMode
	reportID  string
}

// A4 landscape; the breakdown table needs the width
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 12.0
	marginRight  = 12.0
	marginTop    = 12.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// GenerateLivingWagePDFReport builds the PDF for percentile q. It returns the
// document and the report ID printed in its footer.
func GenerateLivingWagePDFReport(engine *Engine, q float64, filing FilingMode, includeTax bool) ([]byte, string, error) {
	breakdown, summary, err := engine.ComputeTables(q, filing, includeTax)
	if err != nil {
		return nil, "", err
	}

	report := &LivingWagePDFReport{
		pdf:       fpdf.New("L", "mm", "A4", ""),
		engine:    engine,
		breakdown: breakdown,
		summary:   summary,
		filing:    filing,
		reportID:  uuid.NewString(),
	}

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)
	report.pdf.SetFooterFunc(report.drawFooter)

	report.addTitlePage(includeTax)
	report.addSummaryPage()
	report.addBreakdownPage()
	if err := report.addChartPage(); err != nil {
		return nil, "", err
	}
	if err := report.addAssumptionsPage(); err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), report.reportID, nil
}

func (r *LivingWagePDFReport) addTitlePage(includeTax bool) {
	config := r.engine.Config()
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 28)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.Ln(35)
	r.pdf.CellFormat(contentWidth, 15, "Living Wage Report", "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "", 14)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.Ln(5)
	r.pdf.CellFormat(contentWidth, 10, config.Region, "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 11)
	r.pdf.Ln(8)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")

	boxWidth := 160.0
	boxLeft := marginLeft + (contentWidth-boxWidth)/2

	r.pdf.Ln(12)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.SetX(boxLeft)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(boxWidth, 8, "Assumptions", "1", 1, "C", true, 0, "")

	taxText := "Federal income tax, payroll tax and child tax credit included"
	if !includeTax {
		taxText = "Taxes excluded: gross income equals net costs"
	}
	lines := []string{
		fmt.Sprintf("Cost percentile: %.0f%%", r.summary.Percentile*100),
		fmt.Sprintf("Filing status: %s", r.filing),
		taxText,
		fmt.Sprintf("%d draws per cost distribution, seed %d", config.Distributions.GetSampleSize(), config.Distributions.Seed),
		fmt.Sprintf("Full-time year: %.0f hours per earner", config.Wage.GetHoursPerEarner()),
	}
	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	for i, line := range lines {
		border := "LR"
		if i == len(lines)-1 {
			border = "LRB"
		}
		r.pdf.SetX(boxLeft)
		r.pdf.CellFormat(boxWidth, 7, line, border, 1, "C", true, 0, "")
	}

	r.pdf.Ln(15)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4.5,
		"Figures are estimates of the income needed to cover a basket of necessities at the chosen "+
			"percentile of regional costs. They are not a budget for any particular household.", "", "C", false)
}

func (r *LivingWagePDFReport) addSummaryPage() {
	r.pdf.AddPage()
	r.drawSectionHeader(fmt.Sprintf("Living Wage Summary (p%02.0f)", r.summary.Percentile*100))

	headers := []string{"Household", "Bedrooms", "Filing", "Monthly Net", "Monthly Gross", "Annual Gross", "Hourly", "Eff. Rate"}
	widths := []float64{75, 20, 35, 28, 28, 30, 24, 23}
	r.drawTableHeader(headers, widths)

	for _, row := range r.summary.Rows {
		r.drawTableRow([]string{
			row.Label,
			fmt.Sprintf("%d", row.Bedrooms),
			row.Filing,
			FormatMoney(row.MonthlyNet),
			FormatMoney(row.MonthlyGross),
			FormatMoney(row.AnnualGross),
			fmt.Sprintf("$%.2f", row.Hourly),
			fmt.Sprintf("%.1f%%", row.EffectiveRate*100),
		}, widths, false)
	}
}

func (r *LivingWagePDFReport) addBreakdownPage() {
	r.pdf.AddPage()
	r.drawSectionHeader(fmt.Sprintf("Monthly Cost Breakdown (p%02.0f)", r.breakdown.Percentile*100))

	headers := []string{"Household"}
	widths := []float64{63}
	for _, cat := range BreakdownCategories {
		headers = append(headers, cat.Title())
		widths = append(widths, 19.5)
	}
	headers = append(headers, "Tax", "Total")
	widths = append(widths, 19.5, 21)
	r.drawTableHeader(headers, widths)

	for _, row := range r.breakdown.Rows {
		cells := []string{row.Label}
		for _, cat := range BreakdownCategories {
			cells = append(cells, FormatMoney(row.Cost(cat)))
		}
		cells = append(cells, FormatMoney(row.Tax), FormatMoney(row.Total))
		r.drawTableRow(cells, widths, false)
	}
}

func (r *LivingWagePDFReport) addChartPage() error {
	png, err := BreakdownChartPNG(r.breakdown, 10*vg.Inch, 5.5*vg.Inch)
	if err != nil {
		return fmt.Errorf("breakdown chart: %w", err)
	}

	r.pdf.AddPage()
	r.drawSectionHeader("Where the Money Goes")

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	r.pdf.RegisterImageOptionsReader("breakdown-chart", opts, bytes.NewReader(png))
	width := contentWidth
	height := width * 5.5 / 10
	r.pdf.ImageOptions("breakdown-chart", marginLeft, r.pdf.GetY(), width, height, false, opts, 0, "")
	return r.pdf.Error()
}

func (r *LivingWagePDFReport) addAssumptionsPage() error {
	model := r.engine.Model()
	q := r.summary.Percentile

	r.pdf.AddPage()
	r.drawSectionHeader("Cost Distributions")

	headers := []string{"Category", "Mean", "Std Dev", "Min", "Max", fmt.Sprintf("p%02.0f", q*100)}
	widths := []float64{60, 35, 35, 35, 35, 35}
	r.drawTableHeader(headers, widths)

	for _, cat := range sampledCategories {
		stats, err := model.Describe(cat, 0)
		if err != nil {
			return err
		}
		value, err := model.Quantile(cat, q)
		if err != nil {
			return err
		}
		r.drawStatsRow(cat.Title(), stats, value, widths)
	}
	for _, br := range housingTiers {
		stats, err := model.Describe(Housing, br)
		if err != nil {
			return err
		}
		value, err := model.HousingQuantile(q, br)
		if err != nil {
			return err
		}
		r.drawStatsRow(fmt.Sprintf("Housing %dBR", br), stats, value, widths)
	}

	r.pdf.Ln(8)
	r.drawSectionHeader("Federal Tax")
	tax := r.engine.Taxes().Config()
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	for _, status := range []FilingStatus{Single, Married, HeadOfHousehold} {
		fc := tax.Filing(status)
		r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("%s: standard deduction %s, %d brackets from %.0f%% to %.0f%%",
			status, FormatMoney(fc.StandardDeduction), len(fc.Brackets),
			fc.Brackets[0].Rate*100, fc.Brackets[len(fc.Brackets)-1].Rate*100), "", 1, "L", false, 0, "")
	}
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Payroll: OASDI %.2f%% up to %s per earner, Medicare %.2f%%",
		tax.OASDIRate*100, FormatMoney(tax.SocialSecurityWageBase), tax.MedicareRate*100), "", 1, "L", false, 0, "")
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Child tax credit: %s per child, phased out at %.0f%% above %s (married) / %s (others)",
		FormatMoney(tax.ChildCredit), tax.ChildCreditPhaseOutRate*100,
		FormatMoney(tax.ChildCreditThresholdMarried), FormatMoney(tax.ChildCreditThresholdOther)), "", 1, "L", false, 0, "")
	return nil
}

func (r *LivingWagePDFReport) drawStatsRow(name string, s SampleStats, value float64, widths []float64) {
	r.drawTableRow([]string{
		name,
		fmt.Sprintf("%.2f", s.Mean),
		fmt.Sprintf("%.2f", s.StdDev),
		fmt.Sprintf("%.2f", s.Min),
		fmt.Sprintf("%.2f", s.Max),
		fmt.Sprintf("%.2f", value),
	}, widths, false)
}

func (r *LivingWagePDFReport) drawFooter() {
	r.pdf.SetY(-12)
	r.pdf.SetFont("Arial", "I", 8)
	r.pdf.SetTextColor(140, 140, 140)
	r.pdf.CellFormat(contentWidth/2, 5, "Report "+r.reportID, "", 0, "L", false, 0, "")
	r.pdf.CellFormat(contentWidth/2, 5, fmt.Sprintf("Page %d", r.pdf.PageNo()), "", 0, "R", false, 0, "")
}

func (r *LivingWagePDFReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(5)
}

func (r *LivingWagePDFReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *LivingWagePDFReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}
