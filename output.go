package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatMoney formats a float as a whole-dollar currency string
func FormatMoney(amount float64) string {
	if amount < 0 {
		return "-" + FormatMoney(-amount)
	}
	if amount >= 1000 {
		return fmt.Sprintf("$%s", thousands(amount))
	}
	return fmt.Sprintf("$%.0f", amount)
}

// FormatMoneyShort abbreviates large amounts, e.g. $48k
func FormatMoneyShort(amount float64) string {
	if amount >= 1000000 {
		return fmt.Sprintf("$%.2fM", amount/1000000)
	}
	if amount >= 1000 {
		return fmt.Sprintf("$%.0fk", amount/1000)
	}
	return fmt.Sprintf("$%.0f", amount)
}

// thousands renders a non-negative amount with comma separators and no decimals
func thousands(amount float64) string {
	s := fmt.Sprintf("%.0f", amount)
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// PrintHeader prints the run header
func PrintHeader(w io.Writer, config *Config, q float64, filing FilingMode, includeTax bool) {
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                       LIVING WAGE CALCULATION ENGINE                         ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "──────────────")
	fmt.Fprintf(w, "  Region:      %s\n", config.Region)
	fmt.Fprintf(w, "  Percentile:  %.0f%%\n", q*100)
	fmt.Fprintf(w, "  Filing:      %s\n", filing)
	if includeTax {
		fmt.Fprintf(w, "  Taxes:       federal income, payroll, child tax credit\n")
	} else {
		fmt.Fprintf(w, "  Taxes:       excluded (gross = net)\n")
	}
	fmt.Fprintf(w, "  Samples:     %d draws per category, seed %d\n",
		config.Distributions.GetSampleSize(), config.Distributions.Seed)
	fmt.Fprintf(w, "  Households:  %d archetypes\n", len(config.Archetypes))
	fmt.Fprintln(w)
}

// PrintBreakdownTable prints monthly costs by category, tax and total per household
func PrintBreakdownTable(w io.Writer, table *BreakdownTable) {
	labelWidth := 34
	width := labelWidth + 9*(len(BreakdownCategories)+2)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "MONTHLY COST BREAKDOWN (p%02.0f)\n", table.Percentile*100)
	fmt.Fprintln(w, strings.Repeat("─", width))
	fmt.Fprintf(w, "%-*s", labelWidth, "Household")
	for _, cat := range BreakdownCategories {
		fmt.Fprintf(w, " %8s", cat.Title())
	}
	fmt.Fprintf(w, " %8s %8s\n", "Tax", "Total")
	fmt.Fprintln(w, strings.Repeat("─", width))

	for _, row := range table.Rows {
		fmt.Fprintf(w, "%-*s", labelWidth, row.Label)
		for _, cat := range BreakdownCategories {
			fmt.Fprintf(w, " %8.0f", row.Cost(cat))
		}
		fmt.Fprintf(w, " %8.0f %8.0f\n", row.Tax, row.Total)
	}
	fmt.Fprintln(w, strings.Repeat("─", width))
}

// PrintSummaryTable prints required gross income and hourly wage per household
func PrintSummaryTable(w io.Writer, table *SummaryTable) {
	labelWidth := 34
	width := labelWidth + 96

	fmt.Fprintln(w)
	fmt.Fprintf(w, "LIVING WAGE SUMMARY (p%02.0f)\n", table.Percentile*100)
	fmt.Fprintln(w, strings.Repeat("─", width))
	fmt.Fprintf(w, "%-*s │ %4s │ %-17s │ %11s %13s %12s │ %9s │ %8s\n", labelWidth,
		"Household", "BR", "Filing", "Monthly Net", "Monthly Gross", "Annual Gross", "$/hr", "Eff Rate")
	fmt.Fprintln(w, strings.Repeat("─", width))

	for _, row := range table.Rows {
		fmt.Fprintf(w, "%-*s │ %4d │ %-17s │ %11s %13s %12s │ %9.2f │ %7.1f%%\n", labelWidth,
			row.Label,
			row.Bedrooms,
			row.Filing,
			FormatMoney(row.MonthlyNet),
			FormatMoney(row.MonthlyGross),
			FormatMoney(row.AnnualGross),
			row.Hourly,
			row.EffectiveRate*100)
	}
	fmt.Fprintln(w, strings.Repeat("─", width))
}

// TablesJSON is the document written by -json
type TablesJSON struct {
	Region     string          `json:"region"`
	Percentile float64         `json:"percentile"`
	Filing     string          `json:"filing"`
	IncludeTax bool            `json:"include_tax"`
	Breakdown  *BreakdownTable `json:"breakdown,omitempty"`
	Summary    *SummaryTable   `json:"summary,omitempty"`
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
