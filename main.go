package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
)

func init() {
	_ = godotenv.Load()
}

// envOr returns the environment variable key, or fallback when it is unset
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitOrigins parses a comma separated origin list, dropping blanks
func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Living Wage Calculation Engine

Estimates, for a set of household types, the monthly and hourly gross income
needed to cover a basket of necessities after federal taxes, at a chosen
percentile of regional costs.

Each cost category (housing, transport, food, health, civic, other, childcare,
internet) is modelled as a seeded Normal sample. Costs are scaled to the
household, then grossed up through income tax, payroll tax and the child tax
credit by bisection.

Usage:
  %s [options]

Options:
`, os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  %s                            Summary and breakdown at the 40th percentile
  %s -q 50%%                     Median costs
  %s -table summary -json       Summary table as JSON
  %s -filing single             Force one filing status for every household
  %s -no-tax                    Net costs only (gross = net)
  %s -pdf report.pdf            PDF report with chart
  %s -html report.html          Interactive chart report
  %s -sensitivity               Hourly wage across percentiles
  %s -interactive               Price a custom household
  %s -web -addr :8080           JSON API server
  %s -write-config my.yaml      Write the default configuration for editing

Environment (also read from a .env file):
  LIVINGWAGE_CONFIG         Default for -config
  LIVINGWAGE_ADDR           Default for -addr
  LIVINGWAGE_CORS_ORIGINS   Comma separated origins allowed to call the API (default: any)
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
	}

	configFile := flag.String("config", envOr("LIVINGWAGE_CONFIG", ""), "Path to YAML configuration file (default: embedded configuration)")
	percentile := flag.String("q", "", "Cost percentile, e.g. 0.4 or 40% (default: report.percentile)")
	filingFlag := flag.String("filing", "auto", "Filing status: auto, single, married or hoh")
	tableFlag := flag.String("table", "both", "Table to print: breakdown, summary or both")
	jsonOut := flag.Bool("json", false, "Print tables as JSON instead of text")
	noTax := flag.Bool("no-tax", false, "Exclude taxes (gross income equals net costs)")
	pdfFile := flag.String("pdf", "", "Write a PDF report to this file")
	htmlFile := flag.String("html", "", "Write an HTML chart report to this file")
	runSensitivity := flag.Bool("sensitivity", false, "Show hourly wage across the configured percentile grid")
	interactive := flag.Bool("interactive", false, "Prompt for a household and print its living wage")
	webMode := flag.Bool("web", false, "Start the JSON API server")
	webAddr := flag.String("addr", envOr("LIVINGWAGE_ADDR", "localhost:8080"), "Web server address (for -web mode, use :0 for auto port)")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this file and exit")
	openReport := flag.Bool("open", false, "Open generated reports in the default browser")
	flag.Parse()

	config, err := loadConfiguration(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := SaveConfig(config, *writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration saved to %s\n", *writeConfig)
		return
	}

	engine, err := NewEngine(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building engine: %v\n", err)
		os.Exit(1)
	}

	if *webMode {
		server := NewWebServer(engine, *webAddr, splitOrigins(os.Getenv("LIVINGWAGE_CORS_ORIGINS"))...)
		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Web server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *interactive {
		if _, err := NewInteractiveExplorer(engine, os.Stdin, os.Stdout).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	q := config.Report.GetPercentile()
	if *percentile != "" {
		q, err = ParsePercentile(*percentile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	filing, err := ParseFilingMode(*filingFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := runConsoleMode(engine, consoleOptions{
		q:           q,
		filing:      filing,
		includeTax:  !*noTax,
		table:       *tableFlag,
		jsonOut:     *jsonOut,
		pdfFile:     *pdfFile,
		htmlFile:    *htmlFile,
		sensitivity: *runSensitivity,
		open:        *openReport,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfiguration reads the user's file over the defaults, or the defaults alone
func loadConfiguration(configFile string) (*Config, error) {
	if configFile == "" {
		config, err := LoadDefaultConfig()
		if err != nil {
			return nil, err
		}
		return config, config.Validate()
	}
	return LoadConfig(configFile)
}

type consoleOptions struct {
	q           float64
	filing      FilingMode
	includeTax  bool
	table       string
	jsonOut     bool
	pdfFile     string
	htmlFile    string
	sensitivity bool
	open        bool
}

// runConsoleMode prints the requested tables and writes any requested reports
func runConsoleMode(engine *Engine, o consoleOptions) error {
	config := engine.Config()

	if o.sensitivity {
		analysis, err := engine.SensitivitySweep(nil)
		if err != nil {
			return err
		}
		if o.jsonOut {
			return WriteJSON(os.Stdout, analysis)
		}
		PrintSensitivityMatrix(os.Stdout, analysis)
		dir, err := GenerateSensitivityReport(analysis, "")
		if err != nil {
			return err
		}
		fmt.Printf("Sensitivity report: %s\n", dir)
		if o.open {
			openBrowser(dir)
		}
		return nil
	}

	breakdown, summary, err := engine.ComputeTables(o.q, o.filing, o.includeTax)
	if err != nil {
		return err
	}

	showBreakdown := o.table == "both" || o.table == "breakdown"
	showSummary := o.table == "both" || o.table == "summary"
	if !showBreakdown && !showSummary {
		return fmt.Errorf("unknown table %q (want breakdown, summary or both)", o.table)
	}

	if o.jsonOut {
		doc := TablesJSON{
			Region:     config.Region,
			Percentile: o.q,
			Filing:     o.filing.String(),
			IncludeTax: o.includeTax,
		}
		if showBreakdown {
			doc.Breakdown = breakdown
		}
		if showSummary {
			doc.Summary = summary
		}
		if err := WriteJSON(os.Stdout, doc); err != nil {
			return err
		}
	} else {
		PrintHeader(os.Stdout, config, o.q, o.filing, o.includeTax)
		if showBreakdown {
			PrintBreakdownTable(os.Stdout, breakdown)
		}
		if showSummary {
			PrintSummaryTable(os.Stdout, summary)
		}
	}

	if o.pdfFile != "" {
		pdf, reportID, err := GenerateLivingWagePDFReport(engine, o.q, o.filing, o.includeTax)
		if err != nil {
			return fmt.Errorf("pdf report: %w", err)
		}
		if err := os.WriteFile(o.pdfFile, pdf, 0644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "PDF report %s written to %s\n", reportID, o.pdfFile)
	}

	if o.htmlFile != "" {
		report, err := BuildHTMLReport(engine, o.q, o.filing, o.includeTax, true)
		if err != nil {
			return fmt.Errorf("html report: %w", err)
		}
		if err := GenerateHTMLReport(report, o.htmlFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "HTML report %s written to %s\n", report.ID, o.htmlFile)
		if o.open {
			if abs, err := filepath.Abs(o.htmlFile); err == nil {
				openBrowser(abs)
			}
		}
	}
	return nil
}

// openBrowser opens a file in the default browser
func openBrowser(filename string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", filename)
	case "darwin":
		cmd = exec.Command("open", filename)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", filename)
	default:
		fmt.Fprintf(os.Stderr, "Cannot open browser on %s\n", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening browser: %v\n", err)
	}
}
