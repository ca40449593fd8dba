package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ValidationError represents a prompt input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validateCount(n, min, max int, field string) error {
	if n < min || n > max {
		return ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return nil
}

// InteractiveExplorer prices households typed in at the terminal, including
// compositions that are not in the registry
type InteractiveExplorer struct {
	reader *bufio.Reader
	out    io.Writer
	engine *Engine
}

// NewInteractiveExplorer creates an explorer reading answers from in
func NewInteractiveExplorer(engine *Engine, in io.Reader, out io.Writer) *InteractiveExplorer {
	return &InteractiveExplorer{
		reader: bufio.NewReader(in),
		out:    out,
		engine: engine,
	}
}

// readLine returns the next trimmed line, or io.EOF once input is exhausted
func (x *InteractiveExplorer) readLine() (string, error) {
	input, err := x.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptInt asks for an integer in [min, max] until one is given
func (x *InteractiveExplorer) promptInt(prompt string, defaultVal, min, max int) (int, error) {
	for {
		fmt.Fprintf(x.out, "%s [%d]: ", prompt, defaultVal)
		input, err := x.readLine()
		if err != nil {
			return 0, err
		}
		if input == "" {
			return defaultVal, nil
		}
		val, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(x.out, "  ✗ Invalid number\n")
			continue
		}
		if err := validateCount(val, min, max, prompt); err != nil {
			fmt.Fprintf(x.out, "  ✗ %s\n", err)
			continue
		}
		return val, nil
	}
}

// promptPercentile asks for a percentile as "0.4" or "40%"
func (x *InteractiveExplorer) promptPercentile(defaultVal float64) (float64, error) {
	for {
		fmt.Fprintf(x.out, "Cost percentile [%.0f%%]: ", defaultVal*100)
		input, err := x.readLine()
		if err != nil {
			return 0, err
		}
		if input == "" {
			return defaultVal, nil
		}
		q, err := ParsePercentile(input)
		if err != nil {
			fmt.Fprintf(x.out, "  ✗ %s\n", err)
			continue
		}
		return q, nil
	}
}

// promptFiling asks for auto or a filing status
func (x *InteractiveExplorer) promptFiling() (FilingMode, error) {
	for {
		fmt.Fprintf(x.out, "Filing status (auto/single/married/hoh) [auto]: ")
		input, err := x.readLine()
		if err != nil {
			return FilingMode{}, err
		}
		mode, err := ParseFilingMode(input)
		if err != nil {
			fmt.Fprintf(x.out, "  ✗ %s\n", err)
			continue
		}
		return mode, nil
	}
}

// PromptHousehold asks for a household composition
func (x *InteractiveExplorer) PromptHousehold() (Archetype, error) {
	adults, err := x.promptInt("Adults", 1, 1, 2)
	if err != nil {
		return Archetype{}, err
	}
	children, err := x.promptInt("Children", 0, 0, 10)
	if err != nil {
		return Archetype{}, err
	}
	earners := 1
	if adults > 1 {
		earners, err = x.promptInt("Working adults", adults, 1, adults)
		if err != nil {
			return Archetype{}, err
		}
	}
	a := Archetype{
		Label:    describeHousehold(adults, children, earners),
		Adults:   adults,
		Children: children,
		Earners:  earners,
	}
	return a, a.Validate()
}

// describeHousehold builds a label in the registry's naming style
func describeHousehold(adults, children, earners int) string {
	var b strings.Builder
	if adults == 1 {
		b.WriteString("1 Adult")
	} else {
		fmt.Fprintf(&b, "%d Adults (%d Working)", adults, earners)
	}
	switch {
	case children == 1:
		b.WriteString(" 1 Child")
	case children > 1:
		fmt.Fprintf(&b, " %d Children", children)
	}
	return b.String()
}

// Run prompts for one household and prints its living wage. It returns the computed row.
func (x *InteractiveExplorer) Run() (LivingWageRow, error) {
	fmt.Fprintln(x.out)
	fmt.Fprintln(x.out, "Household Living Wage Explorer")
	fmt.Fprintln(x.out, "──────────────────────────────")

	q, err := x.promptPercentile(x.engine.Config().Report.GetPercentile())
	if err != nil {
		return LivingWageRow{}, err
	}
	filing, err := x.promptFiling()
	if err != nil {
		return LivingWageRow{}, err
	}
	a, err := x.PromptHousehold()
	if err != nil {
		return LivingWageRow{}, err
	}

	row, err := x.engine.ComputeRow(a, q, filing, true)
	if err != nil {
		return LivingWageRow{}, err
	}
	PrintHouseholdDetail(x.out, row, q)
	return row, nil
}

// PrintHouseholdDetail prints one row's costs and wage
func PrintHouseholdDetail(w io.Writer, row LivingWageRow, q float64) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s at p%02.0f (%d bedroom, filing %s)\n", row.Label(), q*100, row.Bedrooms, row.Filing)
	fmt.Fprintln(w, strings.Repeat("─", 44))
	for _, cat := range BreakdownCategories {
		fmt.Fprintf(w, "  %-12s %12s/month\n", cat.Title(), FormatMoney(roundDollars(row.Costs[cat])))
	}
	fmt.Fprintf(w, "  %-12s %12s/month\n", "Tax", FormatMoney(roundDollars(row.TaxMonthly)))
	fmt.Fprintln(w, strings.Repeat("─", 44))
	fmt.Fprintf(w, "  %-12s %12s/month\n", "Net need", FormatMoney(roundDollars(row.MonthlyNet)))
	fmt.Fprintf(w, "  %-12s %12s/year\n", "Gross", FormatMoney(roundDollars(row.AnnualGross)))
	fmt.Fprintf(w, "  %-12s %12s/hour per earner\n", "Wage", fmt.Sprintf("$%.2f", roundCents(row.Hourly)))
	fmt.Fprintf(w, "  %-12s %11.1f%%\n", "Eff. rate", row.EffectiveRate*100)
}
