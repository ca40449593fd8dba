package main

import (
	"math"
)

// roundDollars rounds half to even, matching how the figures have always been published
func roundDollars(v float64) float64 {
	return math.RoundToEven(v)
}

// roundCents rounds to two decimals, half to even
func roundCents(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// BreakdownRow is one archetype's monthly costs in whole dollars
type BreakdownRow struct {
	Label     string  `json:"label"`
	Housing   float64 `json:"housing"`
	Transport float64 `json:"transport"`
	Food      float64 `json:"food"`
	Health    float64 `json:"health"`
	Civic     float64 `json:"civic"`
	Other     float64 `json:"other"`
	Childcare float64 `json:"childcare"`
	Internet  float64 `json:"internet"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
}

// Cost returns the column for a category
func (r BreakdownRow) Cost(c Category) float64 {
	switch c {
	case Housing:
		return r.Housing
	case Transport:
		return r.Transport
	case Food:
		return r.Food
	case Health:
		return r.Health
	case Civic:
		return r.Civic
	case Other:
		return r.Other
	case Childcare:
		return r.Childcare
	case Internet:
		return r.Internet
	}
	return 0
}

// BreakdownTable is the cost-by-category table, rows sorted by label
type BreakdownTable struct {
	Percentile float64        `json:"percentile"`
	Rows       []BreakdownRow `json:"rows"`
}

// NewBreakdownTable rounds rows into a breakdown table
func NewBreakdownTable(q float64, rows []LivingWageRow) *BreakdownTable {
	t := &BreakdownTable{Percentile: q, Rows: make([]BreakdownRow, len(rows))}
	for i, r := range rows {
		t.Rows[i] = BreakdownRow{
			Label:     r.Label(),
			Housing:   roundDollars(r.Costs[Housing]),
			Transport: roundDollars(r.Costs[Transport]),
			Food:      roundDollars(r.Costs[Food]),
			Health:    roundDollars(r.Costs[Health]),
			Civic:     roundDollars(r.Costs[Civic]),
			Other:     roundDollars(r.Costs[Other]),
			Childcare: roundDollars(r.Costs[Childcare]),
			Internet:  roundDollars(r.Costs[Internet]),
			Tax:       roundDollars(r.TaxMonthly),
			Total:     roundDollars(r.Total),
		}
	}
	return t
}

// Lookup returns the row for label
func (t *BreakdownTable) Lookup(label string) (BreakdownRow, error) {
	for _, r := range t.Rows {
		if r.Label == label {
			return r, nil
		}
	}
	return BreakdownRow{}, &ArchetypeError{Label: label}
}

// SummaryRow is one archetype's required income
type SummaryRow struct {
	Label         string  `json:"label"`
	Bedrooms      int     `json:"bedrooms"`
	Filing        string  `json:"filing_status"`
	MonthlyNet    float64 `json:"monthly_net"`
	MonthlyGross  float64 `json:"monthly_gross"`
	AnnualGross   float64 `json:"annual_gross"`
	Hourly        float64 `json:"hourly_wage"`
	EffectiveRate float64 `json:"effective_tax_rate"`
}

// SummaryTable is the wage table, rows sorted by label
type SummaryTable struct {
	Percentile float64      `json:"percentile"`
	Rows       []SummaryRow `json:"rows"`
}

// NewSummaryTable rounds rows into a summary table: dollars to whole dollars,
// hourly wage to cents, effective rate to basis points
func NewSummaryTable(q float64, rows []LivingWageRow) *SummaryTable {
	t := &SummaryTable{Percentile: q, Rows: make([]SummaryRow, len(rows))}
	for i, r := range rows {
		t.Rows[i] = SummaryRow{
			Label:         r.Label(),
			Bedrooms:      r.Bedrooms,
			Filing:        r.Filing.String(),
			MonthlyNet:    roundDollars(r.MonthlyNet),
			MonthlyGross:  roundDollars(r.MonthlyGross),
			AnnualGross:   roundDollars(r.AnnualGross),
			Hourly:        roundCents(r.Hourly),
			EffectiveRate: math.RoundToEven(r.EffectiveRate*10000) / 10000,
		}
	}
	return t
}

// Lookup returns the row for label
func (t *SummaryTable) Lookup(label string) (SummaryRow, error) {
	for _, r := range t.Rows {
		if r.Label == label {
			return r, nil
		}
	}
	return SummaryRow{}, &ArchetypeError{Label: label}
}
