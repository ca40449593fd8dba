package main

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// LivingWageRow is the full-precision result for one archetype at one percentile.
// Both tables are rendered from the same rows.
type LivingWageRow struct {
	Archetype     Archetype
	Bedrooms      int
	Filing        FilingStatus
	Costs         map[Category]float64
	MonthlyNet    float64
	TaxMonthly    float64
	Total         float64 // MonthlyNet + TaxMonthly
	AnnualGross   float64
	MonthlyGross  float64
	Hourly        float64
	EffectiveRate float64
}

// Label returns the archetype label the row is keyed by
func (r LivingWageRow) Label() string {
	return r.Archetype.Label
}

// Engine ties the cost model, scaling rules, health model and tax solver together
type Engine struct {
	config   *Config
	model    *CostModel
	registry *Registry
	scaler   Scaler
	health   HealthModel
	taxes    *TaxEngine
	solver   *GrossUpSolver
}

// NewEngine validates config and draws its cost samples
func NewEngine(config *Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	model, err := NewCostModel(config.Distributions)
	if err != nil {
		return nil, err
	}
	return newEngine(config, model)
}

// NewDefaultEngine builds an engine from the embedded defaults, sharing the
// process-wide default cost model
func NewDefaultEngine() (*Engine, error) {
	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	model, err := DefaultCostModel()
	if err != nil {
		return nil, err
	}
	return newEngine(config, model)
}

func newEngine(config *Config, model *CostModel) (*Engine, error) {
	registry, err := NewRegistry(config.Archetypes)
	if err != nil {
		return nil, err
	}
	taxes, err := NewTaxEngine(config.Tax)
	if err != nil {
		return nil, err
	}
	return &Engine{
		config:   config,
		model:    model,
		registry: registry,
		scaler:   NewScaler(config.Scaling),
		health:   NewHealthModel(config.Health),
		taxes:    taxes,
		solver:   NewGrossUpSolver(taxes, config.Solver),
	}, nil
}

// Config returns the configuration the engine was built from
func (e *Engine) Config() *Config { return e.config }

// Model returns the cost model
func (e *Engine) Model() *CostModel { return e.model }

// Registry returns the archetype registry
func (e *Engine) Registry() *Registry { return e.registry }

// Taxes returns the tax engine
func (e *Engine) Taxes() *TaxEngine { return e.taxes }

// Solver returns the gross-up solver
func (e *Engine) Solver() *GrossUpSolver { return e.solver }

// Health returns the health cost model
func (e *Engine) Health() HealthModel { return e.health }

// HouseholdCosts returns the monthly cost of each category for one archetype,
// given the category baselines and housing cost already looked up at q
func (e *Engine) HouseholdCosts(a Archetype, baselines map[Category]float64, housing float64) map[Category]float64 {
	s := e.scaler
	return map[Category]float64{
		Housing:   math.Max(housing, 0),
		Transport: s.Transport(baselines[Transport], a.Earners, a.Children),
		Food:      s.Food(baselines[Food], a.Adults, a.Children),
		Health:    e.health.Monthly(a),
		Civic:     s.Civic(baselines[Civic], a.Adults, a.Children),
		Other:     s.Other(baselines[Other], a.Adults, a.Children),
		Childcare: s.Childcare(baselines[Childcare], a.Adults, a.Earners, a.Children),
		Internet:  s.Internet(baselines[Internet], a.Adults),
	}
}

// ComputeRow computes one archetype's row at percentile q
func (e *Engine) ComputeRow(a Archetype, q float64, filing FilingMode, includeTax bool) (LivingWageRow, error) {
	if err := a.Validate(); err != nil {
		return LivingWageRow{}, err
	}
	if err := validateQuantile(q); err != nil {
		return LivingWageRow{}, err
	}
	baselines, err := e.model.Baselines(q)
	if err != nil {
		return LivingWageRow{}, err
	}
	return e.computeRow(a, q, baselines, filing, includeTax)
}

func (e *Engine) computeRow(a Archetype, q float64, baselines map[Category]float64, filing FilingMode, includeTax bool) (LivingWageRow, error) {
	bedrooms := a.BedroomsRequired()
	housing, err := e.model.HousingQuantile(q, bedrooms)
	if err != nil {
		return LivingWageRow{}, fmt.Errorf("archetype %q: %w", a.Label, err)
	}

	costs := e.HouseholdCosts(a, baselines, housing)
	monthlyNet := 0.0
	for _, cat := range BreakdownCategories {
		monthlyNet += costs[cat]
	}

	status := filing.Resolve(a)
	annualGross := monthlyNet * 12
	effectiveRate := 0.0
	if includeTax {
		annualGross, effectiveRate, err = e.solver.GrossFromNet(monthlyNet*12, status, a.Children, a.Earners)
		if err != nil {
			return LivingWageRow{}, fmt.Errorf("archetype %q: %w", a.Label, err)
		}
	}

	monthlyGross := annualGross / 12
	taxMonthly := monthlyGross - monthlyNet
	if !includeTax {
		taxMonthly = 0
	}

	return LivingWageRow{
		Archetype:     a,
		Bedrooms:      bedrooms,
		Filing:        status,
		Costs:         costs,
		MonthlyNet:    monthlyNet,
		TaxMonthly:    taxMonthly,
		Total:         monthlyNet + taxMonthly,
		AnnualGross:   annualGross,
		MonthlyGross:  monthlyGross,
		Hourly:        annualGross / (e.config.Wage.GetHoursPerEarner() * float64(a.Earners)),
		EffectiveRate: effectiveRate,
	}, nil
}

// ComputeRows computes a row for every registered archetype, sorted by label.
// Rows are independent so they are computed concurrently; any failure fails the whole set.
func (e *Engine) ComputeRows(q float64, filing FilingMode, includeTax bool) ([]LivingWageRow, error) {
	if err := validateQuantile(q); err != nil {
		return nil, err
	}
	baselines, err := e.model.Baselines(q)
	if err != nil {
		return nil, err
	}

	archetypes := e.registry.All()
	rows := make([]LivingWageRow, len(archetypes))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, a := range archetypes {
		g.Go(func() error {
			row, err := e.computeRow(a, q, baselines, filing, includeTax)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Archetype.Label < rows[j].Archetype.Label
	})
	return rows, nil
}

// ComputeBreakdown returns the cost-by-category table at percentile q
func (e *Engine) ComputeBreakdown(q float64, filing FilingMode) (*BreakdownTable, error) {
	return e.ComputeBreakdownWithOptions(q, filing, true)
}

// ComputeBreakdownWithOptions is ComputeBreakdown with tax optionally left out,
// in which case tax is zero and gross equals net
func (e *Engine) ComputeBreakdownWithOptions(q float64, filing FilingMode, includeTax bool) (*BreakdownTable, error) {
	rows, err := e.ComputeRows(q, filing, includeTax)
	if err != nil {
		return nil, err
	}
	return NewBreakdownTable(q, rows), nil
}

// ComputeSummary returns the gross and hourly wage table at percentile q,
// with each archetype's own filing status
func (e *Engine) ComputeSummary(q float64) (*SummaryTable, error) {
	rows, err := e.ComputeRows(q, FilingAuto, true)
	if err != nil {
		return nil, err
	}
	return NewSummaryTable(q, rows), nil
}

// ComputeTables returns both tables built from one set of rows
func (e *Engine) ComputeTables(q float64, filing FilingMode, includeTax bool) (*BreakdownTable, *SummaryTable, error) {
	rows, err := e.ComputeRows(q, filing, includeTax)
	if err != nil {
		return nil, nil, err
	}
	return NewBreakdownTable(q, rows), NewSummaryTable(q, rows), nil
}
