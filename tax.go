package main

import (
	"math"
)

// TaxEngine computes net income from gross income for a filing status.
// It only reads its configuration, so one engine can be shared between goroutines.
type TaxEngine struct {
	cfg TaxConfig
}

// NewTaxEngine validates the tax configuration and returns an engine for it
func NewTaxEngine(cfg TaxConfig) (*TaxEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TaxEngine{cfg: cfg}, nil
}

// Config returns the tax configuration the engine was built with
func (te *TaxEngine) Config() TaxConfig {
	return te.cfg
}

// CalculateIncomeTax walks the schedule in ascending order, taxing the slice of
// taxable income that falls inside each bracket it reaches. The last bracket is open-ended.
func CalculateIncomeTax(taxable float64, schedule []TaxBracket) float64 {
	if taxable <= 0 {
		return 0
	}

	var totalTax float64

	for i, bracket := range schedule {
		if taxable <= bracket.Threshold {
			break
		}

		upper := math.Inf(1)
		if i+1 < len(schedule) {
			upper = schedule[i+1].Threshold
		}

		taxedInBracket := math.Min(taxable, upper) - bracket.Threshold
		if taxedInBracket > 0 {
			totalTax += taxedInBracket * bracket.Rate
		}
	}

	return totalTax
}

// GetMarginalRate returns the bracket rate that applies to the next dollar of taxable income
func GetMarginalRate(taxable float64, schedule []TaxBracket) float64 {
	rate := 0.0
	for _, bracket := range schedule {
		if taxable < bracket.Threshold {
			break
		}
		rate = bracket.Rate
	}
	return rate
}

// IncomeTax returns federal income tax on gross income after the standard deduction
func (te *TaxEngine) IncomeTax(gross float64, status FilingStatus) float64 {
	filing := te.cfg.Filing(status)
	taxable := math.Max(0, gross-filing.StandardDeduction)
	return CalculateIncomeTax(taxable, filing.Brackets)
}

// ChildTaxCredit is the per-child credit, reduced by the phase-out rate on
// gross income above the filing status threshold, never below zero
func (te *TaxEngine) ChildTaxCredit(gross float64, children int, status FilingStatus) float64 {
	base := te.cfg.ChildCredit * float64(children)
	reduction := te.cfg.ChildCreditPhaseOutRate * math.Max(0, gross-te.cfg.ChildCreditThreshold(status))
	return math.Max(0, base-reduction)
}

// PayrollTax splits gross evenly between earners and applies the OASDI wage
// cap to each earner separately. Medicare is uncapped.
func (te *TaxEngine) PayrollTax(gross float64, earners int) float64 {
	if gross <= 0 {
		return 0
	}
	earners = max(earners, 1)
	each := gross / float64(earners)
	perEarner := math.Min(each, te.cfg.SocialSecurityWageBase)*te.cfg.OASDIRate + each*te.cfg.MedicareRate
	return float64(earners) * perEarner
}

// NetAfterTax is gross minus income tax, plus the child tax credit, minus payroll tax.
// It is non-decreasing in gross for any configuration that passes TaxConfig.Validate.
func (te *TaxEngine) NetAfterTax(gross float64, status FilingStatus, children, earners int) float64 {
	liability := te.IncomeTax(gross, status) - te.ChildTaxCredit(gross, children, status)
	return gross - liability - te.PayrollTax(gross, earners)
}

// MarginalRate returns the combined marginal burden on the next dollar of gross income
func (te *TaxEngine) MarginalRate(gross float64, status FilingStatus, children, earners int) float64 {
	filing := te.cfg.Filing(status)
	rate := 0.0
	if gross > filing.StandardDeduction {
		rate = GetMarginalRate(gross-filing.StandardDeduction, filing.Brackets)
	}
	if children > 0 && gross > te.cfg.ChildCreditThreshold(status) && te.ChildTaxCredit(gross, children, status) > 0 {
		rate += te.cfg.ChildCreditPhaseOutRate
	}
	rate += te.cfg.MedicareRate
	if gross/float64(max(earners, 1)) < te.cfg.SocialSecurityWageBase {
		rate += te.cfg.OASDIRate
	}
	return rate
}
