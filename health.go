package main

import (
	"fmt"
	"math/rand/v2"
)

// Premium plan names used in HealthConfig
const (
	PlanEmployee         = "employee"
	PlanEmployeeSpouse   = "employee_spouse"
	PlanEmployeeChildren = "employee_children"
	PlanFamily           = "family"
)

// HealthModel prices monthly health care as premium plus out-of-pocket
type HealthModel struct {
	cfg HealthConfig
}

// NewHealthModel creates a health model from configuration
func NewHealthModel(cfg HealthConfig) HealthModel {
	return HealthModel{cfg: cfg}
}

// OutOfPocket returns the deterministic monthly out-of-pocket cost
func (h HealthModel) OutOfPocket(a Archetype) float64 {
	adult := h.cfg.AdultOutOfPocket()
	child := adult * h.cfg.ChildFactor
	return adult*float64(a.TotalAdults()) + child*float64(a.Children)
}

// PremiumMix returns the plans a household may be on, with their probabilities
func (h HealthModel) PremiumMix(a Archetype) []PlanWeight {
	switch {
	case a.TotalAdults() == 1 && a.Children == 0:
		return []PlanWeight{{Plan: PlanEmployee, Weight: 1}}
	case a.TotalAdults() == 1:
		return []PlanWeight{{Plan: PlanEmployeeChildren, Weight: 1}}
	case a.Children == 0:
		return h.cfg.CoupleMix
	default:
		return h.cfg.FamilyMix
	}
}

// ExpectedPremium is the probability-weighted premium over PremiumMix
func (h HealthModel) ExpectedPremium(a Archetype) float64 {
	total := 0.0
	for _, pw := range h.PremiumMix(a) {
		total += pw.Weight * h.cfg.Premiums[pw.Plan]
	}
	return total
}

// Monthly returns expected premium plus out-of-pocket. Tables use this so
// their values are reproducible for a given percentile.
func (h HealthModel) Monthly(a Archetype) float64 {
	return h.ExpectedPremium(a) + h.OutOfPocket(a)
}

// SamplePremium draws a single plan from the household's mix using the
// caller's generator. It returns the plan name and its premium.
func (h HealthModel) SamplePremium(a Archetype, rng *rand.Rand) (string, float64, error) {
	mix := h.PremiumMix(a)
	if len(mix) == 0 {
		return "", 0, fmt.Errorf("no premium mix for %q", a.Label)
	}
	u := rng.Float64()
	cum := 0.0
	for _, pw := range mix {
		cum += pw.Weight
		if u < cum {
			return pw.Plan, h.cfg.Premiums[pw.Plan], nil
		}
	}
	last := mix[len(mix)-1]
	return last.Plan, h.cfg.Premiums[last.Plan], nil
}
