package main

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// NormalParams parameterises one cost distribution.
// If Components is set the mean is their sum and Mean is ignored.
type NormalParams struct {
	Mean       float64   `yaml:"mean,omitempty" json:"mean,omitempty"`
	Components []float64 `yaml:"components,omitempty" json:"components,omitempty"`
	StdDev     float64   `yaml:"stdev" json:"stdev"`
}

// GetMean returns the distribution mean
func (p NormalParams) GetMean() float64 {
	if len(p.Components) == 0 {
		return p.Mean
	}
	total := 0.0
	for _, c := range p.Components {
		total += c
	}
	return total
}

// DistributionConfig holds the sampled cost distributions
type DistributionConfig struct {
	Seed       uint64                  `yaml:"seed" json:"seed"`
	SampleSize int                     `yaml:"sample_size" json:"sample_size"`
	Categories map[string]NormalParams `yaml:"categories" json:"categories"`
	Housing    map[int]NormalParams    `yaml:"housing" json:"housing"` // keyed by bedroom count
}

// UnmarshalYAML merges a user file into the values already held, one field at a
// time. Map entries start from the existing entry instead of a zero value, so
// `food: {mean: 400}` keeps the default stdev.
func (dc *DistributionConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Seed       *uint64              `yaml:"seed"`
		SampleSize *int                 `yaml:"sample_size"`
		Categories map[string]yaml.Node `yaml:"categories"`
		Housing    map[int]yaml.Node    `yaml:"housing"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Seed != nil {
		dc.Seed = *raw.Seed
	}
	if raw.SampleSize != nil {
		dc.SampleSize = *raw.SampleSize
	}

	if len(raw.Categories) > 0 && dc.Categories == nil {
		dc.Categories = make(map[string]NormalParams, len(raw.Categories))
	}
	for key, node := range raw.Categories {
		p, err := mergeNormalParams(dc.Categories[key], &node)
		if err != nil {
			return fmt.Errorf("categories.%s: %w", key, err)
		}
		dc.Categories[key] = p
	}

	if len(raw.Housing) > 0 && dc.Housing == nil {
		dc.Housing = make(map[int]NormalParams, len(raw.Housing))
	}
	for br, node := range raw.Housing {
		p, err := mergeNormalParams(dc.Housing[br], &node)
		if err != nil {
			return fmt.Errorf("housing.%d: %w", br, err)
		}
		dc.Housing[br] = p
	}
	return nil
}

// mergeNormalParams decodes node over base. A mean given without components
// drops the base components, otherwise the mean would be ignored.
func mergeNormalParams(base NormalParams, node *yaml.Node) (NormalParams, error) {
	if hasKey(node, "mean") && !hasKey(node, "components") {
		base.Components = nil
	}
	if err := node.Decode(&base); err != nil {
		return NormalParams{}, err
	}
	return base, nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// GetSampleSize returns the number of draws per distribution (default 10,000)
func (dc *DistributionConfig) GetSampleSize() int {
	if dc.SampleSize <= 0 {
		return 10000
	}
	return dc.SampleSize
}

// ScalingConfig holds the household scaling factors, each a fraction of the one-adult baseline
type ScalingConfig struct {
	FoodExtraAdult       float64 `yaml:"food_extra_adult" json:"food_extra_adult"`
	FoodPerChild         float64 `yaml:"food_per_child" json:"food_per_child"`
	TransportExtraEarner float64 `yaml:"transport_extra_earner" json:"transport_extra_earner"`
	TransportPerChild    float64 `yaml:"transport_per_child" json:"transport_per_child"`
	CivicExtraAdult      float64 `yaml:"civic_extra_adult" json:"civic_extra_adult"`
	CivicPerChild        float64 `yaml:"civic_per_child" json:"civic_per_child"`
	OtherExtraAdult      float64 `yaml:"other_extra_adult" json:"other_extra_adult"`
	OtherPerChild        float64 `yaml:"other_per_child" json:"other_per_child"`
	InternetExtraAdult   float64 `yaml:"internet_extra_adult" json:"internet_extra_adult"`
}

// PlanWeight is one entry of a premium mix
type PlanWeight struct {
	Plan   string  `yaml:"plan" json:"plan"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// HealthConfig holds premiums and out-of-pocket assumptions
type HealthConfig struct {
	OutOfPocket []float64          `yaml:"out_of_pocket" json:"out_of_pocket"` // per adult, monthly
	ChildFactor float64            `yaml:"child_factor" json:"child_factor"`   // child OOP as a fraction of adult OOP
	Premiums    map[string]float64 `yaml:"premiums" json:"premiums"`
	CoupleMix   []PlanWeight       `yaml:"couple_mix" json:"couple_mix"`
	FamilyMix   []PlanWeight       `yaml:"family_mix" json:"family_mix"`
}

// AdultOutOfPocket returns the summed monthly out-of-pocket cost for one adult
func (hc *HealthConfig) AdultOutOfPocket() float64 {
	total := 0.0
	for _, c := range hc.OutOfPocket {
		total += c
	}
	return total
}

// TaxBracket is a marginal rate applied from Threshold up to the next bracket
type TaxBracket struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Rate      float64 `yaml:"rate" json:"rate"`
}

// FilingConfig is the deduction and schedule for one filing status
type FilingConfig struct {
	StandardDeduction float64      `yaml:"standard_deduction" json:"standard_deduction"`
	Brackets          []TaxBracket `yaml:"brackets" json:"brackets"`
}

// TaxConfig holds the federal income, payroll and child credit rules
type TaxConfig struct {
	Single          FilingConfig `yaml:"single" json:"single"`
	Married         FilingConfig `yaml:"married" json:"married"`
	HeadOfHousehold FilingConfig `yaml:"head_of_household" json:"head_of_household"`

	SocialSecurityWageBase float64 `yaml:"social_security_wage_base" json:"social_security_wage_base"` // OASDI cap per earner
	OASDIRate              float64 `yaml:"oasdi_rate" json:"oasdi_rate"`
	MedicareRate           float64 `yaml:"medicare_rate" json:"medicare_rate"` // uncapped

	ChildCredit                 float64 `yaml:"child_credit" json:"child_credit"` // per child
	ChildCreditPhaseOutRate     float64 `yaml:"child_credit_phase_out_rate" json:"child_credit_phase_out_rate"`
	ChildCreditThresholdMarried float64 `yaml:"child_credit_threshold_married" json:"child_credit_threshold_married"`
	ChildCreditThresholdOther   float64 `yaml:"child_credit_threshold_other" json:"child_credit_threshold_other"`
}

// Filing returns the deduction and schedule for a filing status
func (tc *TaxConfig) Filing(status FilingStatus) FilingConfig {
	switch status {
	case Married:
		return tc.Married
	case HeadOfHousehold:
		return tc.HeadOfHousehold
	default:
		return tc.Single
	}
}

// ChildCreditThreshold returns the phase-out threshold for a filing status
func (tc *TaxConfig) ChildCreditThreshold(status FilingStatus) float64 {
	if status == Married {
		return tc.ChildCreditThresholdMarried
	}
	return tc.ChildCreditThresholdOther
}

// TopMarginalBurden is the largest combined marginal rate a dollar of gross income can face.
// NetAfterTax stays monotonic only while this is below 1.
func (tc *TaxConfig) TopMarginalBurden() float64 {
	top := 0.0
	for _, status := range []FilingStatus{Single, Married, HeadOfHousehold} {
		for _, b := range tc.Filing(status).Brackets {
			top = math.Max(top, b.Rate)
		}
	}
	return top + tc.ChildCreditPhaseOutRate + tc.OASDIRate + tc.MedicareRate
}

// Validate rejects schedules that would break the monotonicity the solver relies on
func (tc *TaxConfig) Validate() error {
	for _, status := range []FilingStatus{Single, Married, HeadOfHousehold} {
		fc := tc.Filing(status)
		if len(fc.Brackets) == 0 {
			return fmt.Errorf("tax.%s: no brackets configured", status)
		}
		if fc.StandardDeduction < 0 {
			return fmt.Errorf("tax.%s: standard deduction must be non-negative, got %.2f", status, fc.StandardDeduction)
		}
		if !sort.SliceIsSorted(fc.Brackets, func(i, j int) bool {
			return fc.Brackets[i].Threshold < fc.Brackets[j].Threshold
		}) {
			return fmt.Errorf("tax.%s: bracket thresholds must be ascending", status)
		}
		for i, b := range fc.Brackets {
			if i > 0 && b.Threshold == fc.Brackets[i-1].Threshold {
				return fmt.Errorf("tax.%s: duplicate bracket threshold %.0f", status, b.Threshold)
			}
			if b.Rate < 0 || b.Rate >= 1 {
				return fmt.Errorf("tax.%s: bracket rate %g outside [0,1)", status, b.Rate)
			}
		}
	}
	if tc.SocialSecurityWageBase <= 0 {
		return fmt.Errorf("tax.social_security_wage_base must be positive")
	}
	if tc.ChildCredit < 0 || tc.ChildCreditPhaseOutRate < 0 {
		return fmt.Errorf("tax: child credit settings must be non-negative")
	}
	if burden := tc.TopMarginalBurden(); burden >= 1 {
		return fmt.Errorf("tax: top marginal burden %.4f reaches 100%%, net income would not be monotonic", burden)
	}
	return nil
}

// SolverConfig tunes the gross-up bisection
type SolverConfig struct {
	Tolerance            float64 `yaml:"tolerance" json:"tolerance"`
	MaxIterations        int     `yaml:"max_iterations" json:"max_iterations"`
	MaxExpansions        int     `yaml:"max_expansions" json:"max_expansions"`
	InitialUpperMultiple float64 `yaml:"initial_upper_multiple" json:"initial_upper_multiple"`
}

// GetTolerance returns the convergence tolerance in dollars (default 1 cent)
func (sc *SolverConfig) GetTolerance() float64 {
	if sc.Tolerance <= 0 {
		return 0.01
	}
	return sc.Tolerance
}

// GetMaxIterations returns the bisection safety cap
func (sc *SolverConfig) GetMaxIterations() int {
	if sc.MaxIterations <= 0 {
		return 200
	}
	return sc.MaxIterations
}

// GetMaxExpansions returns how many times the upper bound may double
func (sc *SolverConfig) GetMaxExpansions() int {
	if sc.MaxExpansions <= 0 {
		return 60
	}
	return sc.MaxExpansions
}

// GetInitialUpperMultiple returns the first upper bound as a multiple of the target
func (sc *SolverConfig) GetInitialUpperMultiple() float64 {
	if sc.InitialUpperMultiple <= 1 {
		return 2.5
	}
	return sc.InitialUpperMultiple
}

// WageConfig converts annual gross to an hourly wage
type WageConfig struct {
	HoursPerEarner float64 `yaml:"hours_per_earner" json:"hours_per_earner"`
}

// GetHoursPerEarner returns full-time annual hours per earner (default 2080)
func (wc *WageConfig) GetHoursPerEarner() float64 {
	if wc.HoursPerEarner <= 0 {
		return 2080
	}
	return wc.HoursPerEarner
}

// ReportConfig holds defaults for the command line and reports
type ReportConfig struct {
	Percentile             float64   `yaml:"percentile" json:"percentile"`
	SensitivityPercentiles []float64 `yaml:"sensitivity_percentiles" json:"sensitivity_percentiles"`
}

// GetPercentile returns the default percentile (40th if unset)
func (rc *ReportConfig) GetPercentile() float64 {
	if rc.Percentile <= 0 || rc.Percentile >= 1 {
		return 0.40
	}
	return rc.Percentile
}

// GetSensitivityPercentiles returns the sweep grid (deciles if unset)
func (rc *ReportConfig) GetSensitivityPercentiles() []float64 {
	if len(rc.SensitivityPercentiles) == 0 {
		return []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	}
	return rc.SensitivityPercentiles
}

// Config holds the complete configuration
type Config struct {
	Region        string             `yaml:"region" json:"region"`
	Distributions DistributionConfig `yaml:"distributions" json:"distributions"`
	Archetypes    []Archetype        `yaml:"archetypes" json:"archetypes"`
	Scaling       ScalingConfig      `yaml:"scaling" json:"scaling"`
	Health        HealthConfig       `yaml:"health" json:"health"`
	Tax           TaxConfig          `yaml:"tax" json:"tax"`
	Solver        SolverConfig       `yaml:"solver" json:"solver"`
	Wage          WageConfig         `yaml:"wage" json:"wage"`
	Report        ReportConfig       `yaml:"report" json:"report"`
}

// LoadDefaultConfig loads the configuration embedded in the binary
func LoadDefaultConfig() (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(preprocessPercentages(defaultConfigYAML)), &config); err != nil {
		return nil, fmt.Errorf("failed to parse embedded default config: %w", err)
	}
	return &config, nil
}

// LoadConfig loads a YAML file on top of the embedded defaults, so a partial
// file only needs the keys it changes. Distribution entries merge field by
// field. Other maps replace an entry wholesale, and lists (archetypes, brackets)
// replace the defaults wholesale.
func LoadConfig(filename string) (*Config, error) {
	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal([]byte(preprocessPercentages(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", filename, err)
	}
	return config, nil
}

// SaveConfig writes the configuration as YAML with an explanatory header
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# Living Wage Engine Configuration
# Generated by -write-config - feel free to edit manually
#
#   Percentages: 0.062 or 6.2%
#   Money: US dollars per month unless the key says otherwise
#
# Run:
#   ./goLivingWage -config this.yaml            Summary and breakdown at the configured percentile
#   ./goLivingWage -config this.yaml -q 50%     Median costs
#   ./goLivingWage -config this.yaml -sensitivity

`)
	return os.WriteFile(filename, append(header, data...), 0644)
}

// preprocessPercentages converts values like "6.2%" to "0.062"
func preprocessPercentages(content string) string {
	re := regexp.MustCompile(`(:\s*)(-?\d+\.?\d*)%`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) >= 3 {
			num, err := strconv.ParseFloat(parts[2], 64)
			if err == nil {
				return parts[1] + strconv.FormatFloat(num/100.0, 'f', -1, 64)
			}
		}
		return match
	})
}

// ParsePercentile accepts "0.4", ".4" or "40%"
func ParsePercentile(s string) (float64, error) {
	pct := false
	if n := len(s); n > 0 && s[n-1] == '%' {
		pct = true
		s = s[:n-1]
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentile %q: %w", s, err)
	}
	if pct {
		q /= 100
	}
	if err := validateQuantile(q); err != nil {
		return 0, err
	}
	return q, nil
}

// Validate checks the configuration before an engine is built from it
func (c *Config) Validate() error {
	if _, err := NewRegistry(c.Archetypes); err != nil {
		return fmt.Errorf("archetypes: %w", err)
	}

	for _, cat := range sampledCategories {
		p, ok := c.Distributions.Categories[cat.String()]
		if !ok {
			return fmt.Errorf("distributions.categories: missing %q", cat)
		}
		if p.StdDev < 0 {
			return fmt.Errorf("distributions.categories.%s: stdev must be non-negative", cat)
		}
	}
	for key := range c.Distributions.Categories {
		if cat, err := ParseCategory(key); err != nil || cat == Housing {
			return fmt.Errorf("distributions.categories: unexpected key %q", key)
		}
	}
	for br := 1; br <= 3; br++ {
		p, ok := c.Distributions.Housing[br]
		if !ok {
			return fmt.Errorf("distributions.housing: missing %d-bedroom tier", br)
		}
		if p.StdDev < 0 {
			return fmt.Errorf("distributions.housing.%d: stdev must be non-negative", br)
		}
	}
	for br := range c.Distributions.Housing {
		if br < 1 || br > 3 {
			return fmt.Errorf("distributions.housing: %w", &BedroomError{Bedrooms: br})
		}
	}

	if err := c.Scaling.validate(); err != nil {
		return fmt.Errorf("scaling: %w", err)
	}
	if err := c.Health.validate(); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if err := c.Tax.Validate(); err != nil {
		return err
	}
	if err := validateQuantile(c.Report.GetPercentile()); err != nil {
		return fmt.Errorf("report.percentile: %w", err)
	}
	for _, q := range c.Report.SensitivityPercentiles {
		if err := validateQuantile(q); err != nil {
			return fmt.Errorf("report.sensitivity_percentiles: %w", err)
		}
	}
	return nil
}

func (hc *HealthConfig) validate() error {
	for _, plan := range []string{PlanEmployee, PlanEmployeeSpouse, PlanEmployeeChildren} {
		if _, ok := hc.Premiums[plan]; !ok {
			return fmt.Errorf("missing premium for plan %q", plan)
		}
	}
	for name, mix := range map[string][]PlanWeight{"couple_mix": hc.CoupleMix, "family_mix": hc.FamilyMix} {
		if len(mix) == 0 {
			return fmt.Errorf("%s is empty", name)
		}
		total := 0.0
		for _, pw := range mix {
			if _, ok := hc.Premiums[pw.Plan]; !ok {
				return fmt.Errorf("%s: unknown plan %q", name, pw.Plan)
			}
			if pw.Weight < 0 {
				return fmt.Errorf("%s: negative weight for %q", name, pw.Plan)
			}
			total += pw.Weight
		}
		if math.Abs(total-1) > 1e-9 {
			return fmt.Errorf("%s weights sum to %g, want 1", name, total)
		}
	}
	if hc.ChildFactor < 0 {
		return fmt.Errorf("child_factor must be non-negative")
	}
	return nil
}

// validate rejects negative factors, which would make a category cost negative
func (sc *ScalingConfig) validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"food_extra_adult", sc.FoodExtraAdult},
		{"food_per_child", sc.FoodPerChild},
		{"transport_extra_earner", sc.TransportExtraEarner},
		{"transport_per_child", sc.TransportPerChild},
		{"civic_extra_adult", sc.CivicExtraAdult},
		{"civic_per_child", sc.CivicPerChild},
		{"other_extra_adult", sc.OtherExtraAdult},
		{"other_per_child", sc.OtherPerChild},
		{"internet_extra_adult", sc.InternetExtraAdult},
	} {
		if f.value < 0 || math.IsNaN(f.value) {
			return fmt.Errorf("%s must be non-negative, got %g", f.name, f.value)
		}
	}
	return nil
}
