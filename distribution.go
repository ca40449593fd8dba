package main

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// housingTiers are the bedroom counts with their own rent distribution
var housingTiers = []int{1, 2, 3}

// CostModel holds one sorted sample per cost category and housing tier.
// It is immutable after construction and safe for concurrent readers.
type CostModel struct {
	seed       uint64
	sampleSize int
	categories map[Category][]float64
	housing    map[int][]float64
}

// SampleStats summarises one sample for reports
type SampleStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// NewCostModel draws every sample from a single generator seeded with dc.Seed.
// Draw order is fixed (categories in sampledCategories order, then housing
// tiers 1..3), so the same config yields bit-identical samples in every process.
func NewCostModel(dc DistributionConfig) (*CostModel, error) {
	n := dc.GetSampleSize()
	rng := rand.New(rand.NewPCG(dc.Seed, dc.Seed))

	m := &CostModel{
		seed:       dc.Seed,
		sampleSize: n,
		categories: make(map[Category][]float64, len(sampledCategories)),
		housing:    make(map[int][]float64, len(housingTiers)),
	}

	for _, cat := range sampledCategories {
		p, ok := dc.Categories[cat.String()]
		if !ok {
			return nil, fmt.Errorf("no distribution configured for %s", cat)
		}
		m.categories[cat] = drawNormal(rng, p, n)
	}
	for _, br := range housingTiers {
		p, ok := dc.Housing[br]
		if !ok {
			return nil, fmt.Errorf("no housing distribution configured for %d bedrooms", br)
		}
		m.housing[br] = drawNormal(rng, p, n)
	}
	return m, nil
}

// drawNormal returns n sorted draws from Normal(p.GetMean(), p.StdDev)
func drawNormal(rng *rand.Rand, p NormalParams, n int) []float64 {
	mean := p.GetMean()
	sample := make([]float64, n)
	for i := range sample {
		sample[i] = mean + p.StdDev*rng.NormFloat64()
	}
	sort.Float64s(sample)
	return sample
}

var defaultModelOnce = sync.OnceValues(func() (*CostModel, error) {
	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, err
	}
	return NewCostModel(config.Distributions)
})

// DefaultCostModel returns the process-wide model built from the embedded
// defaults. It is created on first use and shared read-only afterwards.
func DefaultCostModel() (*CostModel, error) {
	return defaultModelOnce()
}

// Quantile returns the q-th empirical percentile of a category sample
func (m *CostModel) Quantile(cat Category, q float64) (float64, error) {
	if err := validateQuantile(q); err != nil {
		return 0, err
	}
	sample, ok := m.categories[cat]
	if !ok {
		return 0, fmt.Errorf("category %s is not sampled", cat)
	}
	return stat.Quantile(q, stat.Empirical, sample, nil), nil
}

// HousingQuantile returns the q-th percentile rent for a 1, 2 or 3 bedroom home.
// Other bedroom counts are an error; use HousingTier to map a wider selection first.
func (m *CostModel) HousingQuantile(q float64, bedrooms int) (float64, error) {
	if err := validateQuantile(q); err != nil {
		return 0, err
	}
	sample, ok := m.housing[bedrooms]
	if !ok {
		return 0, &BedroomError{Bedrooms: bedrooms}
	}
	return stat.Quantile(q, stat.Empirical, sample, nil), nil
}

// Baselines returns the q-th percentile of every sampled category
func (m *CostModel) Baselines(q float64) (map[Category]float64, error) {
	out := make(map[Category]float64, len(sampledCategories))
	for _, cat := range sampledCategories {
		v, err := m.Quantile(cat, q)
		if err != nil {
			return nil, err
		}
		out[cat] = v
	}
	return out, nil
}

// Describe summarises a category sample, or a housing tier when cat is Housing
func (m *CostModel) Describe(cat Category, bedrooms int) (SampleStats, error) {
	var sample []float64
	if cat == Housing {
		s, ok := m.housing[bedrooms]
		if !ok {
			return SampleStats{}, &BedroomError{Bedrooms: bedrooms}
		}
		sample = s
	} else {
		s, ok := m.categories[cat]
		if !ok {
			return SampleStats{}, fmt.Errorf("category %s is not sampled", cat)
		}
		sample = s
	}
	mean, std := stat.MeanStdDev(sample, nil)
	return SampleStats{
		Mean:   mean,
		StdDev: std,
		Min:    sample[0],
		Max:    sample[len(sample)-1],
	}, nil
}

// Seed returns the seed the samples were drawn with
func (m *CostModel) Seed() uint64 { return m.seed }

// SampleSize returns the number of draws per distribution
func (m *CostModel) SampleSize() int { return m.sampleSize }

// HousingTier maps a caller's bedroom selection onto a modelled tier.
// Selections above three bedrooms use the 3BR distribution; fewer than one is an error.
func HousingTier(bedrooms int) (int, error) {
	switch {
	case bedrooms < 1:
		return 0, &BedroomError{Bedrooms: bedrooms}
	case bedrooms > 3:
		return 3, nil
	default:
		return bedrooms, nil
	}
}
