package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessPercentages(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rate: 6.2%", "rate: 0.062"},
		{"rate: 10%", "rate: 0.1"},
		{"rate: 0.1", "rate: 0.1"},
		{"- {threshold: 0, rate: 12%}", "- {threshold: 0, rate: 0.12}"},
		{"food_per_child: -200%", "food_per_child: -2"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, preprocessPercentages(tc.in))
	}
}

func TestParsePercentile(t *testing.T) {
	for in, want := range map[string]float64{"0.4": 0.4, ".4": 0.4, "40%": 0.4, "95%": 0.95} {
		got, err := ParsePercentile(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}
	for _, in := range []string{"", "abc", "0", "100%", "1.5", "-10%"} {
		_, err := ParsePercentile(in)
		assert.Error(t, err, in)
	}
	_, err := ParsePercentile("150%")
	assert.ErrorIs(t, err, ErrQuantileOutOfRange)
}

func TestLoadDefaultConfig(t *testing.T) {
	config, err := LoadDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "Fort Worth, TX", config.Region)
	assert.Equal(t, uint64(42), config.Distributions.Seed)
	assert.InDelta(t, 457.99, config.Distributions.Categories["transport"].GetMean(), 1e-9)
	assert.InDelta(t, 0.062, config.Tax.OASDIRate, 1e-12)
	assert.InDelta(t, 0.40, config.Report.GetPercentile(), 1e-12)
	assert.Equal(t, 2080.0, config.Wage.GetHoursPerEarner())
	assert.Len(t, config.Report.GetSensitivityPercentiles(), 9)
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
region: "Tarrant County, TX"
distributions:
  seed: 7
report:
  percentile: 50%
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	defaults, err := LoadDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "Tarrant County, TX", config.Region)
	assert.Equal(t, uint64(7), config.Distributions.Seed)
	assert.InDelta(t, 0.5, config.Report.Percentile, 1e-12)

	// Everything not mentioned keeps its default
	assert.Equal(t, defaults.Distributions.SampleSize, config.Distributions.SampleSize)
	assert.Empty(t, cmp.Diff(defaults.Tax, config.Tax))
	assert.Empty(t, cmp.Diff(defaults.Archetypes, config.Archetypes))
	assert.Empty(t, cmp.Diff(defaults.Distributions.Housing, config.Distributions.Housing))
}

func TestLoadConfig_PartialDistributionOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
distributions:
  categories:
    food:
      mean: 400
    transport:
      mean: 300
  housing:
    2:
      stdev: 10
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	defaults, err := LoadDefaultConfig()
	require.NoError(t, err)

	food := config.Distributions.Categories["food"]
	assert.Equal(t, 400.0, food.GetMean())
	assert.Equal(t, defaults.Distributions.Categories["food"].StdDev, food.StdDev)

	// A plain mean replaces the default components
	transport := config.Distributions.Categories["transport"]
	assert.Empty(t, transport.Components)
	assert.Equal(t, 300.0, transport.GetMean())
	assert.Equal(t, defaults.Distributions.Categories["transport"].StdDev, transport.StdDev)

	twoBR := config.Distributions.Housing[2]
	assert.Equal(t, defaults.Distributions.Housing[2].GetMean(), twoBR.GetMean())
	assert.Equal(t, 10.0, twoBR.StdDev)

	assert.Empty(t, cmp.Diff(defaults.Distributions.Categories["civic"], config.Distributions.Categories["civic"]))
	assert.Empty(t, cmp.Diff(defaults.Distributions.Housing[1], config.Distributions.Housing[1]))

	// The food sample still spreads around the new mean
	model, err := NewCostModel(config.Distributions)
	require.NoError(t, err)
	low, err := model.Quantile(Food, 0.1)
	require.NoError(t, err)
	high, err := model.Quantile(Food, 0.9)
	require.NoError(t, err)
	assert.Less(t, low, 400.0)
	assert.Greater(t, high, 400.0)
}

func TestLoadConfig_NegativeScalingFactor(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"plain.yaml":   "scaling:\n  food_per_child: -2\n",
		"percent.yaml": "scaling:\n  food_per_child: -200%\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		_, err := LoadConfig(path)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "food_per_child", name)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("region: [unterminated"), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	fourBR := filepath.Join(dir, "four.yaml")
	require.NoError(t, os.WriteFile(fourBR, []byte(`
distributions:
  housing:
    4: {mean: 2600, stdev: 320}
`), 0644))
	_, err = LoadConfig(fourBR)
	assert.ErrorIs(t, err, ErrInvalidBedroomCount)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	config, err := LoadDefaultConfig()
	require.NoError(t, err)
	config.Region = "Round Trip"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, SaveConfig(config, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Living Wage Engine Configuration")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	if diff := cmp.Diff(config, loaded); diff != "" {
		t.Errorf("config changed across save/load (-saved +loaded):\n%s", diff)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing category", func(c *Config) { delete(c.Distributions.Categories, "food") }},
		{"unknown category", func(c *Config) {
			c.Distributions.Categories["entertainment"] = NormalParams{Mean: 50, StdDev: 10}
		}},
		{"housing as category", func(c *Config) {
			c.Distributions.Categories["housing"] = NormalParams{Mean: 50, StdDev: 10}
		}},
		{"missing housing tier", func(c *Config) { delete(c.Distributions.Housing, 2) }},
		{"negative stdev", func(c *Config) {
			p := c.Distributions.Categories["civic"]
			p.StdDev = -1
			c.Distributions.Categories["civic"] = p
		}},
		{"mix does not sum to one", func(c *Config) { c.Health.CoupleMix[0].Weight = 0.9 }},
		{"unknown plan", func(c *Config) { c.Health.FamilyMix[0].Plan = "platinum" }},
		{"bad sensitivity percentile", func(c *Config) { c.Report.SensitivityPercentiles = []float64{0.5, 1} }},
		{"no archetypes", func(c *Config) { c.Archetypes = nil }},
		{"negative scaling factor", func(c *Config) { c.Scaling.FoodPerChild = -2 }},
		{"negative internet factor", func(c *Config) { c.Scaling.InternetExtraAdult = -0.4 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config, err := LoadDefaultConfig()
			require.NoError(t, err)
			tc.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}
