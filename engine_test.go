package main

import (
	"bytes"
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewDefaultEngine()
	require.NoError(t, err)
	return engine
}

func TestComputeBreakdown_RowsSortedByLabel(t *testing.T) {
	engine := testEngine(t)

	table, err := engine.ComputeBreakdown(0.40, FilingAuto)
	require.NoError(t, err)
	require.Len(t, table.Rows, 12)

	labels := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		labels[i] = r.Label
	}
	assert.True(t, sort.StringsAreSorted(labels), "rows not sorted: %v", labels)
	assert.Equal(t, 0.40, table.Percentile)
}

func TestComputeBreakdown_SingleAdultHousing(t *testing.T) {
	engine := testEngine(t)

	table, err := engine.ComputeBreakdown(0.40, FilingAuto)
	require.NoError(t, err)
	row, err := table.Lookup("1 Adult")
	require.NoError(t, err)

	rent, err := engine.Model().HousingQuantile(0.40, 1)
	require.NoError(t, err)
	assert.Equal(t, roundDollars(rent), row.Housing)
	assert.Zero(t, row.Childcare)

	// Health is expected premium plus out-of-pocket: 51.11 + 111.33
	assert.Equal(t, 162.0, row.Health)
}

func TestInvariant_OneEarnerCoupleHasNoChildcare(t *testing.T) {
	engine := testEngine(t)

	table, err := engine.ComputeBreakdown(0.40, FilingAuto)
	require.NoError(t, err)
	for _, label := range []string{
		"2 Adults (1 Working) 1 Child",
		"2 Adults (1 Working) 2 Children",
		"2 Adults (1 Working) 3 Children",
	} {
		row, err := table.Lookup(label)
		require.NoError(t, err)
		assert.Zero(t, row.Childcare, label)
	}

	row, err := table.Lookup("2 Adults (2 Working) 2 Children")
	require.NoError(t, err)
	assert.Positive(t, row.Childcare)
}

func TestInvariant_RepeatRunsAreIdentical(t *testing.T) {
	engine := testEngine(t)

	b1, s1, err := engine.ComputeTables(0.40, FilingAuto, true)
	require.NoError(t, err)
	b2, s2, err := engine.ComputeTables(0.40, FilingAuto, true)
	require.NoError(t, err)

	if diff := cmp.Diff(b1, b2); diff != "" {
		t.Errorf("breakdown differs between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("summary differs between runs (-first +second):\n%s", diff)
	}

	// A freshly sampled engine from the same config serialises byte-for-byte the same
	fresh, err := NewEngine(engine.Config())
	require.NoError(t, err)
	s3, err := fresh.ComputeSummary(0.40)
	require.NoError(t, err)

	var j1, j3 bytes.Buffer
	require.NoError(t, WriteJSON(&j1, s1))
	require.NoError(t, WriteJSON(&j3, s3))
	assert.Equal(t, j1.String(), j3.String())
}

func TestInvariant_TotalsAreConsistent(t *testing.T) {
	engine := testEngine(t)

	rows, err := engine.ComputeRows(0.40, FilingAuto, true)
	require.NoError(t, err)

	hours := engine.Config().Wage.GetHoursPerEarner()
	for _, r := range rows {
		sum := 0.0
		for _, cat := range BreakdownCategories {
			sum += r.Costs[cat]
		}
		assert.InDelta(t, sum, r.MonthlyNet, 1e-9, r.Label())
		assert.InDelta(t, r.MonthlyNet+r.TaxMonthly, r.Total, 1e-9, r.Label())
		assert.InDelta(t, r.AnnualGross/12, r.MonthlyGross, 1e-9, r.Label())
		assert.InDelta(t, r.AnnualGross/(hours*float64(r.Archetype.Earners)), r.Hourly, 1e-12, r.Label())
		assert.Equal(t, r.Archetype.BedroomsRequired(), r.Bedrooms)

		// Gross nets back to the household's need within a cent
		net := engine.Taxes().NetAfterTax(r.AnnualGross, r.Filing, r.Archetype.Children, r.Archetype.Earners)
		assert.Less(t, math.Abs(net-r.MonthlyNet*12), 0.01, r.Label())
	}

	// Rounded columns add up to the rounded total within half a dollar per column
	table := NewBreakdownTable(0.40, rows)
	for _, r := range table.Rows {
		sum := r.Tax
		for _, cat := range BreakdownCategories {
			sum += r.Cost(cat)
		}
		assert.InDelta(t, r.Total, sum, 0.5*float64(len(BreakdownCategories)+2), r.Label)
	}
}

func TestInvariant_WagesRiseWithChildren(t *testing.T) {
	engine := testEngine(t)

	summary, err := engine.ComputeSummary(0.40)
	require.NoError(t, err)

	for _, prefix := range []string{"1 Adult", "2 Adults (1 Working)", "2 Adults (2 Working)"} {
		prev := SummaryRow{}
		for children := 0; children <= 3; children++ {
			label := describeHousehold(1, children, 1)
			if prefix != "1 Adult" {
				label = prefix + label[len("1 Adult"):]
			}
			row, err := summary.Lookup(label)
			require.NoError(t, err)
			if children > 0 {
				assert.GreaterOrEqual(t, row.MonthlyNet, prev.MonthlyNet, label)
				assert.GreaterOrEqual(t, row.Hourly, prev.Hourly, label)
			}
			prev = row
		}
	}
}

func TestInvariant_WagesRiseWithPercentile(t *testing.T) {
	engine := testEngine(t)

	lo, err := engine.ComputeSummary(0.25)
	require.NoError(t, err)
	hi, err := engine.ComputeSummary(0.75)
	require.NoError(t, err)

	for i := range lo.Rows {
		assert.LessOrEqual(t, lo.Rows[i].Hourly, hi.Rows[i].Hourly, lo.Rows[i].Label)
	}
}

func TestComputeRows_InvalidQuantile(t *testing.T) {
	engine := testEngine(t)

	for _, q := range []float64{0, 1, -0.5, 2, math.NaN()} {
		_, err := engine.ComputeBreakdown(q, FilingAuto)
		assert.ErrorIs(t, err, ErrQuantileOutOfRange)
		_, err = engine.ComputeSummary(q)
		assert.ErrorIs(t, err, ErrQuantileOutOfRange)
	}
}

func TestComputeBreakdown_WithoutTax(t *testing.T) {
	engine := testEngine(t)

	rows, err := engine.ComputeRows(0.40, FilingAuto, false)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Zero(t, r.TaxMonthly)
		assert.Zero(t, r.EffectiveRate)
		assert.Equal(t, r.MonthlyNet*12, r.AnnualGross)
		assert.Equal(t, r.MonthlyNet, r.Total)
	}

	withTax, err := engine.ComputeBreakdown(0.40, FilingAuto)
	require.NoError(t, err)
	noTax, err := engine.ComputeBreakdownWithOptions(0.40, FilingAuto, false)
	require.NoError(t, err)
	for i := range withTax.Rows {
		// Costs do not depend on tax treatment
		assert.Equal(t, withTax.Rows[i].Housing, noTax.Rows[i].Housing)
		assert.Equal(t, withTax.Rows[i].Food, noTax.Rows[i].Food)
	}
}

func TestTables_LookupUnknownLabel(t *testing.T) {
	engine := testEngine(t)

	breakdown, summary, err := engine.ComputeTables(0.40, FilingAuto, true)
	require.NoError(t, err)

	_, err = breakdown.Lookup("3 Adults")
	assert.ErrorIs(t, err, ErrUnknownArchetype)
	_, err = summary.Lookup("3 Adults")
	assert.ErrorIs(t, err, ErrUnknownArchetype)
}

func TestComputeRows_FilingOverride(t *testing.T) {
	engine := testEngine(t)

	auto, err := engine.ComputeRows(0.40, FilingAuto, true)
	require.NoError(t, err)
	single, err := engine.ComputeRows(0.40, FilingAs(Single), true)
	require.NoError(t, err)

	for i := range auto {
		assert.Equal(t, auto[i].Archetype.FilingStatus(), auto[i].Filing)
		assert.Equal(t, Single, single[i].Filing)
		assert.Equal(t, auto[i].MonthlyNet, single[i].MonthlyNet)
		if auto[i].Filing == Married {
			// A couple filing single loses the larger deduction and wider brackets
			assert.GreaterOrEqual(t, single[i].AnnualGross, auto[i].AnnualGross, auto[i].Label())
		}
	}

	summary, err := engine.ComputeSummary(0.40)
	require.NoError(t, err)
	row, err := summary.Lookup("2 Adults (2 Working)")
	require.NoError(t, err)
	assert.Equal(t, "married", row.Filing)
	row, err = summary.Lookup("1 Adult 1 Child")
	require.NoError(t, err)
	assert.Equal(t, "head_of_household", row.Filing)
}

func TestComputeRow_AdHocHousehold(t *testing.T) {
	engine := testEngine(t)

	a := Archetype{Label: "1 Adult 5 Children", Adults: 1, Children: 5, Earners: 1}
	row, err := engine.ComputeRow(a, 0.40, FilingAuto, true)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Bedrooms)

	rent, err := engine.Model().HousingQuantile(0.40, 3)
	require.NoError(t, err)
	assert.Equal(t, rent, row.Costs[Housing])
}

func TestComputeRow_RejectsInvalidHousehold(t *testing.T) {
	engine := testEngine(t)

	for _, a := range []Archetype{
		{Label: "No Earners", Adults: 1, Earners: 0},
		{Label: "Three Earners", Adults: 2, Earners: 3},
		{Label: "Nobody", Adults: 0, Earners: 0},
		{Adults: 1, Earners: 1},
	} {
		_, err := engine.ComputeRow(a, 0.40, FilingAuto, true)
		assert.Error(t, err, a.Label)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config, err := LoadDefaultConfig()
	require.NoError(t, err)

	config.Archetypes = append(config.Archetypes, Archetype{Label: "1 Adult", Adults: 1, Earners: 1})
	_, err = NewEngine(config)
	assert.ErrorContains(t, err, "duplicate")
}
