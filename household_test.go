package main

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchetype_Derived(t *testing.T) {
	tests := []struct {
		a          Archetype
		people     int
		nonWorking int
		bedrooms   int
		filing     FilingStatus
	}{
		{Archetype{Label: "1 Adult", Adults: 1, Earners: 1}, 1, 0, 1, Single},
		{Archetype{Label: "1 Adult 1 Child", Adults: 1, Children: 1, Earners: 1}, 2, 0, 2, HeadOfHousehold},
		{Archetype{Label: "1 Adult 3 Children", Adults: 1, Children: 3, Earners: 1}, 4, 0, 3, HeadOfHousehold},
		{Archetype{Label: "2 Adults (1 Working)", Adults: 2, Earners: 1}, 2, 1, 1, Married},
		{Archetype{Label: "2 Adults (2 Working) 2 Children", Adults: 2, Children: 2, Earners: 2}, 4, 0, 2, Married},
		{Archetype{Label: "big", Adults: 2, Children: 6, Earners: 2}, 8, 0, 3, Married},
	}

	for _, tc := range tests {
		t.Run(tc.a.Label, func(t *testing.T) {
			require.NoError(t, tc.a.Validate())
			assert.Equal(t, tc.a.Adults, tc.a.TotalAdults())
			assert.Equal(t, tc.people, tc.a.TotalPeople())
			assert.Equal(t, tc.nonWorking, tc.a.NonWorkingAdults())
			assert.Equal(t, tc.bedrooms, tc.a.BedroomsRequired())
			assert.Equal(t, tc.filing, tc.a.FilingStatus())
		})
	}
}

func TestArchetype_Validate(t *testing.T) {
	bad := []Archetype{
		{Label: "", Adults: 1, Earners: 1},
		{Label: "no adults", Adults: 0, Earners: 0},
		{Label: "negative children", Adults: 1, Children: -1, Earners: 1},
		{Label: "too many earners", Adults: 1, Earners: 2},
		{Label: "no earners", Adults: 2, Earners: 0},
	}
	for _, a := range bad {
		assert.Error(t, a.Validate(), a.Label)
	}
}

func TestRegistry_Defaults(t *testing.T) {
	r, err := NewRegistry(DefaultArchetypes())
	require.NoError(t, err)
	assert.Equal(t, 12, r.Len())

	want := []string{
		"1 Adult", "1 Adult 1 Child", "1 Adult 2 Children", "1 Adult 3 Children",
		"2 Adults (1 Working)", "2 Adults (1 Working) 1 Child", "2 Adults (1 Working) 2 Children", "2 Adults (1 Working) 3 Children",
		"2 Adults (2 Working)", "2 Adults (2 Working) 1 Child", "2 Adults (2 Working) 2 Children", "2 Adults (2 Working) 3 Children",
	}
	if diff := cmp.Diff(want, r.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	a, err := r.Lookup("2 Adults (1 Working) 2 Children")
	require.NoError(t, err)
	assert.Equal(t, Archetype{Label: "2 Adults (1 Working) 2 Children", Adults: 2, Children: 2, Earners: 1}, a)
}

func TestRegistry_ConfigMatchesBuiltInDefaults(t *testing.T) {
	config, err := LoadDefaultConfig()
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultArchetypes(), config.Archetypes); diff != "" {
		t.Errorf("default-config.yaml archetypes differ (-builtin +yaml):\n%s", diff)
	}
}

func TestRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.Error(t, err)

	_, err = NewRegistry([]Archetype{
		{Label: "dup", Adults: 1, Earners: 1},
		{Label: "dup", Adults: 2, Earners: 1},
	})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewRegistry([]Archetype{{Label: "bad", Adults: 1, Earners: 3}})
	assert.Error(t, err)

	r, err := NewRegistry(DefaultArchetypes())
	require.NoError(t, err)
	_, err = r.Lookup("3 Adults")
	require.ErrorIs(t, err, ErrUnknownArchetype)

	var ae *ArchetypeError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "3 Adults", ae.Label)
}

func TestRegistry_AllReturnsCopy(t *testing.T) {
	r, err := NewRegistry(DefaultArchetypes())
	require.NoError(t, err)

	all := r.All()
	all[0].Adults = 99
	a, err := r.Lookup("1 Adult")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Adults)
}

func TestFilingMode(t *testing.T) {
	single := Archetype{Label: "1 Adult", Adults: 1, Earners: 1}
	couple := Archetype{Label: "2 Adults (2 Working)", Adults: 2, Earners: 2}

	mode, err := ParseFilingMode("auto")
	require.NoError(t, err)
	assert.Equal(t, Single, mode.Resolve(single))
	assert.Equal(t, Married, mode.Resolve(couple))

	mode, err = ParseFilingMode("hoh")
	require.NoError(t, err)
	assert.Equal(t, HeadOfHousehold, mode.Resolve(single))
	assert.Equal(t, HeadOfHousehold, mode.Resolve(couple))
	assert.Equal(t, "head_of_household", mode.String())

	mode, err = ParseFilingMode("")
	require.NoError(t, err)
	assert.True(t, mode.Auto)

	_, err = ParseFilingMode("widowed")
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	for _, c := range BreakdownCategories {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCategory("entertainment")
	assert.Error(t, err)
	assert.Equal(t, "Childcare", Childcare.Title())
}
