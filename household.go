package main

import (
	"fmt"
)

// Archetype is a named household composition
type Archetype struct {
	Label    string `yaml:"label" json:"label"`
	Adults   int    `yaml:"adults" json:"adults"`
	Children int    `yaml:"children" json:"children"`
	Earners  int    `yaml:"earners" json:"earners"`
}

// TotalAdults returns the number of adults in the household
func (a Archetype) TotalAdults() int {
	return a.Adults
}

// TotalPeople returns adults plus children
func (a Archetype) TotalPeople() int {
	return a.Adults + a.Children
}

// NonWorkingAdults returns adults who are not earners
func (a Archetype) NonWorkingAdults() int {
	return a.Adults - a.Earners
}

// BedroomsRequired maps the household onto the modelled housing tiers:
// no children -> 1BR, one or two children -> 2BR, three or more -> 3BR
func (a Archetype) BedroomsRequired() int {
	switch {
	case a.Children == 0:
		return 1
	case a.Children <= 2:
		return 2
	default:
		return 3
	}
}

// FilingStatus derives the tax filing status: married for two adults,
// head of household for a single parent, otherwise single
func (a Archetype) FilingStatus() FilingStatus {
	if a.Adults == 2 {
		return Married
	}
	if a.Children > 0 {
		return HeadOfHousehold
	}
	return Single
}

// Validate checks the composition invariants
func (a Archetype) Validate() error {
	if a.Label == "" {
		return fmt.Errorf("archetype label must not be empty")
	}
	if a.Adults < 1 {
		return fmt.Errorf("archetype %q: adults must be at least 1, got %d", a.Label, a.Adults)
	}
	if a.Children < 0 {
		return fmt.Errorf("archetype %q: children must be non-negative, got %d", a.Label, a.Children)
	}
	if a.Earners < 1 || a.Earners > a.Adults {
		return fmt.Errorf("archetype %q: earners must be between 1 and %d, got %d", a.Label, a.Adults, a.Earners)
	}
	return nil
}

// Registry is the fixed, ordered set of archetypes a table is built from
type Registry struct {
	archetypes []Archetype
	index      map[string]int
}

// NewRegistry validates the archetypes and rejects duplicate labels
func NewRegistry(archetypes []Archetype) (*Registry, error) {
	if len(archetypes) == 0 {
		return nil, fmt.Errorf("archetype registry is empty")
	}
	r := &Registry{
		archetypes: make([]Archetype, len(archetypes)),
		index:      make(map[string]int, len(archetypes)),
	}
	for i, a := range archetypes {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[a.Label]; dup {
			return nil, fmt.Errorf("duplicate archetype label %q", a.Label)
		}
		r.archetypes[i] = a
		r.index[a.Label] = i
	}
	return r, nil
}

// Lookup returns the archetype registered under label
func (r *Registry) Lookup(label string) (Archetype, error) {
	i, ok := r.index[label]
	if !ok {
		return Archetype{}, &ArchetypeError{Label: label}
	}
	return r.archetypes[i], nil
}

// All returns a copy of the archetypes in registry order
func (r *Registry) All() []Archetype {
	out := make([]Archetype, len(r.archetypes))
	copy(out, r.archetypes)
	return out
}

// Labels returns the labels in registry order
func (r *Registry) Labels() []string {
	labels := make([]string, len(r.archetypes))
	for i, a := range r.archetypes {
		labels[i] = a.Label
	}
	return labels
}

// Len returns the number of archetypes
func (r *Registry) Len() int {
	return len(r.archetypes)
}

// DefaultArchetypes returns the twelve standard household compositions
func DefaultArchetypes() []Archetype {
	return []Archetype{
		{Label: "1 Adult", Adults: 1, Children: 0, Earners: 1},
		{Label: "1 Adult 1 Child", Adults: 1, Children: 1, Earners: 1},
		{Label: "1 Adult 2 Children", Adults: 1, Children: 2, Earners: 1},
		{Label: "1 Adult 3 Children", Adults: 1, Children: 3, Earners: 1},
		{Label: "2 Adults (1 Working)", Adults: 2, Children: 0, Earners: 1},
		{Label: "2 Adults (1 Working) 1 Child", Adults: 2, Children: 1, Earners: 1},
		{Label: "2 Adults (1 Working) 2 Children", Adults: 2, Children: 2, Earners: 1},
		{Label: "2 Adults (1 Working) 3 Children", Adults: 2, Children: 3, Earners: 1},
		{Label: "2 Adults (2 Working)", Adults: 2, Children: 0, Earners: 2},
		{Label: "2 Adults (2 Working) 1 Child", Adults: 2, Children: 1, Earners: 2},
		{Label: "2 Adults (2 Working) 2 Children", Adults: 2, Children: 2, Earners: 2},
		{Label: "2 Adults (2 Working) 3 Children", Adults: 2, Children: 3, Earners: 2},
	}
}
